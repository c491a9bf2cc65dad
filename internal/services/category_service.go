// internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/utils"
)

type CategoryService struct {
	store repository.Store
	authz *AuthorizationService
}

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

func NewCategoryService(store repository.Store, authz *AuthorizationService) *CategoryService {
	return &CategoryService{store: store, authz: authz}
}

// ListTree returns active top-level categories with their active children.
// A child whose parent is inactive is listed at the top level.
func (s *CategoryService) ListTree(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	active := make(map[uint]bool, len(categories))
	for _, c := range categories {
		active[c.ID] = true
	}

	children := make(map[uint][]models.Category)
	var roots []models.Category
	for _, c := range categories {
		if c.ParentID != nil && active[*c.ParentID] {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	for i := range roots {
		roots[i].Children = children[roots[i].ID]
	}
	return nonNil(roots), nil
}

// CreateCategory reactivates a soft-deleted category with the same slug
// instead of failing on the unique slug.
func (s *CategoryService) CreateCategory(ctx context.Context, identity *models.Identity, req *CategoryRequest) (*models.Category, error) {
	if err := s.authz.Authorize(identity, ActionManageCategories, nil); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Invalid(i18n.KeyValidationInvalid, err)
	}

	slug := utils.Slugify(req.Name)
	var category *models.Category
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := validateParent(ctx, tx, 0, req.ParentID); err != nil {
			return err
		}

		existing, err := tx.GetCategoryBySlug(ctx, slug)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			category = &models.Category{
				Name:     req.Name,
				Slug:     slug,
				ParentID: req.ParentID,
				IsActive: true,
			}
			return tx.CreateCategory(ctx, category)
		case err != nil:
			return err
		case existing.IsActive:
			return apperror.Unprocessable(i18n.KeyCategoryExists, fmt.Errorf("category slug %q is taken", slug))
		}

		if req.ParentID != nil {
			if err := validateLeaf(ctx, tx, existing.ID); err != nil {
				return err
			}
		}
		existing.Name = req.Name
		existing.ParentID = req.ParentID
		existing.IsActive = true
		category = existing
		return tx.UpdateCategory(ctx, category)
	})
	if err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, identity *models.Identity, id uint, req *CategoryRequest) (*models.Category, error) {
	if err := s.authz.Authorize(identity, ActionManageCategories, nil); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Invalid(i18n.KeyValidationInvalid, err)
	}

	category, err := s.store.GetCategoryByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(i18n.KeyCategoryNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := validateParent(ctx, s.store, category.ID, req.ParentID); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if err := validateLeaf(ctx, s.store, category.ID); err != nil {
			return nil, err
		}
	}

	category.Name = req.Name
	category.Slug = utils.Slugify(req.Name)
	category.ParentID = req.ParentID

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, identity *models.Identity, id uint) error {
	if err := s.authz.Authorize(identity, ActionManageCategories, nil); err != nil {
		return err
	}

	if err := s.store.DeactivateCategory(ctx, id); err != nil {
		return categoryWriteError(err)
	}
	return nil
}

// validateParent keeps the tree one level deep: a parent must be an active
// top-level category other than the category itself (id 0 on create).
func validateParent(ctx context.Context, store repository.CategoryStore, id uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return apperror.Unprocessable(i18n.KeyCategoryInvalidParent, errors.New("category cannot be its own parent"))
	}

	parent, err := store.GetCategoryByID(ctx, *parentID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.Unprocessable(i18n.KeyCategoryInvalidParent, fmt.Errorf("parent category %d does not exist", *parentID))
	}
	if err != nil {
		return err
	}

	switch {
	case !parent.IsActive:
		return apperror.Unprocessable(i18n.KeyCategoryInvalidParent, fmt.Errorf("parent category %d is inactive", parent.ID))
	case parent.ParentID != nil:
		return apperror.Unprocessable(i18n.KeyCategoryInvalidParent, fmt.Errorf("parent category %d is itself a subcategory", parent.ID))
	}
	return nil
}

// validateLeaf rejects moving a category that has subcategories under a parent.
func validateLeaf(ctx context.Context, store repository.CategoryStore, id uint) error {
	childIDs, err := store.ListSubcategoryIDs(ctx, id)
	if err != nil {
		return err
	}
	if len(childIDs) > 0 {
		return apperror.Unprocessable(i18n.KeyCategoryInvalidParent, fmt.Errorf("category %d has subcategories", id))
	}
	return nil
}

func categoryWriteError(err error) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(i18n.KeyCategoryNotFound)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return apperror.Unprocessable(i18n.KeyCategoryInvalidParent, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Unprocessable(i18n.KeyCategoryExists, err)
	default:
		return err
	}
}
