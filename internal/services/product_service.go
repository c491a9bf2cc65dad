// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/events"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/utils"
)

type ProductService struct {
	store     repository.Store
	authz     *AuthorizationService
	publisher events.Publisher
}

// maxPrice is the first value that overflows the decimal(10,2) price column.
var maxPrice = decimal.New(1, 8)

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description string          `json:"description" validate:"max=10000"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=1024"`
	Stock       int             `json:"stock" validate:"min=0"`
	Category    uint            `json:"category" validate:"required"`
}

// UpdateProductRequest replaces every editable field. IsActive is left
// unchanged when omitted.
type UpdateProductRequest struct {
	CreateProductRequest
	IsActive *bool `json:"is_active,omitempty"`
}

func NewProductService(store repository.Store, authz *AuthorizationService, publisher events.Publisher) *ProductService {
	return &ProductService{
		store:     store,
		authz:     authz,
		publisher: publisher,
	}
}

// ListAvailable returns active, in-stock products. An empty catalogue is
// reported as NotFound.
func (s *ProductService) ListAvailable(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListAvailableProducts(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperror.NotFound(i18n.KeyProductNoneAvailable)
	}
	return products, nil
}

// ListByCategory covers the category and its active direct subcategories
// only. A soft-deleted category is not found.
func (s *ProductService) ListByCategory(ctx context.Context, categorySlug string) ([]models.Product, error) {
	category, err := s.store.GetCategoryBySlug(ctx, categorySlug)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !category.IsActive) {
		return nil, apperror.NotFound(i18n.KeyCategoryNotFound)
	}
	if err != nil {
		return nil, err
	}

	childIDs, err := s.store.ListSubcategoryIDs(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	categoryIDs := append([]uint{category.ID}, childIDs...)

	products, err := s.store.ListAvailableProducts(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperror.NotFound(i18n.KeyProductNoneAvailable)
	}
	return products, nil
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.store.GetAvailableProductBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(i18n.KeyProductNotFound)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, identity *models.Identity, req *CreateProductRequest) (*models.Product, error) {
	if err := s.authz.Authorize(identity, ActionCreateProduct, nil); err != nil {
		return nil, err
	}

	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		SupplierID: identity.UserID,
		IsActive:   true,
	}
	applyProductFields(product, req)

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, productWriteError(err)
	}

	logrus.WithFields(logrus.Fields{
		"request_id":  utils.RequestIDFromContext(ctx),
		"product_id":  product.ID,
		"supplier_id": product.SupplierID,
	}).Info("product created")

	publish(ctx, s.publisher, events.TypeProductCreated, productKey(product.ID), product)
	return product, nil
}

// UpdateProduct looks the product up regardless of stock or active state so
// an owner can restock or reactivate it. Rating is never written here.
func (s *ProductService) UpdateProduct(ctx context.Context, identity *models.Identity, slug string, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(i18n.KeyProductNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(identity, ActionUpdateProduct, product); err != nil {
		return nil, err
	}

	if err := validateProductRequest(&req.CreateProductRequest); err != nil {
		return nil, err
	}

	applyProductFields(product, &req.CreateProductRequest)
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, productWriteError(err)
	}

	publish(ctx, s.publisher, events.TypeProductUpdated, productKey(product.ID), product)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, identity *models.Identity, productID uint) error {
	product, err := s.store.GetProductByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(i18n.KeyProductNotFound)
	}
	if err != nil {
		return err
	}

	if err := s.authz.Authorize(identity, ActionDeleteProduct, product); err != nil {
		return err
	}

	if err := s.store.DeactivateProduct(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound(i18n.KeyProductNotFound)
		}
		return err
	}

	publish(ctx, s.publisher, events.TypeProductDeleted, productKey(product.ID), map[string]uint{"id": product.ID})
	return nil
}

func validateProductRequest(req *CreateProductRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperror.Invalid(i18n.KeyValidationInvalid, err)
	}
	if req.Price.IsNegative() {
		return apperror.Invalid(i18n.KeyValidationInvalid, errors.New("price must not be negative"))
	}
	if req.Price.Round(2).GreaterThanOrEqual(maxPrice) {
		return apperror.Invalid(i18n.KeyValidationInvalid, fmt.Errorf("price must be less than %s", maxPrice))
	}
	return nil
}

func applyProductFields(product *models.Product, req *CreateProductRequest) {
	product.Name = req.Name
	product.Slug = utils.Slugify(req.Name)
	product.Description = req.Description
	product.Price = req.Price.Round(2)
	product.ImageURL = req.ImageURL
	product.Stock = req.Stock
	product.CategoryID = req.Category
}

func productWriteError(err error) error {
	if errors.Is(err, repository.ErrForeignKeyViolation) {
		return apperror.Unprocessable(i18n.KeyProductInvalidCategory, err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(i18n.KeyProductNotFound)
	}
	return err
}
