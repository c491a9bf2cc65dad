package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/catalog-api/internal/models"
)

// GormStore implements Store on top of gorm. The *gorm.DB must be opened
// with TranslateError so integrity violations surface as gorm sentinels.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrForeignKeyViolation, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- CategoryStore Implementation ---

func (s *GormStore) CreateCategory(ctx context.Context, category *models.Category) error {
	return translate(s.db.WithContext(ctx).Create(category).Error)
}

func (s *GormStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	return affected(s.db.WithContext(ctx).Model(category).
		Select("name", "slug", "parent_id", "is_active").
		Updates(category))
}

func (s *GormStore) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (s *GormStore) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (s *GormStore) ListSubcategoryIDs(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func (s *GormStore) ListActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&categories).Error; err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

func (s *GormStore) DeactivateCategory(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		Update("is_active", false))
}

// --- ProductStore Implementation ---

func (s *GormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(product).Error)
}

// UpdateProduct writes the editable columns; rating is never written here.
func (s *GormStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	return affected(s.db.WithContext(ctx).Model(product).
		Select("name", "slug", "description", "price", "image_url", "stock", "category_id", "is_active").
		Updates(product))
}

func (s *GormStore) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *GormStore) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *GormStore) GetAvailableProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).
		Where("slug = ? AND is_active = ? AND stock > ?", slug, true, 0).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *GormStore) ListAvailableProducts(ctx context.Context, categoryIDs []uint) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Where("is_active = ? AND stock > ?", true, 0)
	if categoryIDs != nil {
		query = query.Where("category_id IN ?", categoryIDs)
	}

	var products []models.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *GormStore) DeactivateProduct(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false))
}

func (s *GormStore) LockProduct(ctx context.Context, id uint) (bool, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Pluck("id", &ids).Error; err != nil {
		return false, translate(err)
	}
	return len(ids) > 0, nil
}

// RecomputeProductRating runs as one statement so the average and the write
// see the same snapshot:
//
//	UPDATE products SET rating = (SELECT COALESCE(AVG(grade), 0) FROM ratings
//	WHERE product_id = $1 AND is_active) WHERE id = $1 RETURNING rating
func (s *GormStore) RecomputeProductRating(ctx context.Context, productID uint) (float64, error) {
	average := s.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(grade), 0)").
		Where("product_id = ? AND is_active = ?", productID, true)

	var product models.Product
	result := s.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "rating"}}}).
		Where("id = ?", productID).
		Update("rating", average)
	if err := affected(result); err != nil {
		return 0, err
	}
	return product.Rating, nil
}

// --- RatingStore Implementation ---

func (s *GormStore) CreateRating(ctx context.Context, rating *models.Rating) error {
	return translate(s.db.WithContext(ctx).Create(rating).Error)
}

func (s *GormStore) GetRatingByID(ctx context.Context, id uint) (*models.Rating, error) {
	var rating models.Rating
	if err := s.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rating, nil
}

func (s *GormStore) DeactivateRating(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Model(&models.Rating{}).
		Where("id = ?", id).
		Update("is_active", false))
}

func (s *GormStore) ListRatings(ctx context.Context) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := s.db.WithContext(ctx).Order("id").Find(&ratings).Error; err != nil {
		return nil, translate(err)
	}
	return ratings, nil
}

func (s *GormStore) ListRatingsByProduct(ctx context.Context, productID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&ratings).Error; err != nil {
		return nil, translate(err)
	}
	return ratings, nil
}

// --- ReviewStore Implementation ---

func (s *GormStore) CreateReview(ctx context.Context, review *models.Review) error {
	return translate(s.db.WithContext(ctx).Create(review).Error)
}

func (s *GormStore) GetReviewByRatingID(ctx context.Context, ratingID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Where("rating_id = ?", ratingID).First(&review).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (s *GormStore) DeactivateReview(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_active", false))
}

func (s *GormStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Order("id").Find(&reviews).Error; err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}

func (s *GormStore) ListReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&reviews).Error; err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}

// --- UserStore Implementation ---

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	return affected(s.db.WithContext(ctx).Model(user).
		Select("email", "password_hash", "is_active", "is_admin", "is_supplier", "is_customer").
		Updates(user))
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// --- AuditStore Implementation ---

func (s *GormStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}
