package repository

import (
	"context"
	"errors"

	"github.com/javajoker/catalog-api/internal/models"
)

// Predefined errors for store operations
var (
	ErrNotFound            = errors.New("repository: record not found")
	ErrForeignKeyViolation = errors.New("repository: foreign key violation")
	ErrDuplicate           = errors.New("repository: duplicate key")
)

// Store is every persistence operation the services need. Implementations
// must make InTx atomic: fn's writes are all committed or none are.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error

	CategoryStore
	ProductStore
	RatingStore
	ReviewStore
	UserStore
	AuditStore
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	// ListSubcategoryIDs returns the active direct children of parentID only.
	ListSubcategoryIDs(ctx context.Context, parentID uint) ([]uint, error)
	ListActiveCategories(ctx context.Context) ([]models.Category, error)
	DeactivateCategory(ctx context.Context, id uint) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uint) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	// GetAvailableProductBySlug only matches active, in-stock products.
	GetAvailableProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	// ListAvailableProducts lists active, in-stock products; a nil
	// categoryIDs means every category.
	ListAvailableProducts(ctx context.Context, categoryIDs []uint) ([]models.Product, error)
	DeactivateProduct(ctx context.Context, id uint) error
	// LockProduct takes a row lock on the product for the rest of the
	// transaction. It reports false, without error, when the product does
	// not exist.
	LockProduct(ctx context.Context, id uint) (bool, error)
	// RecomputeProductRating sets the product's rating to the mean grade of
	// its active ratings (0 when there are none) and returns the new value.
	RecomputeProductRating(ctx context.Context, productID uint) (float64, error)
}

type RatingStore interface {
	CreateRating(ctx context.Context, rating *models.Rating) error
	GetRatingByID(ctx context.Context, id uint) (*models.Rating, error)
	DeactivateRating(ctx context.Context, id uint) error
	ListRatings(ctx context.Context) ([]models.Rating, error)
	ListRatingsByProduct(ctx context.Context, productID uint) ([]models.Rating, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByRatingID(ctx context.Context, ratingID uint) (*models.Review, error)
	DeactivateReview(ctx context.Context, id uint) error
	ListReviews(ctx context.Context) ([]models.Review, error)
	ListReviewsByProduct(ctx context.Context, productID uint) ([]models.Review, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountAdmins(ctx context.Context) (int64, error)
}

type AuditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
