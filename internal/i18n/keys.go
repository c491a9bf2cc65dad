// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess           = "success"
	KeyError             = "error"
	KeyInternalError     = "internal.error"
	KeyValidationInvalid = "validation.invalid"
	KeyInvalidID         = "validation.invalid_id"
	KeyRateLimitExceeded = "rate_limit.exceeded"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserInactive       = "auth.user_inactive"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthForbidden          = "auth.forbidden"

	// Users and permissions
	KeyUserNotFound      = "user.not_found"
	KeyPermissionUpdated = "permission.updated"

	// Products
	KeyProductNotFound        = "product.not_found"
	KeyProductNoneAvailable   = "product.none_available"
	KeyProductCreated         = "product.created"
	KeyProductUpdated         = "product.updated"
	KeyProductDeleted         = "product.deleted"
	KeyProductInvalidCategory = "product.invalid_category"
	KeyImageInvalid           = "product.image_invalid"
	KeyImageTooLarge          = "product.image_too_large"

	// Categories
	KeyCategoryNotFound      = "category.not_found"
	KeyCategoryCreated       = "category.created"
	KeyCategoryUpdated       = "category.updated"
	KeyCategoryDeleted       = "category.deleted"
	KeyCategoryInvalidParent = "category.invalid_parent"
	KeyCategoryExists        = "category.exists"

	// Reviews and ratings
	KeyReviewNotFound       = "review.not_found"
	KeyReviewCreated        = "review.created"
	KeyReviewInvalidProduct = "review.invalid_product"
	KeyRatingNotFound       = "rating.not_found"
	KeyRatingDeleted        = "rating.deleted"
)
