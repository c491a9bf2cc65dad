// internal/services/authorization_service.go
package services

import (
	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
)

// Action is a mutation guarded by the authorization gate.
type Action int

const (
	ActionCreateProduct Action = iota
	ActionUpdateProduct
	ActionDeleteProduct
	ActionUploadImage
	ActionCreateReview
	ActionDeleteRating
	ActionManageCategories
	ActionManagePermissions
)

func (a Action) String() string {
	switch a {
	case ActionCreateProduct:
		return "create_product"
	case ActionUpdateProduct:
		return "update_product"
	case ActionDeleteProduct:
		return "delete_product"
	case ActionUploadImage:
		return "upload_image"
	case ActionCreateReview:
		return "create_review"
	case ActionDeleteRating:
		return "delete_rating"
	case ActionManageCategories:
		return "manage_categories"
	case ActionManagePermissions:
		return "manage_permissions"
	default:
		return "unknown"
	}
}

// AuthorizationService decides whether a caller may perform an action. It
// never touches the store, so a denial leaves no side effects.
type AuthorizationService struct{}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// Authorize checks identity against action. product is the target for
// ActionUpdateProduct and ActionDeleteProduct and ignored otherwise.
func (s *AuthorizationService) Authorize(identity *models.Identity, action Action, product *models.Product) error {
	if identity == nil {
		return apperror.Unauthorized(i18n.KeyAuthRequired)
	}

	var allowed bool
	switch action {
	case ActionCreateProduct, ActionUploadImage:
		allowed = identity.Can(models.CapabilityAdmin) || identity.Can(models.CapabilitySupplier)
	case ActionUpdateProduct, ActionDeleteProduct:
		allowed = identity.Can(models.CapabilityAdmin) ||
			(identity.Can(models.CapabilitySupplier) && product != nil && product.SupplierID == identity.UserID)
	case ActionCreateReview:
		allowed = identity.Can(models.CapabilityCustomer)
	case ActionDeleteRating, ActionManageCategories, ActionManagePermissions:
		allowed = identity.Can(models.CapabilityAdmin)
	default:
		allowed = false
	}

	if !allowed {
		return apperror.Unauthorized(i18n.KeyAuthForbidden)
	}
	return nil
}
