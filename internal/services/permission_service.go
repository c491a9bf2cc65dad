// internal/services/permission_service.go
package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/utils"
)

type PermissionService struct {
	store repository.Store
	authz *AuthorizationService
}

func NewPermissionService(store repository.Store, authz *AuthorizationService) *PermissionService {
	return &PermissionService{store: store, authz: authz}
}

// ToggleSupplier flips a user between supplier and customer. Sessions already
// issued keep their old capabilities until the user logs in again.
func (s *PermissionService) ToggleSupplier(ctx context.Context, identity *models.Identity, userID uint) (*models.User, error) {
	if err := s.authz.Authorize(identity, ActionManagePermissions, nil); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.GetUserByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound(i18n.KeyUserNotFound)
		}
		if err != nil {
			return err
		}

		user.IsSupplier = !user.IsSupplier
		user.IsCustomer = !user.IsSupplier
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id":  utils.RequestIDFromContext(ctx),
		"user_id":     user.ID,
		"is_supplier": user.IsSupplier,
	}).Info("supplier permission changed")
	return user, nil
}
