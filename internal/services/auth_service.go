// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-api/internal/apperror"
	"github.com/javajoker/catalog-api/internal/config"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/session"
	"github.com/javajoker/catalog-api/internal/utils"
)

type AuthService struct {
	store    repository.Store
	sessions session.Store
	cfg      *config.Config
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func NewAuthService(store repository.Store, sessions session.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Register creates an active customer account.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Invalid(i18n.KeyValidationInvalid, err)
	}

	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		IsActive:   true,
		IsCustomer: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Unprocessable(i18n.KeyAuthUserExists, err)
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFromContext(ctx),
		"user_id":    user.ID,
	}).Info("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Invalid(i18n.KeyValidationInvalid, err)
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthorized(i18n.KeyAuthInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperror.Unauthorized(i18n.KeyAuthInvalidCredentials)
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized(i18n.KeyAuthUserInactive)
	}

	token, err := s.sessions.Issue(ctx, user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.sessionTTL().Seconds()),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			return apperror.Unauthorized(i18n.KeyAuthInvalidToken)
		}
		return err
	}
	return nil
}

// CurrentUser reloads the caller so the response reflects current flags.
func (s *AuthService) CurrentUser(ctx context.Context, identity *models.Identity) (*models.User, error) {
	if identity == nil {
		return nil, apperror.Unauthorized(i18n.KeyAuthRequired)
	}
	user, err := s.store.GetUserByID(ctx, identity.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(i18n.KeyUserNotFound)
	}
	return user, err
}

// EnsureBootstrapAdmin creates the configured admin when no admin exists.
// It is a no-op without a configured password.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.cfg.Bootstrap.AdminPassword == "" {
		return nil
	}

	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Username: s.cfg.Bootstrap.AdminUsername,
		Email:    s.cfg.Bootstrap.AdminUsername + "@localhost",
		IsActive: true,
		IsAdmin:  true,
	}
	if err := admin.SetPassword(s.cfg.Bootstrap.AdminPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	logrus.WithField("username", admin.Username).Info("bootstrap admin created")
	return nil
}

func (s *AuthService) sessionTTL() time.Duration {
	return time.Duration(s.cfg.Session.TTL) * time.Hour
}
