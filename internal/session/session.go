// Package session maps bearer tokens to caller identities.
package session

import (
	"context"
	"errors"

	"github.com/javajoker/catalog-api/internal/models"
)

// ErrInvalidToken covers unknown, expired, malformed and revoked tokens.
var ErrInvalidToken = errors.New("session: invalid token")

type Store interface {
	Issue(ctx context.Context, identity models.Identity) (string, error)
	Resolve(ctx context.Context, token string) (*models.Identity, error)
	Revoke(ctx context.Context, token string) error
}
