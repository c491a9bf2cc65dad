package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/utils"
)

// JWTStore issues self-contained HS256 tokens. Revocation is kept in process
// memory until the token would have expired anyway.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

func NewJWTStore(secret string, ttl time.Duration) *JWTStore {
	return &JWTStore{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (s *JWTStore) Issue(ctx context.Context, identity models.Identity) (string, error) {
	token, _, err := utils.GenerateJWT(s.secret, identity.UserID, identity.Username, identity.Capabilities.Names(), s.ttl)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *JWTStore) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := utils.ValidateJWT(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}

	caps, err := models.ParseCapabilities(claims.Roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &models.Identity{
		UserID:       claims.UserID,
		Username:     claims.Username,
		Capabilities: caps,
	}, nil
}

func (s *JWTStore) Revoke(ctx context.Context, token string) error {
	claims, err := utils.ValidateJWT(s.secret, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}
