package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/utils"
)

const redisKeyPrefix = "session:"

// RedisStore hands out opaque tokens and keeps the identity server side.
// Keys are hashes of the token so a leaked keyspace does not leak sessions.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type redisSession struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context, identity models.Identity) (string, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	payload, err := json.Marshal(redisSession{
		UserID:   identity.UserID,
		Username: identity.Username,
		Roles:    identity.Capabilities.Names(),
	})
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, key(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	payload, err := s.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	caps, err := models.ParseCapabilities(stored.Roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &models.Identity{
		UserID:       stored.UserID,
		Username:     stored.Username,
		Capabilities: caps,
	}, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	deleted, err := s.client.Del(ctx, key(token)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		return ErrInvalidToken
	}
	return nil
}

func key(token string) string {
	return redisKeyPrefix + utils.HashString(token)
}

// NewRedisClient connects and pings, failing fast on a bad address.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
