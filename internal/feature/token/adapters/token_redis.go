package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chart_backend/internal/feature/token/domain/entity"
	"chart_backend/internal/feature/token/usecase"
	"chart_backend/internal/shared/apperr"
)

// TokenRedis implements usecase.TokenStore using Redis.
type TokenRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.TokenStore = (*TokenRedis)(nil)

// NewTokenRedis creates a new TokenRedis instance.
func NewTokenRedis(client *redis.Client, prefix string) *TokenRedis {
	return &TokenRedis{client: client, prefix: prefix}
}

func (r *TokenRedis) key() string {
	return fmt.Sprintf("%s:access", r.prefix)
}

// Get retrieves the cached token.
func (r *TokenRedis) Get(ctx context.Context) (*entity.CachedToken, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	var token entity.CachedToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// Put stores the token with a TTL matching its expiry.
func (r *TokenRedis) Put(ctx context.Context, token *entity.CachedToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}
	return r.client.Set(ctx, r.key(), data, ttl).Err()
}
