package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart_backend/internal/feature/token/domain/entity"
	"chart_backend/internal/shared/apperr"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestTokenRedis_GetEmpty(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewTokenRedis(client, "kis-token")

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTokenRedis_PutThenGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewTokenRedis(client, "kis-token")
	ctx := context.Background()
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, repo.Put(ctx, &entity.CachedToken{Value: "abc", ExpiresAt: expires}))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Value)
	assert.True(t, expires.Equal(got.ExpiresAt))

	assert.True(t, mr.Exists("kis-token:access"))
	assert.Greater(t, mr.TTL("kis-token:access"), 59*time.Minute)
}

func TestTokenRedis_ExpiredTokenRejected(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewTokenRedis(client, "kis-token")

	err := repo.Put(context.Background(), &entity.CachedToken{Value: "abc", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

func TestTokenRedis_KeyExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewTokenRedis(client, "kis-token")
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &entity.CachedToken{Value: "abc", ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTokenRedis_MalformedPayload(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewTokenRedis(client, "kis-token")
	require.NoError(t, mr.Set("kis-token:access", "not-json"))

	_, err := repo.Get(context.Background())
	assert.Error(t, err)
}
