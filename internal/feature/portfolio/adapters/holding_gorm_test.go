package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chart_backend/internal/feature/portfolio/domain/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&HoldingModel{}))
	return db
}

func TestHoldingGorm_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewHoldingRepository(setupTestDB(t))
	base := time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)

	first := &entity.Holding{UserID: 7, Symbol: "005930", Name: "Samsung", AveragePrice: 50000, Quantity: 10, CreatedAt: base}
	second := &entity.Holding{UserID: 7, Symbol: "005930", Name: "Samsung", AveragePrice: 60000, Quantity: 5, CreatedAt: base.Add(time.Hour)}
	other := &entity.Holding{UserID: 8, Symbol: "000660", AveragePrice: 1, Quantity: 1, CreatedAt: base}
	for _, h := range []*entity.Holding{first, second, other} {
		require.NoError(t, repo.Create(ctx, h))
		assert.NotZero(t, h.ID)
	}

	got, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, int64(60000), got[1].AveragePrice)
	assert.Equal(t, int64(5), got[1].Quantity)
	assert.Equal(t, "Samsung", got[1].Name)
}

func TestHoldingGorm_DeleteChecksOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewHoldingRepository(setupTestDB(t))
	h := &entity.Holding{UserID: 7, Symbol: "005930", AveragePrice: 1, Quantity: 1, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, h))

	n, err := repo.Delete(ctx, 8, h.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Delete(ctx, 7, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, left)
}
