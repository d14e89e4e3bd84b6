// Package adapters provides the relational WatchlistStore.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chart_backend/internal/feature/watchlist/domain/entity"
	"chart_backend/internal/feature/watchlist/usecase"
)

// WatchlistModel is one followed symbol. (user_id, stock_code) is unique.
type WatchlistModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_watchlist_user_code"`
	StockCode string `gorm:"size:16;not null;uniqueIndex:idx_watchlist_user_code"`
	StockName string `gorm:"size:100"`
	CreatedAt time.Time
}

func (WatchlistModel) TableName() string {
	return "watchlists"
}

type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.WatchlistStore = (*watchlistGorm)(nil)

func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

func (r *watchlistGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Item, error) {
	var rows []WatchlistModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Item, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Item{UserID: m.UserID, Symbol: m.StockCode, Name: m.StockName, CreatedAt: m.CreatedAt})
	}
	return out, nil
}

// Add は (user_id, stock_code) が重複する場合は何もせず false を返します。
func (r *watchlistGorm) Add(ctx context.Context, item entity.Item) (bool, error) {
	m := WatchlistModel{
		UserID:    item.UserID,
		StockCode: item.Symbol,
		StockName: item.Name,
		CreatedAt: item.CreatedAt,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "stock_code"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *watchlistGorm) Remove(ctx context.Context, userID uint, symbol string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND stock_code = ?", userID, symbol).
		Delete(&WatchlistModel{})
	return res.RowsAffected, res.Error
}

func (r *watchlistGorm) Exists(ctx context.Context, userID uint, symbol string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&WatchlistModel{}).
		Where("user_id = ? AND stock_code = ?", userID, symbol).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
