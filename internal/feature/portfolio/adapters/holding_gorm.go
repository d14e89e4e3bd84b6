// Package adapters provides the relational HoldingStore.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"chart_backend/internal/feature/portfolio/domain/entity"
	"chart_backend/internal/feature/portfolio/usecase"
)

// HoldingModel is one holding row.
type HoldingModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"not null;index"`
	StockCode    string `gorm:"size:16;not null"`
	StockName    string `gorm:"size:100"`
	AveragePrice int64  `gorm:"not null"`
	Quantity     int64  `gorm:"not null"`
	CreatedAt    time.Time
}

func (HoldingModel) TableName() string {
	return "portfolio_holdings"
}

type holdingGorm struct {
	db *gorm.DB
}

var _ usecase.HoldingStore = (*holdingGorm)(nil)

func NewHoldingRepository(db *gorm.DB) *holdingGorm {
	return &holdingGorm{db: db}
}

func (r *holdingGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Holding, error) {
	var rows []HoldingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Holding, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func (r *holdingGorm) Create(ctx context.Context, h *entity.Holding) error {
	m := HoldingModel{
		UserID:       h.UserID,
		StockCode:    h.Symbol,
		StockName:    h.Name,
		AveragePrice: h.AveragePrice,
		Quantity:     h.Quantity,
		CreatedAt:    h.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	h.ID = m.ID
	h.CreatedAt = m.CreatedAt
	return nil
}

// Delete は所有者が一致する行のみを削除します。
func (r *holdingGorm) Delete(ctx context.Context, userID, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&HoldingModel{})
	return res.RowsAffected, res.Error
}

func toEntity(m HoldingModel) entity.Holding {
	return entity.Holding{
		ID:           m.ID,
		UserID:       m.UserID,
		Symbol:       m.StockCode,
		Name:         m.StockName,
		AveragePrice: m.AveragePrice,
		Quantity:     m.Quantity,
		CreatedAt:    m.CreatedAt,
	}
}
