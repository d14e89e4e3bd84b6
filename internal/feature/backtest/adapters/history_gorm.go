// Package adapters provides the relational HistoryStore for the backtest feature.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"chart_backend/internal/feature/backtest/domain/entity"
	"chart_backend/internal/feature/backtest/usecase"
)

// HistoryModel is one persisted backtest run.
type HistoryModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"not null;index"`
	TestType     string `gorm:"size:20;not null"`
	SeedMoney    int64  `gorm:"not null"`
	PeriodMonths int    `gorm:"not null"`
	AssetsJSON   string `gorm:"column:assets_json;type:text"`
	FinalBalance int64
	TotalReturn  float64
	CAGR         float64 `gorm:"column:cagr"`
	MDD          float64 `gorm:"column:mdd"`
	CreatedAt    time.Time
}

func (HistoryModel) TableName() string {
	return "backtest_histories"
}

type historyGorm struct {
	db *gorm.DB
}

var _ usecase.HistoryStore = (*historyGorm)(nil)

func NewHistoryRepository(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

func (r *historyGorm) Save(ctx context.Context, rec *entity.HistoryRecord) error {
	m := HistoryModel{
		UserID:       rec.UserID,
		TestType:     rec.TestType,
		SeedMoney:    rec.SeedMoney,
		PeriodMonths: rec.PeriodMonths,
		AssetsJSON:   rec.AssetsJSON,
		FinalBalance: rec.FinalBalance,
		TotalReturn:  rec.TotalReturn,
		CAGR:         rec.CAGR,
		MDD:          rec.MDD,
		CreatedAt:    rec.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}

func (r *historyGorm) ListByUser(ctx context.Context, userID uint) ([]entity.HistoryRecord, error) {
	var rows []HistoryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.HistoryRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.HistoryRecord{
			ID:           m.ID,
			UserID:       m.UserID,
			TestType:     m.TestType,
			SeedMoney:    m.SeedMoney,
			PeriodMonths: m.PeriodMonths,
			AssetsJSON:   m.AssetsJSON,
			FinalBalance: m.FinalBalance,
			TotalReturn:  m.TotalReturn,
			CAGR:         m.CAGR,
			MDD:          m.MDD,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out, nil
}
