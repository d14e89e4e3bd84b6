// Package adapters provides the relational RankingStore.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"chart_backend/internal/feature/ranking/domain/entity"
	"chart_backend/internal/feature/ranking/usecase"
)

// RankingModel is one persisted ranking row.
type RankingModel struct {
	ID           uint   `gorm:"primaryKey"`
	Direction    string `gorm:"size:8;not null;index:idx_ranking_direction_rank,priority:1"`
	Rank         int    `gorm:"column:ranking;not null;index:idx_ranking_direction_rank,priority:2"`
	Symbol       string `gorm:"size:20;not null"`
	Name         string `gorm:"size:100"`
	Price        int64
	ChangeAmount int64
	ChangeRate   float64
	UpdatedAt    time.Time
}

func (RankingModel) TableName() string {
	return "stock_rankings"
}

type rankingGorm struct {
	db *gorm.DB
}

var _ usecase.RankingStore = (*rankingGorm)(nil)

func NewRankingRepository(db *gorm.DB) *rankingGorm {
	return &rankingGorm{db: db}
}

// ReplaceDirection deletes every row of dir and inserts entries in one transaction.
func (r *rankingGorm) ReplaceDirection(ctx context.Context, dir entity.Direction, entries []entity.RankingEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("direction = ?", string(dir)).Delete(&RankingModel{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		ms := make([]RankingModel, 0, len(entries))
		for _, e := range entries {
			ms = append(ms, RankingModel{
				Direction:    string(dir),
				Rank:         e.Rank,
				Symbol:       e.Symbol,
				Name:         e.Name,
				Price:        e.Price,
				ChangeAmount: e.ChangeAmount,
				ChangeRate:   e.ChangeRate,
				UpdatedAt:    e.AsOf,
			})
		}
		return tx.Create(&ms).Error
	})
}

func (r *rankingGorm) FindByDirection(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error) {
	var rows []RankingModel
	if err := r.db.WithContext(ctx).
		Where("direction = ?", string(dir)).
		Order("ranking ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.RankingEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.RankingEntry{
			Rank:         m.Rank,
			Symbol:       m.Symbol,
			Name:         m.Name,
			Price:        m.Price,
			ChangeAmount: m.ChangeAmount,
			ChangeRate:   m.ChangeRate,
			Direction:    entity.Direction(m.Direction),
			AsOf:         m.UpdatedAt,
		})
	}
	return out, nil
}
