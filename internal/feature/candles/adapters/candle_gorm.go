// Package adapters provides the relational CandleStore for the candles feature.
package adapters

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/candles/usecase"
)

// insertBatchSize bounds the number of rows per INSERT statement.
const insertBatchSize = 500

type candleGorm struct {
	db *gorm.DB
}

var _ usecase.CandleStore = (*candleGorm)(nil)

func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

// CandleModel is one daily bar. (symbol, date) is unique.
type CandleModel struct {
	ID     uint   `gorm:"primaryKey"`
	Symbol string `gorm:"size:16;not null;uniqueIndex:idx_candle_symbol_date,priority:1"`
	Date   string `gorm:"size:8;not null;uniqueIndex:idx_candle_symbol_date,priority:2"`

	Open   int64 `gorm:"not null"`
	High   int64 `gorm:"not null"`
	Low    int64 `gorm:"not null"`
	Close  int64 `gorm:"not null"`
	Volume int64 `gorm:"not null;default:0"`

	MA5  *int64 `gorm:"column:ma5"`
	MA20 *int64 `gorm:"column:ma20"`
	MA60 *int64 `gorm:"column:ma60"`
}

func (CandleModel) TableName() string {
	return "stock_candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Symbol: e.Symbol,
		Date:   e.Date,
		Open:   e.Open,
		High:   e.High,
		Low:    e.Low,
		Close:  e.Close,
		Volume: e.Volume,
		MA5:    e.MA5,
		MA20:   e.MA20,
		MA60:   e.MA60,
	}
}

func (m CandleModel) toEntity() entity.Candle {
	return entity.Candle{
		Symbol: m.Symbol,
		Date:   m.Date,
		Open:   m.Open,
		High:   m.High,
		Low:    m.Low,
		Close:  m.Close,
		Volume: m.Volume,
		MA5:    m.MA5,
		MA20:   m.MA20,
		MA60:   m.MA60,
	}
}

func toEntities(rows []CandleModel) []entity.Candle {
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out
}

func (r *candleGorm) ExistingDates(ctx context.Context, symbol string, dates []string) (map[string]bool, error) {
	out := make(map[string]bool, len(dates))
	if len(dates) == 0 {
		return out, nil
	}
	var found []string
	if err := r.db.WithContext(ctx).Model(&CandleModel{}).
		Where("symbol = ? AND date IN ?", symbol, dates).
		Pluck("date", &found).Error; err != nil {
		return nil, err
	}
	for _, d := range found {
		out[d] = true
	}
	return out, nil
}

// InsertBatch inserts rows that do not exist yet. Conflicting rows are left untouched.
func (r *candleGorm) InsertBatch(ctx context.Context, candles []entity.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoNothing: true,
	}).CreateInBatches(&ms, insertBatchSize)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *candleGorm) FindRecent(ctx context.Context, symbol string, limit int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *candleGorm) FindBefore(ctx context.Context, symbol, date string, limit int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Where("symbol = ? AND date < ?", symbol, date).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *candleGorm) FindAllAscending(ctx context.Context, symbol string) ([]entity.Candle, error) {
	var rows []CandleModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *candleGorm) LatestDate(ctx context.Context, symbol string) (string, error) {
	var latest sql.NullString
	if err := r.db.WithContext(ctx).Model(&CandleModel{}).
		Where("symbol = ?", symbol).
		Select("MAX(date)").
		Scan(&latest).Error; err != nil {
		return "", err
	}
	return latest.String, nil
}

func (r *candleGorm) AllSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := r.db.WithContext(ctx).Model(&CandleModel{}).
		Distinct().
		Order("symbol").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// UpdateMovingAverages writes MA columns for every given row in one transaction.
// OHLCV columns are never touched.
func (r *candleGorm) UpdateMovingAverages(ctx context.Context, symbol string, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		e.Symbol = symbol
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"ma5", "ma20", "ma60"}),
		}).CreateInBatches(&ms, insertBatchSize).Error
	})
}
