// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chart_backend/internal/feature/symbollist/domain/entity"
	"chart_backend/internal/feature/symbollist/usecase"
)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Search はコードの前方一致または銘柄名の部分一致でアクティブな銘柄を検索します。
func (r *symbolGorm) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	q := escapeLike(query)
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(code LIKE ? ESCAPE '\\' OR name LIKE ? ESCAPE '\\')", q+"%", "%"+q+"%").
		Order("sort_key ASC").
		Limit(limit).
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// Upsert は銘柄マスタをコード単位で登録・更新します。
func (r *symbolGorm) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "market", "is_active", "sort_key", "updated_at"}),
		}).
		CreateInBatches(&symbols, 500).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Count は銘柄マスタの件数を返します。
func (r *symbolGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Symbol{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
