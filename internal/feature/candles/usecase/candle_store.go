package usecase

import (
	"context"

	"chart_backend/internal/feature/candles/domain/entity"
)

// CandleReader は日足データの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleReader interface {
	// FindRecent は新しい順に最大 limit 件の日足を返します。
	FindRecent(ctx context.Context, symbol string, limit int) ([]entity.Candle, error)
	// FindBefore は date（YYYYMMDD）より前の日足を新しい順に最大 limit 件返します。
	FindBefore(ctx context.Context, symbol, date string, limit int) ([]entity.Candle, error)
}

// CandleStore は日足データの永続化レイヤーを抽象化します。
// (symbol, date) の一意性はストレージ側の制約で保証されます。
type CandleStore interface {
	CandleReader
	// ExistingDates は dates のうち既に保存済みの日付を返します。
	ExistingDates(ctx context.Context, symbol string, dates []string) (map[string]bool, error)
	// InsertBatch は未保存の行のみを挿入し、挿入件数を返します。既存行は上書きしません。
	InsertBatch(ctx context.Context, candles []entity.Candle) (int, error)
	// FindAllAscending は銘柄の全日足を古い順に返します。
	FindAllAscending(ctx context.Context, symbol string) ([]entity.Candle, error)
	// LatestDate は最新の保存日付を返します。データがない場合は空文字です。
	LatestDate(ctx context.Context, symbol string) (string, error)
	// AllSymbols は日足が1件以上ある銘柄コードを返します。
	AllSymbols(ctx context.Context) ([]string, error)
	// UpdateMovingAverages は candles の MA 値を1回の一括書き込みで保存します。
	UpdateMovingAverages(ctx context.Context, symbol string, candles []entity.Candle) error
}

// PriceSource は外部APIから日足を取得するリポジトリのインターフェイスです。
type PriceSource interface {
	// GetDailyPrices は [start, end]（YYYYMMDD）の日足を返します。順序は問いません。
	GetDailyPrices(ctx context.Context, symbol, start, end string) ([]entity.Candle, error)
}
