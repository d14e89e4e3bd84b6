// Package usecase はユーザーごとの関心銘柄の管理を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/watchlist/domain/entity"
	"chart_backend/internal/shared/apperr"
)

// WatchlistStore は関心銘柄を保存します。(user, symbol) は一意です。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type WatchlistStore interface {
	// ListByUser は登録の古い順に返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Item, error)
	// Add は未登録の場合のみ保存し、新たに保存したかを返します。
	Add(ctx context.Context, item entity.Item) (bool, error)
	// Remove は削除した件数を返します。
	Remove(ctx context.Context, userID uint, symbol string) (int64, error)
	Exists(ctx context.Context, userID uint, symbol string) (bool, error)
}

// CandleReader は日足を新しい順で返します。
type CandleReader interface {
	FindRecent(ctx context.Context, symbol string, limit int) ([]candle.Candle, error)
}

type watchlistUsecase struct {
	store   WatchlistStore
	candles CandleReader
	now     func() time.Time
}

// NewWatchlistUsecase は watchlistUsecase を生成します。
func NewWatchlistUsecase(store WatchlistStore, candles CandleReader) *watchlistUsecase {
	return &watchlistUsecase{store: store, candles: candles, now: time.Now}
}

// List は関心銘柄を最新終値と前日比付きで返します。
// 日足の読み込みに失敗した銘柄は価格0として一覧に残します。
func (u *watchlistUsecase) List(ctx context.Context, userID uint) ([]entity.View, error) {
	items, err := u.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	out := make([]entity.View, 0, len(items))
	for _, it := range items {
		v := entity.View{Symbol: it.Symbol, Name: it.Name}
		recent, err := u.candles.FindRecent(ctx, it.Symbol, 2)
		if err != nil {
			slog.Warn("watchlist price lookup failed", "symbol", it.Symbol, "user_id", userID, "error", err)
		} else {
			v.Price, v.ChangeRate = priceAndChange(recent)
		}
		out = append(out, v)
	}
	return out, nil
}

// priceAndChange は新しい順の日足から最新終値と前日比（%、小数2桁）を求めます。
func priceAndChange(recent []candle.Candle) (int64, float64) {
	if len(recent) == 0 {
		return 0, 0
	}
	price := recent[0].Close
	if len(recent) < 2 || recent[1].Close == 0 {
		return price, 0
	}
	prev := recent[1].Close
	rate := float64(price-prev) / float64(prev) * 100
	return price, math.Round(rate*100) / 100
}

// Add は関心銘柄を登録します。登録済みの場合は何もしません。
func (u *watchlistUsecase) Add(ctx context.Context, userID uint, symbol, name string) error {
	symbol = strings.TrimSpace(symbol)
	if userID == 0 || symbol == "" {
		return fmt.Errorf("%w: user and symbol are required", apperr.ErrInvalidInput)
	}
	added, err := u.store.Add(ctx, entity.Item{
		UserID:    userID,
		Symbol:    symbol,
		Name:      strings.TrimSpace(name),
		CreatedAt: u.now(),
	})
	if err != nil {
		return fmt.Errorf("add watchlist: %w", err)
	}
	if added {
		slog.Info("watchlist item added", "user_id", userID, "symbol", symbol)
	}
	return nil
}

// Remove は関心銘柄を削除します。未登録の場合も成功として扱います。
func (u *watchlistUsecase) Remove(ctx context.Context, userID uint, symbol string) error {
	n, err := u.store.Remove(ctx, userID, strings.TrimSpace(symbol))
	if err != nil {
		return fmt.Errorf("remove watchlist: %w", err)
	}
	if n > 0 {
		slog.Info("watchlist item removed", "user_id", userID, "symbol", symbol)
	}
	return nil
}

// IsWatched は symbol が登録済みかを返します。
func (u *watchlistUsecase) IsWatched(ctx context.Context, userID uint, symbol string) (bool, error) {
	return u.store.Exists(ctx, userID, strings.TrimSpace(symbol))
}
