// Package usecase は保有銘柄の登録と時価評価を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chart_backend/internal/feature/portfolio/domain/entity"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/ratelimiter"
)

// quoteInterval は時価取得で1銘柄ごとに空ける間隔です。
const quoteInterval = 50 * time.Millisecond

// HoldingStore は保有銘柄を保存します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type HoldingStore interface {
	// ListByUser は登録の古い順に返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Holding, error)
	Create(ctx context.Context, h *entity.Holding) error
	// Delete は userID が所有する id の行を削除し、削除件数を返します。
	Delete(ctx context.Context, userID, id uint) (int64, error)
}

// PriceSource は銘柄の現在値を返します。
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (int64, error)
}

// PriceFunc は関数を PriceSource として使うためのアダプターです。
type PriceFunc func(ctx context.Context, symbol string) (int64, error)

func (f PriceFunc) CurrentPrice(ctx context.Context, symbol string) (int64, error) {
	return f(ctx, symbol)
}

type portfolioUsecase struct {
	store   HoldingStore
	prices  PriceSource
	limiter ratelimiter.RateLimiterInterface
	now     func() time.Time
}

// NewPortfolioUsecase は portfolioUsecase を生成します。limiter が nil の場合は既定の間隔を使います。
func NewPortfolioUsecase(store HoldingStore, prices PriceSource, limiter ratelimiter.RateLimiterInterface) *portfolioUsecase {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(quoteInterval)
	}
	return &portfolioUsecase{store: store, prices: prices, limiter: limiter, now: time.Now}
}

// List は保有銘柄を現在値で評価した一覧と合計を返します。
// 現在値を取得できない銘柄は平均取得単価で評価します（損益0）。
// 同じ銘柄の時価は1回だけ取得します。
func (u *portfolioUsecase) List(ctx context.Context, userID uint) (entity.Summary, error) {
	holdings, err := u.store.ListByUser(ctx, userID)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("list holdings: %w", err)
	}

	quotes := make(map[string]int64, len(holdings))
	items := make([]entity.Valuation, 0, len(holdings))
	for _, h := range holdings {
		price, seen := quotes[h.Symbol]
		if !seen {
			price = u.quote(ctx, h.Symbol)
			quotes[h.Symbol] = price
		}
		priced := price > 0
		if !priced {
			price = h.AveragePrice
		}
		items = append(items, entity.Value(h, price, priced))
	}
	return entity.Summarize(items), nil
}

// quote は現在値を返します。取得できない場合は0です。
func (u *portfolioUsecase) quote(ctx context.Context, symbol string) int64 {
	if err := u.limiter.Wait(ctx); err != nil {
		return 0
	}
	price, err := u.prices.CurrentPrice(ctx, symbol)
	if err != nil {
		slog.Warn("holding quote failed, using average price", "symbol", symbol, "error", err)
		return 0
	}
	return price
}

// Add は保有銘柄を登録します。同じ銘柄の複数登録（買い増し）も別行として保存します。
func (u *portfolioUsecase) Add(ctx context.Context, userID uint, symbol, name string, averagePrice, quantity int64) (entity.Holding, error) {
	symbol = strings.TrimSpace(symbol)
	if userID == 0 || symbol == "" || averagePrice <= 0 || quantity <= 0 {
		return entity.Holding{}, fmt.Errorf("%w: symbol, positive price and quantity are required", apperr.ErrInvalidInput)
	}
	h := entity.Holding{
		UserID:       userID,
		Symbol:       symbol,
		Name:         strings.TrimSpace(name),
		AveragePrice: averagePrice,
		Quantity:     quantity,
		CreatedAt:    u.now(),
	}
	if err := u.store.Create(ctx, &h); err != nil {
		return entity.Holding{}, fmt.Errorf("create holding: %w", err)
	}
	slog.Info("holding added", "user_id", userID, "symbol", symbol, "id", h.ID)
	return h, nil
}

// Delete は保有銘柄を削除します。存在しない、または他ユーザーの行は ErrNotFound です。
func (u *portfolioUsecase) Delete(ctx context.Context, userID, id uint) error {
	n, err := u.store.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("holding %d: %w", id, apperr.ErrNotFound)
	}
	slog.Info("holding deleted", "user_id", userID, "id", id)
	return nil
}
