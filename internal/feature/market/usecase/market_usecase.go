// Package usecase は市場概況（指数・為替）の取得を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"chart_backend/internal/feature/market/domain/entity"
	"chart_backend/internal/shared/apperr"
)

// IndexSource は業種指数の現在値を取得します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type IndexSource interface {
	FetchIndex(ctx context.Context, code entity.IndexCode) (entity.IndexInfo, error)
}

// RateSource は1ドルあたりのウォン相場を取得します。
type RateSource interface {
	FetchUSDKRW(ctx context.Context) (float64, error)
}

type marketUsecase struct {
	indices IndexSource
	rates   []RateSource
}

// NewMarketUsecase は marketUsecase を生成します。rates は先頭から順に試します。
func NewMarketUsecase(indices IndexSource, rates ...RateSource) *marketUsecase {
	return &marketUsecase{indices: indices, rates: rates}
}

// Indices は表示対象の全指数を返します。取得に失敗した指数は UnavailableIndex になります。
func (u *marketUsecase) Indices(ctx context.Context) map[string]entity.IndexInfo {
	var mu sync.Mutex
	out := make(map[string]entity.IndexInfo, len(entity.Indices))

	var g errgroup.Group
	for name, code := range entity.Indices {
		g.Go(func() error {
			info, err := u.indices.FetchIndex(ctx, code)
			if err != nil {
				slog.Warn("index fetch failed", "index", name, "code", code, "error", err)
				info = entity.UnavailableIndex()
			}
			mu.Lock()
			out[name] = info
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ExchangeRate はUSD/KRW相場を返します。すべての取得元が失敗した場合は ErrUpstreamRequest です。
func (u *marketUsecase) ExchangeRate(ctx context.Context) (float64, error) {
	var errs []error
	for i, src := range u.rates {
		rate, err := src.FetchUSDKRW(ctx)
		if err == nil && rate > 0 {
			return rate, nil
		}
		if err == nil {
			err = fmt.Errorf("%w: non-positive rate %v", apperr.ErrParse, rate)
		}
		slog.Warn("exchange rate source failed", "source", i, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return 0, fmt.Errorf("%w: no exchange rate available: %w", apperr.ErrUpstreamRequest, errors.Join(errs...))
}
