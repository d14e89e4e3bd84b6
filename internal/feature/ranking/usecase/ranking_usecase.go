// Package usecase は騰落率ランキングの定期更新と参照を実装します。
package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"chart_backend/internal/feature/ranking/domain/entity"
	"chart_backend/internal/shared/ratelimiter"
)

// MajorSymbols は上流ランキングが取得できない場合に個別に時価を取得する大型株です。
var MajorSymbols = []string{
	"005930", "000660", "373220", "207940", "005380",
	"000270", "068270", "005490", "035420", "035720",
}

// fallbackInterval は代替取得で1銘柄ごとに空ける間隔です。
const fallbackInterval = 50 * time.Millisecond

// refreshInFlight は共有更新の中で使われる ctx の目印です。
type refreshInFlight struct{}

// RankingSource は上流のランキングと時価を取得します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type RankingSource interface {
	FetchRanking(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error)
	FetchQuote(ctx context.Context, symbol string) (entity.Quote, error)
}

// RankingStore はランキングのスナップショットを保存します。
type RankingStore interface {
	// ReplaceDirection は dir の行をすべて削除してから entries を挿入します（1トランザクション）。
	ReplaceDirection(ctx context.Context, dir entity.Direction, entries []entity.RankingEntry) error
	// FindByDirection は dir の行を順位順で返します。
	FindByDirection(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error)
}

// RankingRefresher はランキングの更新とキャッシュ参照を行います。
type RankingRefresher struct {
	source     RankingSource
	store      RankingStore
	limiter    ratelimiter.RateLimiterInterface
	fallback   []string
	now        func() time.Time
	refreshing atomic.Bool
	group      singleflight.Group
}

// NewRankingRefresher は RankingRefresher を生成します。limiter が nil の場合は代替取得の間隔に既定値を使います。
func NewRankingRefresher(source RankingSource, store RankingStore, limiter ratelimiter.RateLimiterInterface) *RankingRefresher {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(fallbackInterval)
	}
	return &RankingRefresher{
		source:   source,
		store:    store,
		limiter:  limiter,
		fallback: MajorSymbols,
		now:      time.Now,
	}
}

// Refresh は上昇・下落の両方向のスナップショットを取得して置き換えます。
// 片方向の失敗はもう一方の更新を妨げません。取得できなかった方向は既存のスナップショットを残します。
func (r *RankingRefresher) Refresh(ctx context.Context) error {
	asOf := r.now()
	var errs []error
	counts := map[entity.Direction]int{}
	for _, dir := range entity.Directions {
		entries, err := r.fetch(ctx, dir)
		if err != nil {
			slog.Error("ranking fetch failed", "direction", dir, "error", err)
			errs = append(errs, err)
			continue
		}
		for i := range entries {
			entries[i].Direction = dir
			entries[i].AsOf = asOf
		}
		if err := r.store.ReplaceDirection(ctx, dir, entries); err != nil {
			slog.Error("ranking store failed", "direction", dir, "error", err)
			errs = append(errs, fmt.Errorf("store %s ranking: %w", dir, err))
			continue
		}
		counts[dir] = len(entries)
	}
	slog.Info("ranking refreshed",
		"rising", counts[entity.DirectionRising],
		"falling", counts[entity.DirectionFalling],
		"failed", len(errs))
	return errors.Join(errs...)
}

// fetch は上流ランキングを取得し、失敗または空の場合は代替取得に切り替えます。
func (r *RankingRefresher) fetch(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error) {
	entries, err := r.source.FetchRanking(ctx, dir)
	if err == nil && len(entries) > 0 {
		return entries, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("ranking upstream failed, using fallback", "direction", dir, "error", err)
	} else {
		slog.Warn("ranking upstream returned no rows, using fallback", "direction", dir)
	}

	fb, fbErr := r.fetchFallback(ctx, dir)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	if len(fb) == 0 {
		return nil, fmt.Errorf("no %s ranking available: %w", dir, cmp.Or(err, errors.New("fallback returned no quotes")))
	}
	return fb, nil
}

// fetchFallback は大型株を1銘柄ずつ取得し、騰落率で並べて順位を振ります。
// 上昇は降順、下落は昇順です。個別銘柄の失敗は読み飛ばします。
func (r *RankingRefresher) fetchFallback(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error) {
	out := make([]entity.RankingEntry, 0, len(r.fallback))
	for _, symbol := range r.fallback {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		q, err := r.source.FetchQuote(ctx, symbol)
		if err != nil {
			slog.Warn("fallback quote failed", "symbol", symbol, "error", err)
			continue
		}
		out = append(out, entity.RankingEntry{
			Symbol:       q.Symbol,
			Name:         q.Name,
			Price:        q.Price,
			ChangeAmount: q.ChangeAmount,
			ChangeRate:   q.ChangeRate,
			Direction:    dir,
		})
	}

	slices.SortStableFunc(out, func(a, b entity.RankingEntry) int {
		if dir == entity.DirectionFalling {
			return cmp.Compare(a.ChangeRate, b.ChangeRate)
		}
		return cmp.Compare(b.ChangeRate, a.ChangeRate)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// GetCached は保存済みのスナップショットを返します。
// 空の場合は同期的に更新してから読み直します。実行中の更新があればその完了を待ちます。
// 更新処理の内側から呼ばれた場合は待たずに現状を返します。
func (r *RankingRefresher) GetCached(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error) {
	entries, err := r.store.FindByDirection(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 || ctx.Value(refreshInFlight{}) != nil {
		return entries, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-r.shared(ctx):
		if res.Err != nil {
			slog.Warn("cold ranking refresh incomplete", "direction", dir, "error", res.Err)
		}
	}
	return r.store.FindByDirection(ctx, dir)
}

// StartRefresh はランキング更新をバックグラウンドで開始します。既に実行中なら false を返します。
func (r *RankingRefresher) StartRefresh(ctx context.Context) bool {
	if !r.refreshing.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer r.refreshing.Store(false)
		<-r.shared(ctx)
	}()
	return true
}

// shared は呼び出し元のキャンセルから切り離した Refresh を1本にまとめて実行します。
func (r *RankingRefresher) shared(ctx context.Context) <-chan singleflight.Result {
	return r.group.DoChan("refresh", func() (_ any, err error) {
		defer func() {
			if p := recover(); p != nil {
				slog.Error("ranking refresh panicked", "panic", p)
				err = fmt.Errorf("ranking refresh panicked: %v", p)
			}
		}()
		flightCtx := context.WithValue(context.WithoutCancel(ctx), refreshInFlight{}, true)
		return nil, r.Refresh(flightCtx)
	})
}
