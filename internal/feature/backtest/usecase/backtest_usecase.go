// Package usecase は資産配分バックテストの実行と履歴管理を実装します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chart_backend/internal/feature/backtest/domain/entity"
	"chart_backend/internal/feature/backtest/domain/portfolio"
	candle "chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/shared/apperr"
)

const (
	// bufferDays は期間に加えて読み込む日足の余裕分です。
	bufferDays = 60
	// daysPerMonth は期間から読み込み本数を見積もる係数です。
	daysPerMonth = 30
	// fetchWorkers は資産ごとの日足読み込みの並列数です。
	fetchWorkers = 4
	// defaultSummary は資産構成を読めない履歴に表示する要約です。
	defaultSummary = "see details"
)

// CandleReader は日足を新しい順で返します。
type CandleReader interface {
	FindRecent(ctx context.Context, symbol string, limit int) ([]candle.Candle, error)
}

// HistoryStore はバックテスト履歴を保存します。
type HistoryStore interface {
	Save(ctx context.Context, rec *entity.HistoryRecord) error
	// ListByUser は新しい順に返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.HistoryRecord, error)
}

type backtestUsecase struct {
	candles CandleReader
	history HistoryStore
	now     func() time.Time
}

// NewBacktestUsecase は backtestUsecase を生成します。
func NewBacktestUsecase(candles CandleReader, history HistoryStore) *backtestUsecase {
	return &backtestUsecase{candles: candles, history: history, now: time.Now}
}

// Run はポートフォリオとベンチマークをシミュレーションし、userID が0でなければ履歴に記録します。
// ベンチマークの失敗はログに残すだけで、ポートフォリオの結果は返します。
func (u *backtestUsecase) Run(ctx context.Context, userID uint, req entity.Request) (entity.Report, error) {
	if req.SeedMoney <= 0 || req.PeriodMonths <= 0 || len(req.Assets) == 0 {
		return entity.Report{}, fmt.Errorf("%w: seedMoney, periodMonths and assets are required", apperr.ErrInvalidInput)
	}

	pf, err := u.simulate(ctx, req.SeedMoney, req.PeriodMonths, req.Assets)
	if err != nil {
		return entity.Report{}, err
	}
	report := entity.Report{Portfolio: pf}

	if req.BenchmarkSymbol != "" {
		bm, err := u.simulate(ctx, req.SeedMoney, req.PeriodMonths, []entity.Asset{{Symbol: req.BenchmarkSymbol, Weight: 100}})
		if err != nil {
			slog.Warn("benchmark simulation failed", "symbol", req.BenchmarkSymbol, "error", err)
		} else {
			report.Benchmark = &bm
		}
	}

	if userID != 0 {
		u.record(ctx, userID, req, pf)
	}
	return report, nil
}

func (u *backtestUsecase) simulate(ctx context.Context, seed int64, months int, assets []entity.Asset) (entity.Result, error) {
	limit := months*daysPerMonth + bufferDays

	var (
		mu        sync.Mutex
		histories = make(map[string][]candle.Candle, len(assets))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	seen := map[string]bool{}
	for _, a := range assets {
		if seen[a.Symbol] {
			continue
		}
		seen[a.Symbol] = true
		symbol := a.Symbol
		g.Go(func() error {
			cs, err := u.candles.FindRecent(gctx, symbol, limit)
			if err != nil {
				return fmt.Errorf("load %s: %w", symbol, err)
			}
			slices.Reverse(cs)
			mu.Lock()
			histories[symbol] = cs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return entity.Result{}, err
	}
	return portfolio.Simulate(seed, months, assets, histories)
}

// record は履歴を保存します。失敗しても実行結果には影響させません。
func (u *backtestUsecase) record(ctx context.Context, userID uint, req entity.Request, res entity.Result) {
	assetsJSON, err := json.Marshal(req.Assets)
	if err != nil {
		slog.Warn("backtest history encode failed", "user_id", userID, "error", err)
		return
	}
	rec := &entity.HistoryRecord{
		UserID:       userID,
		TestType:     entity.TestTypeAllocation,
		SeedMoney:    req.SeedMoney,
		PeriodMonths: req.PeriodMonths,
		AssetsJSON:   string(assetsJSON),
		FinalBalance: res.FinalBalance,
		TotalReturn:  res.TotalReturn,
		CAGR:         res.CAGR,
		MDD:          res.MDD,
		CreatedAt:    u.now(),
	}
	if err := u.history.Save(ctx, rec); err != nil {
		slog.Warn("backtest history save failed", "user_id", userID, "error", err)
	}
}

// ListHistory はユーザーの履歴を新しい順で返します。
func (u *backtestUsecase) ListHistory(ctx context.Context, userID uint) ([]entity.HistoryItem, error) {
	recs, err := u.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.HistoryItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, entity.HistoryItem{
			ID:           r.ID,
			CreatedAt:    r.CreatedAt,
			Summary:      Summarize(r.AssetsJSON),
			AssetsJSON:   r.AssetsJSON,
			SeedMoney:    r.SeedMoney,
			PeriodMonths: r.PeriodMonths,
			TotalReturn:  r.TotalReturn,
			FinalBalance: r.FinalBalance,
		})
	}
	return out, nil
}

// Summarize は保存された資産構成から "名前 (比重%)" 形式の要約を作ります。
// 読めない場合は汎用の要約を返します。
func Summarize(assetsJSON string) string {
	var assets []entity.Asset
	if err := json.Unmarshal([]byte(assetsJSON), &assets); err != nil || len(assets) == 0 {
		return defaultSummary
	}
	first := assets[0]
	name := first.Name
	if name == "" {
		name = first.Symbol
	}
	s := fmt.Sprintf("%s (%s%%)", name, strconv.FormatFloat(first.Weight, 'f', -1, 64))
	if len(assets) > 1 {
		s += fmt.Sprintf(" and %d more", len(assets)-1)
	}
	return s
}
