package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/candles/domain/series"
	"chart_backend/internal/shared/datefmt"
	"chart_backend/internal/shared/envconfig"
	"chart_backend/internal/shared/ratelimiter"
)

// CollectorConfig は履歴収集の挙動を決める設定値です。
type CollectorConfig struct {
	WindowDays      int           // 1リクエストで取得する暦日数
	HistoryYears    int           // 今日から遡る年数
	FloorDate       string        // YYYYMMDD。設定時は HistoryYears より優先
	RequestInterval time.Duration // 上流リクエスト間の最小間隔
	ErrorBackoff    time.Duration // ウィンドウ失敗後の待機
	Workers         int           // InitAll の並列数
	InitPause       time.Duration // InitAll の銘柄ごとの待機
	ChunkSize       int           // UpdateAll のチャンクサイズ
	SymbolPause     time.Duration // UpdateAll の銘柄ごとの待機
	ChunkPause      time.Duration // UpdateAll のチャンク間の待機
	BulkTimeout     time.Duration // InitAll/UpdateAll 全体のタイムアウト
	MAWorkers       int           // RecalculateAllMAs の並列数
	MABulkTimeout   time.Duration // RecalculateAllMAs 全体のタイムアウト
}

// DefaultCollectorConfig は既定の収集設定を返します。
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		WindowDays:      100,
		HistoryYears:    20,
		RequestInterval: 500 * time.Millisecond,
		ErrorBackoff:    2 * time.Second,
		Workers:         3,
		InitPause:       1500 * time.Millisecond,
		ChunkSize:       50,
		SymbolPause:     100 * time.Millisecond,
		ChunkPause:      time.Second,
		BulkTimeout:     24 * time.Hour,
		MAWorkers:       20,
		MABulkTimeout:   2 * time.Hour,
	}
}

// LoadCollectorConfig は環境変数から収集設定を読み込みます。
func LoadCollectorConfig() CollectorConfig {
	d := DefaultCollectorConfig()
	return CollectorConfig{
		WindowDays:      envconfig.Int("COLLECT_WINDOW_DAYS", d.WindowDays),
		HistoryYears:    envconfig.Int("COLLECT_HISTORY_YEARS", d.HistoryYears),
		FloorDate:       envconfig.String("COLLECT_FLOOR_DATE", ""),
		RequestInterval: envconfig.Duration("COLLECT_REQUEST_INTERVAL", d.RequestInterval),
		ErrorBackoff:    envconfig.Duration("COLLECT_ERROR_BACKOFF", d.ErrorBackoff),
		Workers:         envconfig.Int("COLLECT_WORKERS", d.Workers),
		InitPause:       envconfig.Duration("COLLECT_INIT_PAUSE", d.InitPause),
		ChunkSize:       envconfig.Int("COLLECT_CHUNK_SIZE", d.ChunkSize),
		SymbolPause:     envconfig.Duration("COLLECT_SYMBOL_PAUSE", d.SymbolPause),
		ChunkPause:      envconfig.Duration("COLLECT_CHUNK_PAUSE", d.ChunkPause),
		BulkTimeout:     envconfig.Duration("COLLECT_BULK_TIMEOUT", d.BulkTimeout),
		MAWorkers:       envconfig.Int("MA_WORKERS", d.MAWorkers),
		MABulkTimeout:   envconfig.Duration("MA_BULK_TIMEOUT", d.MABulkTimeout),
	}
}

// CollectResult は1銘柄の収集結果です。
type CollectResult struct {
	Symbol        string
	Mode          string // "full" | "incremental" | "skipped"
	Inserted      int
	Windows       int
	FailedWindows int
}

// ItemResult はバルク処理における1銘柄の結果です。Err が nil なら成功です。
type ItemResult struct {
	CollectResult
	Err error
}

// BatchReport はバルク処理の結果をまとめたものです。
type BatchReport struct {
	Job      string
	Items    []ItemResult
	Duration time.Duration
}

// Failed は失敗した銘柄数を返します。
func (r BatchReport) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

// ErrJobRunning は同じバルクジョブが既に実行中の場合に返されます。
var ErrJobRunning = errors.New("job already running")

// Collector は外部APIから日足を収集し、保存と移動平均の再計算を行うユースケースです。
type Collector struct {
	prices  PriceSource
	store   CandleStore
	limiter ratelimiter.RateLimiterInterface
	cfg     CollectorConfig
	now     func() time.Time

	initRunning   atomic.Bool
	updateRunning atomic.Bool
	maRunning     atomic.Bool
}

// NewCollector は Collector を生成します。limiter が nil の場合は RequestInterval から生成します。
func NewCollector(prices PriceSource, store CandleStore, limiter ratelimiter.RateLimiterInterface, cfg CollectorConfig) *Collector {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultCollectorConfig().WindowDays
	}
	if cfg.HistoryYears <= 0 {
		cfg.HistoryYears = DefaultCollectorConfig().HistoryYears
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MAWorkers <= 0 {
		cfg.MAWorkers = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultCollectorConfig().ChunkSize
	}
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(cfg.RequestInterval)
	}
	return &Collector{prices: prices, store: store, limiter: limiter, cfg: cfg, now: time.Now}
}

// floor は全件収集で遡る下限日付を返します。
func (c *Collector) floor(today time.Time) time.Time {
	if c.cfg.FloorDate != "" {
		if t, err := datefmt.Parse(c.cfg.FloorDate); err == nil {
			return t
		}
		slog.Warn("invalid floor date, using history years", "floor_date", c.cfg.FloorDate)
	}
	return today.AddDate(-c.cfg.HistoryYears, 0, 0)
}

// CollectFull は今日から下限日付まで固定長ウィンドウで遡り、未保存の日足をすべて保存します。
// 1ウィンドウの失敗は記録して次へ進みます。最後に移動平均を再計算します。
func (c *Collector) CollectFull(ctx context.Context, symbol string) (CollectResult, error) {
	res := CollectResult{Symbol: symbol, Mode: "full"}
	today := datefmt.Today(c.now())
	floor := c.floor(today)
	window := c.cfg.WindowDays

	slog.Info("full collection started", "symbol", symbol, "floor", datefmt.Format(floor))

	end := today
	for {
		start := end.AddDate(0, 0, -window)
		if start.Before(floor) {
			break
		}
		res.Windows++

		n, err := c.collectWindow(ctx, symbol, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.FailedWindows++
			slog.Error("window collection failed",
				"symbol", symbol, "start", datefmt.Format(start), "end", datefmt.Format(end), "error", err)
			if err := sleep(ctx, c.cfg.ErrorBackoff); err != nil {
				return res, err
			}
		} else {
			res.Inserted += n
		}

		// 取得結果に関わらずカーソルは必ず進める
		end = start.AddDate(0, 0, -1)
	}

	if err := c.RecalculateMA(ctx, symbol); err != nil {
		return res, err
	}
	slog.Info("full collection finished",
		"symbol", symbol, "inserted", res.Inserted, "windows", res.Windows, "failed_windows", res.FailedWindows)
	return res, nil
}

// CollectIncremental は最新保存日の翌日から今日までを取得します。
// 保存済みデータがない場合は CollectFull に委譲します。
func (c *Collector) CollectIncremental(ctx context.Context, symbol string) (CollectResult, error) {
	last, err := c.store.LatestDate(ctx, symbol)
	if err != nil {
		return CollectResult{Symbol: symbol}, fmt.Errorf("latest date for %s: %w", symbol, err)
	}
	if last == "" {
		return c.CollectFull(ctx, symbol)
	}
	lastT, err := datefmt.Parse(last)
	if err != nil {
		return CollectResult{Symbol: symbol}, fmt.Errorf("stored date %q for %s: %w", last, symbol, err)
	}

	res := CollectResult{Symbol: symbol, Mode: "incremental"}
	today := datefmt.Today(c.now())
	start := lastT.AddDate(0, 0, 1)
	if start.After(today) {
		res.Mode = "skipped"
		return res, nil
	}

	res.Windows = 1
	n, err := c.collectWindow(ctx, symbol, start, today)
	if err != nil {
		res.FailedWindows = 1
		slog.Error("incremental collection failed",
			"symbol", symbol, "start", datefmt.Format(start), "end", datefmt.Format(today), "error", err)
		return res, err
	}
	res.Inserted = n

	if err := c.RecalculateMA(ctx, symbol); err != nil {
		return res, err
	}
	return res, nil
}

// collectWindow は1ウィンドウ分を取得し、未保存の行のみを保存します。
func (c *Collector) collectWindow(ctx context.Context, symbol string, start, end time.Time) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	rows, err := c.prices.GetDailyPrices(ctx, symbol, datefmt.Format(start), datefmt.Format(end))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
	}
	existing, err := c.store.ExistingDates(ctx, symbol, dates)
	if err != nil {
		return 0, err
	}

	fresh := make([]entity.Candle, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.Date == "" || existing[r.Date] || seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		r.Symbol = symbol
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	return c.store.InsertBatch(ctx, fresh)
}

// RecalculateMA は銘柄の全日足の移動平均を再計算し、一括で保存します。
func (c *Collector) RecalculateMA(ctx context.Context, symbol string) error {
	candles, err := c.store.FindAllAscending(ctx, symbol)
	if err != nil {
		return fmt.Errorf("load candles for %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return nil
	}
	series.ComputeMA(candles)
	if err := c.store.UpdateMovingAverages(ctx, symbol, candles); err != nil {
		return fmt.Errorf("save moving averages for %s: %w", symbol, err)
	}
	return nil
}

// InitAll は全銘柄を限られた並列数で初期化します。
// 今日まで保存済みの銘柄はスキップ、未保存なら全件、それ以外は差分収集します。
// 個々の銘柄の失敗は他の銘柄に影響しません。
func (c *Collector) InitAll(ctx context.Context, symbols []string) BatchReport {
	ctx, cancel := withTimeout(ctx, c.cfg.BulkTimeout)
	defer cancel()

	started := time.Now()
	report := BatchReport{Job: "init-all"}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.cfg.Workers)

	slog.Info("init-all started", "symbols", len(symbols), "workers", c.cfg.Workers)
	for _, s := range symbols {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.initOne(ctx, s)
			if err != nil {
				slog.Error("init failed", "symbol", s, "error", err)
			}
			mu.Lock()
			report.Items = append(report.Items, ItemResult{CollectResult: res, Err: err})
			mu.Unlock()
			_ = sleep(ctx, c.cfg.InitPause)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(started)
	slog.Info("init-all finished", "symbols", len(report.Items), "failed", report.Failed(), "duration", report.Duration)
	return report
}

func (c *Collector) initOne(ctx context.Context, symbol string) (CollectResult, error) {
	last, err := c.store.LatestDate(ctx, symbol)
	if err != nil {
		return CollectResult{Symbol: symbol}, err
	}
	switch last {
	case datefmt.Format(datefmt.Today(c.now())):
		return CollectResult{Symbol: symbol, Mode: "skipped"}, nil
	case "":
		return c.CollectFull(ctx, symbol)
	default:
		return c.CollectIncremental(ctx, symbol)
	}
}

// UpdateAll は保存済みの全銘柄をチャンク単位で差分更新します。
func (c *Collector) UpdateAll(ctx context.Context) (BatchReport, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.BulkTimeout)
	defer cancel()

	symbols, err := c.store.AllSymbols(ctx)
	if err != nil {
		return BatchReport{Job: "update-all"}, fmt.Errorf("list symbols: %w", err)
	}

	started := time.Now()
	report := BatchReport{Job: "update-all", Items: make([]ItemResult, 0, len(symbols))}
	slog.Info("update-all started", "symbols", len(symbols), "chunk_size", c.cfg.ChunkSize)

	for i := 0; i < len(symbols); i += c.cfg.ChunkSize {
		chunk := symbols[i:min(i+c.cfg.ChunkSize, len(symbols))]
		slog.Info("update-all chunk", "from", i+1, "to", i+len(chunk))

		for _, s := range chunk {
			res, err := c.CollectIncremental(ctx, s)
			if err != nil {
				slog.Error("update failed", "symbol", s, "error", err)
			}
			report.Items = append(report.Items, ItemResult{CollectResult: res, Err: err})
			if err := sleep(ctx, c.cfg.SymbolPause); err != nil {
				return c.finish(report, started), err
			}
		}
		if i+c.cfg.ChunkSize >= len(symbols) {
			break
		}
		if err := sleep(ctx, c.cfg.ChunkPause); err != nil {
			return c.finish(report, started), err
		}
	}
	return c.finish(report, started), nil
}

func (c *Collector) finish(report BatchReport, started time.Time) BatchReport {
	report.Duration = time.Since(started)
	slog.Info(report.Job+" finished", "symbols", len(report.Items), "failed", report.Failed(), "duration", report.Duration)
	return report
}

// RecalculateAllMAs は全銘柄の移動平均を並列に再計算します。
func (c *Collector) RecalculateAllMAs(ctx context.Context) (BatchReport, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.MABulkTimeout)
	defer cancel()

	symbols, err := c.store.AllSymbols(ctx)
	if err != nil {
		return BatchReport{Job: "recalculate-ma"}, fmt.Errorf("list symbols: %w", err)
	}

	started := time.Now()
	report := BatchReport{Job: "recalculate-ma", Items: make([]ItemResult, 0, len(symbols))}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.cfg.MAWorkers)

	for _, s := range symbols {
		g.Go(func() error {
			err := c.RecalculateMA(ctx, s)
			if err != nil {
				slog.Error("moving average recalculation failed", "symbol", s, "error", err)
			}
			mu.Lock()
			report.Items = append(report.Items, ItemResult{CollectResult: CollectResult{Symbol: s}, Err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return c.finish(report, started), nil
}

// StartInitAll は InitAll を呼び出し元から切り離して実行します。結果はログにのみ出力されます。
func (c *Collector) StartInitAll(ctx context.Context, symbols []string) error {
	return c.detach(ctx, &c.initRunning, "init-all", func(ctx context.Context) {
		c.InitAll(ctx, symbols)
	})
}

// StartUpdateAll は UpdateAll を切り離して実行します。
func (c *Collector) StartUpdateAll(ctx context.Context) error {
	return c.detach(ctx, &c.updateRunning, "update-all", func(ctx context.Context) {
		if _, err := c.UpdateAll(ctx); err != nil {
			slog.Error("update-all aborted", "error", err)
		}
	})
}

// StartRecalculateAllMAs は RecalculateAllMAs を切り離して実行します。
func (c *Collector) StartRecalculateAllMAs(ctx context.Context) error {
	return c.detach(ctx, &c.maRunning, "recalculate-ma", func(ctx context.Context) {
		if _, err := c.RecalculateAllMAs(ctx); err != nil {
			slog.Error("recalculate-ma aborted", "error", err)
		}
	})
}

// detach は同じジョブの二重起動を防ぎつつ、キャンセルを引き継がないコンテキストで fn を実行します。
func (c *Collector) detach(ctx context.Context, running *atomic.Bool, job string, fn func(ctx context.Context)) error {
	if !running.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: %w", job, ErrJobRunning)
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("background job panicked", "job", job, "panic", r)
			}
		}()
		fn(bg)
	}()
	slog.Info("background job started", "job", job)
	return nil
}

// sleep は d だけ待機します。コンテキストが終了した場合はそのエラーを返します。
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
