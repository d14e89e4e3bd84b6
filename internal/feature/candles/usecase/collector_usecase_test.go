package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/datefmt"
	"chart_backend/internal/shared/ratelimiter"
)

// 2024-11-20 12:00 KST
var fixedNow = time.Date(2024, 11, 20, 3, 0, 0, 0, time.UTC)

func testCollectorConfig() CollectorConfig {
	return CollectorConfig{
		WindowDays:   100,
		HistoryYears: 20,
		FloorDate:    "20240101",
		Workers:      2,
		ChunkSize:    2,
		MAWorkers:    3,
	}
}

func newTestCollector(src PriceSource, store CandleStore, cfg CollectorConfig) *Collector {
	c := NewCollector(src, store, ratelimiter.Noop{}, cfg)
	c.now = func() time.Time { return fixedNow }
	return c
}

// rowsAtEnd は各ウィンドウの終了日と前日の2行を返す PriceSource 関数です。
func rowsAtEnd(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
	e, _ := datefmt.Parse(end)
	prev := datefmt.Format(e.AddDate(0, 0, -1))
	return []entity.Candle{
		{Date: end, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Date: prev, Open: 9, High: 11, Low: 8, Close: 10, Volume: 100},
	}, nil
}

func TestCollector_CollectFull_WalksWindowsBackToFloor(t *testing.T) {
	src := &mockPriceSource{GetDailyPricesFunc: rowsAtEnd}
	store := newMemStore()
	c := newTestCollector(src, store, testCollectorConfig())

	res, err := c.CollectFull(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, []window{
		{"005930", "20240812", "20241120"},
		{"005930", "20240503", "20240811"},
		{"005930", "20240123", "20240502"},
	}, src.Calls)
	assert.Equal(t, 3, res.Windows)
	assert.Equal(t, 0, res.FailedWindows)
	assert.Equal(t, 6, res.Inserted)
	assert.Equal(t, 6, store.count("005930"))
	assert.Equal(t, 1, store.maWrites, "moving averages recomputed once at the end")
}

func TestCollector_CollectFull_FailedWindowStillAdvances(t *testing.T) {
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			if start == "20240503" {
				return nil, apperr.ErrUpstreamRequest
			}
			return rowsAtEnd(ctx, symbol, start, end)
		},
	}
	store := newMemStore()
	c := newTestCollector(src, store, testCollectorConfig())

	res, err := c.CollectFull(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, 3, src.callCount(), "cursor advances past the failed window")
	assert.Equal(t, 1, res.FailedWindows)
	assert.Equal(t, 4, res.Inserted)
}

func TestCollector_CollectFull_EmptyWindowStillAdvances(t *testing.T) {
	src := &mockPriceSource{} // always empty
	c := newTestCollector(src, newMemStore(), testCollectorConfig())

	res, err := c.CollectFull(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, 3, src.callCount())
	assert.Equal(t, 0, res.Inserted)
}

func TestCollector_CollectFull_SkipsExistingAndDuplicateRows(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "005930", Date: "20241120", Open: 1, High: 1, Low: 1, Close: 1})

	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			if end != "20241120" {
				return nil, nil
			}
			return []entity.Candle{
				{Date: "20241120", Close: 999},
				{Date: "20241119", Close: 5},
				{Date: "20241119", Close: 6},
				{Date: "", Close: 7},
			}, nil
		},
	}
	c := newTestCollector(src, store, testCollectorConfig())

	res, err := c.CollectFull(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	all, _ := store.FindAllAscending(context.Background(), "005930")
	require.Len(t, all, 2)
	assert.Equal(t, int64(5), all[0].Close)
	assert.Equal(t, int64(1), all[1].Close, "existing OHLCV is never overwritten")
	assert.Equal(t, "005930", all[0].Symbol)
}

func TestCollector_CollectFull_HistoryYearsFloor(t *testing.T) {
	cfg := testCollectorConfig()
	cfg.FloorDate = ""
	cfg.HistoryYears = 1
	src := &mockPriceSource{}
	c := newTestCollector(src, newMemStore(), cfg)

	_, err := c.CollectFull(context.Background(), "005930")

	require.NoError(t, err)
	// 365日の範囲に収まる 100日ウィンドウは3つ
	assert.Equal(t, 3, src.callCount())
}

func TestCollector_CollectFull_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	store := newMemStore()
	c := newTestCollector(src, store, testCollectorConfig())

	_, err := c.CollectFull(ctx, "005930")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 0, store.maWrites)
}

func TestCollector_CollectIncremental_DelegatesToFullWhenEmpty(t *testing.T) {
	src := &mockPriceSource{GetDailyPricesFunc: rowsAtEnd}
	c := newTestCollector(src, newMemStore(), testCollectorConfig())

	res, err := c.CollectIncremental(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, "full", res.Mode)
	assert.Equal(t, 3, src.callCount())
}

func TestCollector_CollectIncremental_FetchesFromDayAfterLatest(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "005930", Date: "20241115", Close: 1})
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			return []entity.Candle{{Date: "20241118", Close: 2}, {Date: "20241119", Close: 3}}, nil
		},
	}
	c := newTestCollector(src, store, testCollectorConfig())

	res, err := c.CollectIncremental(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, []window{{"005930", "20241116", "20241120"}}, src.Calls)
	assert.Equal(t, "incremental", res.Mode)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, store.maWrites)
}

func TestCollector_CollectIncremental_IsIdempotent(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "005930", Date: "20241115", Close: 1})
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			return []entity.Candle{{Date: "20241118", Close: 2}, {Date: "20241119", Close: 3}}, nil
		},
	}
	c := newTestCollector(src, store, testCollectorConfig())

	_, err := c.CollectIncremental(context.Background(), "005930")
	require.NoError(t, err)
	before, _ := store.FindAllAscending(context.Background(), "005930")

	res, err := c.CollectIncremental(context.Background(), "005930")
	require.NoError(t, err)
	after, _ := store.FindAllAscending(context.Background(), "005930")

	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, before, after)
}

func TestCollector_CollectIncremental_UpToDate(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "005930", Date: "20241120", Close: 1})
	src := &mockPriceSource{}
	c := newTestCollector(src, store, testCollectorConfig())

	res, err := c.CollectIncremental(context.Background(), "005930")

	require.NoError(t, err)
	assert.Equal(t, "skipped", res.Mode)
	assert.Equal(t, 0, src.callCount())
	assert.Equal(t, 0, store.maWrites)
}

func TestCollector_CollectIncremental_UpstreamError(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "005930", Date: "20241115", Close: 1})
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			return nil, apperr.ErrUpstreamRequest
		},
	}
	c := newTestCollector(src, store, testCollectorConfig())

	res, err := c.CollectIncremental(context.Background(), "005930")

	assert.ErrorIs(t, err, apperr.ErrUpstreamRequest)
	assert.Equal(t, 1, res.FailedWindows)
}

func TestCollector_RecalculateMA(t *testing.T) {
	store := newMemStore()
	for i, d := range []string{"20241114", "20241115", "20241118", "20241119", "20241120"} {
		store.seed(entity.Candle{Symbol: "005930", Date: d, Close: int64(10 * (i + 1))})
	}
	c := newTestCollector(&mockPriceSource{}, store, testCollectorConfig())

	require.NoError(t, c.RecalculateMA(context.Background(), "005930"))

	all, _ := store.FindAllAscending(context.Background(), "005930")
	assert.Nil(t, all[3].MA5)
	require.NotNil(t, all[4].MA5)
	assert.Equal(t, int64(30), *all[4].MA5)
	assert.Nil(t, all[4].MA20)
}

func TestCollector_RecalculateMA_StoreError(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "005930", Date: "20241120", Close: 1})
	store.failMA = true
	c := newTestCollector(&mockPriceSource{}, store, testCollectorConfig())

	err := c.RecalculateMA(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrDB)
}

func TestCollector_InitAll_ChoosesModePerSymbol(t *testing.T) {
	cfg := testCollectorConfig()
	cfg.FloorDate = "20240812" // 全件収集は1ウィンドウ
	store := newMemStore()
	store.seed(
		entity.Candle{Symbol: "000002", Date: "20241120", Close: 1},
		entity.Candle{Symbol: "000003", Date: "20241115", Close: 1},
		entity.Candle{Symbol: "000004", Date: "20241115", Close: 1},
	)
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			if symbol == "000004" {
				return nil, apperr.ErrUpstreamRequest
			}
			return rowsAtEnd(ctx, symbol, start, end)
		},
	}
	c := newTestCollector(src, store, cfg)

	report := c.InitAll(context.Background(), []string{"000001", "000002", "000003", "000004"})

	require.Len(t, report.Items, 4)
	assert.Equal(t, 1, report.Failed())
	modes := map[string]string{}
	for _, it := range report.Items {
		modes[it.Symbol] = it.Mode
		if it.Symbol == "000004" {
			assert.ErrorIs(t, it.Err, apperr.ErrUpstreamRequest)
		} else {
			assert.NoError(t, it.Err)
		}
	}
	assert.Equal(t, "full", modes["000001"])
	assert.Equal(t, "skipped", modes["000002"])
	assert.Equal(t, "incremental", modes["000003"])
	assert.Equal(t, 2, store.count("000001"))
}

func TestCollector_InitAll_BoundedConcurrency(t *testing.T) {
	cfg := testCollectorConfig()
	cfg.FloorDate = "20240812"
	cfg.Workers = 2

	var inFlight, peak atomic.Int32
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return nil, nil
		},
	}
	c := newTestCollector(src, newMemStore(), cfg)

	report := c.InitAll(context.Background(), []string{"1", "2", "3", "4", "5", "6"})

	assert.Len(t, report.Items, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestCollector_UpdateAll_ProcessesEveryStoredSymbolInChunks(t *testing.T) {
	store := newMemStore()
	for _, s := range []string{"000001", "000002", "000003"} {
		store.seed(entity.Candle{Symbol: s, Date: "20241118", Close: 1})
	}
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			if symbol == "000002" {
				return nil, errors.New("boom")
			}
			return []entity.Candle{{Date: "20241119", Close: 2}}, nil
		},
	}
	c := newTestCollector(src, store, testCollectorConfig())

	report, err := c.UpdateAll(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Items, 3)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 2, store.count("000001"))
	assert.Equal(t, 1, store.count("000002"))
	assert.Equal(t, 2, store.count("000003"), "a failing symbol does not abort the batch")
}

func TestCollector_UpdateAll_NoPauseAfterLastChunk(t *testing.T) {
	store := newMemStore()
	for _, s := range []string{"000001", "000002"} {
		store.seed(entity.Candle{Symbol: s, Date: "20241118", Close: 1})
	}
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			return []entity.Candle{{Date: "20241119", Close: 2}}, nil
		},
	}
	cfg := testCollectorConfig()
	cfg.ChunkPause = time.Hour
	c := newTestCollector(src, store, cfg)

	done := make(chan BatchReport, 1)
	go func() {
		report, err := c.UpdateAll(context.Background())
		assert.NoError(t, err)
		done <- report
	}()

	select {
	case report := <-done:
		assert.Len(t, report.Items, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("UpdateAll waited after the final chunk")
	}
}

func TestCollector_RecalculateAllMAs(t *testing.T) {
	store := newMemStore()
	for _, s := range []string{"000001", "000002"} {
		for i, d := range []string{"20241114", "20241115", "20241118", "20241119", "20241120"} {
			store.seed(entity.Candle{Symbol: s, Date: d, Close: int64(i + 1)})
		}
	}
	c := newTestCollector(&mockPriceSource{}, store, testCollectorConfig())

	report, err := c.RecalculateAllMAs(context.Background())

	require.NoError(t, err)
	assert.Len(t, report.Items, 2)
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 2, store.maWrites)
	for _, s := range []string{"000001", "000002"} {
		all, _ := store.FindAllAscending(context.Background(), s)
		require.NotNil(t, all[4].MA5)
		assert.Equal(t, int64(3), *all[4].MA5)
	}
}

func TestCollector_StartUpdateAll_RejectsConcurrentRun(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Candle{Symbol: "000001", Date: "20241118", Close: 1})

	release := make(chan struct{})
	var once sync.Once
	entered := make(chan struct{})
	src := &mockPriceSource{
		GetDailyPricesFunc: func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
			once.Do(func() { close(entered) })
			<-release
			return nil, nil
		},
	}
	c := newTestCollector(src, store, testCollectorConfig())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.StartUpdateAll(ctx))
	cancel() // 呼び出し元のキャンセルはジョブに伝播しない

	<-entered
	err := c.StartUpdateAll(context.Background())
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
	assert.Eventually(t, func() bool { return !c.updateRunning.Load() }, time.Second, 5*time.Millisecond)
	assert.NoError(t, c.StartRecalculateAllMAs(context.Background()), "other jobs are independent")
	assert.Eventually(t, func() bool { return !c.maRunning.Load() }, time.Second, 5*time.Millisecond)
}

func TestBatchReport_Failed(t *testing.T) {
	r := BatchReport{Items: []ItemResult{{}, {Err: errors.New("x")}, {Err: errors.New("y")}}}
	assert.Equal(t, 2, r.Failed())
}

func TestLoadCollectorConfig(t *testing.T) {
	t.Setenv("COLLECT_WINDOW_DAYS", "30")
	t.Setenv("COLLECT_REQUEST_INTERVAL", "250ms")

	cfg := LoadCollectorConfig()

	assert.Equal(t, 30, cfg.WindowDays)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, 20, cfg.HistoryYears)
	assert.Equal(t, 3, cfg.Workers)
}
