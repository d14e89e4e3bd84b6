package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"chart_backend/internal/feature/candles/domain/entity"
)

// ErrDB はモックと期待値の間で共有されるセンチネルエラーです。
var ErrDB = errors.New("database error")

// mockCandleReader はCandleReaderインターフェースのモック実装です。
type mockCandleReader struct {
	FindRecentFunc func(ctx context.Context, symbol string, limit int) ([]entity.Candle, error)
	FindBeforeFunc func(ctx context.Context, symbol, date string, limit int) ([]entity.Candle, error)
	FindRecentCall int
}

func (m *mockCandleReader) FindRecent(ctx context.Context, symbol string, limit int) ([]entity.Candle, error) {
	m.FindRecentCall++
	if m.FindRecentFunc != nil {
		return m.FindRecentFunc(ctx, symbol, limit)
	}
	return nil, errors.New("FindRecentFunc is not implemented")
}

func (m *mockCandleReader) FindBefore(ctx context.Context, symbol, date string, limit int) ([]entity.Candle, error) {
	if m.FindBeforeFunc != nil {
		return m.FindBeforeFunc(ctx, symbol, date, limit)
	}
	return nil, errors.New("FindBeforeFunc is not implemented")
}

// memStore はユニーク制約付きのインメモリ CandleStore です。
type memStore struct {
	mu       sync.Mutex
	rows     map[string]map[string]entity.Candle // symbol -> date -> candle
	maWrites int
	failMA   bool
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]map[string]entity.Candle{}}
}

func (s *memStore) seed(cs ...entity.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cs {
		if s.rows[c.Symbol] == nil {
			s.rows[c.Symbol] = map[string]entity.Candle{}
		}
		s.rows[c.Symbol][c.Date] = c
	}
}

func (s *memStore) count(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[symbol])
}

func (s *memStore) ascending(symbol string) []entity.Candle {
	out := make([]entity.Candle, 0, len(s.rows[symbol]))
	for _, c := range s.rows[symbol] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *memStore) FindRecent(ctx context.Context, symbol string, limit int) ([]entity.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.ascending(symbol)
	slices.Reverse(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) FindBefore(ctx context.Context, symbol, date string, limit int) ([]entity.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.ascending(symbol)
	slices.Reverse(all)
	out := []entity.Candle{}
	for _, c := range all {
		if c.Date < date && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) ExistingDates(ctx context.Context, symbol string, dates []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for _, d := range dates {
		if _, ok := s.rows[symbol][d]; ok {
			out[d] = true
		}
	}
	return out, nil
}

func (s *memStore) InsertBatch(ctx context.Context, candles []entity.Candle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range candles {
		if s.rows[c.Symbol] == nil {
			s.rows[c.Symbol] = map[string]entity.Candle{}
		}
		if _, ok := s.rows[c.Symbol][c.Date]; ok {
			continue
		}
		s.rows[c.Symbol][c.Date] = c
		n++
	}
	return n, nil
}

func (s *memStore) FindAllAscending(ctx context.Context, symbol string) ([]entity.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ascending(symbol), nil
}

func (s *memStore) LatestDate(ctx context.Context, symbol string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := ""
	for d := range s.rows[symbol] {
		if d > latest {
			latest = d
		}
	}
	return latest, nil
}

func (s *memStore) AllSymbols(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rows))
	for sym := range s.rows {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) UpdateMovingAverages(ctx context.Context, symbol string, candles []entity.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMA {
		return ErrDB
	}
	s.maWrites++
	for _, c := range candles {
		row, ok := s.rows[symbol][c.Date]
		if !ok {
			continue
		}
		row.MA5, row.MA20, row.MA60 = c.MA5, c.MA20, c.MA60
		s.rows[symbol][c.Date] = row
	}
	return nil
}

// window は PriceSource への1回の呼び出しです。
type window struct {
	Symbol, Start, End string
}

// mockPriceSource は呼び出しを記録する PriceSource モックです。
type mockPriceSource struct {
	mu                 sync.Mutex
	GetDailyPricesFunc func(ctx context.Context, symbol, start, end string) ([]entity.Candle, error)
	Calls              []window
}

func (m *mockPriceSource) GetDailyPrices(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, window{symbol, start, end})
	m.mu.Unlock()
	if m.GetDailyPricesFunc != nil {
		return m.GetDailyPricesFunc(ctx, symbol, start, end)
	}
	return nil, nil
}

func (m *mockPriceSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
