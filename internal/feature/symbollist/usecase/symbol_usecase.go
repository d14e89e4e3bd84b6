// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chart_backend/internal/feature/symbollist/domain/entity"
	"chart_backend/internal/shared/apperr"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// ErrNoMasterSource is returned by SyncMaster when no master source is configured.
var ErrNoMasterSource = errors.New("symbol master source not configured")

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
	Upsert(ctx context.Context, symbols []entity.Symbol) error
	Count(ctx context.Context) (int64, error)
}

// MasterSource downloads the exchange symbol master.
type MasterSource interface {
	FetchSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo   SymbolRepository
	master MasterSource
}

// NewSymbolUsecase creates a new SymbolUsecase. master may be nil when
// the symbol table is maintained out of band.
func NewSymbolUsecase(r SymbolRepository, master MasterSource) *SymbolUsecase {
	return &SymbolUsecase{repo: r, master: master}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes returns the codes of all active symbols in display order.
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// Search matches active symbols by code prefix or name substring.
// limit is clamped to [1, MaxSearchLimit]; 0 selects DefaultSearchLimit.
func (u *SymbolUsecase) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", apperr.ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	return u.repo.Search(ctx, query, limit)
}

// SyncMaster downloads the symbol master and upserts every row by code.
func (u *SymbolUsecase) SyncMaster(ctx context.Context) (int, error) {
	if u.master == nil {
		return 0, ErrNoMasterSource
	}
	symbols, err := u.master.FetchSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch symbol master: %w", err)
	}
	if err := u.repo.Upsert(ctx, symbols); err != nil {
		return 0, fmt.Errorf("save symbol master: %w", err)
	}
	slog.Info("symbol master synced", "count", len(symbols))
	return len(symbols), nil
}

// EnsureMaster runs SyncMaster only when the symbol table is empty.
func (u *SymbolUsecase) EnsureMaster(ctx context.Context) (int, error) {
	n, err := u.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count symbols: %w", err)
	}
	if n > 0 {
		slog.Info("symbol master already present", "count", n)
		return 0, nil
	}
	return u.SyncMaster(ctx)
}
