package storage

import (
	"context"

	"solana-strategy-engine/internal/domain"
)

// StrategyStore provides access to persisted strategies.
type StrategyStore interface {
	// Insert adds a new strategy. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, s *domain.Strategy) error

	// GetByID retrieves a strategy. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Strategy, error)

	// GetByOwner retrieves all strategies for an owner, ordered by
	// creation time descending.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.Strategy, error)

	// ListActive retrieves all strategies with the active flag set.
	ListActive(ctx context.Context) ([]*domain.Strategy, error)

	// SetActive toggles the active flag. Returns ErrNotFound if not exists.
	// Config payloads are never mutated through the store.
	SetActive(ctx context.Context, id string, active bool) error
}

// TradeStore is the append-only trade ledger.
type TradeStore interface {
	// Insert appends a trade. Returns ErrDuplicateKey if the ID exists,
	// which callers use to dedupe re-recorded confirmations.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByID retrieves a trade. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Trade, error)

	// GetByOwner retrieves trades for an owner within [start, end]
	// (inclusive, ms), ordered by creation time descending. Zero bounds
	// mean unbounded.
	GetByOwner(ctx context.Context, ownerID string, start, end int64) ([]*domain.Trade, error)

	// GetByStrategy retrieves all trades for a strategy, ordered by
	// creation time descending.
	GetByStrategy(ctx context.Context, strategyID string) ([]*domain.Trade, error)
}

// ActivityStore holds per-strategy activity trails.
type ActivityStore interface {
	// Append adds an activity entry.
	Append(ctx context.Context, a *domain.Activity) error

	// GetByStrategy retrieves the most recent entries for a strategy,
	// ordered by creation time descending, capped at limit.
	GetByStrategy(ctx context.Context, strategyID string, limit int) ([]*domain.Activity, error)
}

// TickStore holds sampled price points per mint, used as indicator
// history for conditional strategies.
type TickStore interface {
	// Append adds a sampled price point.
	Append(ctx context.Context, tick *domain.PriceTick) error

	// Recent retrieves the most recent points for a mint ordered by
	// timestamp ascending, capped at limit.
	Recent(ctx context.Context, mint string, limit int) ([]*domain.PriceTick, error)
}
