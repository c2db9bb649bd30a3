package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, owner_id, strategy_id, side, input_mint, output_mint,
	input_amount, output_amount, price_usd, tx_signature,
	status, fail_reason, pnl_usd, created_at
`

// Insert appends a trade. Returns ErrDuplicateKey if the ID exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.OwnerID, t.StrategyID, t.Side, t.InputMint, t.OutputMint,
		t.InputAmount, t.OutputAmount, t.PriceUSD, t.TxSignature,
		t.Status, t.FailReason, t.PnLUSD, t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetByOwner retrieves trades for an owner within [start, end], newest
// first. Zero bounds mean unbounded.
func (s *TradeStore) GetByOwner(ctx context.Context, ownerID string, start, end int64) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE owner_id = $1`
	args := []any{ownerID}

	if start > 0 {
		args = append(args, start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if end > 0 {
		args = append(args, end)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	return s.queryTrades(ctx, query, args...)
}

// GetByStrategy retrieves all trades for a strategy, newest first.
func (s *TradeStore) GetByStrategy(ctx context.Context, strategyID string) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE strategy_id = $1 ORDER BY created_at DESC`
	return s.queryTrades(ctx, query, strategyID)
}

func (s *TradeStore) queryTrades(ctx context.Context, query string, args ...any) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var result []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	if err := row.Scan(&t.ID, &t.OwnerID, &t.StrategyID, &t.Side,
		&t.InputMint, &t.OutputMint, &t.InputAmount, &t.OutputAmount,
		&t.PriceUSD, &t.TxSignature, &t.Status, &t.FailReason,
		&t.PnLUSD, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
