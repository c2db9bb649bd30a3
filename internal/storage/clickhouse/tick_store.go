package clickhouse

import (
	"context"
	"fmt"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// TickStore implements storage.TickStore using ClickHouse. Ticks are
// append-only; MergeTree does not enforce uniqueness and duplicate
// samples for the same millisecond are harmless for indicator history.
type TickStore struct {
	conn *Conn
}

// NewTickStore creates a new TickStore.
func NewTickStore(conn *Conn) *TickStore {
	return &TickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

// Append adds a sampled price point.
func (s *TickStore) Append(ctx context.Context, tick *domain.PriceTick) error {
	if tick == nil || tick.Mint == "" {
		return storage.ErrInvalidInput
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO price_ticks (mint, timestamp_ms, price_usd)
		VALUES (?, ?, ?)
	`, tick.Mint, uint64(tick.TimestampMs), tick.PriceUSD)
	if err != nil {
		return fmt.Errorf("insert tick: %w", err)
	}
	return nil
}

// Recent retrieves the most recent points for a mint ordered by
// timestamp ascending, capped at limit.
func (s *TickStore) Recent(ctx context.Context, mint string, limit int) ([]*domain.PriceTick, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT mint, timestamp_ms, price_usd
		FROM (
			SELECT mint, timestamp_ms, price_usd
			FROM price_ticks
			WHERE mint = ?
			ORDER BY timestamp_ms DESC
			LIMIT ?
		)
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent ticks: %w", err)
	}
	defer rows.Close()

	var result []*domain.PriceTick
	for rows.Next() {
		var (
			t  domain.PriceTick
			ts uint64
		)
		if err := rows.Scan(&t.Mint, &ts, &t.PriceUSD); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		t.TimestampMs = int64(ts)
		result = append(result, &t)
	}
	return result, rows.Err()
}
