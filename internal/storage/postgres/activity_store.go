package postgres

import (
	"context"
	"fmt"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// ActivityStore implements storage.ActivityStore using PostgreSQL.
type ActivityStore struct {
	pool *Pool
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(pool *Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

// Append adds an activity entry.
func (s *ActivityStore) Append(ctx context.Context, a *domain.Activity) error {
	if a == nil || a.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO activities (strategy_id, kind, message, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.pool.Exec(ctx, query, a.StrategyID, a.Kind, a.Message, a.CreatedAt); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// GetByStrategy retrieves the most recent entries, newest first.
func (s *ActivityStore) GetByStrategy(ctx context.Context, strategyID string, limit int) ([]*domain.Activity, error) {
	query := `
		SELECT id, strategy_id, kind, message, created_at
		FROM activities
		WHERE strategy_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []any{strategyID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $2"
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}
	defer rows.Close()

	var result []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.StrategyID, &a.Kind, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}
