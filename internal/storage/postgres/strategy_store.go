package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// StrategyStore implements storage.StrategyStore using PostgreSQL.
// The type-specific config variant is stored as a jsonb column next to
// the type discriminant.
type StrategyStore struct {
	pool *Pool
}

// NewStrategyStore creates a new StrategyStore.
func NewStrategyStore(pool *Pool) *StrategyStore {
	return &StrategyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StrategyStore = (*StrategyStore)(nil)

// Insert adds a new strategy. Returns ErrDuplicateKey if the ID exists.
func (s *StrategyStore) Insert(ctx context.Context, st *domain.Strategy) error {
	if st == nil || st.ID == "" {
		return storage.ErrInvalidInput
	}

	config, err := marshalConfig(st)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO strategies (
			id, owner_id, name, description, type, config, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		st.ID, st.OwnerID, st.Name, st.Description,
		string(st.Type), config, st.IsActive, st.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert strategy: %w", err)
	}
	return nil
}

// GetByID retrieves a strategy. Returns ErrNotFound if not exists.
func (s *StrategyStore) GetByID(ctx context.Context, id string) (*domain.Strategy, error) {
	query := `
		SELECT id, owner_id, name, description, type, config, is_active, created_at
		FROM strategies
		WHERE id = $1
	`

	st, err := scanStrategy(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get strategy by id: %w", err)
	}
	return st, nil
}

// GetByOwner retrieves strategies for an owner, newest first.
func (s *StrategyStore) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Strategy, error) {
	query := `
		SELECT id, owner_id, name, description, type, config, is_active, created_at
		FROM strategies
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get strategies by owner: %w", err)
	}
	defer rows.Close()

	var result []*domain.Strategy
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// ListActive retrieves all strategies with the active flag set.
func (s *StrategyStore) ListActive(ctx context.Context) ([]*domain.Strategy, error) {
	query := `
		SELECT id, owner_id, name, description, type, config, is_active, created_at
		FROM strategies
		WHERE is_active
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active strategies: %w", err)
	}
	defer rows.Close()

	var result []*domain.Strategy
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// SetActive toggles the active flag. Returns ErrNotFound if not exists.
func (s *StrategyStore) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE strategies SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set strategy active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanStrategy.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStrategy(row rowScanner) (*domain.Strategy, error) {
	var st domain.Strategy
	var typ string
	var config []byte

	if err := row.Scan(&st.ID, &st.OwnerID, &st.Name, &st.Description,
		&typ, &config, &st.IsActive, &st.CreatedAt); err != nil {
		return nil, err
	}

	st.Type = domain.StrategyType(typ)
	if err := unmarshalConfig(&st, config); err != nil {
		return nil, err
	}
	return &st, nil
}

func marshalConfig(st *domain.Strategy) ([]byte, error) {
	var v any
	switch st.Type {
	case domain.StrategyTypeSpot:
		v = st.Spot
	case domain.StrategyTypeSniper:
		v = st.Sniper
	case domain.StrategyTypeConditional:
		v = st.Conditional
	default:
		return nil, domain.ErrUnknownStrategyType
	}
	if v == nil {
		return nil, domain.ErrMissingConfig
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal strategy config: %w", err)
	}
	return data, nil
}

func unmarshalConfig(st *domain.Strategy, data []byte) error {
	switch st.Type {
	case domain.StrategyTypeSpot:
		st.Spot = &domain.SpotConfig{}
		return json.Unmarshal(data, st.Spot)
	case domain.StrategyTypeSniper:
		st.Sniper = &domain.SniperConfig{}
		return json.Unmarshal(data, st.Sniper)
	case domain.StrategyTypeConditional:
		st.Conditional = &domain.ConditionalConfig{}
		return json.Unmarshal(data, st.Conditional)
	default:
		return domain.ErrUnknownStrategyType
	}
}
