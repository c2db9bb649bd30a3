package memory

import (
	"context"
	"sort"
	"sync"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// StrategyStore is an in-memory implementation of storage.StrategyStore.
type StrategyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Strategy
}

// NewStrategyStore creates a new in-memory strategy store.
func NewStrategyStore() *StrategyStore {
	return &StrategyStore{data: make(map[string]*domain.Strategy)}
}

var _ storage.StrategyStore = (*StrategyStore)(nil)

// Insert adds a new strategy. Returns ErrDuplicateKey if the ID exists.
func (s *StrategyStore) Insert(_ context.Context, st *domain.Strategy) error {
	if st == nil || st.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[st.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *st
	s.data[st.ID] = &copy
	return nil
}

// GetByID retrieves a strategy. Returns ErrNotFound if not exists.
func (s *StrategyStore) GetByID(_ context.Context, id string) (*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *st
	return &copy, nil
}

// GetByOwner retrieves strategies for an owner, newest first.
func (s *StrategyStore) GetByOwner(_ context.Context, ownerID string) ([]*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Strategy
	for _, st := range s.data {
		if st.OwnerID == ownerID {
			copy := *st
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})
	return result, nil
}

// ListActive retrieves all strategies with the active flag set.
func (s *StrategyStore) ListActive(_ context.Context) ([]*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Strategy
	for _, st := range s.data {
		if st.IsActive {
			copy := *st
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})
	return result, nil
}

// SetActive toggles the active flag. Returns ErrNotFound if not exists.
func (s *StrategyStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	st.IsActive = active
	return nil
}
