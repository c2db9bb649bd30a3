package memory

import (
	"context"
	"sync"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// tickCap bounds per-mint history kept in memory.
const tickCap = 4096

// TickStore is an in-memory implementation of storage.TickStore.
type TickStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PriceTick // per mint, timestamp ascending
}

// NewTickStore creates a new in-memory tick store.
func NewTickStore() *TickStore {
	return &TickStore{data: make(map[string][]*domain.PriceTick)}
}

var _ storage.TickStore = (*TickStore)(nil)

// Append adds a sampled price point.
func (s *TickStore) Append(_ context.Context, tick *domain.PriceTick) error {
	if tick == nil || tick.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *tick
	ticks := append(s.data[tick.Mint], &copy)
	if len(ticks) > tickCap {
		ticks = ticks[len(ticks)-tickCap:]
	}
	s.data[tick.Mint] = ticks
	return nil
}

// Recent retrieves the most recent points, timestamp ascending.
func (s *TickStore) Recent(_ context.Context, mint string, limit int) ([]*domain.PriceTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.data[mint]
	if limit > 0 && len(ticks) > limit {
		ticks = ticks[len(ticks)-limit:]
	}

	result := make([]*domain.PriceTick, len(ticks))
	for i, tk := range ticks {
		copy := *tk
		result[i] = &copy
	}
	return result, nil
}
