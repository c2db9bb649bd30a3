package memory

import (
	"context"
	"sort"
	"sync"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
type ActivityStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.Activity
}

// NewActivityStore creates a new in-memory activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

var _ storage.ActivityStore = (*ActivityStore)(nil)

// Append adds an activity entry.
func (s *ActivityStore) Append(_ context.Context, a *domain.Activity) error {
	if a == nil || a.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	copy := *a
	copy.ID = s.nextID
	s.data = append(s.data, &copy)
	return nil
}

// GetByStrategy retrieves the most recent entries, newest first.
func (s *ActivityStore) GetByStrategy(_ context.Context, strategyID string, limit int) ([]*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Activity
	for _, a := range s.data {
		if a.StrategyID == strategyID {
			copy := *a
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt == result[j].CreatedAt {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt > result[j].CreatedAt
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
