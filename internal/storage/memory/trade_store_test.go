package memory

import (
	"context"
	"errors"
	"testing"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/storage"
)

func TestTradeStore_InsertAndGet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := &domain.Trade{
		ID:         "sig1",
		OwnerID:    "owner1",
		StrategyID: "s1",
		Side:       domain.SideBuy,
		InputMint:  domain.WSOLMint,
		OutputMint: "mint1",
		Status:     domain.TradeStatusConfirmed,
		CreatedAt:  1000,
	}

	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "sig1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.TradeStatusConfirmed {
		t.Errorf("Status mismatch: got %s", got.Status)
	}
}

func TestTradeStore_DuplicateSignatureRejected(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := &domain.Trade{ID: "sig1", OwnerID: "owner1", CreatedAt: 1000}
	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	// Re-recording the same signature after a confirmation retry must not
	// produce a second ledger entry.
	if err := store.Insert(ctx, trade); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_GetByOwner_TimeWindow(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	store.Insert(ctx, &domain.Trade{ID: "t1", OwnerID: "o1", CreatedAt: 1000})
	store.Insert(ctx, &domain.Trade{ID: "t2", OwnerID: "o1", CreatedAt: 2000})
	store.Insert(ctx, &domain.Trade{ID: "t3", OwnerID: "o1", CreatedAt: 3000})
	store.Insert(ctx, &domain.Trade{ID: "t4", OwnerID: "o2", CreatedAt: 2500})

	got, err := store.GetByOwner(ctx, "o1", 1500, 2500)
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t2" {
		t.Fatalf("Expected only t2 in window, got %+v", got)
	}

	all, err := store.GetByOwner(ctx, "o1", 0, 0)
	if err != nil {
		t.Fatalf("GetByOwner unbounded failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 trades, got %d", len(all))
	}
	// Newest first.
	if all[0].ID != "t3" || all[2].ID != "t1" {
		t.Errorf("Wrong order: %s .. %s", all[0].ID, all[2].ID)
	}
}

func TestTradeStore_GetByStrategy(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	store.Insert(ctx, &domain.Trade{ID: "t1", OwnerID: "o1", StrategyID: "s1", CreatedAt: 1000})
	store.Insert(ctx, &domain.Trade{ID: "t2", OwnerID: "o1", StrategyID: "s2", CreatedAt: 2000})

	got, err := store.GetByStrategy(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByStrategy failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("Expected t1, got %+v", got)
	}
}
