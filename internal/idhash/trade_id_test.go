package idhash

import "testing"

func TestComputeTradeID(t *testing.T) {
	id := ComputeTradeID("strat-1", "mint-a", "BUY", 1700000000000)
	if len(id) != 64 {
		t.Errorf("expected 64-char hex ID, got %d chars", len(id))
	}

	same := ComputeTradeID("strat-1", "mint-a", "BUY", 1700000000000)
	if id != same {
		t.Error("same inputs must produce the same ID")
	}

	for _, other := range []string{
		ComputeTradeID("strat-2", "mint-a", "BUY", 1700000000000),
		ComputeTradeID("strat-1", "mint-b", "BUY", 1700000000000),
		ComputeTradeID("strat-1", "mint-a", "SELL", 1700000000000),
		ComputeTradeID("strat-1", "mint-a", "BUY", 1700000000001),
	} {
		if id == other {
			t.Error("different inputs must produce different IDs")
		}
	}
}
