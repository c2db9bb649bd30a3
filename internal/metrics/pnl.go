package metrics

// pnl.go tracks realized profit against an average cost basis. Buys
// move the basis, sells realize the difference between execution price
// and basis for the quantity sold.

import (
	"sort"

	"solana-strategy-engine/internal/domain"
)

// Position is the open holding for one mint.
type Position struct {
	Quantity   float64 // token amount held, human units
	AvgCostUSD float64 // average acquisition price per token
}

// Ledger folds confirmed trades into per-mint positions and realized
// PnL. Trades must be applied in chronological order.
type Ledger struct {
	positions map[string]*Position
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*Position)}
}

// Position returns the open position for a mint, or nil.
func (l *Ledger) Position(mint string) *Position {
	return l.positions[mint]
}

// Apply folds one trade into the ledger. For a confirmed SELL it
// returns the realized PnL in USD; for buys, failed and pending trades
// it returns nil. Selling more than the tracked position realizes PnL
// only on the tracked quantity.
func (l *Ledger) Apply(t *domain.Trade) *float64 {
	if t == nil || t.Status != domain.TradeStatusConfirmed {
		return nil
	}

	switch t.Side {
	case domain.SideBuy:
		// Acquired OutputAmount of OutputMint at PriceUSD per token.
		p := l.positions[t.OutputMint]
		if p == nil {
			p = &Position{}
			l.positions[t.OutputMint] = p
		}
		newQty := p.Quantity + t.OutputAmount
		if newQty > 0 {
			p.AvgCostUSD = (p.Quantity*p.AvgCostUSD + t.OutputAmount*t.PriceUSD) / newQty
		}
		p.Quantity = newQty
		return nil

	case domain.SideSell:
		// Disposed InputAmount of InputMint at PriceUSD per token.
		p := l.positions[t.InputMint]
		if p == nil || p.Quantity <= 0 {
			return nil
		}
		qty := t.InputAmount
		if qty > p.Quantity {
			qty = p.Quantity
		}
		realized := qty * (t.PriceUSD - p.AvgCostUSD)
		p.Quantity -= qty
		if p.Quantity <= 0 {
			delete(l.positions, t.InputMint)
		}
		return &realized
	}
	return nil
}

// RealizedPnL replays a trade history chronologically and returns each
// sell's realized PnL keyed by trade ID, plus the total.
func RealizedPnL(trades []*domain.Trade) (map[string]float64, float64) {
	sorted := make([]*domain.Trade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	ledger := NewLedger()
	perTrade := make(map[string]float64)
	total := 0.0
	for _, t := range sorted {
		if pnl := ledger.Apply(t); pnl != nil {
			perTrade[t.ID] = *pnl
			total += *pnl
		}
	}
	return perTrade, total
}
