package metrics

import (
	"solana-strategy-engine/internal/domain"
)

// Stats summarizes a strategy's trade history for the stats endpoint.
type Stats struct {
	TotalTrades int
	Confirmed   int
	Failed      int
	Pending     int

	Sells          int
	Wins           int // sells realizing positive PnL
	Losses         int
	WinRate        float64 // wins / sells
	RealizedPnLUSD float64
	VolumeUSD      float64 // confirmed notional, both sides
	LastTradeAt    int64   // Unix timestamp in milliseconds; 0 when empty
}

// ComputeStats derives per-strategy stats from its trades. PnL is
// replayed against average cost basis, so the input should be the full
// history for the strategy.
func ComputeStats(trades []*domain.Trade) *Stats {
	s := &Stats{}
	if len(trades) == 0 {
		return s
	}

	perTrade, total := RealizedPnL(trades)
	s.RealizedPnLUSD = total

	for _, t := range trades {
		s.TotalTrades++
		switch t.Status {
		case domain.TradeStatusConfirmed:
			s.Confirmed++
			s.VolumeUSD += notionalUSD(t)
		case domain.TradeStatusFailed:
			s.Failed++
		case domain.TradeStatusPending:
			s.Pending++
		}
		if t.CreatedAt > s.LastTradeAt {
			s.LastTradeAt = t.CreatedAt
		}
		if pnl, ok := perTrade[t.ID]; ok {
			s.Sells++
			if pnl > 0 {
				s.Wins++
			} else {
				s.Losses++
			}
		}
	}
	if s.Sells > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Sells)
	}
	return s
}

// notionalUSD values a confirmed trade by its token leg at execution
// price.
func notionalUSD(t *domain.Trade) float64 {
	switch t.Side {
	case domain.SideBuy:
		return t.OutputAmount * t.PriceUSD
	case domain.SideSell:
		return t.InputAmount * t.PriceUSD
	}
	return 0
}
