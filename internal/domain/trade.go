package domain

// Trade is an append-only record of one execution attempt. Exactly one
// record is created per successful (or definitively failed) attempt and
// it is never edited after the settlement status is final.
type Trade struct {
	ID         string // tx signature when available, otherwise random
	OwnerID    string
	StrategyID string // empty for direct swap invocations

	Side         string // BUY | SELL
	InputMint    string
	OutputMint   string
	InputAmount  float64 // human units
	OutputAmount float64 // human units
	PriceUSD     float64 // realized input-token price at execution

	TxSignature string // present only on success
	Status      string // PENDING | CONFIRMED | FAILED
	FailReason  string // set when Status is FAILED

	PnLUSD    *float64 // realized PnL vs average cost basis; nil until computable
	CreatedAt int64    // Unix timestamp in milliseconds
}

// Trade status constants
const (
	TradeStatusPending   = "PENDING"
	TradeStatusConfirmed = "CONFIRMED"
	TradeStatusFailed    = "FAILED"
)
