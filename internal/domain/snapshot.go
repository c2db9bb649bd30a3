package domain

// MarketSnapshot is one observation of a token's market state, as served
// by the market index. Consumed by the condition evaluator.
type MarketSnapshot struct {
	Mint          string
	TokenName     string
	TokenSymbol   string
	PriceUSD      float64
	LiquidityUSD  float64
	Volume24hUSD  float64
	MarketCapUSD  float64
	PairCreatedAt int64 // Unix timestamp in milliseconds; 0 if unknown
	ObservedAt    int64 // Unix timestamp in milliseconds
}

// AgeMinutes returns the pair age at observation time, or -1 when the
// creation time is unknown.
func (s *MarketSnapshot) AgeMinutes() float64 {
	if s.PairCreatedAt <= 0 || s.ObservedAt < s.PairCreatedAt {
		return -1
	}
	return float64(s.ObservedAt-s.PairCreatedAt) / 60000.0
}

// PriceTick is one sampled price point for a mint, appended by the
// scheduler on every scan and consumed as indicator history.
type PriceTick struct {
	Mint        string
	TimestampMs int64
	PriceUSD    float64
}
