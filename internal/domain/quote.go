package domain

import "encoding/json"

// Quote is a time-bound executable swap route from the upstream
// aggregator. The route payload is opaque to everything except the swap
// executor; the upstream may reject a stale route after a short TTL, so
// execution failure on an expired quote is retryable-with-refresh.
type Quote struct {
	InputMint  string
	OutputMint string

	InAmountBase  string // smallest-unit integer, decimal string
	OutAmountBase string
	InAmount      float64 // human units
	OutAmount     float64

	SlippageBps    int
	PriceImpactPct float64
	ExchangeRate   float64 // OutAmount / InAmount
	RouteLabel     string  // human-readable route, verbatim from upstream

	RoutePayload json.RawMessage // upstream response required for execution
	FetchedAt    int64           // Unix timestamp in milliseconds
}
