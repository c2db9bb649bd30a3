package domain

// Activity kinds
const (
	ActivityScan  = "scan"
	ActivityFire  = "fire"
	ActivityTrade = "trade"
	ActivityError = "error"
)

// Activity is one entry in a strategy's activity trail. Every evaluation
// cycle and every execution attempt leaves an entry; silent failures are
// disallowed.
type Activity struct {
	ID         int64 // assigned by the store
	StrategyID string
	Kind       string // scan | fire | trade | error
	Message    string
	CreatedAt  int64 // Unix timestamp in milliseconds
}
