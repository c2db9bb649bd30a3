package discovery

// Candidate is a newly observed token, emitted once per mint. Sniper
// strategies evaluate candidates against their filter bounds.
type Candidate struct {
	Mint         string
	Pool         string // empty when the logs did not carry it
	Program      string // DEX program that initialized the pool
	TxSignature  string
	Slot         int64
	DiscoveredAt int64 // Unix timestamp in milliseconds
}
