package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade ID using SHA256.
// Confirmed trades use the transaction signature as their ID; this
// covers attempts that never produced one, so a re-recorded failure
// collapses onto the same row.
// Formula: SHA256(strategy_id|mint|side|fired_at)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(strategyID, mint, side string, firedAt int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", strategyID, mint, side, firedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
