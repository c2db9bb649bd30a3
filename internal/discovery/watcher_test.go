package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-strategy-engine/internal/solana"
)

func createLogs(mint string) []string {
	return []string{
		"Program " + PumpFun + " invoke [1]",
		"Program log: Instruction: Create",
		"Program log: mint: " + mint,
		"Program " + PumpFun + " success",
	}
}

func collect(t *testing.T, ch <-chan *Candidate, n int) []*Candidate {
	t.Helper()
	var got []*Candidate
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case c, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, c)
		case <-timeout:
			t.Fatalf("timed out after %d candidates", len(got))
		}
	}
	return got
}

func TestWatcherEmitsOncePerMint(t *testing.T) {
	feed := make(chan solana.LogNotification, 8)
	w := NewWatcher(feed, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	feed <- solana.LogNotification{Signature: "s1", Slot: 1, Logs: createLogs(testMint)}
	feed <- solana.LogNotification{Signature: "s2", Slot: 2, Logs: createLogs(testMint)}
	feed <- solana.LogNotification{Signature: "s3", Slot: 3, Logs: createLogs(testPool)}
	close(feed)

	got := collect(t, w.Candidates(), 2)
	require.Len(t, got, 2)
	assert.Equal(t, testMint, got[0].Mint)
	assert.Equal(t, "s1", got[0].TxSignature)
	assert.Equal(t, testPool, got[1].Mint)

	// Channel closes once the feed drains.
	_, ok := <-w.Candidates()
	assert.False(t, ok)
}

func TestWatcherSkipsFailedTransactions(t *testing.T) {
	feed := make(chan solana.LogNotification, 2)
	w := NewWatcher(feed, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	feed <- solana.LogNotification{Signature: "s1", Err: "InstructionError", Logs: createLogs(testMint)}
	close(feed)

	got := collect(t, w.Candidates(), 0)
	assert.Empty(t, got)
	_, ok := <-w.Candidates()
	assert.False(t, ok)
}
