package discovery

import (
	"context"
	"log"
	"sync"

	"solana-strategy-engine/internal/solana"
)

// Watcher consumes a program-log feed, runs every registered parser
// over each transaction, and emits each mint at most once. Failed
// transactions are skipped.
type Watcher struct {
	feed    <-chan solana.LogNotification
	parsers []Parser
	out     chan *Candidate
	verbose bool

	mu   sync.Mutex
	seen map[string]bool
}

// NewWatcher creates a Watcher over a log feed with the default DEX
// parsers registered.
func NewWatcher(feed <-chan solana.LogNotification, verbose bool) *Watcher {
	return &Watcher{
		feed:    feed,
		parsers: []Parser{NewRaydiumParser(), NewPumpFunParser()},
		out:     make(chan *Candidate, 64),
		verbose: verbose,
		seen:    make(map[string]bool),
	}
}

// RegisterParser adds a parser to the set.
func (w *Watcher) RegisterParser(p Parser) {
	w.parsers = append(w.parsers, p)
}

// Candidates returns the emission channel. Closed when Run returns.
func (w *Watcher) Candidates() <-chan *Candidate {
	return w.out
}

// Run pumps the feed until the context is cancelled or the feed
// closes.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.out)
	for {
		select {
		case <-ctx.Done():
			return
		case note, ok := <-w.feed:
			if !ok {
				return
			}
			if note.Err != nil {
				continue
			}
			w.process(ctx, note)
		}
	}
}

func (w *Watcher) process(ctx context.Context, note solana.LogNotification) {
	for _, parser := range w.parsers {
		for _, c := range parser.ParsePoolInit(note.Logs, note.Signature, note.Slot) {
			if !w.markSeen(c.Mint) {
				continue
			}
			w.log("candidate mint=%s program=%s sig=%s", c.Mint, c.Program, c.TxSignature)
			select {
			case w.out <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}

// markSeen reports whether the mint is new.
func (w *Watcher) markSeen(mint string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[mint] {
		return false
	}
	w.seen[mint] = true
	return true
}

func (w *Watcher) log(format string, args ...interface{}) {
	if w.verbose {
		log.Printf("[discovery] "+format, args...)
	}
}
