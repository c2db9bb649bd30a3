package executor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/solana"
)

// Execution errors. All of them leave the strategy active; the trade
// record carries the failure.
var (
	// ErrSimulationFailed means the signed transaction would fail
	// on-chain and was never submitted.
	ErrSimulationFailed = errors.New("executor: simulation failed")

	// ErrSubmissionFailed means the cluster rejected the transaction or
	// confirmed it with an on-chain error.
	ErrSubmissionFailed = errors.New("executor: submission failed")

	// ErrSlippageExceeded means the route's output fell below the
	// slippage floor. Retryable with a wider tolerance.
	ErrSlippageExceeded = errors.New("executor: slippage exceeded")

	// ErrQuoteExpired means the route went stale before submission.
	// Retryable with a refreshed quote.
	ErrQuoteExpired = errors.New("executor: quote expired")

	// ErrTimeout means confirmation polling gave up. The transaction
	// may still land.
	ErrTimeout = errors.New("executor: confirmation timeout")
)

// Default configuration values.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

// Signer produces a fully signed transaction for this wallet.
type Signer interface {
	Address() string
	SignTransaction(tx []byte) ([]byte, error)
}

// Aggregator builds an unsigned swap transaction from a quote.
type Aggregator interface {
	BuildSwap(ctx context.Context, quote *domain.Quote, userPublicKey string) (string, error)
}

// Result is a confirmed swap. The settled amounts and price impact are
// carried from the executed route so callers record what was actually
// settled rather than reaching back into their quote.
type Result struct {
	Signature string
	Slot      int64

	SettledInputAmount  float64
	SettledOutputAmount float64
	PriceImpactPct      float64
}

// Executor turns a fetched quote into a confirmed on-chain swap:
// build, sign, simulate, submit, poll. One instance serializes nothing
// itself; the signer single-flights signing.
type Executor struct {
	agg     Aggregator
	rpc     solana.RPCClient
	signer  Signer
	verbose bool

	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// Options configures an Executor.
type Options struct {
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Verbose        bool
}

// New creates an Executor.
func New(agg Aggregator, rpc solana.RPCClient, signer Signer, opts Options) *Executor {
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultConfirmTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Executor{
		agg:            agg,
		rpc:            rpc,
		signer:         signer,
		verbose:        opts.Verbose,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
	}
}

// Execute runs a quote through the full settlement pipeline. On
// ErrQuoteExpired the caller refreshes the quote and retries; all other
// errors map onto a FAILED trade record.
func (e *Executor) Execute(ctx context.Context, quote *domain.Quote) (*Result, error) {
	txBase64, err := e.agg.BuildSwap(ctx, quote, e.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("build swap: %w", err)
	}

	unsigned, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return nil, fmt.Errorf("decode swap transaction: %w", err)
	}

	signed, err := e.signer.SignTransaction(unsigned)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	signedBase64 := base64.StdEncoding.EncodeToString(signed)

	sim, err := e.rpc.SimulateTransaction(ctx, signedBase64)
	if err != nil {
		return nil, fmt.Errorf("simulate transaction: %w", err)
	}
	if sim.Err != nil {
		return nil, classifyOnChainError(sim.Err, sim.Logs, ErrSimulationFailed)
	}

	signature, err := e.rpc.SendTransaction(ctx, signedBase64)
	if err != nil {
		return nil, classifySubmitError(err)
	}
	if signature == "" {
		return nil, fmt.Errorf("%w: empty signature", ErrSubmissionFailed)
	}
	e.log("submitted %s -> %s sig=%s", quote.InputMint, quote.OutputMint, signature)

	slot, err := e.awaitConfirmation(ctx, signature)
	if err != nil {
		return nil, err
	}
	e.log("confirmed sig=%s slot=%d", signature, slot)
	return &Result{
		Signature:           signature,
		Slot:                slot,
		SettledInputAmount:  quote.InAmount,
		SettledOutputAmount: quote.OutAmount,
		PriceImpactPct:      quote.PriceImpactPct,
	}, nil
}

func (e *Executor) awaitConfirmation(ctx context.Context, signature string) (int64, error) {
	deadline := time.NewTimer(e.confirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		statuses, err := e.rpc.GetSignatureStatuses(ctx, []string{signature})
		if err == nil && len(statuses) > 0 && statuses[0] != nil {
			st := statuses[0]
			if st.Err != nil {
				return 0, classifyOnChainError(st.Err, nil, ErrSubmissionFailed)
			}
			if st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized" {
				return st.Slot, nil
			}
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, fmt.Errorf("%w: signature %s", ErrTimeout, signature)
		case <-ticker.C:
		}
	}
}

// classifyOnChainError maps a simulation or confirmation error object
// onto the executor's taxonomy. The slippage guard instruction reports
// custom error 6001.
func classifyOnChainError(onChainErr interface{}, logs []string, fallback error) error {
	raw, _ := json.Marshal(onChainErr)
	msg := string(raw)

	if strings.Contains(msg, "BlockhashNotFound") {
		return fmt.Errorf("%w: %s", ErrQuoteExpired, msg)
	}
	if strings.Contains(msg, "\"Custom\":6001") || strings.Contains(msg, "SlippageToleranceExceeded") {
		return fmt.Errorf("%w: %s", ErrSlippageExceeded, msg)
	}
	for _, line := range logs {
		if strings.Contains(strings.ToLower(line), "slippage") {
			return fmt.Errorf("%w: %s", ErrSlippageExceeded, line)
		}
	}
	return fmt.Errorf("%w: %s", fallback, msg)
}

func classifySubmitError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "BlockhashNotFound") || strings.Contains(msg, "blockhash not found") {
		return fmt.Errorf("%w: %v", ErrQuoteExpired, err)
	}
	return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
}

func (e *Executor) log(format string, args ...interface{}) {
	if e.verbose {
		log.Printf("[executor] "+format, args...)
	}
}
