package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-strategy-engine/internal/amount"
	"solana-strategy-engine/internal/discovery"
	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/evaluator"
	"solana-strategy-engine/internal/executor"
	"solana-strategy-engine/internal/idhash"
	"solana-strategy-engine/internal/jupiter"
	"solana-strategy-engine/internal/marketdata"
	"solana-strategy-engine/internal/observability"
	"solana-strategy-engine/internal/storage"
)

// Default configuration values.
const (
	DefaultInterval     = 15 * time.Second
	DefaultConcurrency  = 8
	DefaultFireCooldown = 2 * time.Minute
	DefaultHistoryLimit = 256
)

// QuoteEngine fetches executable swap routes.
type QuoteEngine interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*domain.Quote, error)
}

// SwapExecutor settles a quote on-chain.
type SwapExecutor interface {
	Execute(ctx context.Context, quote *domain.Quote) (*executor.Result, error)
}

// MarketIndex serves token market snapshots.
type MarketIndex interface {
	Snapshot(ctx context.Context, mint string) (*domain.MarketSnapshot, error)
}

// TokenResolver maps token references to assets.
type TokenResolver interface {
	Resolve(ctx context.Context, ref string) (*domain.Asset, error)
	Decimals(ctx context.Context, mint string) int
}

// Options configures a Scheduler.
type Options struct {
	Interval     time.Duration
	Concurrency  int
	FireCooldown time.Duration
	HistoryLimit int
	Verbose      bool
}

// Scheduler drives autonomous strategy evaluation: on every tick it
// loads active strategies, evaluates each concurrently under a
// concurrency cap, and routes satisfied entry rules through the swap
// pipeline. Per-cycle failures are recorded on the strategy's activity
// trail and never deactivate it.
type Scheduler struct {
	strategies storage.StrategyStore
	trades     storage.TradeStore
	activities storage.ActivityStore
	ticks      storage.TickStore

	eval     *evaluator.Evaluator
	quotes   QuoteEngine
	exec     SwapExecutor
	market   MarketIndex
	resolver TokenResolver
	metrics  *observability.Metrics

	opts Options
	now  func() time.Time

	mu         sync.Mutex
	lastFired  map[string]time.Time
	candidates []*discovery.Candidate
}

// New creates a Scheduler.
func New(
	strategies storage.StrategyStore,
	trades storage.TradeStore,
	activities storage.ActivityStore,
	ticks storage.TickStore,
	eval *evaluator.Evaluator,
	quotes QuoteEngine,
	exec SwapExecutor,
	market MarketIndex,
	resolver TokenResolver,
	metrics *observability.Metrics,
	opts Options,
) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.FireCooldown <= 0 {
		opts.FireCooldown = DefaultFireCooldown
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Scheduler{
		strategies: strategies,
		trades:     trades,
		activities: activities,
		ticks:      ticks,
		eval:       eval,
		quotes:     quotes,
		exec:       exec,
		market:     market,
		resolver:   resolver,
		metrics:    metrics,
		opts:       opts,
		now:        time.Now,
		lastFired:  make(map[string]time.Time),
	}
}

// ConsumeCandidates drains a discovery feed into the sniper candidate
// buffer until the context is cancelled or the feed closes.
func (s *Scheduler) ConsumeCandidates(ctx context.Context, feed <-chan *discovery.Candidate) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-feed:
			if !ok {
				return
			}
			s.mu.Lock()
			s.candidates = append(s.candidates, c)
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.CandidatesDiscovered.WithLabelValues(c.Program).Inc()
			}
		}
	}
}

// Run ticks until the context is cancelled. In-flight evaluations run
// to completion after cancellation is observed at the cycle boundary.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.log("started interval=%s concurrency=%d", s.opts.Interval, s.opts.Concurrency)
	for {
		select {
		case <-ctx.Done():
			s.log("stopped")
			return
		case <-ticker.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle runs one evaluation pass over all active strategies.
func (s *Scheduler) Cycle(ctx context.Context) {
	active, err := s.strategies.ListActive(ctx)
	if err != nil {
		s.log("list active: %v", err)
		return
	}
	if s.metrics != nil {
		s.metrics.ScanCycles.Inc()
		s.metrics.StrategiesActive.Set(float64(len(active)))
	}

	sniperBatch := s.drainCandidates()

	sem := make(chan struct{}, s.opts.Concurrency)
	var wg sync.WaitGroup
	for _, st := range active {
		wg.Add(1)
		sem <- struct{}{}
		go func(st *domain.Strategy) {
			defer wg.Done()
			defer func() { <-sem }()
			s.evaluateOne(ctx, st, sniperBatch)
		}(st)
	}
	wg.Wait()
}

func (s *Scheduler) drainCandidates() []*discovery.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.candidates
	s.candidates = nil
	return batch
}

func (s *Scheduler) evaluateOne(ctx context.Context, st *domain.Strategy, sniperBatch []*discovery.Candidate) {
	if s.metrics != nil {
		s.metrics.StrategyScans.WithLabelValues(string(st.Type)).Inc()
	}

	var err error
	switch st.Type {
	case domain.StrategyTypeSniper:
		err = s.evaluateSniper(ctx, st, sniperBatch)
	default:
		err = s.evaluateDirect(ctx, st)
	}
	if err != nil {
		s.recordError(ctx, st.ID, err)
	}
}

// evaluateDirect handles SPOT and CONDITIONAL strategies, which target
// a fixed token.
func (s *Scheduler) evaluateDirect(ctx context.Context, st *domain.Strategy) error {
	ref, side, amt, slippage := strategyOrder(st)

	asset, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", ref, err)
	}

	snap, err := s.snapshot(ctx, asset.Mint)
	if err != nil && !errors.Is(err, marketdata.ErrNotFound) {
		return fmt.Errorf("snapshot %s: %w", asset.Mint, err)
	}

	var closes []float64
	if st.Type == domain.StrategyTypeConditional {
		closes = s.sampleHistory(ctx, asset.Mint, snap)
	}

	decision, err := s.eval.Evaluate(st, snap, closes)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	s.recordScan(ctx, st.ID, decision.Reason)
	if !decision.Fire {
		return nil
	}
	return s.fire(ctx, st, asset, snap, side, amt, slippage, decision.Reason)
}

// evaluateSniper matches a sniper against its pinned token or this
// cycle's discovery batch, and fires on the first candidate that
// passes every filter.
func (s *Scheduler) evaluateSniper(ctx context.Context, st *domain.Strategy, batch []*discovery.Candidate) error {
	cfg := st.Sniper

	mints := make([]string, 0, len(batch)+1)
	if cfg.Token != "" {
		asset, err := s.resolver.Resolve(ctx, cfg.Token)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", cfg.Token, err)
		}
		mints = append(mints, asset.Mint)
	} else {
		for _, c := range batch {
			mints = append(mints, c.Mint)
		}
	}
	if len(mints) == 0 {
		return nil
	}

	for _, mint := range mints {
		snap, err := s.snapshot(ctx, mint)
		if err != nil {
			if errors.Is(err, marketdata.ErrNotFound) {
				// Too new for the index; next cycle may know it.
				continue
			}
			return fmt.Errorf("snapshot %s: %w", mint, err)
		}

		decision, err := s.eval.Evaluate(st, snap, nil)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		s.recordScan(ctx, st.ID, fmt.Sprintf("%s: %s", mint, decision.Reason))
		if !decision.Fire {
			continue
		}

		asset := &domain.Asset{
			Mint:     mint,
			Symbol:   snap.TokenSymbol,
			Name:     snap.TokenName,
			Decimals: s.resolver.Decimals(ctx, mint),
		}
		return s.fire(ctx, st, asset, snap, domain.SideBuy, cfg.BuyAmount, cfg.SlippageBps, decision.Reason)
	}
	return nil
}

// snapshot fetches a market snapshot, timing the upstream call.
func (s *Scheduler) snapshot(ctx context.Context, mint string) (*domain.MarketSnapshot, error) {
	start := s.now()
	snap, err := s.market.Snapshot(ctx, mint)
	if s.metrics != nil {
		s.metrics.MarketFetchLatency.Observe(s.now().Sub(start).Seconds())
		if err != nil && !errors.Is(err, marketdata.ErrNotFound) {
			s.metrics.UpstreamErrors.WithLabelValues("marketdata").Inc()
		}
	}
	return snap, err
}

// sampleHistory appends the current price to the tick history and
// returns the close series for indicator evaluation.
func (s *Scheduler) sampleHistory(ctx context.Context, mint string, snap *domain.MarketSnapshot) []float64 {
	if snap != nil && snap.PriceUSD > 0 {
		tick := &domain.PriceTick{Mint: mint, TimestampMs: s.now().UnixMilli(), PriceUSD: snap.PriceUSD}
		if err := s.ticks.Append(ctx, tick); err != nil {
			s.log("append tick %s: %v", mint, err)
		}
	}

	history, err := s.ticks.Recent(ctx, mint, s.opts.HistoryLimit)
	if err != nil {
		s.log("tick history %s: %v", mint, err)
		return nil
	}
	closes := make([]float64, len(history))
	for i, t := range history {
		closes[i] = t.PriceUSD
	}
	return closes
}

// fire runs the swap pipeline for a satisfied entry rule. The strategy's
// active flag is re-checked first; a submission that has already started
// runs to completion. Execution attempts are recorded as trades;
// quote-stage failures are holds and leave only an activity entry.
func (s *Scheduler) fire(ctx context.Context, st *domain.Strategy, asset *domain.Asset, snap *domain.MarketSnapshot, side string, amt float64, slippage int, reason string) error {
	if !s.cooldownClear(st.ID) {
		s.recordScan(ctx, st.ID, "fire suppressed by cooldown")
		return nil
	}
	s.recordFire(ctx, st.ID, reason)
	if s.metrics != nil {
		s.metrics.StrategyFires.WithLabelValues(string(st.Type)).Inc()
	}

	current, err := s.strategies.GetByID(ctx, st.ID)
	if err != nil {
		return fmt.Errorf("recheck strategy: %w", err)
	}
	if !current.IsActive {
		s.recordScan(ctx, st.ID, "deactivated before execution")
		return nil
	}

	trade, execErr := s.executeSwap(ctx, st, asset, snap, side, amt, slippage)
	if trade == nil {
		// No execution attempt was made, so no trade exists and the
		// strategy holds for the next cycle. A missing route is a
		// normal market condition, not an error.
		if errors.Is(execErr, jupiter.ErrNoRoute) {
			s.recordScan(ctx, st.ID, "no route, holding")
			return nil
		}
		return execErr
	}

	if insErr := s.trades.Insert(ctx, trade); insErr != nil && !errors.Is(insErr, storage.ErrDuplicateKey) {
		s.log("record trade %s: %v", trade.ID, insErr)
	}
	if s.metrics != nil {
		s.metrics.TradesTotal.WithLabelValues(trade.Status).Inc()
	}
	s.recordTrade(ctx, st.ID, trade)

	// One-shot semantics: a spot strategy is done after its attempt,
	// successful or not.
	if st.Type == domain.StrategyTypeSpot {
		if err := s.strategies.SetActive(ctx, st.ID, false); err != nil {
			s.log("deactivate spot %s: %v", st.ID, err)
		}
		s.eval.Forget(st.ID)
	}

	if execErr != nil {
		return fmt.Errorf("execute: %w", execErr)
	}
	return nil
}

// executeSwap quotes and settles one order. A quote-stage failure is a
// hold: no execution attempt happened, so no trade record is returned
// and the cooldown window stays open. Once a route is in hand the
// attempt is real; the cooldown is stamped and the outcome, success or
// failure, becomes the returned trade. A stale quote is refreshed and
// retried once.
func (s *Scheduler) executeSwap(ctx context.Context, st *domain.Strategy, asset *domain.Asset, snap *domain.MarketSnapshot, side string, amt float64, slippage int) (*domain.Trade, error) {
	firedAt := s.now().UnixMilli()

	inputMint, outputMint := domain.WSOLMint, asset.Mint
	inDecimals := domain.DefaultDecimals
	outDecimals := asset.Decimals
	if side == domain.SideSell {
		inputMint, outputMint = asset.Mint, domain.WSOLMint
		inDecimals, outDecimals = asset.Decimals, domain.DefaultDecimals
	}

	baseAmount, err := amount.FloatToBaseUnits(amt, inDecimals)
	if err != nil {
		return nil, fmt.Errorf("amount conversion: %w", err)
	}

	req := jupiter.QuoteRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		AmountBase:  baseAmount,
		InDecimals:  inDecimals,
		OutDecimals: outDecimals,
		SlippageBps: slippage,
	}

	quote, err := s.fetchQuote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	s.stampCooldown(st.ID)

	trade := &domain.Trade{
		ID:          idhash.ComputeTradeID(st.ID, asset.Mint, side, firedAt),
		OwnerID:     st.OwnerID,
		StrategyID:  st.ID,
		Side:        side,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		InputAmount: amt,
		Status:      domain.TradeStatusFailed,
		CreatedAt:   firedAt,
	}
	if snap != nil {
		trade.PriceUSD = snap.PriceUSD
	}

	execStart := s.now()
	res, err := s.exec.Execute(ctx, quote)
	if errors.Is(err, executor.ErrQuoteExpired) {
		if s.metrics != nil {
			s.metrics.SwapRetries.Inc()
		}
		quote, err = s.fetchQuote(ctx, req)
		if err == nil {
			res, err = s.exec.Execute(ctx, quote)
		}
	}
	if s.metrics != nil {
		s.metrics.ExecutionLatency.Observe(s.now().Sub(execStart).Seconds())
	}
	if err != nil {
		trade.FailReason = err.Error()
		return trade, err
	}

	trade.ID = res.Signature
	trade.TxSignature = res.Signature
	trade.Status = domain.TradeStatusConfirmed
	trade.OutputAmount = res.SettledOutputAmount
	return trade, nil
}

// fetchQuote times the aggregator call.
func (s *Scheduler) fetchQuote(ctx context.Context, req jupiter.QuoteRequest) (*domain.Quote, error) {
	start := s.now()
	quote, err := s.quotes.Quote(ctx, req)
	if s.metrics != nil {
		s.metrics.QuoteLatency.Observe(s.now().Sub(start).Seconds())
		if err != nil {
			s.metrics.UpstreamErrors.WithLabelValues("jupiter").Inc()
		}
	}
	return quote, err
}

// cooldownClear reports whether the strategy is outside its fire
// cooldown window.
func (s *Scheduler) cooldownClear(strategyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastFired[strategyID]
	return !ok || s.now().Sub(last) >= s.opts.FireCooldown
}

// stampCooldown marks the start of an execution attempt. Quote-stage
// holds never reach this, so they do not burn the window.
func (s *Scheduler) stampCooldown(strategyID string) {
	s.mu.Lock()
	s.lastFired[strategyID] = s.now()
	s.mu.Unlock()
}

func strategyOrder(st *domain.Strategy) (token, side string, amt float64, slippage int) {
	switch st.Type {
	case domain.StrategyTypeSpot:
		return st.Spot.Token, st.Spot.Side, st.Spot.Amount, st.Spot.SlippageBps
	case domain.StrategyTypeConditional:
		c := st.Conditional
		return c.Token, c.Side, c.Amount, c.SlippageBps
	}
	return "", "", 0, 0
}

func (s *Scheduler) recordScan(ctx context.Context, strategyID, msg string) {
	s.appendActivity(ctx, strategyID, domain.ActivityScan, msg)
}

func (s *Scheduler) recordFire(ctx context.Context, strategyID, msg string) {
	s.appendActivity(ctx, strategyID, domain.ActivityFire, msg)
}

func (s *Scheduler) recordTrade(ctx context.Context, strategyID string, t *domain.Trade) {
	msg := fmt.Sprintf("%s %s %s status=%s", t.Side, t.InputMint, t.OutputMint, t.Status)
	if t.FailReason != "" {
		msg += " reason=" + t.FailReason
	}
	s.appendActivity(ctx, strategyID, domain.ActivityTrade, msg)
}

func (s *Scheduler) recordError(ctx context.Context, strategyID string, err error) {
	if s.metrics != nil {
		s.metrics.ScanErrors.WithLabelValues(errorKind(err)).Inc()
	}
	s.appendActivity(ctx, strategyID, domain.ActivityError, err.Error())
}

func (s *Scheduler) appendActivity(ctx context.Context, strategyID, kind, msg string) {
	a := &domain.Activity{
		StrategyID: strategyID,
		Kind:       kind,
		Message:    msg,
		CreatedAt:  s.now().UnixMilli(),
	}
	if err := s.activities.Append(ctx, a); err != nil {
		s.log("append activity %s: %v", strategyID, err)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, jupiter.ErrNoRoute):
		return "no_route"
	case errors.Is(err, executor.ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, executor.ErrSimulationFailed):
		return "simulation"
	case errors.Is(err, executor.ErrSubmissionFailed):
		return "submission"
	case errors.Is(err, executor.ErrTimeout):
		return "timeout"
	case errors.Is(err, marketdata.ErrUnavailable), errors.Is(err, jupiter.ErrUnavailable):
		return "upstream"
	default:
		return "other"
	}
}

func (s *Scheduler) log(format string, args ...interface{}) {
	if s.opts.Verbose {
		log.Printf("[scheduler] "+format, args...)
	}
}
