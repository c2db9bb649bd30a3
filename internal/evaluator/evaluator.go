package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"solana-strategy-engine/internal/domain"
	"solana-strategy-engine/internal/indicator"
)

// ErrMissingSnapshot means the strategy needs market state the caller
// did not supply.
var ErrMissingSnapshot = errors.New("evaluator: market snapshot required")

// touchBandPct is the relative tolerance of the price_touches trigger.
// The trigger fires once inside the band and re-arms after the value
// leaves it.
const touchBandPct = 0.005

// Decision is the outcome of one strategy evaluation.
type Decision struct {
	Fire   bool
	Reason string // human-readable, recorded in the activity trail
}

// Evaluator decides whether a strategy's entry rule is satisfied. It is
// read-only with respect to market state and strategy records, but
// keeps per-strategy trigger state (prior indicator sample, touch
// arming) between cycles.
type Evaluator struct {
	mu     sync.Mutex
	states map[string]*triggerState
}

type triggerState struct {
	prior    float64
	hasPrior bool
	armed    bool
}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{states: make(map[string]*triggerState)}
}

// Forget drops the trigger state for a strategy. Called when a strategy
// deactivates so a later activation starts fresh.
func (e *Evaluator) Forget(strategyID string) {
	e.mu.Lock()
	delete(e.states, strategyID)
	e.mu.Unlock()
}

// Evaluate applies the strategy's entry rule to the current market
// state. closes is the sampled price history for the strategy's token,
// oldest first, used by indicator triggers.
func (e *Evaluator) Evaluate(s *domain.Strategy, snap *domain.MarketSnapshot, closes []float64) (Decision, error) {
	switch s.Type {
	case domain.StrategyTypeSpot:
		return Decision{Fire: true, Reason: "spot order eligible"}, nil
	case domain.StrategyTypeSniper:
		return evaluateSniper(s.Sniper, snap)
	case domain.StrategyTypeConditional:
		return e.evaluateConditional(s, snap, closes)
	default:
		return Decision{}, domain.ErrUnknownStrategyType
	}
}

func evaluateSniper(cfg *domain.SniperConfig, snap *domain.MarketSnapshot) (Decision, error) {
	if snap == nil {
		return Decision{}, ErrMissingSnapshot
	}

	if cfg.MaxAgeMinutes != nil {
		age := snap.AgeMinutes()
		if age < 0 {
			return Decision{Reason: "pair age unknown"}, nil
		}
		if age > *cfg.MaxAgeMinutes {
			return Decision{Reason: fmt.Sprintf("pair age %.1fm exceeds %.1fm", age, *cfg.MaxAgeMinutes)}, nil
		}
	}
	if cfg.MinLiquidityUSD != nil && snap.LiquidityUSD < *cfg.MinLiquidityUSD {
		return Decision{Reason: fmt.Sprintf("liquidity $%.0f below $%.0f", snap.LiquidityUSD, *cfg.MinLiquidityUSD)}, nil
	}
	if cfg.MinVolumeUSD != nil && snap.Volume24hUSD < *cfg.MinVolumeUSD {
		return Decision{Reason: fmt.Sprintf("24h volume $%.0f below $%.0f", snap.Volume24hUSD, *cfg.MinVolumeUSD)}, nil
	}
	if cfg.MinMarketCapUSD != nil && snap.MarketCapUSD < *cfg.MinMarketCapUSD {
		return Decision{Reason: fmt.Sprintf("market cap $%.0f below $%.0f", snap.MarketCapUSD, *cfg.MinMarketCapUSD)}, nil
	}
	if cfg.MaxMarketCapUSD != nil && snap.MarketCapUSD > *cfg.MaxMarketCapUSD {
		return Decision{Reason: fmt.Sprintf("market cap $%.0f above $%.0f", snap.MarketCapUSD, *cfg.MaxMarketCapUSD)}, nil
	}
	if cfg.NameContains != "" {
		if !strings.Contains(strings.ToLower(snap.TokenName), strings.ToLower(cfg.NameContains)) {
			return Decision{Reason: fmt.Sprintf("name %q does not contain %q", snap.TokenName, cfg.NameContains)}, nil
		}
	}
	return Decision{Fire: true, Reason: "all sniper filters passed"}, nil
}

func (e *Evaluator) evaluateConditional(s *domain.Strategy, snap *domain.MarketSnapshot, closes []float64) (Decision, error) {
	cond := s.Conditional.Condition
	if cond.Value == nil {
		return Decision{}, domain.ErrMissingCompareValue
	}
	target := *cond.Value

	// PRICE reads the live snapshot; smoothed indicators need history.
	var current float64
	if cond.Indicator == domain.IndicatorPrice && snap != nil {
		current = snap.PriceUSD
	} else {
		v, err := indicator.Latest(cond.Indicator, closes, cond.Period)
		if err != nil {
			return Decision{}, err
		}
		current = v
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[s.ID]
	if !ok {
		st = &triggerState{armed: true}
		e.states[s.ID] = st
	}
	prior, hasPrior := st.prior, st.hasPrior
	st.prior = current
	st.hasPrior = true

	label := string(cond.Indicator)
	switch cond.Trigger {
	case domain.TriggerPriceAbove:
		if current > target {
			return Decision{Fire: true, Reason: fmt.Sprintf("%s %.6g above %.6g", label, current, target)}, nil
		}
		return Decision{Reason: fmt.Sprintf("%s %.6g not above %.6g", label, current, target)}, nil

	case domain.TriggerPriceBelow:
		if current < target {
			return Decision{Fire: true, Reason: fmt.Sprintf("%s %.6g below %.6g", label, current, target)}, nil
		}
		return Decision{Reason: fmt.Sprintf("%s %.6g not below %.6g", label, current, target)}, nil

	case domain.TriggerCrossesAbove:
		if hasPrior && prior <= target && current > target {
			return Decision{Fire: true, Reason: fmt.Sprintf("%s crossed above %.6g (%.6g -> %.6g)", label, target, prior, current)}, nil
		}
		return Decision{Reason: fmt.Sprintf("%s %.6g has not crossed above %.6g", label, current, target)}, nil

	case domain.TriggerCrossesBelow:
		if hasPrior && prior >= target && current < target {
			return Decision{Fire: true, Reason: fmt.Sprintf("%s crossed below %.6g (%.6g -> %.6g)", label, target, prior, current)}, nil
		}
		return Decision{Reason: fmt.Sprintf("%s %.6g has not crossed below %.6g", label, current, target)}, nil

	case domain.TriggerPriceTouches:
		inBand := target != 0 && math.Abs(current-target)/math.Abs(target) <= touchBandPct
		if inBand && st.armed {
			st.armed = false
			return Decision{Fire: true, Reason: fmt.Sprintf("%s %.6g touched %.6g", label, current, target)}, nil
		}
		if !inBand {
			st.armed = true
		}
		return Decision{Reason: fmt.Sprintf("%s %.6g away from %.6g", label, current, target)}, nil

	default:
		return Decision{}, domain.ErrUnknownTrigger
	}
}
