package domain

import "errors"

// StrategyType discriminates the strategy config variant.
type StrategyType string

// Strategy type constants
const (
	StrategyTypeSpot        StrategyType = "SPOT"
	StrategyTypeSniper      StrategyType = "SNIPER"
	StrategyTypeConditional StrategyType = "CONDITIONAL"
)

// Trade direction constants
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Strategy is a persisted trading strategy. Exactly one of the config
// pointers is set, matching Type. The scheduler only reads configs; the
// owning user (and the scheduler for one-shot SPOT completion) toggles
// IsActive.
type Strategy struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Type        StrategyType

	Spot        *SpotConfig
	Sniper      *SniperConfig
	Conditional *ConditionalConfig

	IsActive  bool
	CreatedAt int64 // Unix timestamp in milliseconds
}

// SpotConfig is a one-shot direct action: fires on the first eligible
// evaluation, then the strategy deactivates.
type SpotConfig struct {
	Side        string  // BUY | SELL
	Token       string  // symbol or mint address
	Amount      float64 // input amount in human units
	SlippageBps int
}

// SniperConfig filters newly observed tokens. Every bound is optional;
// an absent bound imposes no constraint.
type SniperConfig struct {
	Token            string   // optional: watch a specific mint instead of discovery feed
	MaxAgeMinutes    *float64 // pair age upper bound
	MinLiquidityUSD  *float64
	MinVolumeUSD     *float64 // 24h volume lower bound
	MinMarketCapUSD  *float64
	MaxMarketCapUSD  *float64
	NameContains     string // case-insensitive substring match on token name
	BuyAmount        float64
	SlippageBps      int
}

// ConditionalConfig fires when an indicator rule is satisfied.
type ConditionalConfig struct {
	Token       string
	Side        string
	Amount      float64
	SlippageBps int
	Condition   Condition
}

// Indicator kinds for conditional strategies.
type Indicator string

const (
	IndicatorEMA   Indicator = "EMA"
	IndicatorRSI   Indicator = "RSI"
	IndicatorSMA   Indicator = "SMA"
	IndicatorPrice Indicator = "PRICE"
)

// Trigger comparators for conditional strategies.
type Trigger string

const (
	TriggerPriceAbove   Trigger = "price_above"
	TriggerPriceBelow   Trigger = "price_below"
	TriggerPriceTouches Trigger = "price_touches"
	TriggerCrossesAbove Trigger = "crosses_above"
	TriggerCrossesBelow Trigger = "crosses_below"
)

// Condition is the trigger rule of a CONDITIONAL strategy. Crossing
// triggers compare the indicator's current and previous sampled values;
// level triggers use only the current value.
type Condition struct {
	Indicator Indicator
	Period    int      // sampling period for EMA/RSI/SMA, ignored for PRICE
	Timeframe string   // e.g. "1m", "5m"; informational for sampling cadence
	Trigger   Trigger
	Value     *float64 // comparison value; required for all triggers
}

// Validation errors for strategy configs.
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrMissingConfig       = errors.New("strategy config missing for its type")
	ErrConflictingConfig   = errors.New("strategy carries config for a different type")
	ErrInvalidSide         = errors.New("side must be BUY or SELL")
	ErrMissingToken        = errors.New("token reference is required")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidSlippage     = errors.New("slippage must be within (0, 5000] bps")
	ErrUnknownIndicator    = errors.New("unknown indicator")
	ErrUnknownTrigger      = errors.New("unknown trigger")
	ErrMissingCompareValue = errors.New("condition requires a comparison value")
	ErrInvalidPeriod       = errors.New("indicator period must be positive")
)

// Validate checks the strategy config against its type discriminant.
// Rejected strategies are never persisted.
func (s *Strategy) Validate() error {
	switch s.Type {
	case StrategyTypeSpot:
		if s.Spot == nil {
			return ErrMissingConfig
		}
		if s.Sniper != nil || s.Conditional != nil {
			return ErrConflictingConfig
		}
		return s.Spot.validate()
	case StrategyTypeSniper:
		if s.Sniper == nil {
			return ErrMissingConfig
		}
		if s.Spot != nil || s.Conditional != nil {
			return ErrConflictingConfig
		}
		return s.Sniper.validate()
	case StrategyTypeConditional:
		if s.Conditional == nil {
			return ErrMissingConfig
		}
		if s.Spot != nil || s.Sniper != nil {
			return ErrConflictingConfig
		}
		return s.Conditional.validate()
	default:
		return ErrUnknownStrategyType
	}
}

func validSide(side string) bool {
	return side == SideBuy || side == SideSell
}

func validSlippage(bps int) bool {
	return bps > 0 && bps <= 5000
}

func (c *SpotConfig) validate() error {
	if !validSide(c.Side) {
		return ErrInvalidSide
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !validSlippage(c.SlippageBps) {
		return ErrInvalidSlippage
	}
	return nil
}

func (c *SniperConfig) validate() error {
	if c.BuyAmount <= 0 {
		return ErrInvalidAmount
	}
	if !validSlippage(c.SlippageBps) {
		return ErrInvalidSlippage
	}
	return nil
}

func (c *ConditionalConfig) validate() error {
	if !validSide(c.Side) {
		return ErrInvalidSide
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !validSlippage(c.SlippageBps) {
		return ErrInvalidSlippage
	}
	return c.Condition.validate()
}

func (c *Condition) validate() error {
	switch c.Indicator {
	case IndicatorEMA, IndicatorRSI, IndicatorSMA:
		if c.Period <= 0 {
			return ErrInvalidPeriod
		}
	case IndicatorPrice:
	default:
		return ErrUnknownIndicator
	}
	switch c.Trigger {
	case TriggerPriceAbove, TriggerPriceBelow, TriggerPriceTouches,
		TriggerCrossesAbove, TriggerCrossesBelow:
	default:
		return ErrUnknownTrigger
	}
	if c.Value == nil {
		return ErrMissingCompareValue
	}
	return nil
}

// RequiresPrior reports whether the trigger needs the previous sampled
// indicator value in addition to the current one.
func (t Trigger) RequiresPrior() bool {
	return t == TriggerCrossesAbove || t == TriggerCrossesBelow
}
