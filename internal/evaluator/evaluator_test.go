package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-strategy-engine/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func conditional(id string, cond domain.Condition) *domain.Strategy {
	return &domain.Strategy{
		ID:   id,
		Type: domain.StrategyTypeConditional,
		Conditional: &domain.ConditionalConfig{
			Token:       "SOL",
			Side:        domain.SideBuy,
			Amount:      1,
			SlippageBps: 50,
			Condition:   cond,
		},
	}
}

func TestSpotAlwaysFires(t *testing.T) {
	e := New()
	s := &domain.Strategy{Type: domain.StrategyTypeSpot, Spot: &domain.SpotConfig{}}

	d, err := e.Evaluate(s, nil, nil)
	require.NoError(t, err)
	assert.True(t, d.Fire)
}

func TestSniperFilters(t *testing.T) {
	e := New()
	snap := &domain.MarketSnapshot{
		TokenName:     "Sample Cat Coin",
		LiquidityUSD:  25000,
		Volume24hUSD:  9000,
		MarketCapUSD:  400000,
		PairCreatedAt: 1_000_000,
		ObservedAt:    1_000_000 + 10*60_000, // 10 minutes later
	}

	tests := []struct {
		name string
		cfg  domain.SniperConfig
		fire bool
	}{
		{"no bounds", domain.SniperConfig{}, true},
		{"age within bound", domain.SniperConfig{MaxAgeMinutes: ptr(30.0)}, true},
		{"age exceeds bound", domain.SniperConfig{MaxAgeMinutes: ptr(5.0)}, false},
		{"liquidity ok", domain.SniperConfig{MinLiquidityUSD: ptr(10000.0)}, true},
		{"liquidity too low", domain.SniperConfig{MinLiquidityUSD: ptr(50000.0)}, false},
		{"volume too low", domain.SniperConfig{MinVolumeUSD: ptr(20000.0)}, false},
		{"mcap below min", domain.SniperConfig{MinMarketCapUSD: ptr(500000.0)}, false},
		{"mcap above max", domain.SniperConfig{MaxMarketCapUSD: ptr(100000.0)}, false},
		{"name match", domain.SniperConfig{NameContains: "cat"}, true},
		{"name mismatch", domain.SniperConfig{NameContains: "dog"}, false},
		{"all bounds pass", domain.SniperConfig{
			MaxAgeMinutes:   ptr(30.0),
			MinLiquidityUSD: ptr(10000.0),
			MinVolumeUSD:    ptr(5000.0),
			NameContains:    "Cat",
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &domain.Strategy{Type: domain.StrategyTypeSniper, Sniper: &tt.cfg}
			d, err := e.Evaluate(s, snap, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.fire, d.Fire, d.Reason)
		})
	}
}

func TestSniperUnknownAge(t *testing.T) {
	e := New()
	s := &domain.Strategy{
		Type:   domain.StrategyTypeSniper,
		Sniper: &domain.SniperConfig{MaxAgeMinutes: ptr(30.0)},
	}
	snap := &domain.MarketSnapshot{PairCreatedAt: 0, ObservedAt: 1000}

	d, err := e.Evaluate(s, snap, nil)
	require.NoError(t, err)
	assert.False(t, d.Fire)
}

func TestSniperNeedsSnapshot(t *testing.T) {
	e := New()
	s := &domain.Strategy{Type: domain.StrategyTypeSniper, Sniper: &domain.SniperConfig{}}

	_, err := e.Evaluate(s, nil, nil)
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestLevelTriggers(t *testing.T) {
	e := New()

	above := conditional("above", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerPriceAbove,
		Value:     ptr(100.0),
	})
	below := conditional("below", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerPriceBelow,
		Value:     ptr(100.0),
	})

	cases := []struct {
		price               float64
		fireAbove, fireBelow bool
	}{
		{150, true, false},
		{100, false, false},
		{50, false, true},
	}
	for _, c := range cases {
		snap := &domain.MarketSnapshot{PriceUSD: c.price}
		d, err := e.Evaluate(above, snap, nil)
		require.NoError(t, err)
		assert.Equal(t, c.fireAbove, d.Fire, "price_above at %v", c.price)

		d, err = e.Evaluate(below, snap, nil)
		require.NoError(t, err)
		assert.Equal(t, c.fireBelow, d.Fire, "price_below at %v", c.price)
	}
}

func TestCrossesAboveFiresOncePerTransition(t *testing.T) {
	e := New()
	s := conditional("cross", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerCrossesAbove,
		Value:     ptr(100.0),
	})

	fires := 0
	for _, price := range []float64{95, 98, 105, 110, 112, 90, 104} {
		d, err := e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: price}, nil)
		require.NoError(t, err)
		if d.Fire {
			fires++
		}
	}
	// 98 -> 105 and 90 -> 104 are the only transitions.
	assert.Equal(t, 2, fires)
}

func TestCrossesAboveNoFireOnFirstSample(t *testing.T) {
	e := New()
	s := conditional("first", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerCrossesAbove,
		Value:     ptr(100.0),
	})

	// Already above the level on the very first observation.
	d, err := e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: 120}, nil)
	require.NoError(t, err)
	assert.False(t, d.Fire)
}

func TestCrossesBelow(t *testing.T) {
	e := New()
	s := conditional("cb", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerCrossesBelow,
		Value:     ptr(100.0),
	})

	var fired []float64
	for _, price := range []float64{110, 105, 95, 92, 101, 99} {
		d, err := e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: price}, nil)
		require.NoError(t, err)
		if d.Fire {
			fired = append(fired, price)
		}
	}
	assert.Equal(t, []float64{95, 99}, fired)
}

func TestPriceTouchesRearm(t *testing.T) {
	e := New()
	s := conditional("touch", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerPriceTouches,
		Value:     ptr(100.0),
	})

	fires := 0
	// Approach, linger inside the band, leave, approach again.
	for _, price := range []float64{90, 99.8, 100.1, 100.3, 110, 100.2} {
		d, err := e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: price}, nil)
		require.NoError(t, err)
		if d.Fire {
			fires++
		}
	}
	assert.Equal(t, 2, fires)
}

func TestConditionalIndicatorHistory(t *testing.T) {
	e := New()
	s := conditional("sma", domain.Condition{
		Indicator: domain.IndicatorSMA,
		Period:    3,
		Trigger:   domain.TriggerPriceAbove,
		Value:     ptr(3.5),
	})

	// SMA(3) of the last window is (3+4+5)/3 = 4.
	d, err := e.Evaluate(s, nil, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.True(t, d.Fire)

	// Not enough history is an error, not a fire.
	_, err = e.Evaluate(s, nil, []float64{1})
	assert.Error(t, err)
}

func TestForgetResetsState(t *testing.T) {
	e := New()
	s := conditional("reset", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerCrossesAbove,
		Value:     ptr(100.0),
	})

	d, err := e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: 95}, nil)
	require.NoError(t, err)
	require.False(t, d.Fire)

	e.Forget(s.ID)

	// Post-reset the first sample cannot fire even above the level.
	d, err = e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: 120}, nil)
	require.NoError(t, err)
	assert.False(t, d.Fire)
}

func TestMissingCompareValue(t *testing.T) {
	e := New()
	s := conditional("noval", domain.Condition{
		Indicator: domain.IndicatorPrice,
		Trigger:   domain.TriggerPriceAbove,
	})

	_, err := e.Evaluate(s, &domain.MarketSnapshot{PriceUSD: 1}, nil)
	assert.ErrorIs(t, err, domain.ErrMissingCompareValue)
}
