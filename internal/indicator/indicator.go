package indicator

import (
	"errors"

	"solana-strategy-engine/internal/domain"
)

// ErrInsufficientHistory means the sample window is shorter than the
// indicator's warm-up requirement. The caller should skip the cycle and
// wait for more samples.
var ErrInsufficientHistory = errors.New("indicator: insufficient history")

// SMA returns the simple moving average series. The result has
// len(values)-period+1 entries; nil when history is too short.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	result := make([]float64, len(values)-period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	result[0] = sum / float64(period)

	for i := period; i < len(values); i++ {
		sum = sum - values[i-period] + values[i]
		result[i-period+1] = sum / float64(period)
	}
	return result
}

// EMA returns the exponential moving average series, seeded with the
// SMA of the first period values. Nil when history is too short.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	result := make([]float64, len(values))
	multiplier := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < len(values); i++ {
		result[i] = values[i]*multiplier + result[i-1]*(1-multiplier)
	}
	return result[period-1:]
}

// RSI returns the relative strength index series with EMA-smoothed
// gains and losses. Nil when history is shorter than period+1.
func RSI(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period+1 {
		return nil
	}

	gains := make([]float64, len(values)-1)
	losses := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain := EMA(gains, period)
	avgLoss := EMA(losses, period)
	if avgGain == nil || avgLoss == nil {
		return nil
	}

	result := make([]float64, len(avgGain))
	for i := range avgGain {
		if avgLoss[i] == 0 {
			result[i] = 100
		} else {
			rs := avgGain[i] / avgLoss[i]
			result[i] = 100 - 100/(1+rs)
		}
	}
	return result
}

// Latest evaluates the named indicator over the close series and
// returns its most recent value. PRICE is a passthrough of the last
// close.
func Latest(kind domain.Indicator, closes []float64, period int) (float64, error) {
	if kind == domain.IndicatorPrice {
		if len(closes) == 0 {
			return 0, ErrInsufficientHistory
		}
		return closes[len(closes)-1], nil
	}

	var series []float64
	switch kind {
	case domain.IndicatorSMA:
		series = SMA(closes, period)
	case domain.IndicatorEMA:
		series = EMA(closes, period)
	case domain.IndicatorRSI:
		series = RSI(closes, period)
	default:
		return 0, domain.ErrUnknownIndicator
	}
	if len(series) == 0 {
		return 0, ErrInsufficientHistory
	}
	return series[len(series)-1], nil
}
