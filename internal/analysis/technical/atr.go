package technical

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// ATROptions holds the outlier heuristics applied when Validate is set
type ATROptions struct {
	Validate             bool    `yaml:"validate" default:"true"`
	MaxPriceMultiple     float64 `yaml:"max_price_multiple" default:"10" validate:"gt=1"`
	MaxGapFraction       float64 `yaml:"max_gap_fraction" default:"0.5" validate:"gt=0"`
	TrueRangeCapFraction float64 `yaml:"true_range_cap_fraction" default:"0.25" validate:"gt=0"`
	ATRCapFraction       float64 `yaml:"atr_cap_fraction" default:"0.1" validate:"gt=0"`
}

// DefaultATROptions returns the validated configuration
func DefaultATROptions() ATROptions {
	return ATROptions{
		Validate:             true,
		MaxPriceMultiple:     10,
		MaxGapFraction:       0.5,
		TrueRangeCapFraction: 0.25,
		ATRCapFraction:       0.10,
	}
}

// TrueRange returns the per-candle true range. With validation, corrupted candles take the
// previous valid true range (0 at the first candle) and each value is capped to a fraction
// of that candle's close.
func TrueRange(candles []model.Candle, opts ATROptions) []float64 {
	tr := make([]float64, len(candles))
	maxValid := 0.0
	if opts.Validate {
		maxValid = MaxValidPrice(candles, opts.MaxPriceMultiple)
	}

	lastValid := 0.0
	for i, c := range candles {
		if opts.Validate && IsCorrupted(candles, i, maxValid, opts) {
			tr[i] = lastValid
			continue
		}

		v := c.High - c.Low
		if i > 0 {
			prev := candles[i-1].Close
			v = math.Max(v, math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))
		}
		if opts.Validate {
			v = math.Min(v, c.Close*opts.TrueRangeCapFraction)
		}
		tr[i] = v
		lastValid = v
	}
	return tr
}

// ATR calculates the Wilder-smoothed Average True Range.
// The result has len(candles) entries; the first valid value is at period-1.
func ATR(candles []model.Candle, period int, opts ATROptions) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 || len(candles) < period {
		return out
	}

	tr := TrueRange(candles, opts)
	capAt := func(i int, v float64) float64 {
		if opts.Validate && finitePositive(candles[i].Close) {
			return math.Min(v, candles[i].Close*opts.ATRCapFraction)
		}
		return v
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	atr := capAt(period-1, sum/float64(period))
	out[period-1] = atr

	p := float64(period)
	for i := period; i < len(candles); i++ {
		atr = capAt(i, (atr*(p-1)+tr[i])/p)
		out[i] = atr
	}
	return out
}
