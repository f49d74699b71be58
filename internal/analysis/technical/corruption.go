package technical

import (
	"math"
	"sort"

	"github.com/Alias1177/tradecore/internal/model"
)

// MaxValidPrice returns the largest close that stays within multiple times the median close.
// Non-finite and non-positive closes are ignored. Returns 0 when no close qualifies.
func MaxValidPrice(candles []model.Candle, multiple float64) float64 {
	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		if finitePositive(c.Close) {
			closes = append(closes, c.Close)
		}
	}
	if len(closes) == 0 {
		return 0
	}
	sort.Float64s(closes)
	median := closes[len(closes)/2]
	if len(closes)%2 == 0 {
		median = (closes[len(closes)/2-1] + closes[len(closes)/2]) / 2
	}

	limit := median * multiple
	maxValid := 0.0
	for _, c := range closes {
		if c <= limit && c > maxValid {
			maxValid = c
		}
	}
	return maxValid
}

// IsCorrupted reports whether candle i looks like bad data: non-finite or non-positive prices,
// an extreme high/low relative to maxValid, or a gap from the previous close larger than
// MaxGapFraction of maxValid.
func IsCorrupted(candles []model.Candle, i int, maxValid float64, opts ATROptions) bool {
	c := candles[i]
	if !finitePositive(c.High) || !finitePositive(c.Low) || !finitePositive(c.Close) || c.High < c.Low {
		return true
	}
	if maxValid <= 0 {
		return false
	}
	limit := maxValid * opts.MaxPriceMultiple
	if c.High > limit || c.Low > limit {
		return true
	}
	if i > 0 {
		prev := candles[i-1].Close
		if finitePositive(prev) && math.Abs(c.Open-prev) > maxValid*opts.MaxGapFraction {
			return true
		}
	}
	return false
}

// CorruptedCandles lists the indices IsCorrupted flags for the whole slice
func CorruptedCandles(candles []model.Candle, opts ATROptions) []int {
	maxValid := MaxValidPrice(candles, opts.MaxPriceMultiple)
	var out []int
	for i := range candles {
		if IsCorrupted(candles, i, maxValid, opts) {
			out = append(out, i)
		}
	}
	return out
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
