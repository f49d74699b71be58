package technical

import (
	"math"
	"sort"

	"github.com/Alias1177/tradecore/internal/model"
)

// FibRatios are the retracement ratios reported by FibonacciLevels
var FibRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

// PivotPoints calculates classic floor pivots from the period candles that precede target
func PivotPoints(candles []model.Candle, target, period int) *model.PivotLevels {
	if period <= 0 || target-period < 0 || target >= len(candles) {
		return nil
	}
	high := highestHigh(candles, target-1, period)
	low := lowestLow(candles, target-1, period)
	closePrice := candles[target-1].Close

	p := (high + low + closePrice) / 3
	return &model.PivotLevels{
		Pivot: p,
		R1:    2*p - low,
		S1:    2*p - high,
		R2:    p + (high - low),
		S2:    p - (high - low),
		R3:    high + 2*(p-low),
		S3:    low - 2*(high-p),
	}
}

// FibonacciLevels calculates retracements over the swing of the lookback window ending at target
func FibonacciLevels(candles []model.Candle, target, lookback int) *model.FibonacciLevels {
	if lookback <= 1 || target-lookback+1 < 0 || target >= len(candles) {
		return nil
	}
	hiIdx, loIdx := target-lookback+1, target-lookback+1
	for i := target - lookback + 1; i <= target; i++ {
		if candles[i].High > candles[hiIdx].High {
			hiIdx = i
		}
		if candles[i].Low < candles[loIdx].Low {
			loIdx = i
		}
	}
	high, low := candles[hiIdx].High, candles[loIdx].Low
	if high-low <= 0 {
		return nil
	}

	fib := &model.FibonacciLevels{High: high, Low: low, Uptrend: loIdx < hiIdx}
	for _, r := range FibRatios {
		price := low + r*(high-low)
		if fib.Uptrend {
			price = high - r*(high-low)
		}
		fib.Levels = append(fib.Levels, model.FibLevel{Ratio: r, Price: price})
	}
	return fib
}

// SupportResistanceZones clusters swing highs and lows up to target into price zones.
// Swings within tolerance (a fraction of price) merge. Zones below the target close are
// support, above are resistance; nearest first, at most maxPerSide of each.
func SupportResistanceZones(candles []model.Candle, target, swing int, tolerance float64, maxPerSide int) []model.Level {
	if swing <= 0 || target >= len(candles) || target < 2*swing {
		return nil
	}

	type cluster struct {
		sum     float64
		touches int
	}
	var clusters []*cluster
	add := func(price float64) {
		for _, c := range clusters {
			mean := c.sum / float64(c.touches)
			if math.Abs(price-mean) <= mean*tolerance {
				c.sum += price
				c.touches++
				return
			}
		}
		clusters = append(clusters, &cluster{sum: price, touches: 1})
	}

	for i := swing; i <= target-swing; i++ {
		if isSwingHigh(candles, i, swing) {
			add(candles[i].High)
		}
		if isSwingLow(candles, i, swing) {
			add(candles[i].Low)
		}
	}

	current := candles[target].Close
	var support, resistance []model.Level
	for _, c := range clusters {
		lvl := model.Level{
			Price:    c.sum / float64(c.touches),
			Touches:  c.touches,
			Strength: math.Min(1, float64(c.touches)/5),
		}
		switch {
		case lvl.Price < current:
			lvl.Kind = "support"
			support = append(support, lvl)
		case lvl.Price > current:
			lvl.Kind = "resistance"
			resistance = append(resistance, lvl)
		}
	}

	sort.Slice(support, func(i, j int) bool { return support[i].Price > support[j].Price })
	sort.Slice(resistance, func(i, j int) bool { return resistance[i].Price < resistance[j].Price })
	if maxPerSide > 0 {
		if len(support) > maxPerSide {
			support = support[:maxPerSide]
		}
		if len(resistance) > maxPerSide {
			resistance = resistance[:maxPerSide]
		}
	}
	return append(support, resistance...)
}

func isSwingHigh(candles []model.Candle, i, swing int) bool {
	for j := 1; j <= swing; j++ {
		if candles[i].High <= candles[i-j].High || candles[i].High <= candles[i+j].High {
			return false
		}
	}
	return true
}

func isSwingLow(candles []model.Candle, i, swing int) bool {
	for j := 1; j <= swing; j++ {
		if candles[i].Low >= candles[i-j].Low || candles[i].Low >= candles[i+j].Low {
			return false
		}
	}
	return true
}
