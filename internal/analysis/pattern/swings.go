package pattern

import "github.com/Alias1177/tradecore/internal/model"

// findSwingPoints returns indices of swing highs and lows that have strength candles on each
// side, considering candles up to and including end.
func findSwingPoints(candles []model.Candle, end, strength int) (highs, lows []int) {
	for i := strength; i <= end-strength; i++ {
		isHigh, isLow := true, true
		for j := 1; j <= strength; j++ {
			if candles[i].High <= candles[i-j].High || candles[i].High < candles[i+j].High {
				isHigh = false
			}
			if candles[i].Low >= candles[i-j].Low || candles[i].Low > candles[i+j].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, i)
		}
		if isLow {
			lows = append(lows, i)
		}
	}
	return highs, lows
}
