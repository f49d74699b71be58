package technical

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// SMA calculates the simple moving average. A window containing NaN yields NaN.
func SMA(values []float64, period int) model.Series {
	out := model.NewSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA calculates the exponential moving average, seeded with the SMA of the first
// period values after any leading NaN warm-up.
func EMA(values []float64, period int) model.Series {
	out := model.NewSeries(len(values))
	start := firstFinite(values)
	if period <= 0 || start < 0 || len(values)-start < period {
		return out
	}

	var sum float64
	for i := start; i < start+period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[start+period-1] = prev

	k := 2.0 / float64(period+1)
	for i := start + period; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		prev = values[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// WMA calculates the linearly weighted moving average
func WMA(values []float64, period int) model.Series {
	out := model.NewSeries(len(values))
	if period <= 0 {
		return out
	}
	denom := float64(period*(period+1)) / 2
	for i := period - 1; i < len(values); i++ {
		var sum float64
		for j := 0; j < period; j++ {
			sum += values[i-period+1+j] * float64(j+1)
		}
		out[i] = sum / denom
	}
	return out
}

// Ribbon calculates one EMA per period, fastest first
func Ribbon(values []float64, periods []int) []model.Series {
	out := make([]model.Series, len(periods))
	for i, p := range periods {
		out[i] = EMA(values, p)
	}
	return out
}

// wilderSmooth is an RMA seeded with the mean of the first period finite values
func wilderSmooth(values []float64, period int) model.Series {
	out := model.NewSeries(len(values))
	start := firstFinite(values)
	if period <= 0 || start < 0 || len(values)-start < period {
		return out
	}
	var sum float64
	for i := start; i < start+period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[start+period-1] = prev
	p := float64(period)
	for i := start + period; i < len(values); i++ {
		prev = (prev*(p-1) + values[i]) / p
		out[i] = prev
	}
	return out
}

func stdDev(values []float64, end, period int, mean float64) float64 {
	var variance float64
	for j := end - period + 1; j <= end; j++ {
		variance += math.Pow(values[j]-mean, 2)
	}
	return math.Sqrt(variance / float64(period))
}

func highestHigh(candles []model.Candle, end, period int) float64 {
	h := math.Inf(-1)
	for j := end - period + 1; j <= end; j++ {
		h = math.Max(h, candles[j].High)
	}
	return h
}

func lowestLow(candles []model.Candle, end, period int) float64 {
	l := math.Inf(1)
	for j := end - period + 1; j <= end; j++ {
		l = math.Min(l, candles[j].Low)
	}
	return l
}

func firstFinite(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

func volumes(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

func typicalPrices(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.TypicalPrice()
	}
	return out
}

func medianPrices(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = (c.High + c.Low) / 2
	}
	return out
}
