package technical

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// RSI calculates the Relative Strength Index with Wilder smoothing
func RSI(closes []float64, period int) model.Series {
	out := model.NewSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// Stochastic calculates %K and its %D moving average. A flat range reads 50.
func Stochastic(candles []model.Candle, kPeriod, dPeriod int) (k, d model.Series) {
	k = model.NewSeries(len(candles))
	if kPeriod <= 0 {
		return k, model.NewSeries(len(candles))
	}
	for i := kPeriod - 1; i < len(candles); i++ {
		hh := highestHigh(candles, i, kPeriod)
		ll := lowestLow(candles, i, kPeriod)
		if hh-ll > 0 {
			k[i] = (candles[i].Close - ll) / (hh - ll) * 100
		} else {
			k[i] = 50
		}
	}
	return k, smaFrom(k, dPeriod)
}

// StochRSI applies the stochastic formula to an RSI series
func StochRSI(rsi model.Series, period, dPeriod int) (k, d model.Series) {
	k = model.NewSeries(len(rsi))
	if period <= 0 {
		return k, model.NewSeries(len(rsi))
	}
	for i := range rsi {
		if !windowValid(rsi, i, period) {
			continue
		}
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hi = math.Max(hi, rsi[j])
			lo = math.Min(lo, rsi[j])
		}
		if hi-lo > 0 {
			k[i] = (rsi[i] - lo) / (hi - lo) * 100
		} else {
			k[i] = 50
		}
	}
	return k, smaFrom(k, dPeriod)
}

// WilliamsR calculates Williams %R in [-100, 0]
func WilliamsR(candles []model.Candle, period int) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(candles); i++ {
		hh := highestHigh(candles, i, period)
		ll := lowestLow(candles, i, period)
		if hh-ll > 0 {
			out[i] = (hh - candles[i].Close) / (hh - ll) * -100
		} else {
			out[i] = -50
		}
	}
	return out
}

// CCI calculates the Commodity Channel Index over typical price
func CCI(candles []model.Candle, period int) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 {
		return out
	}
	tp := typicalPrices(candles)
	mean := SMA(tp, period)
	for i := period - 1; i < len(candles); i++ {
		var dev float64
		for j := i - period + 1; j <= i; j++ {
			dev += math.Abs(tp[j] - mean[i])
		}
		dev /= float64(period)
		if dev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - mean[i]) / (0.015 * dev)
	}
	return out
}

// ROC calculates the percentage rate of change over period candles
func ROC(closes []float64, period int) model.Series {
	out := model.NewSeries(len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		base := closes[i-period]
		if base != 0 {
			out[i] = (closes[i] - base) / base * 100
		}
	}
	return out
}

// AwesomeOscillator is SMA(5) minus SMA(34) of the median price
func AwesomeOscillator(candles []model.Candle, fast, slow int) model.Series {
	mp := medianPrices(candles)
	f := SMA(mp, fast)
	s := SMA(mp, slow)
	out := model.NewSeries(len(candles))
	for i := range out {
		a, ok1 := f.At(i)
		b, ok2 := s.At(i)
		if ok1 && ok2 {
			out[i] = a - b
		}
	}
	return out
}

// smaFrom averages a series that may carry a NaN warm-up
func smaFrom(s model.Series, period int) model.Series {
	out := model.NewSeries(len(s))
	if period <= 0 {
		return out
	}
	for i := range s {
		if !windowValid(s, i, period) {
			continue
		}
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += s[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

func windowValid(s model.Series, end, period int) bool {
	if end-period+1 < 0 {
		return false
	}
	for j := end - period + 1; j <= end; j++ {
		if !s.Valid(j) {
			return false
		}
	}
	return true
}
