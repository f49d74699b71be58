package technical

import "github.com/Alias1177/tradecore/internal/model"

// BollingerBands calculates upper, middle and lower bands
func BollingerBands(closes []float64, period int, mult float64) (upper, middle, lower model.Series) {
	n := len(closes)
	upper, lower = model.NewSeries(n), model.NewSeries(n)
	middle = SMA(closes, period)
	for i := range closes {
		m, ok := middle.At(i)
		if !ok {
			continue
		}
		sd := stdDev(closes, i, period, m)
		upper[i] = m + sd*mult
		lower[i] = m - sd*mult
	}
	return upper, middle, lower
}

// BandWidth returns (upper-lower)/middle
func BandWidth(upper, middle, lower model.Series) model.Series {
	out := model.NewSeries(len(middle))
	for i := range out {
		u, ok1 := upper.At(i)
		m, ok2 := middle.At(i)
		l, ok3 := lower.At(i)
		if ok1 && ok2 && ok3 && m != 0 {
			out[i] = (u - l) / m
		}
	}
	return out
}

// KeltnerChannels builds bands at mult*ATR around a precomputed EMA
func KeltnerChannels(ema, atr model.Series, mult float64) (upper, middle, lower model.Series) {
	n := len(ema)
	upper, middle, lower = model.NewSeries(n), model.NewSeries(n), model.NewSeries(n)
	for i := 0; i < n; i++ {
		m, ok1 := ema.At(i)
		a, ok2 := atr.At(i)
		if !ok1 || !ok2 {
			continue
		}
		middle[i] = m
		upper[i] = m + a*mult
		lower[i] = m - a*mult
	}
	return upper, middle, lower
}

// DonchianChannels are the highest high and lowest low over period
func DonchianChannels(candles []model.Candle, period int) (upper, middle, lower model.Series) {
	n := len(candles)
	upper, middle, lower = model.NewSeries(n), model.NewSeries(n), model.NewSeries(n)
	if period <= 0 {
		return upper, middle, lower
	}
	for i := period - 1; i < n; i++ {
		hh := highestHigh(candles, i, period)
		ll := lowestLow(candles, i, period)
		upper[i], lower[i] = hh, ll
		middle[i] = (hh + ll) / 2
	}
	return upper, middle, lower
}

// Squeeze flags candles where the Bollinger Bands sit inside the Keltner Channels (1 = on)
// and returns a momentum reading: close minus the mean of the Donchian midline and the EMA.
func Squeeze(candles []model.Candle, bbUpper, bbLower, kcUpper, kcMiddle, kcLower model.Series, period int) (on, mom model.Series) {
	n := len(candles)
	on, mom = model.NewSeries(n), model.NewSeries(n)
	for i := 0; i < n; i++ {
		bu, ok1 := bbUpper.At(i)
		bl, ok2 := bbLower.At(i)
		ku, ok3 := kcUpper.At(i)
		kl, ok4 := kcLower.At(i)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		if bu < ku && bl > kl {
			on[i] = 1
		} else {
			on[i] = 0
		}

		km, ok := kcMiddle.At(i)
		if !ok || i < period-1 || period <= 0 {
			continue
		}
		mid := (highestHigh(candles, i, period) + lowestLow(candles, i, period)) / 2
		mom[i] = candles[i].Close - (mid+km)/2
	}
	return on, mom
}

// VolatilityRatio compares short and long ATR at index i. 1 means unchanged.
func VolatilityRatio(short, long model.Series, i int) float64 {
	s, ok1 := short.At(i)
	l, ok2 := long.At(i)
	if !ok1 || !ok2 || l == 0 {
		return 1
	}
	return s / l
}
