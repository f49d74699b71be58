package signal

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

func evalEMA(ctx *Context) []model.Signal {
	return priceVsAverage(ctx, model.KindEMA, model.SeriesEMA)
}

func evalSMA(ctx *Context) []model.Signal {
	return priceVsAverage(ctx, model.KindSMA, model.SeriesSMA)
}

// priceVsAverage labels the close relative to a moving average and flags fresh crosses
func priceVsAverage(ctx *Context, kind model.Kind, key model.SeriesKey) []model.Signal {
	avg, ok := ctx.value(key)
	if !ok || avg == 0 {
		return nil
	}
	c := ctx.candle()
	dist := (c.Close - avg) / avg * 100

	var out []model.Signal
	switch {
	case dist > 0:
		out = append(out, newSignal(kind, "price_above", scale(50, 45, dist/ctx.Param("full_distance", 3)), model.Bullish))
	case dist < 0:
		out = append(out, newSignal(kind, "price_below", scale(50, 45, -dist/ctx.Param("full_distance", 3)), model.Bearish))
	}

	if prev, ok := ctx.prevCandle(); ok {
		if prevAvg, ok := ctx.prev(key); ok {
			switch crossed(prev.Close, prevAvg, c.Close, avg) {
			case 1:
				out = append(out, newEvent(kind, "bullish_cross", scale(70, 25, math.Abs(dist)), model.Bullish))
			case -1:
				out = append(out, newEvent(kind, "bearish_cross", scale(70, 25, math.Abs(dist)), model.Bearish))
			}
		}
	}
	return out
}

func evalMACross(ctx *Context) []model.Signal {
	fast, ok1 := ctx.value(model.SeriesSMA)
	slow, ok2 := ctx.value(model.SeriesSMALong)
	if !ok1 || !ok2 || slow == 0 {
		return nil
	}
	spread := (fast - slow) / slow * 100

	var out []model.Signal
	if spread > 0 {
		out = append(out, newSignal(model.KindMACross, "bullish_alignment", scale(55, 35, spread/5), model.Bullish))
	} else if spread < 0 {
		out = append(out, newSignal(model.KindMACross, "bearish_alignment", scale(55, 35, -spread/5), model.Bearish))
	}

	lookback := int(ctx.Param("lookback", 5))
	fastS, slowS := ctx.Indicators.Get(model.SeriesSMA), ctx.Indicators.Get(model.SeriesSMALong)
	for age := 0; age < lookback && ctx.Index-age-1 >= 0; age++ {
		i := ctx.Index - age
		pf, ok1 := fastS.At(i - 1)
		ps, ok2 := slowS.At(i - 1)
		cf, ok3 := fastS.At(i)
		cs, ok4 := slowS.At(i)
		if !(ok1 && ok2 && ok3 && ok4) {
			break
		}
		freshness := 1 - float64(age)/float64(lookback)
		switch crossed(pf, ps, cf, cs) {
		case 1:
			return append(out, newEvent(model.KindMACross, "golden_cross", scale(70, 30, freshness), model.Bullish))
		case -1:
			return append(out, newEvent(model.KindMACross, "death_cross", scale(70, 30, freshness), model.Bearish))
		}
	}
	return out
}

func evalRibbon(ctx *Context) []model.Signal {
	var values []float64
	for i := 0; ; i++ {
		s := ctx.Indicators.Get(model.RibbonKey(i))
		if s == nil {
			break
		}
		v, ok := s.At(ctx.Index)
		if !ok {
			return nil
		}
		values = append(values, v)
	}
	if len(values) < 2 {
		return nil
	}

	up, down := 0, 0
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			up++
		} else if values[i-1] < values[i] {
			down++
		}
	}
	pairs := float64(len(values) - 1)
	switch {
	case up == len(values)-1:
		return []model.Signal{newSignal(model.KindMARibbon, "bullish_aligned", 85, model.Bullish)}
	case down == len(values)-1:
		return []model.Signal{newSignal(model.KindMARibbon, "bearish_aligned", 85, model.Bearish)}
	case up > down:
		return []model.Signal{newSignal(model.KindMARibbon, "bullish_forming", scale(40, 30, float64(up)/pairs), model.Bullish)}
	case down > up:
		return []model.Signal{newSignal(model.KindMARibbon, "bearish_forming", scale(40, 30, float64(down)/pairs), model.Bearish)}
	}
	return []model.Signal{newSignal(model.KindMARibbon, "mixed", 30, model.Neutral)}
}

func evalMACD(ctx *Context) []model.Signal {
	line, ok1 := ctx.value(model.SeriesMACD)
	sig, ok2 := ctx.value(model.SeriesMACDSignal)
	hist, ok3 := ctx.value(model.SeriesMACDHist)
	if !(ok1 && ok2 && ok3) {
		return nil
	}
	price := ctx.candle().Close
	mag := 0.0
	if price > 0 {
		mag = math.Abs(hist) / (0.001 * price)
	}

	var out []model.Signal
	if hist > 0 {
		out = append(out, newSignal(model.KindMACD, "above_signal", scale(50, 40, mag), model.Bullish))
	} else if hist < 0 {
		out = append(out, newSignal(model.KindMACD, "below_signal", scale(50, 40, mag), model.Bearish))
	}
	if line > 0 {
		out = append(out, newSignal(model.KindMACD, "above_zero", 55, model.Bullish))
	} else if line < 0 {
		out = append(out, newSignal(model.KindMACD, "below_zero", 55, model.Bearish))
	}

	pl, ok1 := ctx.prev(model.SeriesMACD)
	ps, ok2 := ctx.prev(model.SeriesMACDSignal)
	ph, ok3 := ctx.prev(model.SeriesMACDHist)
	if ok1 && ok2 {
		switch crossed(pl, ps, line, sig) {
		case 1:
			out = append(out, newEvent(model.KindMACD, "bullish_cross", scale(70, 25, mag), model.Bullish))
		case -1:
			out = append(out, newEvent(model.KindMACD, "bearish_cross", scale(70, 25, mag), model.Bearish))
		}
	}
	if ok3 {
		if hist > ph {
			out = append(out, newSignal(model.KindMACD, "histogram_rising", 50, model.Bullish))
		} else if hist < ph {
			out = append(out, newSignal(model.KindMACD, "histogram_falling", 50, model.Bearish))
		}
	}
	return out
}

func evalADX(ctx *Context) []model.Signal {
	adx, ok1 := ctx.value(model.SeriesADX)
	plus, ok2 := ctx.value(model.SeriesPlusDI)
	minus, ok3 := ctx.value(model.SeriesMinusDI)
	if !(ok1 && ok2 && ok3) {
		return nil
	}

	strong, weak := ctx.Param("strong", 25), ctx.Param("weak", 20)
	bias := biasOf(plus - minus)
	var out []model.Signal
	switch {
	case adx >= strong:
		out = append(out, newSignal(model.KindADX, "strong_trend", scale(60, 40, (adx-strong)/25), bias))
		if bias == model.Bullish {
			out = append(out, newSignal(model.KindADX, "strong_uptrend", scale(60, 40, (adx-strong)/25), bias))
		} else if bias == model.Bearish {
			out = append(out, newSignal(model.KindADX, "strong_downtrend", scale(60, 40, (adx-strong)/25), bias))
		}
	case adx < weak:
		out = append(out, newSignal(model.KindADX, "weak_trend", scale(40, 30, (weak-adx)/weak), model.Neutral))
	default:
		out = append(out, newSignal(model.KindADX, "developing_trend", 45, bias))
	}

	pp, ok1 := ctx.prev(model.SeriesPlusDI)
	pm, ok2 := ctx.prev(model.SeriesMinusDI)
	if ok1 && ok2 {
		switch crossed(pp, pm, plus, minus) {
		case 1:
			out = append(out, newEvent(model.KindADX, "bullish_di_cross", scale(60, 35, adx/50), model.Bullish))
		case -1:
			out = append(out, newEvent(model.KindADX, "bearish_di_cross", scale(60, 35, adx/50), model.Bearish))
		}
	}
	return out
}

func evalPSAR(ctx *Context) []model.Signal {
	trend, ok := ctx.value(model.SeriesPSARTrend)
	sar, ok2 := ctx.value(model.SeriesPSAR)
	if !ok || !ok2 {
		return nil
	}
	price := ctx.candle().Close
	dist := 0.0
	if price > 0 {
		dist = math.Abs(price-sar) / price * 100
	}

	var out []model.Signal
	if trend > 0 {
		out = append(out, newSignal(model.KindPSAR, "bullish", scale(50, 40, dist/3), model.Bullish))
	} else {
		out = append(out, newSignal(model.KindPSAR, "bearish", scale(50, 40, dist/3), model.Bearish))
	}
	if prev, ok := ctx.prev(model.SeriesPSARTrend); ok && prev != trend {
		if trend > 0 {
			out = append(out, newEvent(model.KindPSAR, "bullish_reversal", 75, model.Bullish))
		} else {
			out = append(out, newEvent(model.KindPSAR, "bearish_reversal", 75, model.Bearish))
		}
	}
	return out
}

func evalIchimoku(ctx *Context) []model.Signal {
	a, ok1 := ctx.value(model.SeriesSenkouA)
	b, ok2 := ctx.value(model.SeriesSenkouB)
	if !ok1 || !ok2 {
		return nil
	}
	price := ctx.candle().Close
	top, bottom := math.Max(a, b), math.Min(a, b)

	var out []model.Signal
	switch {
	case price > top && top > 0:
		out = append(out, newSignal(model.KindIchimoku, "above_cloud", scale(60, 35, (price-top)/top*100/3), model.Bullish))
	case price < bottom && bottom > 0:
		out = append(out, newSignal(model.KindIchimoku, "below_cloud", scale(60, 35, (bottom-price)/bottom*100/3), model.Bearish))
	default:
		out = append(out, newSignal(model.KindIchimoku, "in_cloud", 40, model.Neutral))
	}

	t, ok1 := ctx.value(model.SeriesTenkan)
	k, ok2 := ctx.value(model.SeriesKijun)
	pt, ok3 := ctx.prev(model.SeriesTenkan)
	pk, ok4 := ctx.prev(model.SeriesKijun)
	if ok1 && ok2 && ok3 && ok4 {
		switch crossed(pt, pk, t, k) {
		case 1:
			out = append(out, newEvent(model.KindIchimoku, "tk_bullish_cross", 70, model.Bullish))
		case -1:
			out = append(out, newEvent(model.KindIchimoku, "tk_bearish_cross", 70, model.Bearish))
		}
	}
	return out
}
