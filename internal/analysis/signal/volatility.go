package signal

import (
	"math"

	"github.com/Alias1177/tradecore/internal/analysis/technical"
	"github.com/Alias1177/tradecore/internal/model"
)

func evalBollinger(ctx *Context) []model.Signal {
	upper, ok1 := ctx.value(model.SeriesBBUpper)
	middle, ok2 := ctx.value(model.SeriesBBMiddle)
	lower, ok3 := ctx.value(model.SeriesBBLower)
	if !(ok1 && ok2 && ok3) {
		return nil
	}
	c := ctx.candle()
	width := upper - lower

	var out []model.Signal
	switch {
	case c.Close > upper:
		out = append(out, newSignal(model.KindBollinger, "upper_breakout", scale(65, 30, (c.Close-upper)/math.Max(width, 1e-12)*4), model.Bullish))
		out = append(out, newSignal(model.KindBollinger, "overbought", 60, model.Bearish))
	case c.Close < lower:
		out = append(out, newSignal(model.KindBollinger, "lower_breakout", scale(65, 30, (lower-c.Close)/math.Max(width, 1e-12)*4), model.Bearish))
		out = append(out, newSignal(model.KindBollinger, "oversold", 60, model.Bullish))
	case c.Low <= lower:
		out = append(out, newSignal(model.KindBollinger, "lower_touch", 70+5*ctx.trendAligned(model.Bullish), model.Bullish))
	case c.High >= upper:
		out = append(out, newSignal(model.KindBollinger, "upper_touch", 70+5*ctx.trendAligned(model.Bearish), model.Bearish))
	case c.Close > middle && width > 0:
		out = append(out, newSignal(model.KindBollinger, "above_middle", scale(40, 20, (c.Close-middle)/(width/2)), model.Bullish))
	case c.Close < middle && width > 0:
		out = append(out, newSignal(model.KindBollinger, "below_middle", scale(40, 20, (middle-c.Close)/(width/2)), model.Bearish))
	}
	return out
}

func evalBBW(ctx *Context) []model.Signal {
	bbw, ok := ctx.value(model.SeriesBBW)
	if !ok {
		return nil
	}
	squeeze := ctx.Param("squeeze", 0.04)

	var out []model.Signal
	if bbw < squeeze {
		out = append(out, newSignal(model.KindBBW, "squeeze", scale(55, 40, (squeeze-bbw)/squeeze), model.Neutral))
	}
	if prev, ok := ctx.prev(model.SeriesBBW); ok && prev > 0 {
		change := (bbw - prev) / prev
		switch {
		case change > 0.05:
			out = append(out, newSignal(model.KindBBW, "expanding", scale(50, 40, change/0.3), model.Neutral))
		case change < -0.05:
			out = append(out, newSignal(model.KindBBW, "contracting", scale(45, 35, -change/0.3), model.Neutral))
		}
	}
	return out
}

func evalATR(ctx *Context) []model.Signal {
	atr, ok := ctx.value(model.SeriesATR)
	price := ctx.candle().Close
	if !ok || price <= 0 {
		return nil
	}
	pct := atr / price * 100
	high, low := ctx.Param("high_pct", 3), ctx.Param("low_pct", 1)

	var out []model.Signal
	switch {
	case pct >= high:
		out = append(out, newSignal(model.KindATR, "high_volatility", scale(60, 35, (pct-high)/high), model.Neutral))
	case pct <= low:
		out = append(out, newSignal(model.KindATR, "low_volatility", scale(50, 35, (low-pct)/low), model.Neutral))
	default:
		out = append(out, newSignal(model.KindATR, "normal_volatility", 40, model.Neutral))
	}

	lookback := int(ctx.Param("lookback", 5))
	series := ctx.Indicators.Get(model.SeriesATR)
	if ratio := technical.VolatilityRatio(series, shifted(series, lookback), ctx.Index); ratio > 1.2 {
		out = append(out, newSignal(model.KindATR, "expanding", scale(55, 40, (ratio-1.2)/0.8), model.Neutral))
	} else if ratio < 0.8 {
		out = append(out, newSignal(model.KindATR, "contracting", scale(50, 35, (0.8-ratio)/0.4), model.Neutral))
	}
	return out
}

// shifted returns s delayed by n candles
func shifted(s model.Series, n int) model.Series {
	out := model.NewSeries(len(s))
	for i := n; i < len(s); i++ {
		out[i] = s[i-n]
	}
	return out
}

func evalKeltner(ctx *Context) []model.Signal {
	return channel(ctx, model.KindKeltner, model.SeriesKCUpper, model.SeriesKCMiddle, model.SeriesKCLower, false)
}

func evalDonchian(ctx *Context) []model.Signal {
	return channel(ctx, model.KindDonchian, model.SeriesDCUpper, model.SeriesDCMiddle, model.SeriesDCLower, true)
}

// channel labels breakouts of a price channel. Donchian bands contain the current candle,
// so breakouts are measured against the previous candle's band.
func channel(ctx *Context, kind model.Kind, upperKey, middleKey, lowerKey model.SeriesKey, usePrev bool) []model.Signal {
	read := ctx.value
	if usePrev {
		read = ctx.prev
	}
	upper, ok1 := read(upperKey)
	lower, ok2 := read(lowerKey)
	middle, ok3 := ctx.value(middleKey)
	if !(ok1 && ok2 && ok3) || upper-lower <= 0 {
		return nil
	}
	price := ctx.candle().Close
	width := upper - lower

	switch {
	case price > upper:
		return []model.Signal{newSignal(kind, "upper_breakout", scale(65, 30, (price-upper)/width*4), model.Bullish)}
	case price < lower:
		return []model.Signal{newSignal(kind, "lower_breakout", scale(65, 30, (lower-price)/width*4), model.Bearish)}
	case price > middle:
		return []model.Signal{newSignal(kind, "upper_half", scale(35, 20, (price-middle)/(width/2)), model.Bullish)}
	case price < middle:
		return []model.Signal{newSignal(kind, "lower_half", scale(35, 20, (middle-price)/(width/2)), model.Bearish)}
	}
	return []model.Signal{newSignal(kind, "inside", 30, model.Neutral)}
}

func evalSqueeze(ctx *Context) []model.Signal {
	on, ok := ctx.value(model.SeriesSqueeze)
	if !ok {
		return nil
	}
	mom, hasMom := ctx.value(model.SeriesSqueezeMom)

	var out []model.Signal
	if on == 1 {
		out = append(out, newSignal(model.KindTTMSqueeze, "squeeze_on", 60, model.Neutral))
	} else {
		out = append(out, newSignal(model.KindTTMSqueeze, "squeeze_off", 35, biasOf(mom)))
	}

	if prev, ok := ctx.prev(model.SeriesSqueeze); ok && prev == 1 && on == 0 && hasMom {
		price := ctx.candle().Close
		s := 75.0
		if price > 0 {
			s = scale(70, 25, math.Abs(mom)/price*100)
		}
		switch {
		case mom > 0:
			out = append(out, newEvent(model.KindTTMSqueeze, "squeeze_fire_bullish", s, model.Bullish))
		case mom < 0:
			out = append(out, newEvent(model.KindTTMSqueeze, "squeeze_fire_bearish", s, model.Bearish))
		}
	}
	return out
}
