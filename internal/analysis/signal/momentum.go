package signal

import "github.com/Alias1177/tradecore/internal/model"

// oscillator labels a bounded oscillator against oversold/overbought thresholds. Oversold
// readings in an uptrend (and overbought in a downtrend) are pullbacks and read stronger.
func oscillator(ctx *Context, kind model.Kind, key model.SeriesKey, oversold, overbought, mid float64) []model.Signal {
	v, ok := ctx.value(key)
	if !ok {
		return nil
	}
	span := overbought - oversold

	var out []model.Signal
	switch {
	case v <= oversold:
		s := scale(60, 30, (oversold-v)/(span/2)) + 10*ctx.trendAligned(model.Bullish)
		out = append(out, newSignal(kind, "oversold", s, model.Bullish))
	case v >= overbought:
		s := scale(60, 30, (v-overbought)/(span/2)) + 10*ctx.trendAligned(model.Bearish)
		out = append(out, newSignal(kind, "overbought", s, model.Bearish))
	case v > mid:
		out = append(out, newSignal(kind, "bullish", scale(40, 20, (v-mid)/(overbought-mid)), model.Bullish))
	case v < mid:
		out = append(out, newSignal(kind, "bearish", scale(40, 20, (mid-v)/(mid-oversold)), model.Bearish))
	default:
		out = append(out, newSignal(kind, "neutral", 30, model.Neutral))
	}

	if p, ok := ctx.prev(key); ok {
		switch {
		case p < oversold && v >= oversold:
			out = append(out, newEvent(kind, "exit_oversold", 75, model.Bullish))
		case p > overbought && v <= overbought:
			out = append(out, newEvent(kind, "exit_overbought", 75, model.Bearish))
		}
	}
	return out
}

// lineCross flags %K crossing %D
func lineCross(ctx *Context, kind model.Kind, kKey, dKey model.SeriesKey, oversold, overbought float64) []model.Signal {
	k, ok1 := ctx.value(kKey)
	d, ok2 := ctx.value(dKey)
	pk, ok3 := ctx.prev(kKey)
	pd, ok4 := ctx.prev(dKey)
	if !(ok1 && ok2 && ok3 && ok4) {
		return nil
	}
	switch crossed(pk, pd, k, d) {
	case 1:
		s := 65.0
		if d <= oversold {
			s = 85
		}
		return []model.Signal{newEvent(kind, "bullish_cross", s, model.Bullish)}
	case -1:
		s := 65.0
		if d >= overbought {
			s = 85
		}
		return []model.Signal{newEvent(kind, "bearish_cross", s, model.Bearish)}
	}
	return nil
}

func evalRSI(ctx *Context) []model.Signal {
	return oscillator(ctx, model.KindRSI, model.SeriesRSI, ctx.Param("oversold", 30), ctx.Param("overbought", 70), 50)
}

func evalStochastic(ctx *Context) []model.Signal {
	lo, hi := ctx.Param("oversold", 20), ctx.Param("overbought", 80)
	out := oscillator(ctx, model.KindStochastic, model.SeriesStochK, lo, hi, 50)
	return append(out, lineCross(ctx, model.KindStochastic, model.SeriesStochK, model.SeriesStochD, lo, hi)...)
}

func evalStochRSI(ctx *Context) []model.Signal {
	lo, hi := ctx.Param("oversold", 20), ctx.Param("overbought", 80)
	out := oscillator(ctx, model.KindStochRSI, model.SeriesStochRSIK, lo, hi, 50)
	return append(out, lineCross(ctx, model.KindStochRSI, model.SeriesStochRSIK, model.SeriesStochRSID, lo, hi)...)
}

func evalWilliamsR(ctx *Context) []model.Signal {
	return oscillator(ctx, model.KindWilliamsR, model.SeriesWilliamsR, ctx.Param("oversold", -80), ctx.Param("overbought", -20), -50)
}

func evalCCI(ctx *Context) []model.Signal {
	out := oscillator(ctx, model.KindCCI, model.SeriesCCI, ctx.Param("oversold", -100), ctx.Param("overbought", 100), 0)
	return append(out, zeroCross(ctx, model.KindCCI, model.SeriesCCI)...)
}

func evalROC(ctx *Context) []model.Signal {
	v, ok := ctx.value(model.SeriesROC)
	if !ok {
		return nil
	}
	full := ctx.Param("full_change", 5)
	var out []model.Signal
	switch {
	case v > 0:
		out = append(out, newSignal(model.KindROC, "positive", scale(45, 45, v/full), model.Bullish))
	case v < 0:
		out = append(out, newSignal(model.KindROC, "negative", scale(45, 45, -v/full), model.Bearish))
	}
	return append(out, zeroCross(ctx, model.KindROC, model.SeriesROC)...)
}

func evalAwesome(ctx *Context) []model.Signal {
	v, ok := ctx.value(model.SeriesAO)
	if !ok {
		return nil
	}
	var out []model.Signal
	if p, ok := ctx.prev(model.SeriesAO); ok {
		switch {
		case v > 0 && v > p:
			out = append(out, newSignal(model.KindAwesomeOscillator, "bullish", 60, model.Bullish))
		case v < 0 && v < p:
			out = append(out, newSignal(model.KindAwesomeOscillator, "bearish", 60, model.Bearish))
		case v > 0:
			out = append(out, newSignal(model.KindAwesomeOscillator, "bullish_fading", 40, model.Bullish))
		case v < 0:
			out = append(out, newSignal(model.KindAwesomeOscillator, "bearish_fading", 40, model.Bearish))
		}
	}
	return append(out, zeroCross(ctx, model.KindAwesomeOscillator, model.SeriesAO)...)
}

func zeroCross(ctx *Context, kind model.Kind, key model.SeriesKey) []model.Signal {
	v, ok1 := ctx.value(key)
	p, ok2 := ctx.prev(key)
	if !ok1 || !ok2 {
		return nil
	}
	switch crossed(p, 0, v, 0) {
	case 1:
		return []model.Signal{newEvent(kind, "bullish_zero_cross", 70, model.Bullish)}
	case -1:
		return []model.Signal{newEvent(kind, "bearish_zero_cross", 70, model.Bearish)}
	}
	return nil
}
