package signal

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

func evalVolume(ctx *Context) []model.Signal {
	avg, ok := ctx.value(model.SeriesVolumeSMA)
	c := ctx.candle()
	if !ok || avg <= 0 {
		return nil
	}
	ratio := c.Volume / avg
	high, low := ctx.Param("high_ratio", 1.5), ctx.Param("low_ratio", 0.5)
	direction := biasOf(c.Close - c.Open)

	switch {
	case ratio >= high:
		out := []model.Signal{newSignal(model.KindVolume, "high_volume", scale(60, 35, (ratio-high)/high), direction)}
		if direction == model.Bullish {
			out = append(out, newSignal(model.KindVolume, "bullish_volume", scale(60, 35, (ratio-high)/high), direction))
		} else if direction == model.Bearish {
			out = append(out, newSignal(model.KindVolume, "bearish_volume", scale(60, 35, (ratio-high)/high), direction))
		}
		return out
	case ratio <= low:
		return []model.Signal{newSignal(model.KindVolume, "low_volume", scale(40, 20, (low-ratio)/low), model.Neutral)}
	}
	return []model.Signal{newSignal(model.KindVolume, "normal_volume", 35, direction)}
}

// slope labels a cumulative line by its change over lookback candles relative to its own range
func slope(ctx *Context, kind model.Kind, key model.SeriesKey) []model.Signal {
	lookback := int(ctx.Param("lookback", 5))
	s := ctx.Indicators.Get(key)
	now, ok1 := s.At(ctx.Index)
	then, ok2 := s.At(ctx.Index - lookback)
	if !ok1 || !ok2 {
		return nil
	}

	var swing float64
	for i := ctx.Index - lookback; i < ctx.Index; i++ {
		a, okA := s.At(i)
		b, okB := s.At(i + 1)
		if okA && okB {
			swing += math.Abs(b - a)
		}
	}
	eff := 0.0
	if swing > 0 {
		eff = math.Abs(now-then) / swing
	}

	switch {
	case now > then:
		return []model.Signal{newSignal(kind, "rising", scale(45, 45, eff), model.Bullish)}
	case now < then:
		return []model.Signal{newSignal(kind, "falling", scale(45, 45, eff), model.Bearish)}
	}
	return []model.Signal{newSignal(kind, "flat", 30, model.Neutral)}
}

func evalOBV(ctx *Context) []model.Signal {
	return slope(ctx, model.KindOBV, model.SeriesOBV)
}

func evalADLine(ctx *Context) []model.Signal {
	return slope(ctx, model.KindADLine, model.SeriesADLine)
}

func evalMFI(ctx *Context) []model.Signal {
	return oscillator(ctx, model.KindMFI, model.SeriesMFI, ctx.Param("oversold", 20), ctx.Param("overbought", 80), 50)
}

func evalCMF(ctx *Context) []model.Signal {
	v, ok := ctx.value(model.SeriesCMF)
	if !ok {
		return nil
	}
	th := ctx.Param("threshold", 0.05)
	var out []model.Signal
	switch {
	case v > th:
		out = append(out, newSignal(model.KindCMF, "positive", scale(55, 40, (v-th)/0.25), model.Bullish))
	case v < -th:
		out = append(out, newSignal(model.KindCMF, "negative", scale(55, 40, (-th-v)/0.25), model.Bearish))
	default:
		out = append(out, newSignal(model.KindCMF, "neutral", 30, model.Neutral))
	}
	return append(out, zeroCross(ctx, model.KindCMF, model.SeriesCMF)...)
}

func evalVWAP(ctx *Context) []model.Signal {
	return priceVsAverage(ctx, model.KindVWAP, model.SeriesVWAP)
}
