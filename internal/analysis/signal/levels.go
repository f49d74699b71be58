package signal

import (
	"fmt"
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// proximity is 1 when price sits on level and falls to 0 at tolerance distance
func proximity(price, level, tolerance float64) float64 {
	if level <= 0 || tolerance <= 0 {
		return 0
	}
	return 1 - math.Abs(price-level)/(level*tolerance)
}

func evalSupportResistance(ctx *Context) []model.Signal {
	c := ctx.candle()
	prev, hasPrev := ctx.prevCandle()
	tol := ctx.Param("tolerance", 0.01)

	var out []model.Signal
	for _, z := range ctx.Indicators.Zones {
		near := proximity(c.Close, z.Price, tol)
		switch z.Kind {
		case "support":
			if hasPrev && prev.Close < z.Price {
				out = append(out, newEvent(model.KindSupportResistance, "resistance_breakout", scale(65, 30, z.Strength), model.Bullish))
			} else if near > 0 {
				out = append(out, newSignal(model.KindSupportResistance, "near_support", scale(50, 25, near)+20*z.Strength, model.Bullish))
			}
		case "resistance":
			if hasPrev && prev.Close > z.Price {
				out = append(out, newEvent(model.KindSupportResistance, "support_breakdown", scale(65, 30, z.Strength), model.Bearish))
			} else if near > 0 {
				out = append(out, newSignal(model.KindSupportResistance, "near_resistance", scale(50, 25, near)+20*z.Strength, model.Bearish))
			}
		}
	}
	return out
}

func evalPivot(ctx *Context) []model.Signal {
	p := ctx.Indicators.Pivots
	if p == nil {
		return nil
	}
	price := ctx.candle().Close
	tol := ctx.Param("tolerance", 0.005)

	var out []model.Signal
	if price > p.Pivot {
		out = append(out, newSignal(model.KindPivot, "above_pivot", scale(45, 30, (price-p.Pivot)/math.Max(p.R1-p.Pivot, 1e-12)), model.Bullish))
	} else if price < p.Pivot {
		out = append(out, newSignal(model.KindPivot, "below_pivot", scale(45, 30, (p.Pivot-price)/math.Max(p.Pivot-p.S1, 1e-12)), model.Bearish))
	}

	for _, lvl := range []struct {
		name  string
		price float64
		bias  model.Bias
	}{
		{"near_s1", p.S1, model.Bullish},
		{"near_s2", p.S2, model.Bullish},
		{"near_r1", p.R1, model.Bearish},
		{"near_r2", p.R2, model.Bearish},
	} {
		if near := proximity(price, lvl.price, tol); near > 0 {
			out = append(out, newSignal(model.KindPivot, lvl.name, scale(55, 35, near), lvl.bias))
		}
	}
	if p.R1 > 0 && price > p.R1 {
		out = append(out, newSignal(model.KindPivot, "r1_breakout", 70, model.Bullish))
	}
	if p.S1 > 0 && price < p.S1 {
		out = append(out, newSignal(model.KindPivot, "s1_breakdown", 70, model.Bearish))
	}
	return out
}

func evalFibonacci(ctx *Context) []model.Signal {
	fib := ctx.Indicators.Fibonacci
	if fib == nil {
		return nil
	}
	price := ctx.candle().Close
	tol := ctx.Param("tolerance", 0.005)
	bias := model.Bearish
	if fib.Uptrend {
		bias = model.Bullish
	}

	var out []model.Signal
	for _, lvl := range fib.Levels {
		if lvl.Ratio == 0 || lvl.Ratio == 1 {
			continue
		}
		near := proximity(price, lvl.Price, tol)
		if near <= 0 {
			continue
		}
		strength := scale(50, 35, near)
		if lvl.Ratio == 0.618 || lvl.Ratio == 0.5 {
			strength += 10
		}
		out = append(out, newSignal(model.KindFibonacci, fmt.Sprintf("fib_%03.0f", lvl.Ratio*1000), strength, bias))
	}
	return out
}
