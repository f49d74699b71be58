package signal

import (
	"github.com/Alias1177/tradecore/internal/analysis/pattern"
	"github.com/Alias1177/tradecore/internal/model"
)

func evalCandlestick(ctx *Context) []model.Signal {
	patterns := ctx.Indicators.PatternsAt(ctx.Index)
	var out []model.Signal
	var bull, bear float64
	for _, p := range patterns {
		s := scale(50, 45, p.Strength)
		out = append(out, newEvent(model.KindCandlestick, p.Name, s, p.Bias))
		switch p.Bias {
		case model.Bullish:
			bull = max(bull, s)
		case model.Bearish:
			bear = max(bear, s)
		}
	}
	if bull > 0 && bull >= bear {
		out = append(out, newEvent(model.KindCandlestick, "bullish_pattern", bull, model.Bullish))
	}
	if bear > 0 && bear >= bull {
		out = append(out, newEvent(model.KindCandlestick, "bearish_pattern", bear, model.Bearish))
	}
	return out
}

func evalChartPattern(ctx *Context) []model.Signal {
	var out []model.Signal
	for _, p := range ctx.Indicators.ChartPatterns {
		if ctx.Index-p.Index > int(ctx.Param("max_age", 30)) {
			continue
		}
		out = append(out, newSignal(model.KindChartPattern, p.Name, scale(55, 40, p.Strength), p.Bias))
	}
	return out
}

func evalDivergence(ctx *Context) []model.Signal {
	var out []model.Signal
	for _, d := range ctx.Indicators.Divergences {
		name := d.Type + "_" + string(d.Bias) + "_divergence"
		if d.Type == pattern.RegularDivergence {
			out = append(out, newSignal(model.KindDivergence, string(d.Bias)+"_divergence", scale(55, 40, d.Strength), d.Bias))
		}
		out = append(out, newSignal(model.KindDivergence, name, scale(55, 40, d.Strength), d.Bias))
	}
	return out
}
