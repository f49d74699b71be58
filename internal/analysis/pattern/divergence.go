package pattern

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// Divergence types
const (
	RegularDivergence = "regular"
	HiddenDivergence  = "hidden"
)

// DivergenceOptions tunes swing detection and recency
type DivergenceOptions struct {
	SwingStrength int `yaml:"swing_strength" default:"3" validate:"gte=1"`
	MaxAge        int `yaml:"max_age" default:"10" validate:"gte=1"`
	MaxSpan       int `yaml:"max_span" default:"40" validate:"gte=5"`
}

// DetectDivergences compares the last two confirmed price swings against RSI at the same
// candles. Only divergences whose second swing is at most MaxAge candles before target are kept.
func DetectDivergences(candles []model.Candle, rsi model.Series, target int, opts DivergenceOptions) []model.Divergence {
	if target >= len(candles) || target >= len(rsi) || target < 2*opts.SwingStrength+1 {
		return nil
	}
	highs, lows := findSwingPoints(candles, target, opts.SwingStrength)

	var out []model.Divergence
	if d, ok := compareSwings(highs, target, opts, func(a, b int) (float64, float64, bool) {
		osc, ok := rsiDelta(rsi, a, b)
		return candles[b].High - candles[a].High, osc, ok
	}, model.Bearish); ok {
		out = append(out, d)
	}
	if d, ok := compareSwings(lows, target, opts, func(a, b int) (float64, float64, bool) {
		osc, ok := rsiDelta(rsi, a, b)
		return candles[b].Low - candles[a].Low, osc, ok
	}, model.Bullish); ok {
		out = append(out, d)
	}
	return out
}

// compareSwings checks the last two swings. For highs (bearish bias): price higher while RSI
// lower is regular, price lower while RSI higher is hidden. Lows mirror it.
func compareSwings(swings []int, target int, opts DivergenceOptions, deltas func(a, b int) (float64, float64, bool), bias model.Bias) (model.Divergence, bool) {
	if len(swings) < 2 {
		return model.Divergence{}, false
	}
	a, b := swings[len(swings)-2], swings[len(swings)-1]
	if target-b > opts.MaxAge || b-a > opts.MaxSpan {
		return model.Divergence{}, false
	}
	price, osc, ok := deltas(a, b)
	if !ok || price == 0 || osc == 0 {
		return model.Divergence{}, false
	}

	d := model.Divergence{
		Bias:       bias,
		StartIndex: a,
		EndIndex:   b,
		Strength:   clamp01(0.4 + math.Abs(osc)/30),
	}
	higherPrice := price > 0
	higherOsc := osc > 0
	switch {
	case bias == model.Bearish && higherPrice && !higherOsc,
		bias == model.Bullish && !higherPrice && higherOsc:
		d.Type = RegularDivergence
	case bias == model.Bearish && !higherPrice && higherOsc,
		bias == model.Bullish && higherPrice && !higherOsc:
		d.Type = HiddenDivergence
		d.Strength *= 0.8
	default:
		return model.Divergence{}, false
	}
	return d, true
}

func rsiDelta(rsi model.Series, a, b int) (float64, bool) {
	ra, ok1 := rsi.At(a)
	rb, ok2 := rsi.At(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return rb - ra, true
}
