package pattern

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// Chart pattern names
const (
	DoubleTop    = "double_top"
	DoubleBottom = "double_bottom"
	Breakout     = "breakout"
	Breakdown    = "breakdown"
)

// ChartOptions tunes chart pattern detection
type ChartOptions struct {
	Lookback       int     `yaml:"lookback" default:"60" validate:"gte=10"`
	SwingStrength  int     `yaml:"swing_strength" default:"2" validate:"gte=1"`
	PeakTolerance  float64 `yaml:"peak_tolerance" default:"0.01" validate:"gt=0"`
	MinSeparation  int     `yaml:"min_separation" default:"3" validate:"gte=1"`
	BreakoutWindow int     `yaml:"breakout_window" default:"20" validate:"gte=2"`
}

// DetectChartPatterns finds double tops/bottoms and range breaks as of index target
func DetectChartPatterns(candles []model.Candle, target int, opts ChartOptions) []model.ChartPattern {
	if target >= len(candles) || target < 10 {
		return nil
	}
	start := max(0, target-opts.Lookback+1)
	window := candles[start : target+1]
	last := window[len(window)-1]

	var patterns []model.ChartPattern
	highs, lows := findSwingPoints(window, len(window)-1, opts.SwingStrength)

	if len(highs) >= 2 {
		a, b := highs[len(highs)-2], highs[len(highs)-1]
		top := math.Max(window[a].High, window[b].High)
		if b-a >= opts.MinSeparation && math.Abs(window[a].High-window[b].High) <= top*opts.PeakTolerance {
			neckline := lowestBetween(window, a, b)
			if last.Close < neckline {
				patterns = append(patterns, model.ChartPattern{
					Name:     DoubleTop,
					Bias:     model.Bearish,
					Index:    start + b,
					Level:    neckline,
					Strength: clamp01(0.5 + (neckline-last.Close)/neckline*25),
				})
			}
		}
	}

	if len(lows) >= 2 {
		a, b := lows[len(lows)-2], lows[len(lows)-1]
		bottom := math.Min(window[a].Low, window[b].Low)
		if b-a >= opts.MinSeparation && math.Abs(window[a].Low-window[b].Low) <= bottom*opts.PeakTolerance {
			neckline := highestBetween(window, a, b)
			if last.Close > neckline {
				patterns = append(patterns, model.ChartPattern{
					Name:     DoubleBottom,
					Bias:     model.Bullish,
					Index:    start + b,
					Level:    neckline,
					Strength: clamp01(0.5 + (last.Close-neckline)/neckline*25),
				})
			}
		}
	}

	if n := opts.BreakoutWindow; n > 1 && len(window) > n {
		prior := window[len(window)-1-n : len(window)-1]
		hi, lo := prior[0].High, prior[0].Low
		for _, c := range prior {
			hi = math.Max(hi, c.High)
			lo = math.Min(lo, c.Low)
		}
		if last.Close > hi {
			patterns = append(patterns, model.ChartPattern{
				Name: Breakout, Bias: model.Bullish, Index: target, Level: hi,
				Strength: clamp01(0.5 + (last.Close-hi)/hi*25),
			})
		} else if last.Close < lo {
			patterns = append(patterns, model.ChartPattern{
				Name: Breakdown, Bias: model.Bearish, Index: target, Level: lo,
				Strength: clamp01(0.5 + (lo-last.Close)/lo*25),
			})
		}
	}

	return patterns
}

func lowestBetween(candles []model.Candle, a, b int) float64 {
	v := candles[a].Low
	for i := a + 1; i < b; i++ {
		v = math.Min(v, candles[i].Low)
	}
	return v
}

func highestBetween(candles []model.Candle, a, b int) float64 {
	v := candles[a].High
	for i := a + 1; i < b; i++ {
		v = math.Max(v, candles[i].High)
	}
	return v
}
