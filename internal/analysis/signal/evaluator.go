// Package signal turns indicator snapshots into labelled candidate signals and matches them
// against the signals a strategy declares.
package signal

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/analysis/technical"
	"github.com/Alias1177/tradecore/internal/model"
)

// Context is everything an evaluator may read for one declared signal
type Context struct {
	Candles    []model.Candle
	Indicators *model.IndicatorSet
	Index      int
	Params     map[string]float64
	Regime     *model.RegimeState
}

// Param returns a strategy-supplied threshold or the fallback
func (c *Context) Param(name string, fallback float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return fallback
}

func (c *Context) value(key model.SeriesKey) (float64, bool) {
	return c.Indicators.Value(key, c.Index)
}

func (c *Context) prev(key model.SeriesKey) (float64, bool) {
	return c.Indicators.Value(key, c.Index-1)
}

func (c *Context) candle() model.Candle {
	return c.Candles[c.Index]
}

func (c *Context) prevCandle() (model.Candle, bool) {
	if c.Index < 1 {
		return model.Candle{}, false
	}
	return c.Candles[c.Index-1], true
}

// trendAligned is +1 when a confirmed or raw trending regime agrees with bias, -1 when it
// opposes it and 0 otherwise
func (c *Context) trendAligned(bias model.Bias) float64 {
	if c.Regime == nil || !c.Regime.Regime.IsTrending() || bias == model.Neutral {
		return 0
	}
	up := c.Regime.Regime == model.RegimeUptrend
	if (up && bias == model.Bullish) || (!up && bias == model.Bearish) {
		return 1
	}
	return -1
}

type evalFunc func(ctx *Context) []model.Signal

// Evaluator produces candidate signals and matches strategies against them. It is stateless.
type Evaluator struct {
	log zerolog.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the evaluator logger
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.log = l.With().Str("component", "signals").Logger()
	}
}

// New creates an Evaluator
func New(opts ...Option) *Evaluator {
	e := &Evaluator{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Candidates runs the evaluator for kind. A panicking evaluator yields no candidates.
func (e *Evaluator) Candidates(ctx *Context, kind model.Kind) (out []model.Signal) {
	if kind < 0 || kind >= model.KindCount || ctx.Index < 0 || ctx.Index >= len(ctx.Candles) {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("kind", kind.String()).Str("panic", fmt.Sprint(r)).Msg("Signal evaluation failed")
			out = nil
		}
	}()
	for _, s := range evaluators[kind](ctx) {
		if s.Category == "" {
			s.Category = kind.Category()
		}
		out = append(out, s)
	}
	return out
}

// Match evaluates every declared signal of the strategy at the last closed candle
func (e *Evaluator) Match(candles []model.Candle, set *model.IndicatorSet, regime *model.RegimeState, strategy *model.Strategy) []model.MatchedSignal {
	index := technical.TargetIndex(len(candles))
	out := make([]model.MatchedSignal, 0, len(strategy.Signals))
	for _, declared := range strategy.Signals {
		ctx := &Context{
			Candles:    candles,
			Indicators: set,
			Index:      index,
			Params:     declared.Parameters,
			Regime:     regime,
		}
		m := match(declared, e.Candidates(ctx, declared.Type), index)
		if !m.Found || !m.ExactMatch {
			e.log.Debug().Str("type", declared.Type.String()).Str("expected", declared.Value).
				Str("actual", m.Actual).Bool("found", m.Found).Msg(m.Diagnostic)
		}
		out = append(out, m)
	}
	return out
}

func newSignal(kind model.Kind, value string, strength float64, bias model.Bias) model.Signal {
	return model.Signal{
		Type:     kind,
		Value:    value,
		Strength: clampStrength(strength),
		Category: kind.Category(),
		Bias:     bias,
	}
}

func newEvent(kind model.Kind, value string, strength float64, bias model.Bias) model.Signal {
	s := newSignal(kind, value, strength, bias)
	s.IsEvent = true
	return s
}

func clampStrength(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// scale maps frac in [0,1] onto [base, base+span]
func scale(base, span, frac float64) float64 {
	return base + span*math.Max(0, math.Min(1, frac))
}

func biasOf(v float64) model.Bias {
	switch {
	case v > 0:
		return model.Bullish
	case v < 0:
		return model.Bearish
	}
	return model.Neutral
}

// crossed reports a sign change of a-b between the previous and current candle:
// +1 for a crossing above b, -1 for crossing below
func crossed(prevA, prevB, a, b float64) int {
	switch {
	case prevA <= prevB && a > b:
		return 1
	case prevA >= prevB && a < b:
		return -1
	}
	return 0
}
