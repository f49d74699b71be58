// Package pipeline runs one strategy over one candle history: indicators, regime, signals,
// strength, momentum and position size.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/analysis/market"
	"github.com/Alias1177/tradecore/internal/analysis/signal"
	"github.com/Alias1177/tradecore/internal/analysis/strength"
	"github.com/Alias1177/tradecore/internal/analysis/technical"
	"github.com/Alias1177/tradecore/internal/config"
	"github.com/Alias1177/tradecore/internal/metrics"
	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/trading/momentum"
	"github.com/Alias1177/tradecore/internal/trading/risk"
)

// Request is one evaluation of a strategy on a symbol
type Request struct {
	Symbol    string
	Timeframe string
	Candles   []model.Candle
	Strategy  *model.Strategy

	// Direction forces the order side; empty derives it from the matched signals
	Direction  model.Direction
	Balance    float64
	Equity     float64
	Conviction float64
	Filters    model.SymbolFilters
	Positions  []model.Position
	Prices     map[string]float64
}

// Decision is everything the pipeline concluded for a request
type Decision struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	Strategy  string          `json:"strategy"`
	Index     int             `json:"index"`
	Timestamp time.Time       `json:"timestamp"`
	Price     float64         `json:"price"`
	Direction model.Direction `json:"direction"`

	Regime     *model.RegimeState          `json:"regime"`
	Anomalies  []model.Anomaly             `json:"anomalies,omitempty"`
	Signals    []model.MatchedSignal       `json:"signals"`
	Strength   strength.Breakdown          `json:"strength"`
	Matched    int                         `json:"matched"`
	Passed     bool                        `json:"passed"`
	GateReason string                      `json:"gate_reason,omitempty"`
	Momentum   *model.MomentumBreakdown    `json:"momentum"`
	Sizing     *model.PositionSizingResult `json:"sizing,omitempty"`

	IndicatorFailures map[model.Family]string `json:"indicator_failures,omitempty"`
}

// Pipeline owns the stateful stages for one trading context. It is not safe for
// concurrent use.
type Pipeline struct {
	engine     *technical.Engine
	regimes    *market.Registry
	evaluator  *signal.Evaluator
	aggregator *strength.Aggregator
	scorer     *momentum.Scorer
	sizer      *risk.Sizer
	metrics    metrics.Metrics
	log        zerolog.Logger
}

type options struct {
	log       zerolog.Logger
	metrics   metrics.Metrics
	sentiment momentum.SentimentSource
	clock     func() time.Time
}

// Option configures a Pipeline
type Option func(*options)

// WithLogger sets the logger handed to every stage
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(m metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSentiment sets the Fear & Greed source used by momentum scoring
func WithSentiment(src momentum.SentimentSource) Option {
	return func(o *options) { o.sentiment = src }
}

// WithClock replaces the wall clock of the momentum scorer
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New builds a pipeline from validated settings
func New(s *config.Settings, opts ...Option) (*Pipeline, error) {
	if s == nil {
		return nil, errors.New("pipeline: settings are required")
	}
	o := options{log: zerolog.Nop(), metrics: metrics.Nop{}, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	scorerOpts := []momentum.Option{
		momentum.WithLogger(o.log),
		momentum.WithClock(o.clock),
		momentum.WithFetchHook(func(err error) { o.metrics.SentimentFetch(err == nil) }),
	}
	if o.sentiment != nil {
		scorerOpts = append(scorerOpts, momentum.WithSentiment(o.sentiment))
	}
	scorer, err := momentum.NewScorer(s.Momentum, scorerOpts...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return &Pipeline{
		engine: technical.NewEngine(s.Indicators,
			technical.WithLogger(o.log),
			technical.WithFailureHook(func(f model.Family) { o.metrics.IndicatorFailure(f.String()) }),
		),
		regimes:    market.NewRegistry(s.Regime, market.WithLogger(o.log)),
		evaluator:  signal.New(signal.WithLogger(o.log)),
		aggregator: strength.New(strength.WithLogger(o.log)),
		scorer:     scorer,
		sizer:      risk.NewSizer(s.Sizing, risk.WithLogger(o.log)),
		metrics:    o.metrics,
		log:        o.log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Scorer exposes the momentum scorer so callers can record closed trades
func (p *Pipeline) Scorer() *momentum.Scorer {
	return p.scorer
}

// Regimes exposes the per-symbol regime detectors
func (p *Pipeline) Regimes() *market.Registry {
	return p.regimes
}

// Families returns the indicator families a strategy evaluation needs
func Families(st *model.Strategy) []model.Family {
	seen := make(map[model.Family]bool)
	var out []model.Family
	add := func(fs []model.Family) {
		for _, f := range fs {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	add(signal.Requirements(st.Kinds()))
	add(market.Families)
	add(market.AnomalyFamilies)
	return out
}

// Evaluate runs every stage for req. Only invalid requests return an error; failures
// inside a stage degrade that stage's output instead.
func (p *Pipeline) Evaluate(ctx context.Context, req Request) (*Decision, error) {
	if err := req.Strategy.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if len(req.Candles) < 2 {
		return nil, fmt.Errorf("evaluate %s: %d candles: %w", req.Symbol, len(req.Candles), model.ErrInsufficientData)
	}

	candles := req.Candles
	index := technical.TargetIndex(len(candles))
	d := &Decision{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Strategy:  req.Strategy.Name,
		Index:     index,
		Timestamp: candles[index].Timestamp,
		Price:     candles[len(candles)-1].Close,
	}

	start := time.Now()
	set := p.engine.Compute(candles, Families(req.Strategy))
	p.metrics.StageDuration("indicators", time.Since(start))
	if len(set.Failures) > 0 {
		d.IndicatorFailures = set.Failures
	}

	start = time.Now()
	d.Regime = p.regimes.Get(req.Symbol, req.Timeframe).Detect(candles, set, index)
	d.Anomalies = market.DetectAnomalies(candles, set, index)
	p.metrics.StageDuration("regime", time.Since(start))
	p.metrics.RegimeEvaluated(string(d.Regime.Regime), d.Regime.IsConfirmed)

	start = time.Now()
	d.Signals = p.evaluator.Match(candles, set, d.Regime, req.Strategy)
	d.Strength = p.aggregator.Aggregate(d.Signals, d.Regime)
	p.metrics.StageDuration("signals", time.Since(start))

	for _, s := range d.Signals {
		if s.Found {
			p.scorer.RecordSignalStrength(s.Strength)
		}
		if s.Found && s.ExactMatch {
			d.Matched++
		}
	}
	d.Passed, d.GateReason = gate(req.Strategy, d.Matched, d.Strength.Final)

	start = time.Now()
	p.scorer.SetPositions(req.Positions)
	d.Momentum = p.scorer.Score(ctx, momentum.Market{
		Prices: prices(req, d.Price),
		ADX:    set.ValueOr(model.SeriesADX, index, -1),
		BBW:    set.ValueOr(model.SeriesBBW, index, -1),
	})
	p.metrics.StageDuration("momentum", time.Since(start))

	d.Direction = req.Direction
	if d.Direction == "" {
		d.Direction = direction(d.Signals, d.Regime)
	}

	if d.Passed {
		start = time.Now()
		d.Sizing = p.sizer.Size(risk.Request{
			Symbol:     req.Symbol,
			Direction:  d.Direction,
			Price:      d.Price,
			Balance:    req.Balance,
			Equity:     req.Equity,
			ATR:        set.ValueOr(model.SeriesATR, index, 0),
			Momentum:   d.Momentum,
			Conviction: req.Conviction,
			Filters:    req.Filters,
			Open:       req.Positions,
		})
		p.metrics.StageDuration("sizing", time.Since(start))
		outcome := "ok"
		if d.Sizing.Error != nil {
			outcome = string(d.Sizing.Error.Reason)
		}
		p.metrics.SizingOutcome(outcome)
	}

	p.log.Info().
		Str("symbol", req.Symbol).
		Str("strategy", req.Strategy.Name).
		Str("regime", string(d.Regime.Regime)).
		Bool("confirmed", d.Regime.IsConfirmed).
		Int("matched", d.Matched).
		Float64("strength", d.Strength.Final).
		Float64("momentum", d.Momentum.FinalScore).
		Bool("passed", d.Passed).
		Str("sizing", risk.String(d.Sizing)).
		Msg("Strategy evaluated")
	return d, nil
}

// gate checks the strategy thresholds. MinSignals zero requires every declared signal.
func gate(st *model.Strategy, matched int, total float64) (bool, string) {
	need := st.MinSignals
	if need == 0 {
		need = len(st.Signals)
	}
	if matched < need {
		return false, fmt.Sprintf("%d of %d required signals matched", matched, need)
	}
	if total < st.MinStrength {
		return false, fmt.Sprintf("strength %.1f below minimum %.1f", total, st.MinStrength)
	}
	return true, ""
}

// direction is the side the found signals lean to, falling back to the regime
func direction(signals []model.MatchedSignal, regime *model.RegimeState) model.Direction {
	var lean float64
	for _, s := range signals {
		if !s.Found {
			continue
		}
		switch s.Bias {
		case model.Bullish:
			lean += s.Strength
		case model.Bearish:
			lean -= s.Strength
		}
	}
	if lean == 0 && regime != nil && regime.Regime == model.RegimeDowntrend {
		return model.Short
	}
	if lean < 0 {
		return model.Short
	}
	return model.Long
}

func prices(req Request, last float64) map[string]float64 {
	out := make(map[string]float64, len(req.Prices)+1)
	for k, v := range req.Prices {
		out[k] = v
	}
	if _, ok := out[req.Symbol]; !ok {
		out[req.Symbol] = last
	}
	return out
}
