// Package momentum scores recent trading performance and market context into a risk budget.
package momentum

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/model"
)

// SentimentSource provides the current Fear & Greed reading
type SentimentSource interface {
	Fetch(ctx context.Context) (model.Sentiment, error)
}

// Market is the market context for one scoring pass. NaN or negative readings fall back to
// neutral defaults.
type Market struct {
	Prices map[string]float64
	ADX    float64
	BBW    float64
}

// Scorer keeps a rolling window of trades and signal strengths for one trading context.
// It is not safe for concurrent use.
type Scorer struct {
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time
	source  SentimentSource
	onFetch func(err error)

	trades    []model.Trade
	positions []model.Position
	strengths []float64

	cached     *model.MomentumBreakdown
	computedAt time.Time

	sentiment      *model.Sentiment
	sentimentAt    time.Time
	fetchAttempted bool
	failures       int
}

// Option configures a Scorer
type Option func(*Scorer)

// WithLogger sets the scorer logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scorer) {
		s.log = l.With().Str("component", "momentum").Logger()
	}
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

// WithSentiment sets the Fear & Greed source. Without one the sentiment component stays neutral.
func WithSentiment(src SentimentSource) Option {
	return func(s *Scorer) {
		s.source = src
	}
}

// WithFetchHook is called after every sentiment fetch attempt with its error, if any
func WithFetchHook(fn func(err error)) Option {
	return func(s *Scorer) {
		s.onFetch = fn
	}
}

// NewScorer creates a scorer
func NewScorer(cfg Config, opts ...Option) (*Scorer, error) {
	if err := cfg.Weights.Check(); err != nil {
		return nil, err
	}
	s := &Scorer{
		cfg: cfg,
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RecordTrade adds a closed trade, keeping the most recent TradeWindow trades
func (s *Scorer) RecordTrade(t model.Trade) {
	s.trades = append(s.trades, t)
	if over := len(s.trades) - s.cfg.TradeWindow; over > 0 {
		s.trades = append(s.trades[:0:0], s.trades[over:]...)
	}
}

// SetPositions replaces the open positions
func (s *Scorer) SetPositions(positions []model.Position) {
	s.positions = append(s.positions[:0:0], positions...)
}

// RecordSignalStrength adds a matched-signal strength to the quality window
func (s *Scorer) RecordSignalStrength(strength float64) {
	if !finite(strength) {
		return
	}
	s.strengths = append(s.strengths, strength)
	if over := len(s.strengths) - s.cfg.QualityWindow; over > 0 {
		s.strengths = append(s.strengths[:0:0], s.strengths[over:]...)
	}
}

// Score computes the momentum breakdown. Within the cooldown the previous result is
// returned with Cached set. A panic yields the neutral breakdown.
func (s *Scorer) Score(ctx context.Context, m Market) (out *model.MomentumBreakdown) {
	now := s.now()
	if s.cached != nil && now.Sub(s.computedAt) < s.cfg.Cooldown {
		c := *s.cached
		c.Cached = true
		return &c
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("momentum scoring failed")
			out = model.NeutralMomentum(now)
		}
	}()

	w := s.cfg.Weights
	b := &model.MomentumBreakdown{ComputedAt: now}

	score, details := unrealizedScore(s.positions, m.Prices)
	b.Unrealized = component(score, w.Unrealized, details)

	score, details = realizedScore(s.trades, s.cfg.TradingMode, now, s.cfg.HalfLife)
	b.Realized = component(score, w.Realized, details)

	score, details = volatilityScore(m.ADX, m.BBW)
	b.Volatility = component(score, w.Volatility, details)

	fg, source := s.fearGreed(ctx, now)
	b.Sentiment = component(sentimentScore(fg), w.Sentiment, map[string]any{"fear_greed": fg, "source": source})

	score, details = qualityScore(s.strengths)
	b.SignalQuality = component(score, w.SignalQuality, details)

	var total float64
	for _, c := range []model.MomentumComponent{b.Unrealized, b.Realized, b.Volatility, b.Sentiment, b.SignalQuality} {
		total += c.Weighted()
	}
	b.FinalScore = math.Round(clampScore(total))
	b.AdjustedBalanceRiskFactor, b.Band = riskFactor(b.FinalScore, s.cfg)

	s.log.Debug().
		Float64("score", b.FinalScore).
		Float64("risk_factor", b.AdjustedBalanceRiskFactor).
		Str("band", b.Band).
		Msg("momentum scored")

	s.cached = b
	s.computedAt = now
	c := *b
	return &c
}

// Invalidate drops the cached breakdown so the next Score recomputes
func (s *Scorer) Invalidate() {
	s.cached = nil
}

func component(score, weight float64, details map[string]any) model.MomentumComponent {
	if !finite(score) {
		score = neutralScore
	}
	return model.MomentumComponent{Score: clampScore(score), Weight: weight, Details: details}
}

// fearGreed returns the sentiment reading, fetching at most once per sentiment cooldown.
// Failures reuse the last good reading.
func (s *Scorer) fearGreed(ctx context.Context, now time.Time) (float64, string) {
	if s.source == nil {
		return neutralScore, "default"
	}
	if s.fetchAttempted && now.Sub(s.sentimentAt) < s.cfg.SentimentCooldown {
		return s.lastSentiment()
	}

	s.fetchAttempted = true
	s.sentimentAt = now
	sent, err := s.source.Fetch(ctx)
	if err == nil && !finite(sent.Value) {
		err = fmt.Errorf("sentiment value %v is not a number", sent.Value)
	}
	if s.onFetch != nil {
		s.onFetch(err)
	}
	if err != nil {
		s.failures++
		if s.failures == 1 || s.failures%5 == 0 {
			s.log.Warn().Err(err).Int("consecutive_failures", s.failures).Msg("sentiment fetch failed, reusing last value")
		}
		return s.lastSentiment()
	}

	s.failures = 0
	s.sentiment = &sent
	return sent.Value, "live"
}

func (s *Scorer) lastSentiment() (float64, string) {
	if s.sentiment == nil {
		return neutralScore, "default"
	}
	return s.sentiment.Value, "cached"
}

// Failures returns the number of consecutive failed sentiment fetches
func (s *Scorer) Failures() int {
	return s.failures
}
