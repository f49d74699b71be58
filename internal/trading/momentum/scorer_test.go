package momentum

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeSentiment struct {
	calls  int
	values []float64
	err    error
}

func (f *fakeSentiment) Fetch(context.Context) (model.Sentiment, error) {
	f.calls++
	if f.err != nil {
		return model.Sentiment{}, f.err
	}
	v := f.values[min(f.calls-1, len(f.values)-1)]
	return model.Sentiment{Value: v}, nil
}

func newTestScorer(t *testing.T, opts ...Option) (*Scorer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := NewScorer(DefaultConfig(), append([]Option{WithClock(clock.now)}, opts...)...)
	require.NoError(t, err)
	return s, clock
}

func TestNeutralScenario(t *testing.T) {
	s, _ := newTestScorer(t, WithSentiment(&fakeSentiment{values: []float64{50}}))
	s.RecordSignalStrength(50)

	b := s.Score(context.Background(), Market{ADX: 25, BBW: 0.1})
	for name, c := range b.Components() {
		assert.InDelta(t, 50, c.Score, 1e-9, name)
	}
	assert.Equal(t, 50.0, b.FinalScore)
	assert.Equal(t, "poor", b.Band)
	// poor band: 20% + 40% * (50-40)/(60-40)
	assert.InDelta(t, 0.4, b.AdjustedBalanceRiskFactor, 1e-9)
	assert.False(t, b.Cached)
}

func TestScoreStaysInRangeWithBadInputs(t *testing.T) {
	s, clock := newTestScorer(t)
	s.SetPositions([]model.Position{
		{Symbol: "BTCUSDT", Direction: model.Long, EntryPrice: 100, Quantity: 1},
		{Symbol: "ETHUSDT", Direction: model.Short, EntryPrice: math.NaN(), Quantity: 1},
	})
	s.RecordTrade(model.Trade{PnLPercentage: math.NaN(), ExitTime: clock.t})
	s.RecordSignalStrength(math.Inf(1))

	b := s.Score(context.Background(), Market{
		Prices: map[string]float64{"BTCUSDT": math.NaN(), "ETHUSDT": 3},
		ADX:    math.NaN(),
		BBW:    math.Inf(1),
	})
	assert.Equal(t, 50.0, b.FinalScore)
	for name, c := range b.Components() {
		assert.False(t, math.IsNaN(c.Score), name)
	}
}

func TestUnrealizedScore(t *testing.T) {
	tests := []struct {
		name  string
		pos   model.Position
		price float64
		want  float64
	}{
		{"ten percent gain saturates", model.Position{Symbol: "A", Direction: model.Long, EntryPrice: 100, Quantity: 1}, 110, 100},
		{"flat", model.Position{Symbol: "A", Direction: model.Long, EntryPrice: 100, Quantity: 1}, 100, 50},
		{"two percent loss", model.Position{Symbol: "A", Direction: model.Long, EntryPrice: 100, Quantity: 1}, 98, 35},
		{"short gain", model.Position{Symbol: "A", Direction: model.Short, EntryPrice: 100, Quantity: 1}, 90, 100},
		{"closed ignored", model.Position{Symbol: "A", Direction: model.Long, EntryPrice: 100, Quantity: 1, Status: "closed"}, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := unrealizedScore([]model.Position{tt.pos}, map[string]float64{"A": tt.price})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRealizedScoreWeighsRecentTradesAndLosses(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	score, _ := realizedScore([]model.Trade{{PnLPercentage: 4, ExitTime: now}}, "", now, 24*time.Hour)
	assert.InDelta(t, 70, score, 1e-9)

	score, _ = realizedScore([]model.Trade{{PnLPercentage: -4, ExitTime: now}}, "", now, 24*time.Hour)
	assert.InDelta(t, 20, score, 1e-9)

	// a day-old loss weighs half of a fresh gain
	trades := []model.Trade{
		{PnLPercentage: 6, ExitTime: now},
		{PnLPercentage: -4, ExitTime: now.Add(-24 * time.Hour)},
	}
	score, _ = realizedScore(trades, "", now, 24*time.Hour)
	assert.InDelta(t, 50+50*((6-0.5*6)/1.5)/10, score, 1e-9)

	score, _ = realizedScore(trades, "paper", now, 24*time.Hour)
	assert.Equal(t, 50.0, score)
}

func TestTradeWindowIsBounded(t *testing.T) {
	s, clock := newTestScorer(t)
	for i := 0; i < 150; i++ {
		s.RecordTrade(model.Trade{PnLPercentage: float64(i), ExitTime: clock.t})
	}
	require.Len(t, s.trades, 100)
	assert.Equal(t, 50.0, s.trades[0].PnLPercentage)

	for i := 0; i < 30; i++ {
		s.RecordSignalStrength(float64(i))
	}
	assert.Len(t, s.strengths, 20)
}

func TestRiskFactorBands(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		score float64
		want  float64
		band  string
	}{
		{100, 1, "excellent"},
		{80, 1, "excellent"},
		{70, 0.8, "good"},
		{60, 0.6, "good"},
		{40, 0.2, "poor"},
		{10, 0.1, "critical"},
	}
	for _, tt := range tests {
		got, band := riskFactor(tt.score, cfg)
		assert.InDelta(t, tt.want, got, 1e-9, "score %v", tt.score)
		assert.Equal(t, tt.band, band)
	}

	cfg.MinRiskPercent = 25
	got, _ := riskFactor(10, cfg)
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestCooldownReturnsCachedResult(t *testing.T) {
	s, clock := newTestScorer(t)
	first := s.Score(context.Background(), Market{ADX: 25, BBW: 0.1})

	s.RecordTrade(model.Trade{PnLPercentage: 8, ExitTime: clock.t})
	clock.advance(10 * time.Second)
	second := s.Score(context.Background(), Market{ADX: 25, BBW: 0.1})
	assert.True(t, second.Cached)
	assert.Equal(t, first.FinalScore, second.FinalScore)

	clock.advance(25 * time.Second)
	third := s.Score(context.Background(), Market{ADX: 25, BBW: 0.1})
	assert.False(t, third.Cached)
	assert.Greater(t, third.FinalScore, first.FinalScore)
}

func TestSentimentIsThrottledAndCached(t *testing.T) {
	src := &fakeSentiment{values: []float64{20, 80}}
	var fetches []error
	s, clock := newTestScorer(t, WithSentiment(src), WithFetchHook(func(err error) { fetches = append(fetches, err) }))

	b := s.Score(context.Background(), Market{})
	assert.Equal(t, 80.0, b.Sentiment.Score)

	clock.advance(time.Minute)
	b = s.Score(context.Background(), Market{})
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 80.0, b.Sentiment.Score)
	assert.Equal(t, "cached", b.Sentiment.Details["source"])

	clock.advance(5 * time.Minute)
	b = s.Score(context.Background(), Market{})
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 20.0, b.Sentiment.Score)
	assert.Len(t, fetches, 2)
}

type capture struct{ messages []string }

func (c *capture) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.WarnLevel {
		c.messages = append(c.messages, msg)
	}
}

func TestSentimentFailuresReuseLastValue(t *testing.T) {
	src := &fakeSentiment{values: []float64{30}}
	hook := &capture{}
	logger := zerolog.New(nil).Hook(hook)
	s, clock := newTestScorer(t, WithSentiment(src), WithLogger(logger))

	b := s.Score(context.Background(), Market{})
	assert.Equal(t, 70.0, b.Sentiment.Score)

	src.err = errors.New("upstream down")
	for i := 0; i < 10; i++ {
		clock.advance(6 * time.Minute)
		b = s.Score(context.Background(), Market{})
		assert.Equal(t, 70.0, b.Sentiment.Score)
	}
	assert.Equal(t, 10, s.Failures())
	// logged on the 1st, 5th and 10th failure
	assert.Len(t, hook.messages, 3)

	src.err = nil
	clock.advance(6 * time.Minute)
	s.Score(context.Background(), Market{})
	assert.Zero(t, s.Failures())
}

func TestInvalidWeightsRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Sentiment = 0.5
	_, err := NewScorer(cfg)
	assert.Error(t, err)
}

func TestWeightsTolerance(t *testing.T) {
	tests := []struct {
		name      string
		sentiment float64
		wantErr   bool
	}{
		{"exact", 0.15, false},
		{"rounding slack", 0.149, false},
		{"just inside", 0.1401, false},
		{"too far", 0.13, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Weights.Sentiment = tt.sentiment
			_, err := NewScorer(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
