package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/config"
	"github.com/Alias1177/tradecore/internal/model"
)

type countingMetrics struct {
	failures  int
	regimes   map[string]int
	sizing    map[string]int
	fetches   int
	durations map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{regimes: map[string]int{}, sizing: map[string]int{}, durations: map[string]int{}}
}

func (m *countingMetrics) IndicatorFailure(string)                 { m.failures++ }
func (m *countingMetrics) RegimeEvaluated(r string, _ bool)        { m.regimes[r]++ }
func (m *countingMetrics) SizingOutcome(reason string)             { m.sizing[reason]++ }
func (m *countingMetrics) SentimentFetch(bool)                     { m.fetches++ }
func (m *countingMetrics) StageDuration(s string, _ time.Duration) { m.durations[s]++ }

func uptrend(n int) []model.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = model.Candle{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: p - 0.3, High: p + 0.8, Low: p - 0.8, Close: p + 0.3, Volume: 1000}
	}
	return out
}

func trendStrategy() *model.Strategy {
	return &model.Strategy{
		Name: "trend follow",
		Signals: []model.StrategySignal{
			{Type: model.KindEMA, Value: "price_above"},
			{Type: model.KindSMA, Value: "price_above"},
		},
		MinSignals: 2,
	}
}

func newPipeline(t *testing.T, opts ...Option) (*Pipeline, *countingMetrics) {
	t.Helper()
	s, err := config.Default()
	require.NoError(t, err)
	m := newCountingMetrics()
	p, err := New(s, append([]Option{WithMetrics(m)}, opts...)...)
	require.NoError(t, err)
	return p, m
}

func request(candles []model.Candle, st *model.Strategy) Request {
	return Request{
		Symbol:    "BTCUSDT",
		Timeframe: "1h",
		Candles:   candles,
		Strategy:  st,
		Balance:   10000,
		Filters: model.SymbolFilters{
			LotSize:     model.LotSizeFilter{MinQty: 0.001, StepSize: 0.001},
			MinNotional: model.MinNotionalFilter{MinNotional: 10},
		},
	}
}

func TestEvaluatePassingStrategyIsSized(t *testing.T) {
	p, m := newPipeline(t)
	candles := uptrend(230)

	d, err := p.Evaluate(context.Background(), request(candles, trendStrategy()))
	require.NoError(t, err)

	assert.Equal(t, 228, d.Index)
	assert.Equal(t, candles[228].Timestamp, d.Timestamp)
	assert.Equal(t, candles[229].Close, d.Price)
	require.Len(t, d.Signals, 2)
	assert.Equal(t, 2, d.Matched)
	assert.True(t, d.Passed, d.GateReason)
	assert.Greater(t, d.Strength.Final, 0.0)
	assert.Equal(t, model.Long, d.Direction)
	assert.Empty(t, d.IndicatorFailures)

	require.NotNil(t, d.Momentum)
	assert.GreaterOrEqual(t, d.Momentum.FinalScore, 0.0)
	assert.LessOrEqual(t, d.Momentum.FinalScore, 100.0)

	require.NotNil(t, d.Sizing)
	require.Nil(t, d.Sizing.Error)
	assert.True(t, d.Sizing.Valid)
	assert.LessOrEqual(t, d.Sizing.ValueUSDT, 10000.0)
	assert.Less(t, d.Sizing.StopLossPrice, d.Price)

	assert.Equal(t, 1, m.sizing["ok"])
	assert.Equal(t, 1, m.durations["indicators"])
	assert.Equal(t, 1, m.durations["sizing"])
}

func TestEvaluateFailedGateSkipsSizing(t *testing.T) {
	p, m := newPipeline(t)
	st := &model.Strategy{
		Name:        "dip buy",
		Signals:     []model.StrategySignal{{Type: model.KindRSI, Value: "oversold"}},
		MinStrength: 10,
	}

	d, err := p.Evaluate(context.Background(), request(uptrend(230), st))
	require.NoError(t, err)
	assert.False(t, d.Passed)
	assert.Zero(t, d.Matched)
	assert.NotEmpty(t, d.GateReason)
	assert.Nil(t, d.Sizing)
	assert.Empty(t, m.sizing)
	require.NotNil(t, d.Momentum)
}

func TestEvaluateRejectsBadRequests(t *testing.T) {
	p, _ := newPipeline(t)

	_, err := p.Evaluate(context.Background(), request(uptrend(230), nil))
	assert.Error(t, err)

	_, err = p.Evaluate(context.Background(), request(uptrend(230), &model.Strategy{Name: "empty"}))
	assert.ErrorIs(t, err, model.ErrNoSignals)

	_, err = p.Evaluate(context.Background(), request(uptrend(1), trendStrategy()))
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestEvaluateShortHistoryDegrades(t *testing.T) {
	p, _ := newPipeline(t)
	d, err := p.Evaluate(context.Background(), request(uptrend(12), trendStrategy()))
	require.NoError(t, err)
	assert.False(t, d.Passed)
	assert.Equal(t, 0, d.Matched)
	assert.Equal(t, 50.0, d.Momentum.Sentiment.Score)
}

func TestRegimeConfirmsAcrossEvaluations(t *testing.T) {
	var now time.Time
	p, m := newPipeline(t, WithClock(func() time.Time { return now }))
	candles := uptrend(230)

	var d *Decision
	for i := 0; i < 6; i++ {
		now = now.Add(time.Minute)
		var err error
		d, err = p.Evaluate(context.Background(), request(candles[:224+i], trendStrategy()))
		require.NoError(t, err)
	}
	assert.Equal(t, model.RegimeUptrend, d.Regime.Regime)
	assert.True(t, d.Regime.IsConfirmed)
	assert.Equal(t, 1, p.Regimes().Len())
	assert.Equal(t, 6, m.regimes[string(model.RegimeUptrend)])
}

func TestGate(t *testing.T) {
	st := &model.Strategy{Signals: make([]model.StrategySignal, 3), MinSignals: 2, MinStrength: 100}
	tests := []struct {
		name    string
		matched int
		total   float64
		want    bool
	}{
		{"enough", 2, 150, true},
		{"too few", 1, 150, false},
		{"too weak", 3, 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := gate(st, tt.matched, tt.total)
			assert.Equal(t, tt.want, ok)
		})
	}

	all := &model.Strategy{Signals: make([]model.StrategySignal, 3)}
	ok, reason := gate(all, 2, 500)
	assert.False(t, ok)
	assert.Contains(t, reason, "2 of 3")
}

func TestDirection(t *testing.T) {
	bull := model.MatchedSignal{Signal: model.Signal{Strength: 60, Bias: model.Bullish}, Found: true}
	bear := model.MatchedSignal{Signal: model.Signal{Strength: 80, Bias: model.Bearish}, Found: true}
	down := &model.RegimeState{Regime: model.RegimeDowntrend}

	assert.Equal(t, model.Long, direction([]model.MatchedSignal{bull}, nil))
	assert.Equal(t, model.Short, direction([]model.MatchedSignal{bull, bear}, nil))
	assert.Equal(t, model.Short, direction(nil, down))
	assert.Equal(t, model.Long, direction(nil, nil))
}
