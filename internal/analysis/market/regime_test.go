package market

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/analysis/technical"
	"github.com/Alias1177/tradecore/internal/model"
)

func flatSet(n int, values map[model.SeriesKey]float64) *model.IndicatorSet {
	set := model.NewIndicatorSet(n)
	for key, v := range values {
		s := model.NewSeries(n)
		for i := range s {
			s[i] = v
		}
		set.Series[key] = s
	}
	return set
}

func candlesAt(n int, price float64) []model.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{Timestamp: start.Add(time.Duration(i) * time.Minute), Open: price, High: price, Low: price, Close: price}
	}
	return out
}

var (
	upValues = map[model.SeriesKey]float64{
		model.SeriesEMA: 95, model.SeriesSMA: 90, model.SeriesMACDHist: 0.5,
		model.SeriesRSI: 65, model.SeriesADX: 35, model.SeriesBBW: 0.06,
	}
	downValues = map[model.SeriesKey]float64{
		model.SeriesEMA: 105, model.SeriesSMA: 110, model.SeriesMACDHist: -0.5,
		model.SeriesRSI: 30, model.SeriesADX: 35, model.SeriesBBW: 0.06,
	}
	rangeValues = map[model.SeriesKey]float64{
		model.SeriesEMA: 100, model.SeriesSMA: 100, model.SeriesMACDHist: 0,
		model.SeriesRSI: 50, model.SeriesADX: 10, model.SeriesBBW: 0.01,
	}
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		values   map[model.SeriesKey]float64
		expected model.Regime
		minConf  float64
	}{
		{name: "strong uptrend", values: upValues, expected: model.RegimeUptrend, minConf: 0.8},
		{name: "strong downtrend", values: downValues, expected: model.RegimeDowntrend, minConf: 0.8},
		{name: "quiet range", values: rangeValues, expected: model.RegimeRanging, minConf: 0.8},
		{name: "no indicators", values: nil, expected: model.RegimeNeutral, minConf: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := SnapshotAt(candlesAt(3, 100), flatSet(3, tt.values), 1)
			regime, conf, _ := Classify(snap)
			assert.Equal(t, tt.expected, regime)
			assert.GreaterOrEqual(t, conf, tt.minConf)
			assert.LessOrEqual(t, conf, 1.0)
		})
	}
}

func TestClassifyScores(t *testing.T) {
	snap := SnapshotAt(candlesAt(3, 100), flatSet(3, rangeValues), 1)
	_, conf, sc := Classify(snap)

	// RSI 50 adds 5, ADX 10 adds 15, BBW 0.01 adds 12
	assert.InDelta(t, 32.0, sc.Ranging, 1e-9)
	assert.Zero(t, sc.Uptrend)
	assert.Zero(t, sc.Downtrend)
	assert.InDelta(t, 0.9, conf, 1e-9)
}

func TestClassifyTieIsNeutral(t *testing.T) {
	// above EMA gives up 20, below SMA gives down 15, RSI 45 gives down 5
	snap := Snapshot{Close: 100, EMA: 99, SMA: 101, RSI: 45, HasEMA: true, HasSMA: true, HasRSI: true}
	regime, conf, sc := Classify(snap)
	assert.Equal(t, sc.Uptrend, sc.Downtrend)
	assert.Equal(t, model.RegimeNeutral, regime)
	assert.Equal(t, 0.5, conf)
}

func TestConfidenceClamped(t *testing.T) {
	snap := Snapshot{Close: 100, EMA: 100, SMA: 100, RSI: 50, ADX: 19.9, BBW: 0.05,
		HasEMA: true, HasSMA: true, HasRSI: true, HasADX: true, HasBBW: true}
	_, conf, _ := Classify(snap)
	assert.GreaterOrEqual(t, conf, 0.1)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestDetectorConfirmsAfterWindow(t *testing.T) {
	candles := candlesAt(20, 100)
	set := flatSet(20, upValues)
	d := NewDetector(DetectorConfig{ConfirmationThreshold: 3})
	require.Equal(t, 5, d.Threshold())

	var state *model.RegimeState
	for i := 0; i < 4; i++ {
		state = d.Detect(candles, set, i)
		assert.False(t, state.IsConfirmed, "evaluation %d", i)
		assert.Equal(t, model.RegimeUptrend, state.Regime)
		assert.Equal(t, i+1, state.ConsecutivePeriods)
	}

	state = d.Detect(candles, set, 4)
	assert.True(t, state.IsConfirmed)
	assert.Equal(t, model.RegimeUptrend, state.Regime)
	assert.Equal(t, 5, state.ConsecutivePeriods)
	assert.InDelta(t, clampConfidence(state.RawConfidence+0.1), state.Confidence, 1e-9)
	assert.Len(t, state.History, 5)
	assert.Equal(t, candles[4].Timestamp, state.History[4].Timestamp)
}

func TestDetectorDiscordantEvaluationResetsStreak(t *testing.T) {
	candles := candlesAt(20, 100)
	up, down := flatSet(20, upValues), flatSet(20, downValues)
	d := NewDetector(DetectorConfig{ConfirmationThreshold: 5})

	for i := 0; i < 7; i++ {
		d.Detect(candles, up, i)
	}
	require.True(t, d.State().IsConfirmed)

	state := d.Detect(candles, down, 7)
	assert.Equal(t, 1, state.ConsecutivePeriods)
	assert.False(t, state.IsConfirmed)
	assert.Equal(t, model.RegimeDowntrend, state.Regime)

	state = d.Detect(candles, up, 8)
	assert.Equal(t, 1, state.ConsecutivePeriods)
	assert.False(t, state.IsConfirmed)
}

func TestDetectorHistoryBounded(t *testing.T) {
	candles := candlesAt(30, 100)
	set := flatSet(30, rangeValues)
	d := NewDetector(DetectorConfig{ConfirmationThreshold: 8})

	for i := 0; i < 25; i++ {
		d.Detect(candles, set, i)
	}
	state := d.State()
	assert.Len(t, state.History, 10)
	assert.Equal(t, 24, state.History[9].Index)
	assert.True(t, state.IsConfirmed)
	assert.Equal(t, 8, state.ConfirmationThreshold)
}

func TestDetectorRecoversFromPanic(t *testing.T) {
	candles := candlesAt(10, 100)
	set := flatSet(10, upValues)
	d := NewDetector(DetectorConfig{}, WithLogger(zerolog.Nop()))
	d.Detect(candles, set, 0)
	d.Detect(candles, set, 1)

	original := classify
	classify = func(Snapshot) (model.Regime, float64, model.RegimeScores) { panic("boom") }
	t.Cleanup(func() { classify = original })

	state := d.Detect(candles, set, 2)
	assert.Equal(t, model.RegimeNeutral, state.Regime)
	assert.Equal(t, 0.5, state.Confidence)
	assert.False(t, state.IsConfirmed)
	assert.Len(t, d.History(), 2)
}

func TestDetectorConfirmsTrendFromCandles(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, 120)
	for i := range candles {
		p := 100 + float64(i)
		candles[i] = model.Candle{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: p - 0.3, High: p + 0.8, Low: p - 0.8, Close: p + 0.3, Volume: 1000}
	}
	set := technical.NewEngine(technical.DefaultParams()).Compute(candles, Families)
	d := NewDetector(DetectorConfig{ConfirmationThreshold: 5})

	var state *model.RegimeState
	for i := 100; i < 110; i++ {
		state = d.Detect(candles, set, i)
	}
	assert.Equal(t, model.RegimeUptrend, state.Regime)
	assert.True(t, state.IsConfirmed)
	assert.GreaterOrEqual(t, state.ConsecutivePeriods, 5)
}

func TestRegistryKeysBySymbolAndTimeframe(t *testing.T) {
	r := NewRegistry(DetectorConfig{ConfirmationThreshold: 5})
	a := r.Get("BTCUSDT", "1h")
	assert.Same(t, a, r.Get("BTCUSDT", "1h"))
	assert.NotSame(t, a, r.Get("BTCUSDT", "4h"))
	assert.NotSame(t, a, r.Get("ETHUSDT", "1h"))
	assert.Equal(t, 3, r.Len())

	r.Remove("BTCUSDT", "1h")
	assert.Equal(t, 2, r.Len())
	assert.NotSame(t, a, r.Get("BTCUSDT", "1h"))
}
