package replay

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/config"
	"github.com/Alias1177/tradecore/internal/model"
)

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

var filters = model.SymbolFilters{
	LotSize:     model.LotSizeFilter{MinQty: 0.001, StepSize: 0.001},
	MinNotional: model.MinNotionalFilter{MinNotional: 10},
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := config.Default()
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Warmup = 210
	return NewEngine(s, cfg, zerolog.Nop())
}

func TestRunUptrend(t *testing.T) {
	e := newEngine(t)

	r, err := e.Run(context.Background(), "BTCUSDT", "1h", uptrend(260), trendStrategy(), filters)
	require.NoError(t, err)

	// bars 210..257, the last one has no room left for its exit
	assert.Equal(t, 48, r.Bars)
	assert.Equal(t, r.Bars, r.GatePassed)
	assert.InDelta(t, 100, r.GatePassRate, 1e-9)
	assert.Greater(t, r.MeanStrength, 0.0)
	assert.Equal(t, r.Bars, r.SizingOutcomes["ok"])

	assert.Equal(t, r.Bars-1, r.TotalTrades)
	assert.Zero(t, r.LosingTrades)
	assert.Equal(t, r.TotalTrades, r.MaxConsecutive.Wins)
	assert.InDelta(t, 100, r.WinPercentage, 1e-9)
	assert.Greater(t, r.EquityGrowthPercent, 0.0)
	assert.Zero(t, r.MaxDrawdown)
	assert.Len(t, r.EquityCurve, r.TotalTrades+1)

	total := 0
	for _, n := range r.RegimeCounts {
		total += n
	}
	assert.Equal(t, r.Bars, total)
	assert.Greater(t, r.ConfirmedBars, 0)

	for _, tr := range r.Trades {
		assert.Equal(t, model.Long, tr.Direction)
		assert.Equal(t, "replay", tr.TradingMode)
		assert.Greater(t, tr.PnLUSDT, 0.0)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	candles := uptrend(240)

	a, err := newEngine(t).Run(context.Background(), "BTCUSDT", "1h", candles, trendStrategy(), filters)
	require.NoError(t, err)
	b, err := newEngine(t).Run(context.Background(), "BTCUSDT", "1h", candles, trendStrategy(), filters)
	require.NoError(t, err)

	assert.Equal(t, a.EquityCurve, b.EquityCurve)
	assert.Equal(t, a.RegimeCounts, b.RegimeCounts)
}

func TestRunRejects(t *testing.T) {
	e := newEngine(t)

	_, err := e.Run(context.Background(), "BTCUSDT", "1h", uptrend(100), trendStrategy(), filters)
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = e.Run(context.Background(), "BTCUSDT", "1h", uptrend(260), &model.Strategy{Name: "empty"}, filters)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, "BTCUSDT", "1h", uptrend(260), trendStrategy(), filters)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name  string
		curve []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{100, 110, 120}, 0},
		{"dip", []float64{100, 120, 90, 130}, 0.25},
		{"two dips", []float64{100, 90, 200, 150}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, maxDrawdown(tt.curve), 1e-9)
		})
	}
}

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := mean(values)
	assert.InDelta(t, 5, m, 1e-9)
	assert.InDelta(t, 2.138, stdDev(values, m), 1e-3)
	assert.Zero(t, stdDev([]float64{1}, 1))
	assert.Zero(t, mean(nil))
}

func TestFormatResults(t *testing.T) {
	assert.Equal(t, "No replay results available", FormatResults(nil))

	r := newResults()
	r.Bars = 10
	r.GatePassed = 4
	r.RegimeCounts[model.RegimeUptrend] = 10
	r.SizingOutcomes["ok"] = 3
	r.SizingOutcomes[string(model.ReasonPortfolioHeatExceeded)] = 1
	r.MonthlyReturns["2024-03"] = 1.5

	out := FormatResults(r)
	assert.Contains(t, out, "===== REPLAY RESULTS =====")
	assert.Contains(t, out, "- uptrend: 10 (100.0%)")
	assert.Contains(t, out, "- portfolio_heat_exceeded: 1")
	assert.Contains(t, out, "- 2024-03: +1.50%")
}

func TestRunTagsTradesWithMomentumMode(t *testing.T) {
	s, err := config.Default()
	require.NoError(t, err)
	s.Momentum.TradingMode = "live"
	cfg := DefaultConfig()
	cfg.Warmup = 210

	r, err := NewEngine(s, cfg, zerolog.Nop()).
		Run(context.Background(), "BTCUSDT", "1h", uptrend(230), trendStrategy(), filters)
	require.NoError(t, err)
	require.NotEmpty(t, r.Trades)
	for _, tr := range r.Trades {
		assert.Equal(t, "live", tr.TradingMode)
	}
}
