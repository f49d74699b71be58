package technical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/model"
)

func TestATRLengthAndBounds(t *testing.T) {
	tests := []struct {
		name    string
		candles []model.Candle
		period  int
	}{
		{name: "exactly one period", candles: wavyCandles(14), period: 14},
		{name: "long wavy series", candles: wavyCandles(300), period: 14},
		{name: "short period", candles: wavyCandles(60), period: 3},
		{
			name: "wide ranges hit the cap",
			candles: generateTestCandles(40, func(i int) model.Candle {
				return model.Candle{Open: 100, High: 100 + float64(i%5)*20, Low: 80, Close: 100}
			}),
			period: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atr := ATR(tt.candles, tt.period, DefaultATROptions())
			require.Len(t, atr, len(tt.candles))

			for i := 0; i < tt.period-1; i++ {
				assert.False(t, atr.Valid(i), "index %d should be warm-up", i)
			}
			for i := tt.period - 1; i < len(atr); i++ {
				v, ok := atr.At(i)
				require.True(t, ok, "index %d should be set", i)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 0.1*tt.candles[i].Close+1e-9)
			}
		})
	}
}

func TestATRFlatSeries(t *testing.T) {
	candles := flatCandles(20, 100)

	tr := TrueRange(candles, DefaultATROptions())
	for i, v := range tr {
		assert.Zero(t, v, "true range at %d", i)
	}

	atr := ATR(candles, 14, DefaultATROptions())
	require.Len(t, atr, 20)
	for i := 0; i < 13; i++ {
		assert.True(t, math.IsNaN(atr[i]))
	}
	for i := 13; i < 20; i++ {
		v, ok := atr.At(i)
		require.True(t, ok, "index %d", i)
		assert.Zero(t, v)
	}
}

func TestATRTooFewCandles(t *testing.T) {
	atr := ATR(wavyCandles(5), 14, DefaultATROptions())
	require.Len(t, atr, 5)
	assert.Equal(t, -1, atr.FirstValid())

	assert.Empty(t, ATR(nil, 14, DefaultATROptions()))
}

func TestTrueRangeSubstitutesCorruptedCandles(t *testing.T) {
	candles := generateTestCandles(20, func(i int) model.Candle {
		return model.Candle{Open: 100, High: 101, Low: 99, Close: 100}
	})
	candles[10].High = 5000

	validated := TrueRange(candles, DefaultATROptions())
	assert.InDelta(t, 2.0, validated[10], 1e-9)
	assert.Equal(t, validated[9], validated[10])

	raw := TrueRange(candles, ATROptions{})
	assert.InDelta(t, 4901.0, raw[10], 1e-9)
}

func TestTrueRangeFirstCandleCorrupted(t *testing.T) {
	candles := generateTestCandles(5, func(i int) model.Candle {
		return model.Candle{Open: 100, High: 101, Low: 99, Close: 100}
	})
	candles[0].Low = math.NaN()

	tr := TrueRange(candles, DefaultATROptions())
	assert.Zero(t, tr[0])
	assert.InDelta(t, 2.0, tr[1], 1e-9)
}

func TestMaxValidPriceIgnoresOutliers(t *testing.T) {
	candles := flatCandles(11, 100)
	candles[3].Close = 120
	candles[7].Close = 100000

	assert.Equal(t, 120.0, MaxValidPrice(candles, 10))
	assert.Empty(t, CorruptedCandles(flatCandles(10, 50), DefaultATROptions()))
}

func TestATROverridableThresholds(t *testing.T) {
	candles := generateTestCandles(30, func(i int) model.Candle {
		return model.Candle{Open: 100, High: 140, Low: 60, Close: 100}
	})

	def := ATR(candles, 5, DefaultATROptions())
	v, ok := def.At(29)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)

	loose := DefaultATROptions()
	loose.TrueRangeCapFraction = 1
	loose.ATRCapFraction = 1
	v, ok = ATR(candles, 5, loose).At(29)
	require.True(t, ok)
	assert.InDelta(t, 80.0, v, 1e-9)
}
