package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Oversold":          "oversold",
		"  bullish cross  ": "bullish_cross",
		"Bullish-Cross":     "bullish_cross",
		"bullish__cross":    "bullish_cross",
		"_above - zero_":    "above_zero",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestParseKind(t *testing.T) {
	for k := Kind(0); k < KindCount; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	k, err := ParseKind("Stoch-RSI")
	require.NoError(t, err)
	assert.Equal(t, KindStochRSI, k)

	_, err = ParseKind("astrology")
	assert.Error(t, err)
}

func TestStrategyFromYAML(t *testing.T) {
	src := `
name: trend pullback
min_signals: 2
min_strength: 120
signals:
  - type: EMA
    value: price_above
  - type: rsi
    value: oversold
    parameters:
      oversold: 35
`
	var s Strategy
	require.NoError(t, yaml.Unmarshal([]byte(src), &s))
	require.NoError(t, s.Validate())
	assert.Equal(t, []Kind{KindEMA, KindRSI}, s.Kinds())
	assert.Equal(t, 35.0, s.Signals[1].Param("oversold", 30))
	assert.Equal(t, 70.0, s.Signals[1].Param("overbought", 70))

	var bad Strategy
	assert.Error(t, yaml.Unmarshal([]byte("signals:\n  - type: tarot\n"), &bad))
}

func TestStrategyValidate(t *testing.T) {
	var nilStrategy *Strategy
	assert.Error(t, nilStrategy.Validate())
	assert.ErrorIs(t, (&Strategy{Name: "empty"}).Validate(), ErrNoSignals)
	assert.Error(t, (&Strategy{Signals: []StrategySignal{{Type: KindRSI}}, MinSignals: 2}).Validate())
}

func TestSeries(t *testing.T) {
	s := NewSeries(3)
	assert.Equal(t, -1, s.FirstValid())
	s[1] = 4
	s[2] = math.Inf(1)

	_, ok := s.At(0)
	assert.False(t, ok)
	v, ok := s.At(1)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
	assert.False(t, s.Valid(2))
	assert.False(t, s.Valid(7))
	assert.Equal(t, 1, s.FirstValid())
}

func TestPositionPnL(t *testing.T) {
	long := Position{Direction: Long, EntryPrice: 100}
	short := Position{Direction: Short, EntryPrice: 100}
	assert.InDelta(t, 10.0, long.PnLPercent(110), 1e-9)
	assert.InDelta(t, -10.0, short.PnLPercent(110), 1e-9)
	assert.Zero(t, long.PnLPercent(0))
}
