package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/analysis/technical"
	"github.com/Alias1177/tradecore/internal/logging"
	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/trading/momentum"
	"github.com/Alias1177/tradecore/internal/trading/risk"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, technical.DefaultParams(), s.Indicators)
	assert.Equal(t, momentum.DefaultConfig(), s.Momentum)
	assert.Equal(t, risk.DefaultConfig(), s.Sizing)
	assert.Equal(t, 5, s.Regime.ConfirmationThreshold)
	assert.Equal(t, logging.Normal, s.Log.Verbosity)
	assert.Equal(t, "api", s.Sentiment.Source)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
  verbosity: verbose
indicators:
  rsi_period: 9
  atr:
    max_price_multiple: 20
regime:
  confirmation_threshold: 8
momentum:
  cooldown: 1m
  weights:
    unrealized_pnl: 0.3
    realized_pnl: 0.2
sizing:
  method: fixed
sentiment:
  source: static
  static: 35
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, s.Indicators.RSIPeriod)
	assert.Equal(t, 14, s.Indicators.ATRPeriod)
	assert.Equal(t, 20.0, s.Indicators.ATR.MaxPriceMultiple)
	assert.Equal(t, 0.5, s.Indicators.ATR.MaxGapFraction)
	assert.Equal(t, 8, s.Regime.ConfirmationThreshold)
	assert.Equal(t, time.Minute, s.Momentum.Cooldown)
	assert.Equal(t, model.MethodFixed, s.Sizing.Method)
	assert.Equal(t, 35.0, s.Sentiment.Static)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"weights do not sum to one": "momentum:\n  weights:\n    sentiment: 0.5\n",
		"threshold out of range":    "regime:\n  confirmation_threshold: 11\n",
		"unknown method":            "sizing:\n  method: martingale\n",
		"bad log format":            "log:\n  format: xml\n",
		"thresholds out of order":   "momentum:\n  thresholds:\n    good: 90\n",
		"not yaml":                  "indicators: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadStrategy(t *testing.T) {
	st, err := LoadStrategy(writeFile(t, `
name: momentum pullback
min_signals: 2
min_strength: 100
signals:
  - type: rsi
    value: oversold
    parameters:
      oversold: 35
  - type: macd
    value: bullish_cross
`))
	require.NoError(t, err)
	assert.Equal(t, "momentum pullback", st.Name)
	assert.Equal(t, []model.Kind{model.KindRSI, model.KindMACD}, st.Kinds())

	_, err = ParseStrategy([]byte("name: empty\n"))
	assert.ErrorIs(t, err, model.ErrNoSignals)
	_, err = ParseStrategy([]byte("signals:\n  - type: horoscope\n"))
	assert.Error(t, err)
}

func TestEnvApply(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("VERBOSITY", " Quiet ")
	t.Setenv("FEAR_GREED_URL", "http://localhost:9999/fng")
	t.Setenv("REQUEST_TIMEOUT", "4")

	s, err := Default()
	require.NoError(t, err)
	LoadEnv().Apply(s)

	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, logging.Quiet, s.Log.Verbosity)
	assert.Equal(t, "http://localhost:9999/fng", s.Sentiment.URL)
	assert.Equal(t, 4*time.Second, s.Sentiment.Timeout)
	require.NoError(t, s.Validate())
}

func TestEnvDebugLevelRaisesVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		verbosity string
		want      logging.Verbosity
	}{
		{"debug alone", "debug", "", logging.Verbose},
		{"trace alone", "trace", "", logging.Verbose},
		{"explicit verbosity wins", "debug", "quiet", logging.Quiet},
		{"info keeps default", "info", "", logging.Normal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("VERBOSITY", tt.verbosity)

			s, err := Default()
			require.NoError(t, err)
			LoadEnv().Apply(s)

			assert.Equal(t, tt.want, s.Log.Verbosity)
			logger, err := logging.New(s.Log, &bytes.Buffer{}, nil)
			require.NoError(t, err)
			if tt.verbosity == "" {
				assert.Equal(t, tt.level, logger.GetLevel().String())
			}
		})
	}
}
