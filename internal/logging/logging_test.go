package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosityCapsLevel(t *testing.T) {
	tests := []struct {
		level     string
		verbosity Verbosity
		want      zerolog.Level
	}{
		{"debug", Verbose, zerolog.DebugLevel},
		{"debug", Normal, zerolog.InfoLevel},
		{"info", Quiet, zerolog.WarnLevel},
		{"error", Verbose, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		logger, err := New(Config{Level: tt.level, Format: "json", Verbosity: tt.verbosity}, &bytes.Buffer{}, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, logger.GetLevel(), "%s/%s", tt.level, tt.verbosity)
	}
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"}, nil, nil)
	assert.Error(t, err)
}

func TestSinkReceivesWarnings(t *testing.T) {
	var got []Event
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json", Verbosity: Verbose}, &buf, SinkFunc(func(e Event) {
		got = append(got, e)
	}))
	require.NoError(t, err)

	logger.Info().Msg("routine")
	logger.Warn().Str("symbol", "BTCUSDT").Msg("sentiment fetch failed")
	logger.Error().Msg("sizing failed")

	require.Len(t, got, 2)
	assert.Equal(t, zerolog.WarnLevel, got[0].Level)
	assert.Equal(t, "sentiment fetch failed", got[0].Message)
	assert.Contains(t, buf.String(), `"symbol":"BTCUSDT"`)
}

func TestSinkReceivesContext(t *testing.T) {
	var got Event
	logger, err := New(Config{Level: "info", Format: "console"}, &bytes.Buffer{}, SinkFunc(func(e Event) { got = e }))
	require.NoError(t, err)

	logger.Warn().Str("component", "momentum").Int("consecutive_failures", 5).Msg("sentiment fetch failed")
	assert.Equal(t, "sentiment fetch failed", got.Message)
	assert.Equal(t, "momentum", got.Context["component"])
	assert.Equal(t, 5.0, got.Context["consecutive_failures"])
	assert.NotContains(t, got.Context, "time")
}
