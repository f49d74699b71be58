package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/model"
)

func TestReadCSV(t *testing.T) {
	src := `timestamp,open,high,low,close,volume
2024-03-01T01:00:00Z,101,103,100,102,12.5
1709251200,100,102,99,101,10
`
	candles, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, time.Unix(1709251200, 0).UTC(), candles[0].Timestamp)
	assert.Equal(t, 101.0, candles[0].Close)
	assert.Equal(t, 12.5, candles[1].Volume)
}

func TestReadCSVWithoutVolume(t *testing.T) {
	candles, err := ReadCSV(strings.NewReader("1709251200,1.08,1.09,1.07,1.085\n"))
	require.NoError(t, err)
	assert.Zero(t, candles[0].Volume)
}

func TestReadCSVErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "timestamp,open,high,low,close,volume\n",
		"short row":    "1709251200,1,2\n",
		"bad number":   "1709251200,1,2,x,1\n",
		"bad time":     "yesterday,1,2,1,1\n",
		"high < low":   "1709251200,1,1,2,1\n",
		"duplicate ts": "1709251200,1,2,1,1\n1709251200,1,2,1,1\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(src))
			assert.Error(t, err)
		})
	}

	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrInsufficientData)
	_, err = ReadCSV(strings.NewReader("1709251200,1,1,2,1\n"))
	assert.ErrorIs(t, err, model.ErrCorruptedData)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte("1709251200,1,2,1,1.5,3\n"), 0o600))
	candles, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, candles, 1)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
