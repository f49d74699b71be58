// Package data loads candle histories from disk.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/tradecore/internal/model"
)

var header = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadCSV reads candles from a timestamp,open,high,low,close,volume file
func LoadCSV(path string) ([]model.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	candles, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candles, nil
}

// ReadCSV parses candles, sorts them oldest first and rejects duplicates. The header row is
// optional and the volume column may be omitted. Timestamps are RFC3339 or unix seconds.
func ReadCSV(r io.Reader) ([]model.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var candles []model.Candle
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), header[0]) {
			continue
		}
		c, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles: %w", model.ErrInsufficientData)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp.Equal(candles[i-1].Timestamp) {
			return nil, fmt.Errorf("duplicate candle at %s", candles[i].Timestamp.Format(time.RFC3339))
		}
	}
	return candles, nil
}

func parseRecord(rec []string) (model.Candle, error) {
	if len(rec) < 5 {
		return model.Candle{}, fmt.Errorf("want at least 5 fields, got %d", len(rec))
	}
	ts, err := parseTimestamp(strings.TrimSpace(rec[0]))
	if err != nil {
		return model.Candle{}, err
	}
	vals := make([]float64, 5)
	for i := 1; i < len(rec) && i < len(header); i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("%s: %w", header[i], err)
		}
		vals[i-1] = v
	}
	c := model.Candle{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}
	if c.High < c.Low {
		return model.Candle{}, fmt.Errorf("high %v below low %v: %w", c.High, c.Low, model.ErrCorruptedData)
	}
	return c, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return time.Unix(secs, 0).UTC(), nil
}
