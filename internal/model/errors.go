package model

import "errors"

var (
	// ErrInsufficientData is returned when a lookback needs more candles than available
	ErrInsufficientData = errors.New("insufficient data")
	// ErrCorruptedData marks candles rejected by outlier checks
	ErrCorruptedData = errors.New("corrupted data")
	// ErrNoSignals is returned when a strategy declares no signals
	ErrNoSignals = errors.New("strategy declares no signals")
)
