package model

import "time"

// Regime is the classified market state
type Regime string

const (
	RegimeUptrend   Regime = "uptrend"
	RegimeDowntrend Regime = "downtrend"
	RegimeRanging   Regime = "ranging"
	RegimeNeutral   Regime = "neutral"
)

// IsTrending reports whether the regime has a direction
func (r Regime) IsTrending() bool {
	return r == RegimeUptrend || r == RegimeDowntrend
}

// RegimeHistoryEntry is one raw classification kept by the detector
type RegimeHistoryEntry struct {
	Index      int       `json:"index"`
	Regime     Regime    `json:"regime"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// RegimeScores are the raw directional scores behind a classification
type RegimeScores struct {
	Uptrend   float64 `json:"uptrend"`
	Downtrend float64 `json:"downtrend"`
	Ranging   float64 `json:"ranging"`
}

// RegimeState represents the current market regime of one symbol/timeframe
type RegimeState struct {
	Regime                Regime               `json:"regime"`
	Confidence            float64              `json:"confidence"` // 0.1-1.0
	IsConfirmed           bool                 `json:"is_confirmed"`
	ConsecutivePeriods    int                  `json:"consecutive_periods"`
	ConfirmationThreshold int                  `json:"confirmation_threshold"`
	RawRegime             Regime               `json:"raw_regime"`
	RawConfidence         float64              `json:"raw_confidence"`
	Scores                RegimeScores         `json:"scores"`
	History               []RegimeHistoryEntry `json:"history"`
}

// NeutralRegime is the fallback used when classification cannot run
func NeutralRegime(threshold int) *RegimeState {
	return &RegimeState{
		Regime:                RegimeNeutral,
		Confidence:            0.5,
		ConsecutivePeriods:    0,
		ConfirmationThreshold: threshold,
		RawRegime:             RegimeNeutral,
		RawConfidence:         0.5,
	}
}

// Anomaly flags unusual market conditions at the evaluated candle
type Anomaly struct {
	Type    string   `json:"type"`
	Score   float64  `json:"score"` // 0-1
	Details string   `json:"details"`
	Flags   []string `json:"flags,omitempty"`
}
