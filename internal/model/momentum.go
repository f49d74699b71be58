package model

import "time"

// MomentumComponent is one normalized contributor to the momentum score
type MomentumComponent struct {
	Score   float64        `json:"score"` // 0-100
	Weight  float64        `json:"weight"`
	Details map[string]any `json:"details,omitempty"`
}

// Weighted returns the component's contribution to the final score
func (c MomentumComponent) Weighted() float64 {
	return c.Score * c.Weight
}

// MomentumBreakdown is the full result of one momentum scoring pass
type MomentumBreakdown struct {
	Unrealized    MomentumComponent `json:"unrealized_pnl"`
	Realized      MomentumComponent `json:"realized_pnl"`
	Volatility    MomentumComponent `json:"market_volatility"`
	Sentiment     MomentumComponent `json:"sentiment"`
	SignalQuality MomentumComponent `json:"signal_quality"`

	FinalScore                float64   `json:"final_score"` // 0-100
	AdjustedBalanceRiskFactor float64   `json:"adjusted_balance_risk_factor"`
	Band                      string    `json:"band"`
	Cached                    bool      `json:"cached"`
	ComputedAt                time.Time `json:"computed_at"`
}

// Components returns the components keyed by name
func (b *MomentumBreakdown) Components() map[string]MomentumComponent {
	return map[string]MomentumComponent{
		"unrealized_pnl":    b.Unrealized,
		"realized_pnl":      b.Realized,
		"market_volatility": b.Volatility,
		"sentiment":         b.Sentiment,
		"signal_quality":    b.SignalQuality,
	}
}

// NeutralMomentum is returned when scoring fails outright
func NeutralMomentum(at time.Time) *MomentumBreakdown {
	c := MomentumComponent{Score: 50}
	return &MomentumBreakdown{
		Unrealized:                c,
		Realized:                  c,
		Volatility:                c,
		Sentiment:                 c,
		SignalQuality:             c,
		FinalScore:                50,
		AdjustedBalanceRiskFactor: 0.5,
		Band:                      "neutral",
		ComputedAt:                at,
	}
}
