package momentum

import (
	"math"
	"time"

	"github.com/Alias1177/tradecore/internal/model"
)

const (
	neutralScore  = 50.0
	defaultADX    = 25.0
	defaultBBW    = 0.1
	lossPenalty   = 1.5
	pnlScale      = 10.0 // percent that saturates a component
	adxSaturation = 50.0
	bbwSaturation = 0.2
)

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// unrealizedScore maps the value-weighted open P&L to [0,100]. Gains are log-scaled and
// saturate at +10%, losses are penalized 1.5x and saturate sooner.
func unrealizedScore(positions []model.Position, prices map[string]float64) (float64, map[string]any) {
	var weighted, total float64
	counted := 0
	for _, p := range positions {
		if !p.IsOpen() {
			continue
		}
		price, ok := prices[p.Symbol]
		if !ok || !finite(price) || price <= 0 {
			continue
		}
		value := p.EntryValueUSDT
		if value <= 0 {
			value = p.EntryPrice * p.Quantity
		}
		if !finite(value) || value <= 0 {
			continue
		}
		weighted += p.PnLPercent(price) * value
		total += value
		counted++
	}
	details := map[string]any{"positions": counted}
	if total == 0 {
		return neutralScore, details
	}
	pnl := weighted / total
	details["pnl_percent"] = pnl
	return pnlToScore(pnl), details
}

func pnlToScore(pnl float64) float64 {
	switch {
	case pnl > 0:
		return 50 + 50*math.Min(1, math.Log1p(pnl)/math.Log(11))
	case pnl < 0:
		return 50 - 50*math.Min(1, lossPenalty*math.Abs(pnl)/pnlScale)
	default:
		return neutralScore
	}
}

// realizedScore is the recency-weighted mean closed P&L with losses counted 1.5x
func realizedScore(trades []model.Trade, mode string, now time.Time, halfLife time.Duration) (float64, map[string]any) {
	var sum, weights float64
	counted := 0
	for _, t := range trades {
		if mode != "" && t.TradingMode != mode {
			continue
		}
		if !finite(t.PnLPercentage) {
			continue
		}
		age := max(0, now.Sub(t.ExitTime))
		w := math.Pow(0.5, age.Hours()/halfLife.Hours())
		v := t.PnLPercentage
		if v < 0 {
			v *= lossPenalty
		}
		sum += w * v
		weights += w
		counted++
	}
	details := map[string]any{"trades": counted}
	if weights == 0 {
		return neutralScore, details
	}
	avg := sum / weights
	details["weighted_pnl_percent"] = avg
	return 50 + 50*math.Max(-1, math.Min(1, avg/pnlScale)), details
}

// volatilityScore blends trend strength and band width
func volatilityScore(adx, bbw float64) (float64, map[string]any) {
	if !finite(adx) || adx < 0 {
		adx = defaultADX
	}
	if !finite(bbw) || bbw < 0 {
		bbw = defaultBBW
	}
	score := 0.6*clampScore(adx/adxSaturation*100) + 0.4*clampScore(bbw/bbwSaturation*100)
	return score, map[string]any{"adx": adx, "bbw": bbw}
}

func sentimentScore(fearGreed float64) float64 {
	if !finite(fearGreed) {
		return neutralScore
	}
	return clampScore(100 - fearGreed)
}

func qualityScore(strengths []float64) (float64, map[string]any) {
	if len(strengths) == 0 {
		return neutralScore, map[string]any{"samples": 0}
	}
	var sum float64
	for _, s := range strengths {
		sum += s
	}
	return clampScore(sum / float64(len(strengths))), map[string]any{"samples": len(strengths)}
}

// riskFactor maps the final score onto the fraction of the maximum balance risk allowed
func riskFactor(score float64, cfg Config) (float64, string) {
	th := cfg.Thresholds
	maxPct := cfg.MaxRiskPercent
	var pct float64
	var band string
	switch {
	case score >= th.Excellent:
		pct, band = maxPct, "excellent"
	case score >= th.Good:
		pct, band = maxPct*(0.6+0.4*(score-th.Good)/(th.Excellent-th.Good)), "good"
	case score >= th.Poor:
		pct, band = maxPct*(0.2+0.4*(score-th.Poor)/(th.Good-th.Poor)), "poor"
	default:
		pct, band = math.Max(cfg.MinRiskPercent, 0.1*maxPct), "critical"
	}
	pct = math.Max(cfg.MinRiskPercent, math.Min(maxPct, pct))
	return pct / 100, band
}
