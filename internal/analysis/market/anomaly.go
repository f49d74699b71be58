package market

import (
	"fmt"
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// Anomaly types
const (
	AnomalyPriceSpike  = "price_spike"
	AnomalyVolumeSpike = "volume_spike"
	AnomalyGap         = "gap"
	AnomalyExtremeRSI  = "extreme_rsi"
	AnomalyRapidMove   = "rapid_price_move"
)

// AnomalyFamilies lists the indicator families DetectAnomalies reads
var AnomalyFamilies = []model.Family{model.FamilyATR, model.FamilyVolumeSMA, model.FamilyRSI}

// DetectAnomalies identifies unusual conditions at candle i. Checks whose indicators are
// not available are skipped.
func DetectAnomalies(candles []model.Candle, set *model.IndicatorSet, i int) []model.Anomaly {
	if i < 1 || i >= len(candles) {
		return nil
	}
	current, prev := candles[i], candles[i-1]
	var out []model.Anomaly

	atr, hasATR := set.Value(model.SeriesATR, i)
	if hasATR && atr > 0 {
		move := math.Abs(current.Close-prev.Close) / atr
		if move > 3 {
			out = append(out, model.Anomaly{
				Type:    AnomalyPriceSpike,
				Score:   math.Min(move/6, 1),
				Details: fmt.Sprintf("Price moved %.1f times the average range", move),
				Flags:   []string{"reduce_position_size", "use_wider_stops"},
			})
		}

		gap := 0.0
		if current.Low > prev.Close {
			gap = current.Low - prev.Close
		} else if current.High < prev.Close {
			gap = prev.Close - current.High
		}
		if g := gap / atr; g > 1 {
			out = append(out, model.Anomaly{
				Type:    AnomalyGap,
				Score:   math.Min(g/2, 1),
				Details: fmt.Sprintf("Price gapped %.1f times the average range", g),
				Flags:   []string{"expect_volatile_trading"},
			})
		}
	}

	if avg, ok := set.Value(model.SeriesVolumeSMA, i-1); ok && avg > 0 && current.Volume > 0 {
		if ratio := current.Volume / avg; ratio > 3 {
			out = append(out, model.Anomaly{
				Type:    AnomalyVolumeSpike,
				Score:   math.Min(ratio/5, 1),
				Details: fmt.Sprintf("Volume %.1f times the average", ratio),
				Flags:   []string{"wait_for_confirmation"},
			})
		}
	}

	if rsi, ok := set.Value(model.SeriesRSI, i); ok && (rsi < 10 || rsi > 90) {
		a := model.Anomaly{Type: AnomalyExtremeRSI, Flags: []string{"expect_reversal"}}
		if rsi < 10 {
			a.Score = (10 - rsi) / 10
			a.Details = fmt.Sprintf("Extremely oversold RSI: %.1f", rsi)
		} else {
			a.Score = (rsi - 90) / 10
			a.Details = fmt.Sprintf("Extremely overbought RSI: %.1f", rsi)
		}
		out = append(out, a)
	}

	if i >= 5 && candles[i-5].Close > 0 {
		change := (current.Close - candles[i-5].Close) / candles[i-5].Close
		if math.Abs(change) > 0.05 {
			out = append(out, model.Anomaly{
				Type:    AnomalyRapidMove,
				Score:   math.Min(math.Abs(change)/0.1, 1),
				Details: fmt.Sprintf("Rapid %.1f%% price move over 5 candles", change*100),
				Flags:   []string{"expect_pullback"},
			})
		}
	}

	return out
}
