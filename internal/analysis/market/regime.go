package market

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/model"
)

const (
	maxHistory          = 10
	minConfirmWindow    = 5
	confirmedBoost      = 0.1
	neutralConfidence   = 0.5
	minConfidence       = 0.1
	macdNormalizeFactor = 0.001
)

// Families lists the indicator families the detector reads
var Families = []model.Family{
	model.FamilyEMA,
	model.FamilySMA,
	model.FamilyMACD,
	model.FamilyRSI,
	model.FamilyADX,
	model.FamilyBBW,
}

// DetectorConfig configures regime confirmation
type DetectorConfig struct {
	ConfirmationThreshold int `yaml:"confirmation_threshold" default:"5" validate:"gte=1,lte=10"`
}

// Snapshot is the indicator reading at one candle
type Snapshot struct {
	Close    float64
	EMA      float64
	SMA      float64
	MACDHist float64
	RSI      float64
	ADX      float64
	BBW      float64

	HasEMA, HasSMA, HasMACD, HasRSI, HasADX, HasBBW bool
}

// SnapshotAt reads the indicator values at index i
func SnapshotAt(candles []model.Candle, set *model.IndicatorSet, i int) Snapshot {
	s := Snapshot{}
	if i >= 0 && i < len(candles) {
		s.Close = candles[i].Close
	}
	s.EMA, s.HasEMA = set.Value(model.SeriesEMA, i)
	s.SMA, s.HasSMA = set.Value(model.SeriesSMA, i)
	s.MACDHist, s.HasMACD = set.Value(model.SeriesMACDHist, i)
	s.RSI, s.HasRSI = set.Value(model.SeriesRSI, i)
	s.ADX, s.HasADX = set.Value(model.SeriesADX, i)
	s.BBW, s.HasBBW = set.Value(model.SeriesBBW, i)
	return s
}

// classify is swapped in tests
var classify = Classify

// Classify scores a snapshot and returns the raw regime, its confidence and the scores.
// Missing indicators contribute nothing. An exact tie for the top score is neutral.
func Classify(s Snapshot) (model.Regime, float64, model.RegimeScores) {
	var sc model.RegimeScores

	if s.HasEMA {
		if s.Close > s.EMA {
			sc.Uptrend += 20
		} else if s.Close < s.EMA {
			sc.Downtrend += 20
		}
	}
	if s.HasSMA {
		if s.Close > s.SMA {
			sc.Uptrend += 15
		} else if s.Close < s.SMA {
			sc.Downtrend += 15
		}
	}

	macdMag := 0.0
	if s.HasMACD && s.Close > 0 {
		macdMag = math.Min(1, math.Abs(s.MACDHist)/(macdNormalizeFactor*s.Close))
		if s.MACDHist > 0 {
			sc.Uptrend += 15 * macdMag
		} else if s.MACDHist < 0 {
			sc.Downtrend += 15 * macdMag
		}
	}

	if s.HasRSI {
		switch {
		case s.RSI > 60:
			sc.Uptrend += 10
		case s.RSI > 50:
			sc.Uptrend += 5
		case s.RSI < 40:
			sc.Downtrend += 10
		case s.RSI < 50:
			sc.Downtrend += 5
		}
		if s.RSI >= 45 && s.RSI <= 55 {
			sc.Ranging += 5
		}
	}

	if s.HasADX {
		if s.ADX >= 20 {
			amplify(&sc, 20*math.Min(1, (s.ADX-20)/20))
		} else {
			sc.Ranging += 15 * math.Min(1, (20-s.ADX)/10)
		}
	}
	if s.HasBBW {
		if s.BBW >= 0.04 {
			amplify(&sc, math.Min(8, 8*s.BBW/0.08))
		} else if s.BBW < 0.02 {
			sc.Ranging += 12
		}
	}

	regime := argmax(sc)
	return regime, confidence(regime, s, macdMag), sc
}

// amplify adds to whichever directional score leads
func amplify(sc *model.RegimeScores, v float64) {
	switch {
	case sc.Uptrend > sc.Downtrend:
		sc.Uptrend += v
	case sc.Downtrend > sc.Uptrend:
		sc.Downtrend += v
	}
}

func argmax(sc model.RegimeScores) model.Regime {
	best := math.Max(sc.Uptrend, math.Max(sc.Downtrend, sc.Ranging))
	winners := 0
	regime := model.RegimeNeutral
	for _, c := range []struct {
		r model.Regime
		v float64
	}{
		{model.RegimeUptrend, sc.Uptrend},
		{model.RegimeDowntrend, sc.Downtrend},
		{model.RegimeRanging, sc.Ranging},
	} {
		if c.v == best {
			winners++
			regime = c.r
		}
	}
	if winners != 1 {
		return model.RegimeNeutral
	}
	return regime
}

func confidence(regime model.Regime, s Snapshot, macdMag float64) float64 {
	c := neutralConfidence

	switch regime {
	case model.RegimeUptrend, model.RegimeDowntrend:
		if s.HasADX {
			if s.ADX > 25 {
				c += 0.3
			} else if s.ADX < 20 {
				c -= 0.2
			}
		}
		agrees := (regime == model.RegimeUptrend && s.MACDHist > 0) || (regime == model.RegimeDowntrend && s.MACDHist < 0)
		if s.HasMACD && agrees {
			c += 0.15 * macdMag
		}
		if s.HasRSI {
			if regime == model.RegimeUptrend && s.RSI > 70 {
				c += 0.1 * math.Min(1, (s.RSI-70)/10)
			} else if regime == model.RegimeDowntrend && s.RSI < 30 {
				c += 0.1 * math.Min(1, (30-s.RSI)/10)
			}
		}
		if s.HasBBW && s.BBW >= 0.04 {
			c += 0.1 * math.Min(1, s.BBW/0.08)
		}
	case model.RegimeRanging:
		if s.HasADX {
			if s.ADX < 20 {
				c += 0.2
			} else if s.ADX > 25 {
				c -= 0.3
			}
		}
		if s.HasRSI && s.RSI >= 45 && s.RSI <= 55 {
			c += 0.1 * (1 - math.Abs(s.RSI-50)/5)
		}
		if s.HasBBW && s.BBW < 0.02 {
			c += 0.1
		}
	}
	return clampConfidence(c)
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return neutralConfidence
	}
	return math.Max(minConfidence, math.Min(1, c))
}

// Detector classifies the market regime of one symbol/timeframe and confirms it over a
// rolling window of past classifications. It is not safe for concurrent use; the owner
// must serialize calls.
type Detector struct {
	threshold int
	log       zerolog.Logger

	history []model.RegimeHistoryEntry
	streak  int
	last    model.Regime
	state   *model.RegimeState
}

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the detector logger
func WithLogger(l zerolog.Logger) Option {
	return func(d *Detector) {
		d.log = l.With().Str("component", "regime").Logger()
	}
}

// NewDetector creates a detector. The confirmation window is max(5, threshold).
func NewDetector(cfg DetectorConfig, opts ...Option) *Detector {
	d := &Detector{
		threshold: max(minConfirmWindow, cfg.ConfirmationThreshold),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect evaluates the regime at index. A panic while classifying yields a neutral state
// with confidence 0.5 and leaves the history untouched.
func (d *Detector) Detect(candles []model.Candle, set *model.IndicatorSet, index int) (state *model.RegimeState) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("panic", fmt.Sprint(r)).Int("index", index).Msg("Regime classification failed, falling back to neutral")
			state = model.NeutralRegime(d.threshold)
			state.ConsecutivePeriods = d.streak
			state.History = d.History()
		}
	}()

	raw, conf, scores := classify(SnapshotAt(candles, set, index))

	if d.streak > 0 && raw == d.last {
		d.streak++
	} else {
		d.streak = 1
	}
	d.last = raw

	entry := model.RegimeHistoryEntry{Index: index, Regime: raw, Confidence: conf}
	if index >= 0 && index < len(candles) {
		entry.Timestamp = candles[index].Timestamp
	}
	d.history = append(d.history, entry)
	if len(d.history) > maxHistory {
		d.history = d.history[len(d.history)-maxHistory:]
	}

	state = &model.RegimeState{
		Regime:                raw,
		Confidence:            conf,
		ConsecutivePeriods:    d.streak,
		ConfirmationThreshold: d.threshold,
		RawRegime:             raw,
		RawConfidence:         conf,
		Scores:                scores,
		History:               d.History(),
	}
	if regime, avg, ok := d.confirmed(); ok {
		state.Regime = regime
		state.Confidence = clampConfidence(avg + confirmedBoost)
		state.IsConfirmed = true
	}

	d.state = state
	d.log.Debug().
		Str("raw", string(raw)).
		Float64("raw_confidence", conf).
		Str("regime", string(state.Regime)).
		Bool("confirmed", state.IsConfirmed).
		Int("streak", d.streak).
		Msg("Regime evaluated")
	return state
}

// confirmed reports whether the last threshold entries share one regime and their mean confidence
func (d *Detector) confirmed() (model.Regime, float64, bool) {
	if len(d.history) < d.threshold {
		return "", 0, false
	}
	window := d.history[len(d.history)-d.threshold:]
	regime := window[0].Regime
	var sum float64
	for _, e := range window {
		if e.Regime != regime {
			return "", 0, false
		}
		sum += e.Confidence
	}
	return regime, sum / float64(len(window)), true
}

// State returns the most recent result, or nil before the first evaluation
func (d *Detector) State() *model.RegimeState {
	return d.state
}

// History returns a copy of the bounded classification history
func (d *Detector) History() []model.RegimeHistoryEntry {
	return append([]model.RegimeHistoryEntry(nil), d.history...)
}

// Threshold returns the effective confirmation window
func (d *Detector) Threshold() int {
	return d.threshold
}

// Reset clears history and streak
func (d *Detector) Reset() {
	d.history = nil
	d.streak = 0
	d.last = ""
	d.state = nil
}
