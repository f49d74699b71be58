// Package strength folds a strategy's matched signals into one conviction total.
package strength

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/model"
)

// Contribution is one signal's path through the stages
type Contribution struct {
	Type              model.Kind `json:"type"`
	Value             string     `json:"value"`
	Strength          float64    `json:"strength"`
	Weight            float64    `json:"weight"`
	Base              float64    `json:"base"`
	CorrelationFactor float64    `json:"correlation_factor"`
	RegimeFactor      float64    `json:"regime_factor"`
	Quality           float64    `json:"quality"`
	Adjusted          float64    `json:"adjusted"`
}

// Stage is the running total after one stage and the change it made
type Stage struct {
	Value float64 `json:"value"`
	Delta float64 `json:"delta"`
}

// Breakdown keeps every stage so a total can be explained
type Breakdown struct {
	Base              Stage          `json:"base"`
	Correlation       Stage          `json:"correlation"`
	Regime            Stage          `json:"regime"`
	Quality           Stage          `json:"quality"`
	Synergy           Stage          `json:"synergy"`
	QualityMultiplier float64        `json:"quality_multiplier"`
	SynergyMultiplier float64        `json:"synergy_multiplier"`
	Contributions     []Contribution `json:"contributions"`
	Final             float64        `json:"final"`
	Err               string         `json:"error,omitempty"`
}

// Aggregator combines matched signals. It holds no state between calls.
type Aggregator struct {
	log zerolog.Logger
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the aggregator logger
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.log = l.With().Str("component", "strength").Logger()
	}
}

// New creates an aggregator
func New(opts ...Option) *Aggregator {
	a := &Aggregator{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs the five stages over the found signals. Signals that were not found or
// carry no strength are ignored. A panic inside a stage yields a zero total.
func (a *Aggregator) Aggregate(signals []model.MatchedSignal, regime *model.RegimeState) (b Breakdown) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Int("signals", len(signals)).Msg("strength aggregation failed")
			b = Breakdown{Err: fmt.Sprint(r)}
		}
	}()

	active := make([]model.MatchedSignal, 0, len(signals))
	for _, s := range signals {
		if s.Found && s.Strength > 0 && !math.IsNaN(s.Strength) {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return Breakdown{QualityMultiplier: 1, SynergyMultiplier: 1}
	}

	contribs := make([]Contribution, len(active))
	var base, corr, reg, qual float64
	for i, s := range active {
		c := Contribution{
			Type:     s.Type,
			Value:    s.Actual,
			Strength: s.Strength,
			Weight:   typeWeights[s.Type],
		}
		c.Base = c.Strength * c.Weight
		c.CorrelationFactor = correlationFactor(active[:i], s)
		c.RegimeFactor = regimeFactor(regime, s)
		c.Quality = qualityTier(s.Strength)

		afterCorr := c.Base * c.CorrelationFactor
		afterRegime := afterCorr * c.RegimeFactor
		c.Adjusted = afterRegime * c.Quality

		base += c.Base
		corr += afterCorr
		reg += afterRegime
		qual += c.Adjusted
		contribs[i] = c
	}

	b.Contributions = contribs
	b.Base = Stage{Value: base, Delta: base}
	b.Correlation = Stage{Value: corr, Delta: corr - base}
	b.Regime = Stage{Value: reg, Delta: reg - corr}
	b.QualityMultiplier = 1
	if reg > 0 {
		b.QualityMultiplier = qual / reg
	}
	b.Quality = Stage{Value: qual, Delta: qual - reg}
	b.SynergyMultiplier = synergy(active)
	syn := qual * b.SynergyMultiplier
	b.Synergy = Stage{Value: syn, Delta: syn - qual}
	b.Final = math.Max(0, syn)

	a.log.Debug().
		Int("signals", len(active)).
		Float64("base", base).
		Float64("final", b.Final).
		Msg("strength aggregated")
	return b
}

// correlationFactor is 1 - penalty + bonus for s against the signals declared before it
func correlationFactor(earlier []model.MatchedSignal, s model.MatchedSignal) float64 {
	var penalty, bonus float64
	for _, e := range earlier {
		if p, ok := correlated[key(e.Type, s.Type)]; ok {
			penalty += p
		}
		if e.Category != s.Category && e.Bias == s.Bias && s.Bias != model.Neutral {
			bonus += agreementBonus
		}
	}
	return 1 - math.Min(penalty, maxPenalty) + math.Min(bonus, maxAgreementBonus)
}

func regimeFactor(regime *model.RegimeState, s model.MatchedSignal) float64 {
	if regime == nil || !aligned(regime.Regime, s) {
		return 1
	}
	bonus := unconfirmedRegimeBonus
	if regime.IsConfirmed {
		bonus = confirmedRegimeBonus
	}
	return 1 + regime.Confidence*bonus
}

func aligned(r model.Regime, s model.MatchedSignal) bool {
	switch r {
	case model.RegimeUptrend, model.RegimeDowntrend:
		if s.Category != model.CategoryTrend && s.Category != model.CategoryVolume {
			return false
		}
		want := model.Bullish
		if r == model.RegimeDowntrend {
			want = model.Bearish
		}
		return s.Bias == want
	case model.RegimeRanging:
		switch s.Category {
		case model.CategoryMomentum, model.CategoryVolatility, model.CategorySupportResistance, model.CategoryPattern:
			return true
		}
	}
	return false
}

func synergy(active []model.MatchedSignal) float64 {
	seen := make(map[model.Kind]bool, len(active))
	for _, s := range active {
		seen[s.Type] = true
	}
	var linked float64
	for p, v := range complementary {
		if seen[p[0]] && seen[p[1]] {
			linked += v
		}
	}
	unique := float64(len(seen)) * uniqueBonus
	return 1 + math.Min(linked, maxPairBonus) + math.Min(unique, maxUniqueBonus)
}
