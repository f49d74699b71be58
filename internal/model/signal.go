package model

import (
	"fmt"
	"strings"
)

// Kind is a signal type a strategy can declare
type Kind int

const (
	// trend
	KindEMA Kind = iota
	KindSMA
	KindMACross
	KindMARibbon
	KindMACD
	KindADX
	KindPSAR
	KindIchimoku
	// momentum
	KindRSI
	KindStochastic
	KindStochRSI
	KindWilliamsR
	KindCCI
	KindROC
	KindAwesomeOscillator
	// volatility
	KindBollinger
	KindBBW
	KindATR
	KindKeltner
	KindDonchian
	KindTTMSqueeze
	// volume
	KindVolume
	KindOBV
	KindMFI
	KindCMF
	KindVWAP
	KindADLine
	// pattern
	KindCandlestick
	KindChartPattern
	KindDivergence
	// support / resistance
	KindSupportResistance
	KindPivot
	KindFibonacci

	KindCount
)

// Category groups signal kinds into families
type Category string

const (
	CategoryTrend             Category = "trend"
	CategoryMomentum          Category = "momentum"
	CategoryVolatility        Category = "volatility"
	CategoryVolume            Category = "volume"
	CategoryPattern           Category = "pattern"
	CategorySupportResistance Category = "support_resistance"
)

type kindInfo struct {
	name     string
	category Category
}

var kinds = [KindCount]kindInfo{
	KindEMA:               {"ema", CategoryTrend},
	KindSMA:               {"sma", CategoryTrend},
	KindMACross:           {"ma_cross", CategoryTrend},
	KindMARibbon:          {"ma_ribbon", CategoryTrend},
	KindMACD:              {"macd", CategoryTrend},
	KindADX:               {"adx", CategoryTrend},
	KindPSAR:              {"psar", CategoryTrend},
	KindIchimoku:          {"ichimoku", CategoryTrend},
	KindRSI:               {"rsi", CategoryMomentum},
	KindStochastic:        {"stochastic", CategoryMomentum},
	KindStochRSI:          {"stoch_rsi", CategoryMomentum},
	KindWilliamsR:         {"williams_r", CategoryMomentum},
	KindCCI:               {"cci", CategoryMomentum},
	KindROC:               {"roc", CategoryMomentum},
	KindAwesomeOscillator: {"awesome_oscillator", CategoryMomentum},
	KindBollinger:         {"bollinger", CategoryVolatility},
	KindBBW:               {"bbw", CategoryVolatility},
	KindATR:               {"atr", CategoryVolatility},
	KindKeltner:           {"keltner", CategoryVolatility},
	KindDonchian:          {"donchian", CategoryVolatility},
	KindTTMSqueeze:        {"ttm_squeeze", CategoryVolatility},
	KindVolume:            {"volume", CategoryVolume},
	KindOBV:               {"obv", CategoryVolume},
	KindMFI:               {"mfi", CategoryVolume},
	KindCMF:               {"cmf", CategoryVolume},
	KindVWAP:              {"vwap", CategoryVolume},
	KindADLine:            {"ad_line", CategoryVolume},
	KindCandlestick:       {"candlestick", CategoryPattern},
	KindChartPattern:      {"chart_pattern", CategoryPattern},
	KindDivergence:        {"divergence", CategoryPattern},
	KindSupportResistance: {"support_resistance", CategorySupportResistance},
	KindPivot:             {"pivot", CategorySupportResistance},
	KindFibonacci:         {"fibonacci", CategorySupportResistance},
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kinds[k].name
}

// Category returns the family the kind belongs to
func (k Kind) Category() Category {
	if k < 0 || k >= KindCount {
		return ""
	}
	return kinds[k].category
}

// ParseKind resolves a strategy type name. Matching is normalized.
func ParseKind(s string) (Kind, error) {
	n := Normalize(s)
	for k := Kind(0); k < KindCount; k++ {
		if kinds[k].name == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown signal type %q", s)
}

// UnmarshalText lets Kind be decoded directly from YAML or JSON strings
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Normalize lowercases, trims and folds spaces, dashes and underscores to one underscore
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	sep := false
	for _, r := range s {
		if r == ' ' || r == '_' || r == '-' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// Signal is one candidate reading produced by an evaluator
type Signal struct {
	Type     Kind     `json:"type"`
	Value    string   `json:"value"`
	Strength float64  `json:"strength"` // 0-100
	IsEvent  bool     `json:"is_event"`
	Category Category `json:"category"`
	Bias     Bias     `json:"bias"`
}

// MatchedSignal is a strategy signal resolved against the evaluated candidates
type MatchedSignal struct {
	Signal
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
	Found      bool   `json:"found"`
	ExactMatch bool   `json:"exact_match"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// StrategySignal is one declared requirement of a strategy
type StrategySignal struct {
	Type       Kind               `yaml:"type" json:"type"`
	Value      string             `yaml:"value" json:"value"`
	Parameters map[string]float64 `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Param returns a named parameter or the fallback
func (s StrategySignal) Param(name string, fallback float64) float64 {
	if v, ok := s.Parameters[name]; ok {
		return v
	}
	return fallback
}

// Strategy is a named set of signals that must agree before a trade is sized
type Strategy struct {
	Name        string           `yaml:"name" json:"name"`
	Signals     []StrategySignal `yaml:"signals" json:"signals"`
	MinSignals  int              `yaml:"min_signals" json:"min_signals"`
	MinStrength float64          `yaml:"min_strength" json:"min_strength"`
}

// Kinds returns the declared signal kinds in order
func (s *Strategy) Kinds() []Kind {
	out := make([]Kind, 0, len(s.Signals))
	for _, sig := range s.Signals {
		out = append(out, sig.Type)
	}
	return out
}

// Validate checks the strategy is usable
func (s *Strategy) Validate() error {
	if s == nil {
		return fmt.Errorf("strategy is nil")
	}
	if len(s.Signals) == 0 {
		return fmt.Errorf("strategy %q: %w", s.Name, ErrNoSignals)
	}
	if s.MinSignals < 0 || s.MinSignals > len(s.Signals) {
		return fmt.Errorf("strategy %q: min_signals %d out of range [0,%d]", s.Name, s.MinSignals, len(s.Signals))
	}
	if s.MinStrength < 0 {
		return fmt.Errorf("strategy %q: min_strength must not be negative", s.Name)
	}
	return nil
}
