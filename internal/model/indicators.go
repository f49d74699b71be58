package model

// Family identifies one indicator computation. A family may produce several series.
type Family int

const (
	FamilySMA Family = iota
	FamilyEMA
	FamilyRibbon
	FamilyMACD
	FamilyRSI
	FamilyStochastic
	FamilyStochRSI
	FamilyWilliamsR
	FamilyCCI
	FamilyROC
	FamilyAwesome
	FamilyBollinger
	FamilyBBW
	FamilyATR
	FamilyKeltner
	FamilyDonchian
	FamilySqueeze
	FamilyADX
	FamilyPSAR
	FamilyIchimoku
	FamilyOBV
	FamilyMFI
	FamilyCMF
	FamilyVWAP
	FamilyADLine
	FamilyVolumeSMA
	FamilyPivots
	FamilyFibonacci
	FamilySupportResistance
	FamilyCandlestick
	FamilyChartPatterns
	FamilyDivergence

	familyCount
)

var familyNames = [familyCount]string{
	FamilySMA:               "sma",
	FamilyEMA:               "ema",
	FamilyRibbon:            "ema_ribbon",
	FamilyMACD:              "macd",
	FamilyRSI:               "rsi",
	FamilyStochastic:        "stochastic",
	FamilyStochRSI:          "stoch_rsi",
	FamilyWilliamsR:         "williams_r",
	FamilyCCI:               "cci",
	FamilyROC:               "roc",
	FamilyAwesome:           "awesome_oscillator",
	FamilyBollinger:         "bollinger",
	FamilyBBW:               "bbw",
	FamilyATR:               "atr",
	FamilyKeltner:           "keltner",
	FamilyDonchian:          "donchian",
	FamilySqueeze:           "squeeze",
	FamilyADX:               "adx",
	FamilyPSAR:              "psar",
	FamilyIchimoku:          "ichimoku",
	FamilyOBV:               "obv",
	FamilyMFI:               "mfi",
	FamilyCMF:               "cmf",
	FamilyVWAP:              "vwap",
	FamilyADLine:            "ad_line",
	FamilyVolumeSMA:         "volume_sma",
	FamilyPivots:            "pivots",
	FamilyFibonacci:         "fibonacci",
	FamilySupportResistance: "support_resistance",
	FamilyCandlestick:       "candlestick",
	FamilyChartPatterns:     "chart_patterns",
	FamilyDivergence:        "divergence",
}

func (f Family) String() string {
	if f < 0 || f >= familyCount {
		return "unknown"
	}
	return familyNames[f]
}

// Families returns every known family in declaration order.
func Families() []Family {
	out := make([]Family, 0, familyCount)
	for f := Family(0); f < familyCount; f++ {
		out = append(out, f)
	}
	return out
}

// SeriesKey names one output series inside an IndicatorSet
type SeriesKey string

const (
	SeriesSMA          SeriesKey = "sma"
	SeriesSMALong      SeriesKey = "sma_long"
	SeriesEMA          SeriesKey = "ema"
	SeriesEMAFast      SeriesKey = "ema_fast"
	SeriesEMASlow      SeriesKey = "ema_slow"
	SeriesMACD         SeriesKey = "macd"
	SeriesMACDSignal   SeriesKey = "macd_signal"
	SeriesMACDHist     SeriesKey = "macd_hist"
	SeriesRSI          SeriesKey = "rsi"
	SeriesStochK       SeriesKey = "stoch_k"
	SeriesStochD       SeriesKey = "stoch_d"
	SeriesStochRSIK    SeriesKey = "stoch_rsi_k"
	SeriesStochRSID    SeriesKey = "stoch_rsi_d"
	SeriesWilliamsR    SeriesKey = "williams_r"
	SeriesCCI          SeriesKey = "cci"
	SeriesROC          SeriesKey = "roc"
	SeriesAO           SeriesKey = "awesome_oscillator"
	SeriesBBUpper      SeriesKey = "bb_upper"
	SeriesBBMiddle     SeriesKey = "bb_middle"
	SeriesBBLower      SeriesKey = "bb_lower"
	SeriesBBW          SeriesKey = "bbw"
	SeriesATR          SeriesKey = "atr"
	SeriesKCUpper      SeriesKey = "kc_upper"
	SeriesKCMiddle     SeriesKey = "kc_middle"
	SeriesKCLower      SeriesKey = "kc_lower"
	SeriesDCUpper      SeriesKey = "dc_upper"
	SeriesDCMiddle     SeriesKey = "dc_middle"
	SeriesDCLower      SeriesKey = "dc_lower"
	SeriesSqueeze      SeriesKey = "squeeze_on"
	SeriesSqueezeMom   SeriesKey = "squeeze_momentum"
	SeriesADX          SeriesKey = "adx"
	SeriesPlusDI       SeriesKey = "plus_di"
	SeriesMinusDI      SeriesKey = "minus_di"
	SeriesPSAR         SeriesKey = "psar"
	SeriesPSARTrend    SeriesKey = "psar_trend"
	SeriesTenkan       SeriesKey = "ichimoku_tenkan"
	SeriesKijun        SeriesKey = "ichimoku_kijun"
	SeriesSenkouA      SeriesKey = "ichimoku_senkou_a"
	SeriesSenkouB      SeriesKey = "ichimoku_senkou_b"
	SeriesOBV          SeriesKey = "obv"
	SeriesMFI          SeriesKey = "mfi"
	SeriesCMF          SeriesKey = "cmf"
	SeriesVWAP         SeriesKey = "vwap"
	SeriesADLine       SeriesKey = "ad_line"
	SeriesVolumeSMA    SeriesKey = "volume_sma"
	seriesRibbonPrefix           = "ema_ribbon_"
)

// RibbonKey names the i-th EMA of the ribbon, fastest first.
func RibbonKey(i int) SeriesKey {
	return SeriesKey(seriesRibbonPrefix + string(rune('0'+i)))
}

// Bias is the directional reading of a signal or pattern
type Bias string

const (
	Bullish Bias = "bullish"
	Bearish Bias = "bearish"
	Neutral Bias = "neutral"
)

// Level is a price zone such as support or resistance
type Level struct {
	Price    float64 `json:"price"`
	Kind     string  `json:"kind"` // support, resistance
	Touches  int     `json:"touches"`
	Strength float64 `json:"strength"` // 0-1
}

// PivotLevels holds classic floor pivots
type PivotLevels struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
}

// FibLevel is one retracement ratio and its price
type FibLevel struct {
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// FibonacciLevels holds retracements over the swing of the lookback window
type FibonacciLevels struct {
	High    float64    `json:"high"`
	Low     float64    `json:"low"`
	Uptrend bool       `json:"uptrend"`
	Levels  []FibLevel `json:"levels"`
}

// CandlePattern is a candlestick formation ending at a given index
type CandlePattern struct {
	Name     string  `json:"name"`
	Bias     Bias    `json:"bias"`
	Strength float64 `json:"strength"` // 0-1
}

// ChartPattern is a multi-candle structure such as a double top
type ChartPattern struct {
	Name     string  `json:"name"`
	Bias     Bias    `json:"bias"`
	Index    int     `json:"index"`
	Level    float64 `json:"level"`
	Strength float64 `json:"strength"` // 0-1
}

// Divergence between price swings and RSI swings
type Divergence struct {
	Type       string  `json:"type"` // regular or hidden
	Bias       Bias    `json:"bias"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Strength   float64 `json:"strength"` // 0-1
}

// IndicatorSet holds every computed indicator for one candle slice
type IndicatorSet struct {
	Len            int
	Series         map[SeriesKey]Series
	Pivots         *PivotLevels
	Fibonacci      *FibonacciLevels
	Zones          []Level
	CandlePatterns [][]CandlePattern
	ChartPatterns  []ChartPattern
	Divergences    []Divergence
	Computed       map[Family]bool
	Failures       map[Family]string
}

// NewIndicatorSet creates an empty set for n candles
func NewIndicatorSet(n int) *IndicatorSet {
	return &IndicatorSet{
		Len:      n,
		Series:   make(map[SeriesKey]Series),
		Computed: make(map[Family]bool),
		Failures: make(map[Family]string),
	}
}

// Get returns the named series or nil
func (s *IndicatorSet) Get(key SeriesKey) Series {
	if s == nil {
		return nil
	}
	return s.Series[key]
}

// Value returns the named series value at index i
func (s *IndicatorSet) Value(key SeriesKey, i int) (float64, bool) {
	return s.Get(key).At(i)
}

// ValueOr returns the value at i or fallback when unset
func (s *IndicatorSet) ValueOr(key SeriesKey, i int, fallback float64) float64 {
	if v, ok := s.Value(key, i); ok {
		return v
	}
	return fallback
}

// Has reports whether a family was computed without failure
func (s *IndicatorSet) Has(f Family) bool {
	if s == nil {
		return false
	}
	_, failed := s.Failures[f]
	return s.Computed[f] && !failed
}

// PatternsAt returns the candlestick patterns ending at index i
func (s *IndicatorSet) PatternsAt(i int) []CandlePattern {
	if s == nil || i < 0 || i >= len(s.CandlePatterns) {
		return nil
	}
	return s.CandlePatterns[i]
}
