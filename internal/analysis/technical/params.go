package technical

import "github.com/Alias1177/tradecore/internal/analysis/pattern"

// Params holds the lookback periods of every indicator family
type Params struct {
	SMAPeriod       int     `yaml:"sma_period" default:"50" validate:"gte=1"`
	SMALongPeriod   int     `yaml:"sma_long_period" default:"200" validate:"gte=1"`
	EMAPeriod       int     `yaml:"ema_period" default:"20" validate:"gte=1"`
	EMAFastPeriod   int     `yaml:"ema_fast_period" default:"12" validate:"gte=1"`
	EMASlowPeriod   int     `yaml:"ema_slow_period" default:"26" validate:"gte=1"`
	MACDSignal      int     `yaml:"macd_signal_period" default:"9" validate:"gte=1"`
	RibbonPeriods   []int   `yaml:"ribbon_periods" default:"[8,13,21,34,55,89,144,200]" validate:"min=2,max=10,dive,gte=1"`
	RSIPeriod       int     `yaml:"rsi_period" default:"14" validate:"gte=2"`
	StochKPeriod    int     `yaml:"stoch_k_period" default:"14" validate:"gte=1"`
	StochDPeriod    int     `yaml:"stoch_d_period" default:"3" validate:"gte=1"`
	StochRSIPeriod  int     `yaml:"stoch_rsi_period" default:"14" validate:"gte=1"`
	WilliamsPeriod  int     `yaml:"williams_period" default:"14" validate:"gte=1"`
	CCIPeriod       int     `yaml:"cci_period" default:"20" validate:"gte=1"`
	ROCPeriod       int     `yaml:"roc_period" default:"12" validate:"gte=1"`
	AOFastPeriod    int     `yaml:"ao_fast_period" default:"5" validate:"gte=1"`
	AOSlowPeriod    int     `yaml:"ao_slow_period" default:"34" validate:"gte=1"`
	BBPeriod        int     `yaml:"bb_period" default:"20" validate:"gte=2"`
	BBStdDev        float64 `yaml:"bb_std_dev" default:"2" validate:"gt=0"`
	ATRPeriod       int     `yaml:"atr_period" default:"14" validate:"gte=1"`
	KeltnerMult     float64 `yaml:"keltner_multiplier" default:"1.5" validate:"gt=0"`
	DonchianPeriod  int     `yaml:"donchian_period" default:"20" validate:"gte=1"`
	ADXPeriod       int     `yaml:"adx_period" default:"14" validate:"gte=1"`
	PSARStep        float64 `yaml:"psar_step" default:"0.02" validate:"gt=0"`
	PSARMax         float64 `yaml:"psar_max" default:"0.2" validate:"gtfield=PSARStep"`
	TenkanPeriod    int     `yaml:"tenkan_period" default:"9" validate:"gte=1"`
	KijunPeriod     int     `yaml:"kijun_period" default:"26" validate:"gte=1"`
	SenkouPeriod    int     `yaml:"senkou_period" default:"52" validate:"gte=1"`
	MFIPeriod       int     `yaml:"mfi_period" default:"14" validate:"gte=1"`
	CMFPeriod       int     `yaml:"cmf_period" default:"20" validate:"gte=1"`
	VWAPPeriod      int     `yaml:"vwap_period" default:"20" validate:"gte=1"`
	VolumePeriod    int     `yaml:"volume_period" default:"20" validate:"gte=1"`
	PivotPeriod     int     `yaml:"pivot_period" default:"20" validate:"gte=1"`
	FibLookback     int     `yaml:"fib_lookback" default:"50" validate:"gte=2"`
	SwingStrength   int     `yaml:"swing_strength" default:"2" validate:"gte=1"`
	ZoneTolerance   float64 `yaml:"zone_tolerance" default:"0.005" validate:"gt=0"`
	MaxZonesPerSide int     `yaml:"max_zones_per_side" default:"3" validate:"gte=1"`

	ATR        ATROptions                `yaml:"atr"`
	Chart      pattern.ChartOptions      `yaml:"chart"`
	Divergence pattern.DivergenceOptions `yaml:"divergence"`
}

// DefaultParams returns the conventional periods
func DefaultParams() Params {
	return Params{
		SMAPeriod:       50,
		SMALongPeriod:   200,
		EMAPeriod:       20,
		EMAFastPeriod:   12,
		EMASlowPeriod:   26,
		MACDSignal:      9,
		RibbonPeriods:   []int{8, 13, 21, 34, 55, 89, 144, 200},
		RSIPeriod:       14,
		StochKPeriod:    14,
		StochDPeriod:    3,
		StochRSIPeriod:  14,
		WilliamsPeriod:  14,
		CCIPeriod:       20,
		ROCPeriod:       12,
		AOFastPeriod:    5,
		AOSlowPeriod:    34,
		BBPeriod:        20,
		BBStdDev:        2,
		ATRPeriod:       14,
		KeltnerMult:     1.5,
		DonchianPeriod:  20,
		ADXPeriod:       14,
		PSARStep:        0.02,
		PSARMax:         0.2,
		TenkanPeriod:    9,
		KijunPeriod:     26,
		SenkouPeriod:    52,
		MFIPeriod:       14,
		CMFPeriod:       20,
		VWAPPeriod:      20,
		VolumePeriod:    20,
		PivotPeriod:     20,
		FibLookback:     50,
		SwingStrength:   2,
		ZoneTolerance:   0.005,
		MaxZonesPerSide: 3,
		ATR:             DefaultATROptions(),
		Chart: pattern.ChartOptions{
			Lookback:       60,
			SwingStrength:  2,
			PeakTolerance:  0.01,
			MinSeparation:  3,
			BreakoutWindow: 20,
		},
		Divergence: pattern.DivergenceOptions{SwingStrength: 3, MaxAge: 10, MaxSpan: 40},
	}
}
