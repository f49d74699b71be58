package risk

import "github.com/Alias1177/tradecore/internal/model"

// Config holds the sizing settings
type Config struct {
	Method                model.SizingMethod `yaml:"method" default:"volatility_adjusted" validate:"oneof=fixed volatility_adjusted"`
	DefaultSize           float64            `yaml:"default_size" default:"100" validate:"gt=0"`
	MaxBalanceRiskPercent float64            `yaml:"max_balance_risk_percent" default:"2" validate:"gt=0,lte=100"`
	StopMultiplier        float64            `yaml:"stop_multiplier" default:"2" validate:"gt=0"`
	MinConviction         float64            `yaml:"min_conviction" default:"60" validate:"gte=0,lte=100"`
	PortfolioHeatMax      float64            `yaml:"portfolio_heat_max" default:"6" validate:"gt=0,lte=100"`
	FallbackStopPercent   float64            `yaml:"fallback_stop_percent" default:"2" validate:"gt=0,lt=100"`
	SafetyBuffer          bool               `yaml:"safety_buffer" default:"true"`
}

// DefaultConfig returns the standard sizing settings
func DefaultConfig() Config {
	return Config{
		Method:                model.MethodVolatilityAdjusted,
		DefaultSize:           100,
		MaxBalanceRiskPercent: 2,
		StopMultiplier:        2,
		MinConviction:         60,
		PortfolioHeatMax:      6,
		FallbackStopPercent:   2,
		SafetyBuffer:          true,
	}
}
