package momentum

import (
	"fmt"
	"math"
	"time"
)

// Weights are the component weights of the final score. They must sum to 1.
type Weights struct {
	Unrealized    float64 `yaml:"unrealized_pnl" default:"0.25" validate:"gte=0,lte=1"`
	Realized      float64 `yaml:"realized_pnl" default:"0.25" validate:"gte=0,lte=1"`
	Volatility    float64 `yaml:"market_volatility" default:"0.15" validate:"gte=0,lte=1"`
	Sentiment     float64 `yaml:"sentiment" default:"0.15" validate:"gte=0,lte=1"`
	SignalQuality float64 `yaml:"signal_quality" default:"0.2" validate:"gte=0,lte=1"`
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Unrealized + w.Realized + w.Volatility + w.Sentiment + w.SignalQuality
}

// weightTolerance is how far the weights may stray from a sum of 1
const weightTolerance = 0.01

// Check reports an error unless the weights sum to 1 within weightTolerance
func (w Weights) Check() error {
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("momentum weights sum to %.4f, want 1.0", sum)
	}
	return nil
}

// Thresholds split the final score into risk bands
type Thresholds struct {
	Excellent float64 `yaml:"excellent" default:"80" validate:"gtfield=Good,lte=100"`
	Good      float64 `yaml:"good" default:"60" validate:"gtfield=Poor"`
	Poor      float64 `yaml:"poor" default:"40" validate:"gte=0"`
}

// Config configures a Scorer
type Config struct {
	Weights           Weights       `yaml:"weights"`
	Thresholds        Thresholds    `yaml:"thresholds"`
	MaxRiskPercent    float64       `yaml:"max_risk_percent" default:"100" validate:"gt=0,lte=100"`
	MinRiskPercent    float64       `yaml:"min_risk_percent" default:"10" validate:"gte=0,ltefield=MaxRiskPercent"`
	Cooldown          time.Duration `yaml:"cooldown" default:"30s" validate:"gte=0"`
	SentimentCooldown time.Duration `yaml:"sentiment_cooldown" default:"5m" validate:"gte=0"`
	HalfLife          time.Duration `yaml:"half_life" default:"24h" validate:"gt=0"`
	TradeWindow       int           `yaml:"trade_window" default:"100" validate:"gte=1,lte=100"`
	QualityWindow     int           `yaml:"quality_window" default:"20" validate:"gte=1"`
	TradingMode       string        `yaml:"trading_mode"`
}

// DefaultConfig returns the standard scorer configuration
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Unrealized:    0.25,
			Realized:      0.25,
			Volatility:    0.15,
			Sentiment:     0.15,
			SignalQuality: 0.2,
		},
		Thresholds:        Thresholds{Excellent: 80, Good: 60, Poor: 40},
		MaxRiskPercent:    100,
		MinRiskPercent:    10,
		Cooldown:          30 * time.Second,
		SentimentCooldown: 5 * time.Minute,
		HalfLife:          24 * time.Hour,
		TradeWindow:       100,
		QualityWindow:     20,
	}
}
