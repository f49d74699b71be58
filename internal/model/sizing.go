package model

import "fmt"

// SymbolFilters carries the exchange constraints for one symbol
type SymbolFilters struct {
	LotSize     LotSizeFilter     `json:"LOT_SIZE"`
	MinNotional MinNotionalFilter `json:"MIN_NOTIONAL"`
}

type LotSizeFilter struct {
	MinQty   float64 `json:"minQty,string"`
	StepSize float64 `json:"stepSize,string"`
}

type MinNotionalFilter struct {
	MinNotional float64 `json:"minNotional,string"`
}

// SizingReason is a typed rejection cause
type SizingReason string

const (
	ReasonInsufficientBalance          SizingReason = "insufficient_balance"
	ReasonMissingATR                   SizingReason = "missing_atr"
	ReasonBelowMinimum                 SizingReason = "below_minimum"
	ReasonWouldCreateDust              SizingReason = "would_create_dust"
	ReasonInsufficientBalanceForMinQty SizingReason = "insufficient_balance_for_min_qty"
	ReasonInsufficientBalanceForMinNtl SizingReason = "insufficient_balance_for_min_notional"
	ReasonCalculationError             SizingReason = "calculation_error"
	ReasonPortfolioHeatExceeded        SizingReason = "portfolio_heat_exceeded"
)

// SizingError is a business rule rejection. It is carried in the result, not returned.
type SizingError struct {
	Reason  SizingReason `json:"reason"`
	Message string       `json:"message"`
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// SizingMethod is how the base quantity was derived
type SizingMethod string

const (
	MethodFixed              SizingMethod = "fixed"
	MethodVolatilityAdjusted SizingMethod = "volatility_adjusted"
)

// PositionSizingResult is the outcome of one sizing request
type PositionSizingResult struct {
	Valid          bool         `json:"valid"`
	Quantity       float64      `json:"quantity"`
	ValueUSDT      float64      `json:"value_usdt"`
	RiskAmount     float64      `json:"risk_amount"`
	StopLossPrice  float64      `json:"stop_loss_price"`
	AppliedFilters []string     `json:"applied_filters"`
	Method         SizingMethod `json:"method"`
	Error          *SizingError `json:"error,omitempty"`
}

// Reject builds an invalid result with a typed reason
func Reject(method SizingMethod, reason SizingReason, format string, args ...any) *PositionSizingResult {
	return &PositionSizingResult{
		Method: method,
		Error:  &SizingError{Reason: reason, Message: fmt.Sprintf(format, args...)},
	}
}
