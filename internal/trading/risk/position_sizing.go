// Package risk turns a trade decision into an exchange-valid order quantity.
package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/tradecore/internal/model"
)

const (
	dustMargin   = 1.10
	bufferFactor = 1.05
)

// Request is everything needed to size one order
type Request struct {
	Symbol     string
	Direction  model.Direction
	Price      float64
	Balance    float64 // available quote balance
	Equity     float64 // account equity for portfolio heat; Balance when zero
	ATR        float64
	Momentum   *model.MomentumBreakdown
	Conviction float64 // 0 when unknown
	Filters    model.SymbolFilters
	Open       []model.Position
}

// Sizer applies the sizing method and exchange constraints. It holds no state between calls.
type Sizer struct {
	cfg Config
	log zerolog.Logger
}

// Option configures a Sizer
type Option func(*Sizer)

// WithLogger sets the sizer logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sizer) {
		s.log = l.With().Str("component", "sizing").Logger()
	}
}

// NewSizer creates a sizer
func NewSizer(cfg Config, opts ...Option) *Sizer {
	s := &Sizer{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DetermineStopLoss places the stop the given distance beyond price against the direction
func DetermineStopLoss(price, distance float64, direction model.Direction) float64 {
	if direction == model.Short {
		return price + distance
	}
	return price - distance
}

// MomentumMultiplier maps a momentum score to [0.5, 1.5]
func MomentumMultiplier(score float64) float64 {
	return clamp(0.5+score/100, 0.5, 1.5)
}

// ConvictionMultiplier maps a conviction score around the minimum to [0.5, 1.5]
func ConvictionMultiplier(conviction, minConviction float64) float64 {
	if conviction <= 0 || !finite(conviction) {
		return 1
	}
	return clamp(1+(conviction-minConviction)/100, 0.5, 1.5)
}

// PortfolioHeat returns open risk as a percent of equity. Positions without a stop are
// charged fallbackStopPercent of their entry value.
func PortfolioHeat(positions []model.Position, equity, fallbackStopPercent float64) float64 {
	if equity <= 0 {
		return 0
	}
	var risk float64
	for _, p := range positions {
		if !p.IsOpen() {
			continue
		}
		value := p.EntryValueUSDT
		if value <= 0 {
			value = p.EntryPrice * p.Quantity
		}
		r := value * fallbackStopPercent / 100
		if p.StopLossPrice > 0 && p.EntryPrice > 0 {
			r = math.Abs(p.EntryPrice-p.StopLossPrice) * p.Quantity
		}
		if finite(r) {
			risk += r
		}
	}
	return risk / equity * 100
}

// Size returns the order quantity for req. Rejections are carried in the result's Error.
// Constraints run in order: balance, portfolio heat, lot step, exchange minimums, safety
// buffer and the dust check.
func (s *Sizer) Size(req Request) (res *model.PositionSizingResult) {
	method := s.cfg.Method
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("symbol", req.Symbol).Msg("position sizing failed")
			res = model.Reject(method, model.ReasonCalculationError, "sizing failed: %v", r)
		}
	}()

	res = s.size(req)
	if res.Error != nil {
		s.log.Info().
			Str("symbol", req.Symbol).
			Str("reason", string(res.Error.Reason)).
			Msg(res.Error.Message)
	} else {
		s.log.Debug().
			Str("symbol", req.Symbol).
			Float64("quantity", res.Quantity).
			Float64("value", res.ValueUSDT).
			Strs("filters", res.AppliedFilters).
			Msg("position sized")
	}
	return res
}

func (s *Sizer) size(req Request) *model.PositionSizingResult {
	method := s.cfg.Method
	price := req.Price
	if !finite(price) || price <= 0 {
		return model.Reject(method, model.ReasonCalculationError, "invalid price %v", price)
	}
	if !finite(req.Balance) || req.Balance <= 0 {
		return model.Reject(method, model.ReasonInsufficientBalance, "available balance %v", req.Balance)
	}
	f := req.Filters
	for _, v := range []float64{f.LotSize.MinQty, f.LotSize.StepSize, f.MinNotional.MinNotional} {
		if !finite(v) || v < 0 {
			return model.Reject(method, model.ReasonCalculationError,
				"invalid symbol filters: minQty=%v stepSize=%v minNotional=%v",
				f.LotSize.MinQty, f.LotSize.StepSize, f.MinNotional.MinNotional)
		}
	}
	equity := req.Equity
	if !finite(equity) || equity <= 0 {
		equity = req.Balance
	}

	score := 50.0
	riskFactor := 0.5
	if req.Momentum != nil {
		if finite(req.Momentum.FinalScore) {
			score = req.Momentum.FinalScore
		}
		if finite(req.Momentum.AdjustedBalanceRiskFactor) {
			riskFactor = req.Momentum.AdjustedBalanceRiskFactor
		}
	}
	mm := MomentumMultiplier(score)

	hasATR := finite(req.ATR) && req.ATR > 0
	stopDistance := price * s.cfg.FallbackStopPercent / 100
	if hasATR {
		stopDistance = req.ATR * s.cfg.StopMultiplier
	}

	var qty float64
	switch method {
	case model.MethodFixed:
		qty = s.cfg.DefaultSize * mm / price
	case model.MethodVolatilityAdjusted:
		if !hasATR {
			return model.Reject(method, model.ReasonMissingATR, "ATR unavailable for %s", req.Symbol)
		}
		base := req.Balance * s.cfg.MaxBalanceRiskPercent / 100 * riskFactor
		qty = base * mm / stopDistance * ConvictionMultiplier(req.Conviction, s.cfg.MinConviction)
	default:
		return model.Reject(method, model.ReasonCalculationError, "unknown sizing method %q", method)
	}
	if !finite(qty) || qty < 0 {
		return model.Reject(method, model.ReasonCalculationError, "computed quantity %v", qty)
	}

	var applied []string

	// 1. balance
	if qty*price > req.Balance {
		qty = req.Balance / price
		applied = append(applied, "balance_cap")
	}

	// 2. portfolio heat
	heat := PortfolioHeat(req.Open, equity, s.cfg.FallbackStopPercent)
	if heat >= s.cfg.PortfolioHeatMax {
		return model.Reject(method, model.ReasonPortfolioHeatExceeded,
			"portfolio heat %.2f%% at or above max %.2f%%", heat, s.cfg.PortfolioHeatMax)
	}
	headroom := (s.cfg.PortfolioHeatMax - heat) / 100 * equity
	maxQty := headroom / stopDistance
	if qty > maxQty {
		qty = maxQty
		applied = append(applied, "heat_cap")
	}

	// 3. lot step
	step := req.Filters.LotSize.StepSize
	if step > 0 {
		floored := floorToStep(qty, step)
		if floored != qty {
			applied = append(applied, "lot_step")
		}
		qty = floored
	}

	// 4. exchange minimums
	minQty := req.Filters.LotSize.MinQty
	minNotional := req.Filters.MinNotional.MinNotional
	raised := false
	if qty < minQty || qty*price < minNotional*dustMargin {
		target := math.Max(minQty, minNotional*dustMargin/price)
		if step > 0 {
			target = ceilToStep(target, step)
		}
		if target*price > req.Balance {
			reason := model.ReasonInsufficientBalanceForMinNtl
			if minQty*price >= minNotional*dustMargin {
				reason = model.ReasonInsufficientBalanceForMinQty
			}
			return model.Reject(method, reason,
				"raising to %v costs %.2f, balance %.2f", target, target*price, req.Balance)
		}
		if target > maxQty {
			return model.Reject(method, model.ReasonPortfolioHeatExceeded,
				"minimum order %v exceeds heat headroom %.2f", target, headroom)
		}
		if target != qty {
			qty = target
			raised = true
			applied = append(applied, "min_raise")
		}
	}

	// 5. safety buffer on orders sitting at the exchange minimum
	if s.cfg.SafetyBuffer && raised {
		buffered := qty * bufferFactor
		if step > 0 {
			buffered = ceilToStep(buffered, step)
		}
		if buffered*price <= req.Balance && buffered <= maxQty {
			qty = buffered
			applied = append(applied, "safety_buffer")
		}
	}

	// 6. dust
	if qty <= 0 {
		return model.Reject(method, model.ReasonBelowMinimum, "quantity rounds to zero")
	}
	if minNotional > 0 && qty*price < minNotional*dustMargin {
		return model.Reject(method, model.ReasonWouldCreateDust,
			"notional %.4f below %.4f", qty*price, minNotional*dustMargin)
	}

	return &model.PositionSizingResult{
		Valid:          true,
		Quantity:       qty,
		ValueUSDT:      qty * price,
		RiskAmount:     qty * stopDistance,
		StopLossPrice:  DetermineStopLoss(price, stopDistance, req.Direction),
		AppliedFilters: applied,
		Method:         method,
	}
}

func floorToStep(qty, step float64) float64 {
	d := decimal.NewFromFloat(step)
	f, _ := decimal.NewFromFloat(qty).Div(d).Floor().Mul(d).Float64()
	return f
}

func ceilToStep(qty, step float64) float64 {
	d := decimal.NewFromFloat(step)
	f, _ := decimal.NewFromFloat(qty).Div(d).Ceil().Mul(d).Float64()
	return f
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String renders a result for logs and the CLI
func String(r *model.PositionSizingResult) string {
	if r == nil {
		return "no sizing"
	}
	if !r.Valid {
		return fmt.Sprintf("rejected (%s): %s", r.Error.Reason, r.Error.Message)
	}
	return fmt.Sprintf("%s qty=%v value=%.2f risk=%.2f stop=%.4f", r.Method, r.Quantity, r.ValueUSDT, r.RiskAmount, r.StopLossPrice)
}
