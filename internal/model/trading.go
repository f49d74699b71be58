package model

import "time"

// Direction of a position
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Trade is a closed trade from history
type Trade struct {
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"direction"`
	ExitTime       time.Time `json:"exit_timestamp"`
	PnLPercentage  float64   `json:"pnl_percentage"`
	PnLUSDT        float64   `json:"pnl_usdt"`
	EntryValueUSDT float64   `json:"entry_value_usdt"`
	TradingMode    string    `json:"trading_mode"`
}

// Position is a currently open position
type Position struct {
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"direction"`
	EntryPrice     float64   `json:"entry_price"`
	Quantity       float64   `json:"quantity"`
	EntryValueUSDT float64   `json:"entry_value_usdt"`
	StopLossPrice  float64   `json:"stop_loss_price,omitempty"`
	Status         string    `json:"status"`
}

// IsOpen reports whether the position still counts toward exposure
func (p Position) IsOpen() bool {
	return p.Status == "" || p.Status == "open"
}

// PnLPercent returns the direction-aware unrealized P&L at price
func (p Position) PnLPercent(price float64) float64 {
	if p.EntryPrice <= 0 || price <= 0 {
		return 0
	}
	change := (price - p.EntryPrice) / p.EntryPrice * 100
	if p.Direction == Short {
		return -change
	}
	return change
}

// Sentiment is a Fear & Greed style reading
type Sentiment struct {
	Value          float64   `json:"value"` // 0-100, 0 = extreme fear
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}
