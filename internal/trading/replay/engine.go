// Package replay walks a strategy forward over a candle history bar by bar.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/config"
	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/pipeline"
)

// Config controls the walk
type Config struct {
	Warmup         int
	Hold           int
	InitialBalance float64
	// TradingMode tags simulated trades when the momentum settings do not name one
	TradingMode string
}

// DefaultConfig returns the standard replay settings
func DefaultConfig() Config {
	return Config{Warmup: 200, Hold: 1, InitialBalance: 10000, TradingMode: "replay"}
}

// Engine replays one strategy on one symbol. The pipeline clock follows the bar being
// evaluated so cooldowns behave as they would live. An Engine runs one replay at a time.
type Engine struct {
	settings *config.Settings
	cfg      Config
	opts     []pipeline.Option
	log      zerolog.Logger
	now      time.Time
	mode     string
}

type openTrade struct {
	position  model.Position
	exitIndex int
}

// NewEngine creates a replay engine. Pipeline options apply to the pipeline built per run.
func NewEngine(settings *config.Settings, cfg Config, log zerolog.Logger, opts ...pipeline.Option) *Engine {
	return &Engine{
		settings: settings,
		cfg:      cfg,
		opts:     opts,
		log:      log.With().Str("component", "replay").Logger(),
	}
}

// Run evaluates every closed bar from the warmup on. Passing bars open a simulated
// position at the next close that is closed Hold bars later and fed back into momentum.
func (e *Engine) Run(ctx context.Context, symbol, timeframe string, candles []model.Candle,
	strategy *model.Strategy, filters model.SymbolFilters) (*Results, error) {

	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	if len(candles) < e.cfg.Warmup+e.cfg.Hold+2 {
		return nil, fmt.Errorf("replay needs %d candles, got %d: %w",
			e.cfg.Warmup+e.cfg.Hold+2, len(candles), model.ErrInsufficientData)
	}

	// momentum only counts trades of its own mode
	e.mode = e.settings.Momentum.TradingMode
	if e.mode == "" {
		e.mode = e.cfg.TradingMode
	}

	opts := append([]pipeline.Option{
		pipeline.WithLogger(e.log),
		pipeline.WithClock(func() time.Time { return e.now }),
	}, e.opts...)
	p, err := pipeline.New(e.settings, opts...)
	if err != nil {
		return nil, err
	}

	results := newResults()
	equity := e.cfg.InitialBalance
	results.EquityCurve = append(results.EquityCurve, equity)
	var open []openTrade
	var prevRegime model.Regime

	for i := e.cfg.Warmup; i+1+e.cfg.Hold < len(candles); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := i + 1
		e.now = candles[current].Timestamp

		// settle positions due at this bar
		kept := open[:0]
		for _, ot := range open {
			if ot.exitIndex > current {
				kept = append(kept, ot)
				continue
			}
			trade := e.close(ot, candles[ot.exitIndex], symbol)
			p.Scorer().RecordTrade(trade)
			equity += trade.PnLUSDT
			results.addTrade(trade, equity)
		}
		open = kept

		positions := make([]model.Position, len(open))
		committed := 0.0
		for k, ot := range open {
			positions[k] = ot.position
			committed += ot.position.EntryValueUSDT
		}

		d, err := p.Evaluate(ctx, pipeline.Request{
			Symbol:    symbol,
			Timeframe: timeframe,
			Candles:   candles[:i+2],
			Strategy:  strategy,
			Balance:   equity - committed,
			Equity:    equity,
			Filters:   filters,
			Positions: positions,
		})
		if err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}

		results.Bars++
		results.RegimeCounts[d.Regime.Regime]++
		if d.Regime.IsConfirmed {
			results.ConfirmedBars++
		}
		if prevRegime != "" && d.Regime.Regime != prevRegime {
			results.RegimeSwitches++
		}
		prevRegime = d.Regime.Regime
		for _, a := range d.Anomalies {
			results.Anomalies[a.Type]++
		}
		results.IndicatorFailures += len(d.IndicatorFailures)
		results.strengthSum += d.Strength.Final

		if !d.Passed {
			continue
		}
		results.GatePassed++
		if d.Sizing == nil {
			continue
		}
		if d.Sizing.Error != nil {
			results.SizingOutcomes[string(d.Sizing.Error.Reason)]++
			continue
		}
		results.SizingOutcomes["ok"]++
		open = append(open, openTrade{
			position: model.Position{
				Symbol:         symbol,
				Direction:      d.Direction,
				EntryPrice:     d.Price,
				Quantity:       d.Sizing.Quantity,
				EntryValueUSDT: d.Sizing.ValueUSDT,
				StopLossPrice:  d.Sizing.StopLossPrice,
				Status:         "open",
			},
			exitIndex: current + e.cfg.Hold,
		})
	}

	e.calculateMetrics(results)
	e.log.Info().
		Int("bars", results.Bars).
		Int("passed", results.GatePassed).
		Int("trades", results.TotalTrades).
		Msg("Replay finished")
	return results, nil
}

func (e *Engine) close(ot openTrade, exit model.Candle, symbol string) model.Trade {
	pnl := ot.position.PnLPercent(exit.Close)
	return model.Trade{
		Symbol:         symbol,
		Direction:      ot.position.Direction,
		ExitTime:       exit.Timestamp,
		PnLPercentage:  pnl,
		PnLUSDT:        ot.position.EntryValueUSDT * pnl / 100,
		EntryValueUSDT: ot.position.EntryValueUSDT,
		TradingMode:    e.mode,
	}
}
