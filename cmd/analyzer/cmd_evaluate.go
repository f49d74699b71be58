package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/pipeline"
)

var direction string

// evaluateCmd evaluates the strategy on the most recent closed candle
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a strategy on the latest closed candle",
	Long: `Evaluate runs the full pipeline once on the most recent closed candle and prints
the regime, matched signals, aggregated strength, momentum score and position size.`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&direction, "direction", "", "Force the order side (long|short); derived from the signals when empty")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if direction != "" && direction != string(model.Long) && direction != string(model.Short) {
		return fmt.Errorf("invalid --direction %q", direction)
	}
	ctx, cancel := signalContext()
	defer cancel()

	rt, err := setup()
	if err != nil {
		return err
	}
	candles, err := rt.loadCandles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load candles: %w", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(rt.log),
		pipeline.WithMetrics(rt.recorder),
	}
	if src := rt.sentimentSource(); src != nil {
		opts = append(opts, pipeline.WithSentiment(src))
	}
	p, err := pipeline.New(rt.settings, opts...)
	if err != nil {
		return err
	}

	d, err := p.Evaluate(ctx, pipeline.Request{
		Symbol:    symbol,
		Timeframe: interval,
		Candles:   candles,
		Strategy:  rt.strategy,
		Direction: model.Direction(direction),
		Balance:   balance,
		Equity:    balance,
		Filters:   rt.filters(),
	})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		if err := printJSON(d); err != nil {
			return err
		}
	} else {
		printMarketAnalysis(candles, d)
		printDecision(d)
	}
	return rt.finish()
}
