package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alias1177/tradecore/internal/api/feargreed"
	"github.com/Alias1177/tradecore/internal/pipeline"
	"github.com/Alias1177/tradecore/internal/trading/replay"
)

var (
	warmup int
	hold   int
)

// replayCmd walks the strategy forward over the candle history
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Walk a strategy forward over a candle history",
	Long: `Replay evaluates every closed candle after the warmup with a persistent regime
detector, simulates a position for each sized decision and reports the regime
distribution, gate pass rate, mean strength, sizing outcomes and trade statistics.

A live sentiment API is replaced by the static reading since historical values are
not available.`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	defaults := replay.DefaultConfig()
	replayCmd.Flags().IntVar(&warmup, "warmup", defaults.Warmup, "Candles skipped before the first evaluation")
	replayCmd.Flags().IntVar(&hold, "hold", defaults.Hold, "Bars each simulated position is held")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if warmup < 1 || hold < 1 {
		return fmt.Errorf("--warmup and --hold must be positive")
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

	opts := []pipeline.Option{pipeline.WithMetrics(rt.recorder)}
	switch rt.settings.Sentiment.Source {
	case "api", "static":
		opts = append(opts, pipeline.WithSentiment(feargreed.Static{Value: rt.settings.Sentiment.Static}))
	}

	cfg := replay.DefaultConfig()
	cfg.Warmup = warmup
	cfg.Hold = hold
	cfg.InitialBalance = balance

	rt.log.Info().Int("candles", len(candles)).Int("warmup", warmup).Msg("Running replay...")
	results, err := replay.NewEngine(rt.settings, cfg, rt.log, opts...).
		Run(ctx, symbol, interval, candles, rt.strategy, rt.filters())
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if outputFormat == "json" {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		fmt.Println(replay.FormatResults(results))
	}
	return rt.finish()
}
