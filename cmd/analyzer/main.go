package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/tradecore/internal/api/feargreed"
	"github.com/Alias1177/tradecore/internal/api/twelvedata"
	"github.com/Alias1177/tradecore/internal/config"
	"github.com/Alias1177/tradecore/internal/data"
	"github.com/Alias1177/tradecore/internal/logging"
	"github.com/Alias1177/tradecore/internal/metrics"
	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/trading/momentum"
)

var (
	settingsPath string
	strategyPath string
	candlesPath  string
	symbol       string
	interval     string
	candleCount  int
	balance      float64
	minQty       float64
	stepSize     float64
	minNotional  float64
	outputFormat string
	showMetrics  bool
)

// rootCmd is the base command for the analyzer CLI
var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Strategy evaluation and position sizing",
	Long: `analyzer runs a trading strategy through indicator computation, regime detection,
signal matching, strength aggregation, momentum scoring and position sizing.

Examples:
  analyzer evaluate --strategy strategies/trend.yaml --candles btc_1h.csv
  analyzer evaluate --strategy strategies/trend.yaml --symbol BTC/USD --interval 1h --format json
  analyzer replay --strategy strategies/trend.yaml --candles btc_1h.csv --warmup 250`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsPath, "settings", "", "Settings YAML file (default: SETTINGS_PATH or built-in defaults)")
	flags.StringVar(&strategyPath, "strategy", "", "Strategy YAML file")
	flags.StringVar(&candlesPath, "candles", "", "Candle CSV file; when empty candles are fetched from TwelveData")
	flags.StringVar(&symbol, "symbol", "BTC/USD", "Symbol to evaluate")
	flags.StringVar(&interval, "interval", "1h", "Candle interval")
	flags.IntVar(&candleCount, "count", 500, "Number of candles to fetch")
	flags.Float64Var(&balance, "balance", 10000, "Available quote balance")
	flags.Float64Var(&minQty, "min-qty", 0.001, "Exchange minimum quantity")
	flags.Float64Var(&stepSize, "step", 0.001, "Exchange lot step size")
	flags.Float64Var(&minNotional, "min-notional", 10, "Exchange minimum notional")
	flags.StringVar(&outputFormat, "format", "text", "Output format (text|json)")
	flags.BoolVar(&showMetrics, "metrics", false, "Print collected metrics after the run")
	_ = rootCmd.MarkPersistentFlagRequired("strategy")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runtime is the state shared by every subcommand
type runtime struct {
	env      *config.Env
	settings *config.Settings
	strategy *model.Strategy
	log      zerolog.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
}

func setup() (*runtime, error) {
	env := config.LoadEnv()
	path := settingsPath
	if path == "" {
		path = env.SettingsPath
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	env.Apply(settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.Log, os.Stderr, nil)
	if err != nil {
		return nil, err
	}
	log.Logger = logger

	strategy, err := config.LoadStrategy(strategyPath)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	return &runtime{
		env:      env,
		settings: settings,
		strategy: strategy,
		log:      logger,
		registry: registry,
		recorder: metrics.New(registry),
	}, nil
}

// sentimentSource builds the Fear & Greed source selected in the settings
func (rt *runtime) sentimentSource() momentum.SentimentSource {
	s := rt.settings.Sentiment
	switch s.Source {
	case "api":
		return feargreed.NewClient(feargreed.ClientOptions{
			URL:            s.URL,
			RequestTimeout: s.Timeout,
			MaxRetries:     s.MaxRetries,
			Logger:         &rt.log,
		})
	case "static":
		return feargreed.Static{Value: s.Static}
	default:
		return nil
	}
}

func (rt *runtime) filters() model.SymbolFilters {
	return model.SymbolFilters{
		LotSize:     model.LotSizeFilter{MinQty: minQty, StepSize: stepSize},
		MinNotional: model.MinNotionalFilter{MinNotional: minNotional},
	}
}

func (rt *runtime) loadCandles(ctx context.Context) ([]model.Candle, error) {
	if candlesPath != "" {
		rt.log.Info().Str("path", candlesPath).Msg("Loading candles from file")
		return data.LoadCSV(candlesPath)
	}
	if rt.env.TwelveAPIKey == "" {
		return nil, errors.New("no --candles file given and TWELVE_API_KEY is not set")
	}

	rt.log.Info().Str("symbol", symbol).Str("interval", interval).Int("count", candleCount).Msg("Fetching latest market data...")
	client := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         rt.env.TwelveAPIKey,
		RequestTimeout: rt.settings.Sentiment.Timeout,
		RequestsPerSec: 5,
		MaxRetries:     rt.settings.Sentiment.MaxRetries,
		Logger:         &rt.log,
	})
	return client.GetCandles(ctx, symbol, interval, candleCount)
}

func (rt *runtime) finish() error {
	if !showMetrics {
		return nil
	}
	families, err := rt.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	printMetrics(families)
	return nil
}

// setupSignalHandling cancels ctx on interrupt so a running replay stops between bars
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandling(cancel)
	return ctx, cancel
}
