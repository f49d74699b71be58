package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"

	"github.com/Alias1177/tradecore/internal/model"
	"github.com/Alias1177/tradecore/internal/pipeline"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMarketAnalysis outputs the evaluated candle, regime and anomalies
func printMarketAnalysis(candles []model.Candle, d *pipeline.Decision) {
	fmt.Println("\n===== MARKET ANALYSIS =====")

	c := candles[d.Index]
	fmt.Printf("Evaluated Candle: %s (O: %.5f, H: %.5f, L: %.5f, C: %.5f, V: %.2f)\n",
		c.Timestamp.Format("2006-01-02 15:04"), c.Open, c.High, c.Low, c.Close, c.Volume)
	fmt.Printf("Current Price: %.5f\n", d.Price)

	if r := d.Regime; r != nil {
		fmt.Printf("\nMarket Regime: %s (Confidence: %.2f, Confirmed: %t, %d/%d periods)\n",
			r.Regime, r.Confidence, r.IsConfirmed, r.ConsecutivePeriods, r.ConfirmationThreshold)
		fmt.Printf("Raw: %s (%.2f) | Scores: up %.2f, down %.2f, ranging %.2f\n",
			r.RawRegime, r.RawConfidence, r.Scores.Uptrend, r.Scores.Downtrend, r.Scores.Ranging)
	}

	for _, a := range d.Anomalies {
		fmt.Printf("\nANOMALY DETECTED: %s (Score: %.2f)\n", a.Type, a.Score)
		fmt.Printf("Details: %s\n", a.Details)
		if len(a.Flags) > 0 {
			fmt.Printf("Recommended Actions: %v\n", a.Flags)
		}
	}

	if len(d.IndicatorFailures) > 0 {
		fmt.Println("\nIndicator Failures:")
		for family, msg := range d.IndicatorFailures {
			fmt.Printf("- %s: %s\n", family, msg)
		}
	}
}

// printDecision outputs the signal, strength, momentum and sizing results
func printDecision(d *pipeline.Decision) {
	fmt.Printf("\n===== STRATEGY: %s =====\n", d.Strategy)
	for _, s := range d.Signals {
		status := "missing"
		switch {
		case s.ExactMatch:
			status = "match"
		case s.Found:
			status = "partial"
		}
		fmt.Printf("- %-14s expected %-18s actual %-18s %-8s strength %.1f\n",
			s.Type, s.Expected, s.Actual, status, s.Strength)
		if s.Diagnostic != "" {
			fmt.Printf("  %s\n", s.Diagnostic)
		}
	}

	b := d.Strength
	fmt.Printf("\nStrength: %.2f (base %.2f, correlation %+.2f, regime %+.2f, quality %+.2f, synergy %+.2f)\n",
		b.Final, b.Base.Value, b.Correlation.Delta, b.Regime.Delta, b.Quality.Delta, b.Synergy.Delta)

	gate := "PASSED"
	if !d.Passed {
		gate = "FAILED: " + d.GateReason
	}
	fmt.Printf("Gate: %s (%d matched)\n", gate, d.Matched)

	if m := d.Momentum; m != nil {
		fmt.Printf("\nMomentum: %.0f (%s) | Risk factor: %.2f\n", m.FinalScore, m.Band, m.AdjustedBalanceRiskFactor)
		components := m.Components()
		names := make([]string, 0, len(components))
		for name := range components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := components[name]
			fmt.Printf("- %s: %.1f x %.2f\n", name, c.Score, c.Weight)
		}
	}

	if s := d.Sizing; s != nil {
		fmt.Printf("\n===== POSITION (%s) =====\n", strings.ToUpper(string(d.Direction)))
		if s.Error != nil {
			fmt.Printf("Rejected: %s\n", s.Error)
		} else {
			fmt.Printf("Quantity: %.6f | Value: %.2f | Risk: %.2f | Stop: %.5f\n",
				s.Quantity, s.ValueUSDT, s.RiskAmount, s.StopLossPrice)
			if len(s.AppliedFilters) > 0 {
				fmt.Printf("Applied: %s\n", strings.Join(s.AppliedFilters, ", "))
			}
		}
	}
	fmt.Println()
}

// printMetrics outputs the counters and histograms gathered during the run
func printMetrics(families []*dto.MetricFamily) {
	fmt.Println("\n===== METRICS =====")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Printf("%s %.0f\n", name, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Printf("%s count=%d sum=%.6f\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
