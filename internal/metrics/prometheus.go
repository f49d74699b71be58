// Package metrics exposes pipeline counters through Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is what the pipeline reports
type Metrics interface {
	IndicatorFailure(family string)
	RegimeEvaluated(regime string, confirmed bool)
	SizingOutcome(reason string)
	SentimentFetch(ok bool)
	StageDuration(stage string, d time.Duration)
}

// Recorder implements Metrics using Prometheus
type Recorder struct {
	indicatorFailures *prometheus.CounterVec
	regimes           *prometheus.CounterVec
	sizing            *prometheus.CounterVec
	sentiment         *prometheus.CounterVec
	duration          *prometheus.HistogramVec
}

// New creates a recorder and registers it on reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		indicatorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_indicator_failures_total",
				Help: "Indicator families that failed to compute",
			},
			[]string{"family"},
		),
		regimes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_regime_evaluations_total",
				Help: "Regime detections by reported regime",
			},
			[]string{"regime", "confirmed"},
		),
		sizing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_sizing_outcomes_total",
				Help: "Position sizing results by rejection reason, ok when valid",
			},
			[]string{"reason"},
		),
		sentiment: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_sentiment_fetches_total",
				Help: "Sentiment fetch attempts by result",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradecore_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
	reg.MustRegister(r.indicatorFailures, r.regimes, r.sizing, r.sentiment, r.duration)
	return r
}

func (r *Recorder) IndicatorFailure(family string) {
	r.indicatorFailures.WithLabelValues(family).Inc()
}

func (r *Recorder) RegimeEvaluated(regime string, confirmed bool) {
	r.regimes.WithLabelValues(regime, strconv.FormatBool(confirmed)).Inc()
}

func (r *Recorder) SizingOutcome(reason string) {
	r.sizing.WithLabelValues(reason).Inc()
}

func (r *Recorder) SentimentFetch(ok bool) {
	result := "error"
	if ok {
		result = "ok"
	}
	r.sentiment.WithLabelValues(result).Inc()
}

func (r *Recorder) StageDuration(stage string, d time.Duration) {
	r.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// Nop discards everything
type Nop struct{}

func (Nop) IndicatorFailure(string)             {}
func (Nop) RegimeEvaluated(string, bool)        {}
func (Nop) SizingOutcome(string)                {}
func (Nop) SentimentFetch(bool)                 {}
func (Nop) StageDuration(string, time.Duration) {}
