package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.IndicatorFailure("rsi")
	r.IndicatorFailure("rsi")
	r.RegimeEvaluated("uptrend", true)
	r.SizingOutcome("ok")
	r.SentimentFetch(false)
	r.StageDuration("indicators", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.indicatorFailures.WithLabelValues("rsi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.regimes.WithLabelValues("uptrend", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sentiment.WithLabelValues("error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNopSatisfiesMetrics(t *testing.T) {
	var m Metrics = Nop{}
	m.SizingOutcome("ok")
}
