package market

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/tradecore/internal/model"
)

func TestDetectAnomalies(t *testing.T) {
	candles := candlesAt(10, 100)
	for i := range candles {
		candles[i].Volume = 1000
		candles[i].High, candles[i].Low = 101, 99
	}
	candles[9] = model.Candle{Open: 112, High: 115, Low: 111, Close: 114, Volume: 5000}

	set := flatSet(10, map[model.SeriesKey]float64{
		model.SeriesATR: 2, model.SeriesVolumeSMA: 1000, model.SeriesRSI: 95,
	})

	found := make(map[string]model.Anomaly)
	for _, a := range DetectAnomalies(candles, set, 9) {
		found[a.Type] = a
	}

	assert.Contains(t, found, AnomalyPriceSpike)
	assert.Contains(t, found, AnomalyGap)
	assert.Contains(t, found, AnomalyVolumeSpike)
	assert.Contains(t, found, AnomalyExtremeRSI)
	assert.Contains(t, found, AnomalyRapidMove)
	for _, a := range found {
		assert.GreaterOrEqual(t, a.Score, 0.0)
		assert.LessOrEqual(t, a.Score, 1.0)
	}
}

func TestDetectAnomaliesQuietMarket(t *testing.T) {
	candles := candlesAt(10, 100)
	set := flatSet(10, map[model.SeriesKey]float64{model.SeriesATR: 2, model.SeriesRSI: 50})
	assert.Empty(t, DetectAnomalies(candles, set, 9))
	assert.Empty(t, DetectAnomalies(candles, nil, 9))
	assert.Nil(t, DetectAnomalies(candles, set, 0))
}
