package technical

import (
	"math"
	"time"

	"github.com/Alias1177/tradecore/internal/model"
)

func generateTestCandles(count int, generator func(i int) model.Candle) []model.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		c := generator(i)
		if c.Timestamp.IsZero() {
			c.Timestamp = start.Add(time.Duration(i) * time.Hour)
		}
		candles[i] = c
	}
	return candles
}

func flatCandles(count int, price float64) []model.Candle {
	return generateTestCandles(count, func(int) model.Candle {
		return model.Candle{Open: price, High: price, Low: price, Close: price, Volume: 1000}
	})
}

// wavyCandles oscillates around a drifting mean so every indicator has something to read
func wavyCandles(count int) []model.Candle {
	return generateTestCandles(count, func(i int) model.Candle {
		base := 100 + float64(i)*0.2 + 5*math.Sin(float64(i)/6)
		return model.Candle{
			Open:   base - 0.5,
			High:   base + 1.5,
			Low:    base - 1.5,
			Close:  base + 0.4*math.Cos(float64(i)),
			Volume: 1000 + float64(i%7)*150,
		}
	})
}
