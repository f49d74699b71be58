package pattern

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

const candleWindow = 5

// Candlestick pattern names
const (
	BullishEngulfing      = "bullish_engulfing"
	BearishEngulfing      = "bearish_engulfing"
	Hammer                = "hammer"
	ShootingStar          = "shooting_star"
	ThreeWhiteSoldiers    = "three_white_soldiers"
	ThreeBlackCrows       = "three_black_crows"
	Doji                  = "doji"
	StrongBullishMomentum = "strong_bullish_momentum"
	StrongBearishMomentum = "strong_bearish_momentum"
	MorningStar           = "morning_star"
	EveningStar           = "evening_star"
)

// DetectCandlesticks returns the patterns that end at each index
func DetectCandlesticks(candles []model.Candle) [][]model.CandlePattern {
	out := make([][]model.CandlePattern, len(candles))
	for i := candleWindow - 1; i < len(candles); i++ {
		out[i] = PatternsAt(candles, i)
	}
	return out
}

// PatternsAt identifies candle patterns formed by the candles ending at index i
func PatternsAt(candles []model.Candle, i int) []model.CandlePattern {
	if i < candleWindow-1 || i >= len(candles) {
		return nil
	}

	c3, c4, c5 := candles[i-2], candles[i-1], candles[i]
	var avgBody float64
	for j := i - candleWindow + 1; j <= i; j++ {
		avgBody += candles[j].Body()
	}
	avgBody /= candleWindow

	body3, body4, body5 := c3.Body(), c4.Body(), c5.Body()
	bullish3, bullish4, bullish5 := c3.Close > c3.Open, c4.Close > c4.Open, c5.Close > c5.Open
	upperWick := c5.High - math.Max(c5.Open, c5.Close)
	lowerWick := math.Min(c5.Open, c5.Close) - c5.Low

	var patterns []model.CandlePattern
	add := func(name string, bias model.Bias, strength float64) {
		patterns = append(patterns, model.CandlePattern{Name: name, Bias: bias, Strength: clamp01(strength)})
	}

	if bullish5 && !bullish4 && c5.Open <= c4.Close && c5.Close > c4.Open && body5 > body4*1.2 {
		add(BullishEngulfing, model.Bullish, engulfStrength(body4, body5))
	}
	if !bullish5 && bullish4 && c5.Open >= c4.Close && c5.Close < c4.Open && body5 > body4*1.2 {
		add(BearishEngulfing, model.Bearish, engulfStrength(body4, body5))
	}

	if body5 > 0 && lowerWick > body5*2 && upperWick < body5*0.5 {
		add(Hammer, model.Bullish, lowerWick/body5/4)
	}
	if body5 > 0 && upperWick > body5*2 && lowerWick < body5*0.5 {
		add(ShootingStar, model.Bearish, upperWick/body5/4)
	}

	if bullish3 && bullish4 && bullish5 && c4.Close > c3.Close && c5.Close > c4.Close {
		add(ThreeWhiteSoldiers, model.Bullish, consistency(body3, body4, body5))
	}
	if !bullish3 && !bullish4 && !bullish5 && c4.Close < c3.Close && c5.Close < c4.Close {
		add(ThreeBlackCrows, model.Bearish, consistency(body3, body4, body5))
	}

	if rng := c5.High - c5.Low; rng > 0 && body5 < avgBody*0.3 && (upperWick > body5 || lowerWick > body5) {
		add(Doji, model.Neutral, 1-body5/rng)
	}

	if body5 > avgBody*1.5 && lowerWick < body5*0.2 && upperWick < body5*0.2 {
		if bullish5 {
			add(StrongBullishMomentum, model.Bullish, body5/avgBody/3)
		} else {
			add(StrongBearishMomentum, model.Bearish, body5/avgBody/3)
		}
	}

	smallMiddle := body4 < avgBody*0.3
	if bullish3 && body3 > avgBody && smallMiddle && c4.Open > c3.Close &&
		!bullish5 && body5 > avgBody && c5.Close < c3.Open+(c3.Close-c3.Open)/2 {
		add(EveningStar, model.Bearish, starStrength(body3, body4, body5))
	}
	if !bullish3 && body3 > avgBody && smallMiddle && c4.Open < c3.Close &&
		bullish5 && body5 > avgBody && c5.Close > c3.Open+(c3.Close-c3.Open)/2 {
		add(MorningStar, model.Bullish, starStrength(body3, body4, body5))
	}

	return patterns
}

func engulfStrength(prevBody, body float64) float64 {
	if prevBody == 0 {
		return 1
	}
	return 0.5 + (body/prevBody-1)/2
}

func consistency(a, b, c float64) float64 {
	avg := (a + b + c) / 3
	if avg == 0 {
		return 0
	}
	diff := math.Abs(a-avg) + math.Abs(b-avg) + math.Abs(c-avg)
	return 1 - diff/(avg*3)
}

func starStrength(first, middle, last float64) float64 {
	outer := (first + last) / 2
	if outer == 0 {
		return 0
	}
	return 1 - middle/outer
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
