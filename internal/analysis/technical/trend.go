package technical

import (
	"math"

	"github.com/Alias1177/tradecore/internal/model"
)

// ADX calculates the Average Directional Index and the directional indicators
func ADX(candles []model.Candle, period int) (adx, plusDI, minusDI model.Series) {
	n := len(candles)
	adx, plusDI, minusDI = model.NewSeries(n), model.NewSeries(n), model.NewSeries(n)
	if period <= 0 || n < period+1 {
		return adx, plusDI, minusDI
	}

	tr := TrueRange(candles, ATROptions{})
	trs, pdm, mdm := model.NewSeries(n), model.NewSeries(n), model.NewSeries(n)
	for i := 1; i < n; i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		pdm[i], mdm[i] = 0, 0
		if up > down && up > 0 {
			pdm[i] = up
		}
		if down > up && down > 0 {
			mdm[i] = down
		}
		trs[i] = tr[i]
	}

	smTR := wilderSmooth(trs, period)
	smP := wilderSmooth(pdm, period)
	smM := wilderSmooth(mdm, period)

	dx := model.NewSeries(n)
	for i := 0; i < n; i++ {
		t, ok := smTR.At(i)
		if !ok {
			continue
		}
		p, m := 0.0, 0.0
		if t > 0 {
			p = smP[i] / t * 100
			m = smM[i] / t * 100
		}
		plusDI[i], minusDI[i] = p, m
		if p+m > 0 {
			dx[i] = math.Abs(p-m) / (p + m) * 100
		} else {
			dx[i] = 0
		}
	}
	return wilderSmooth(dx, period), plusDI, minusDI
}

// ParabolicSAR returns the stop-and-reverse level and the trend it implies (+1 up, -1 down)
func ParabolicSAR(candles []model.Candle, step, maxStep float64) (sar, trend model.Series) {
	n := len(candles)
	sar, trend = model.NewSeries(n), model.NewSeries(n)
	if n < 2 || step <= 0 {
		return sar, trend
	}

	up := candles[1].Close >= candles[0].Close
	s, ep := candles[0].High, candles[0].Low
	if up {
		s, ep = candles[0].Low, candles[0].High
	}
	af := step

	for i := 1; i < n; i++ {
		c := candles[i]
		s += af * (ep - s)
		if up {
			s = math.Min(s, candles[i-1].Low)
			if i >= 2 {
				s = math.Min(s, candles[i-2].Low)
			}
			if c.Low < s {
				up, s, ep, af = false, ep, c.Low, step
			} else if c.High > ep {
				ep = c.High
				af = math.Min(af+step, maxStep)
			}
		} else {
			s = math.Max(s, candles[i-1].High)
			if i >= 2 {
				s = math.Max(s, candles[i-2].High)
			}
			if c.High > s {
				up, s, ep, af = true, ep, c.High, step
			} else if c.Low < ep {
				ep = c.Low
				af = math.Min(af+step, maxStep)
			}
		}
		sar[i] = s
		if up {
			trend[i] = 1
		} else {
			trend[i] = -1
		}
	}
	return sar, trend
}

// Ichimoku calculates tenkan, kijun and the cloud spans. Spans are displaced forward by
// the kijun period so the value at i is the cloud drawn under candle i.
func Ichimoku(candles []model.Candle, tenkanPeriod, kijunPeriod, senkouPeriod int) (tenkan, kijun, spanA, spanB model.Series) {
	n := len(candles)
	tenkan, kijun = midpoints(candles, tenkanPeriod), midpoints(candles, kijunPeriod)
	longMid := midpoints(candles, senkouPeriod)
	spanA, spanB = model.NewSeries(n), model.NewSeries(n)
	for i := kijunPeriod; i < n; i++ {
		src := i - kijunPeriod
		t, ok1 := tenkan.At(src)
		k, ok2 := kijun.At(src)
		if ok1 && ok2 {
			spanA[i] = (t + k) / 2
		}
		if v, ok := longMid.At(src); ok {
			spanB[i] = v
		}
	}
	return tenkan, kijun, spanA, spanB
}

func midpoints(candles []model.Candle, period int) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(candles); i++ {
		out[i] = (highestHigh(candles, i, period) + lowestLow(candles, i, period)) / 2
	}
	return out
}
