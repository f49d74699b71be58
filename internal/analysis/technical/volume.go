package technical

import "github.com/Alias1177/tradecore/internal/model"

// OBV calculates On-Balance Volume starting from zero
func OBV(candles []model.Candle) model.Series {
	out := model.NewSeries(len(candles))
	if len(candles) == 0 {
		return out
	}
	obv := 0.0
	out[0] = obv
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv += candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			obv -= candles[i].Volume
		}
		out[i] = obv
	}
	return out
}

// MFI calculates the Money Flow Index
func MFI(candles []model.Candle, period int) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 || len(candles) < period+1 {
		return out
	}
	tp := typicalPrices(candles)
	for i := period; i < len(candles); i++ {
		var pos, neg float64
		for j := i - period + 1; j <= i; j++ {
			flow := tp[j] * candles[j].Volume
			if tp[j] > tp[j-1] {
				pos += flow
			} else if tp[j] < tp[j-1] {
				neg += flow
			}
		}
		switch {
		case pos+neg == 0:
			out[i] = 50
		case neg == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+pos/neg)
		}
	}
	return out
}

// moneyFlowMultiplier is the close location value of a candle in [-1, 1]
func moneyFlowMultiplier(c model.Candle) float64 {
	r := c.High - c.Low
	if r <= 0 {
		return 0
	}
	return ((c.Close - c.Low) - (c.High - c.Close)) / r
}

// CMF calculates Chaikin Money Flow
func CMF(candles []model.Candle, period int) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(candles); i++ {
		var mfv, vol float64
		for j := i - period + 1; j <= i; j++ {
			mfv += moneyFlowMultiplier(candles[j]) * candles[j].Volume
			vol += candles[j].Volume
		}
		if vol > 0 {
			out[i] = mfv / vol
		} else {
			out[i] = 0
		}
	}
	return out
}

// VWAP calculates a rolling volume-weighted average of typical price
func VWAP(candles []model.Candle, period int) model.Series {
	out := model.NewSeries(len(candles))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(candles); i++ {
		var pv, vol float64
		for j := i - period + 1; j <= i; j++ {
			pv += candles[j].TypicalPrice() * candles[j].Volume
			vol += candles[j].Volume
		}
		if vol > 0 {
			out[i] = pv / vol
		}
	}
	return out
}

// ADLine calculates the cumulative Accumulation/Distribution line
func ADLine(candles []model.Candle) model.Series {
	out := model.NewSeries(len(candles))
	ad := 0.0
	for i, c := range candles {
		ad += moneyFlowMultiplier(c) * c.Volume
		out[i] = ad
	}
	return out
}

// VolumeSMA averages raw volume
func VolumeSMA(candles []model.Candle, period int) model.Series {
	return SMA(volumes(candles), period)
}
