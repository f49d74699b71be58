package strength

import "github.com/Alias1177/tradecore/internal/model"

// typeWeights scale each signal kind's strength in the base sum.
// Core families sit in 1.5-1.8, supporting families in 1.0-1.3.
var typeWeights = [model.KindCount]float64{
	model.KindEMA:               1.6,
	model.KindSMA:               1.2,
	model.KindMACross:           1.5,
	model.KindMARibbon:          1.1,
	model.KindMACD:              1.8,
	model.KindADX:               1.5,
	model.KindPSAR:              1.1,
	model.KindIchimoku:          1.2,
	model.KindRSI:               1.7,
	model.KindStochastic:        1.2,
	model.KindStochRSI:          1.1,
	model.KindWilliamsR:         1.0,
	model.KindCCI:               1.0,
	model.KindROC:               1.0,
	model.KindAwesomeOscillator: 1.1,
	model.KindBollinger:         1.5,
	model.KindBBW:               1.1,
	model.KindATR:               1.0,
	model.KindKeltner:           1.1,
	model.KindDonchian:          1.0,
	model.KindTTMSqueeze:        1.3,
	model.KindVolume:            1.5,
	model.KindOBV:               1.2,
	model.KindMFI:               1.1,
	model.KindCMF:               1.1,
	model.KindVWAP:              1.3,
	model.KindADLine:            1.0,
	model.KindCandlestick:       1.2,
	model.KindChartPattern:      1.5,
	model.KindDivergence:        1.7,
	model.KindSupportResistance: 1.6,
	model.KindPivot:             1.2,
	model.KindFibonacci:         1.1,
}

const (
	highCorrelation     = 0.15
	moderateCorrelation = 0.08
	maxPenalty          = 0.4
	agreementBonus      = 0.05
	maxAgreementBonus   = 0.15

	confirmedRegimeBonus   = 0.25
	unconfirmedRegimeBonus = 0.15

	pairBonus      = 0.1
	maxPairBonus   = 0.3
	uniqueBonus    = 0.05
	maxUniqueBonus = 0.2
)

type pair [2]model.Kind

func key(a, b model.Kind) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

func pairs(level float64, ps ...pair) map[pair]float64 {
	m := make(map[pair]float64, len(ps))
	for _, p := range ps {
		m[key(p[0], p[1])] = level
	}
	return m
}

// correlated lists co-moving kinds and the penalty each pair costs
var correlated = func() map[pair]float64 {
	m := pairs(highCorrelation,
		pair{model.KindRSI, model.KindStochastic},
		pair{model.KindRSI, model.KindStochRSI},
		pair{model.KindStochastic, model.KindStochRSI},
		pair{model.KindStochastic, model.KindWilliamsR},
		pair{model.KindEMA, model.KindSMA},
		pair{model.KindEMA, model.KindMACross},
		pair{model.KindSMA, model.KindMACross},
		pair{model.KindBollinger, model.KindKeltner},
		pair{model.KindBollinger, model.KindDonchian},
		pair{model.KindOBV, model.KindADLine},
		pair{model.KindBBW, model.KindTTMSqueeze},
	)
	for p, v := range pairs(moderateCorrelation,
		pair{model.KindRSI, model.KindMFI},
		pair{model.KindRSI, model.KindCCI},
		pair{model.KindRSI, model.KindWilliamsR},
		pair{model.KindMACD, model.KindAwesomeOscillator},
		pair{model.KindMACD, model.KindROC},
		pair{model.KindEMA, model.KindMARibbon},
		pair{model.KindEMA, model.KindVWAP},
		pair{model.KindCMF, model.KindADLine},
		pair{model.KindCMF, model.KindMFI},
		pair{model.KindKeltner, model.KindDonchian},
		pair{model.KindPivot, model.KindSupportResistance},
		pair{model.KindPivot, model.KindFibonacci},
		pair{model.KindBBW, model.KindATR},
	) {
		m[p] = v
	}
	return m
}()

// complementary pairs read different aspects of the market and reward the total when both agree
var complementary = pairs(pairBonus,
	pair{model.KindRSI, model.KindMACD},
	pair{model.KindMACD, model.KindVolume},
	pair{model.KindEMA, model.KindRSI},
	pair{model.KindADX, model.KindEMA},
	pair{model.KindBollinger, model.KindRSI},
	pair{model.KindSupportResistance, model.KindCandlestick},
	pair{model.KindDivergence, model.KindSupportResistance},
	pair{model.KindTTMSqueeze, model.KindVolume},
	pair{model.KindVWAP, model.KindVolume},
	pair{model.KindIchimoku, model.KindADX},
	pair{model.KindChartPattern, model.KindVolume},
	pair{model.KindFibonacci, model.KindCandlestick},
)

// qualityTier maps a signal strength to its quality multiplier
func qualityTier(strength float64) float64 {
	switch {
	case strength >= 90:
		return 1.0
	case strength >= 80:
		return 0.9
	case strength >= 70:
		return 0.8
	case strength >= 60:
		return 0.7
	case strength >= 50:
		return 0.6
	case strength >= 40:
		return 0.55
	default:
		return 0.5
	}
}
