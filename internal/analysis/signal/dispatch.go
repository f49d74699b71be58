package signal

import (
	"sort"

	"github.com/Alias1177/tradecore/internal/model"
)

var evaluators = [model.KindCount]evalFunc{
	model.KindEMA:               evalEMA,
	model.KindSMA:               evalSMA,
	model.KindMACross:           evalMACross,
	model.KindMARibbon:          evalRibbon,
	model.KindMACD:              evalMACD,
	model.KindADX:               evalADX,
	model.KindPSAR:              evalPSAR,
	model.KindIchimoku:          evalIchimoku,
	model.KindRSI:               evalRSI,
	model.KindStochastic:        evalStochastic,
	model.KindStochRSI:          evalStochRSI,
	model.KindWilliamsR:         evalWilliamsR,
	model.KindCCI:               evalCCI,
	model.KindROC:               evalROC,
	model.KindAwesomeOscillator: evalAwesome,
	model.KindBollinger:         evalBollinger,
	model.KindBBW:               evalBBW,
	model.KindATR:               evalATR,
	model.KindKeltner:           evalKeltner,
	model.KindDonchian:          evalDonchian,
	model.KindTTMSqueeze:        evalSqueeze,
	model.KindVolume:            evalVolume,
	model.KindOBV:               evalOBV,
	model.KindMFI:               evalMFI,
	model.KindCMF:               evalCMF,
	model.KindVWAP:              evalVWAP,
	model.KindADLine:            evalADLine,
	model.KindCandlestick:       evalCandlestick,
	model.KindChartPattern:      evalChartPattern,
	model.KindDivergence:        evalDivergence,
	model.KindSupportResistance: evalSupportResistance,
	model.KindPivot:             evalPivot,
	model.KindFibonacci:         evalFibonacci,
}

var requirements = [model.KindCount][]model.Family{
	model.KindEMA:               {model.FamilyEMA},
	model.KindSMA:               {model.FamilySMA},
	model.KindMACross:           {model.FamilySMA},
	model.KindMARibbon:          {model.FamilyRibbon},
	model.KindMACD:              {model.FamilyMACD},
	model.KindADX:               {model.FamilyADX},
	model.KindPSAR:              {model.FamilyPSAR},
	model.KindIchimoku:          {model.FamilyIchimoku},
	model.KindRSI:               {model.FamilyRSI},
	model.KindStochastic:        {model.FamilyStochastic},
	model.KindStochRSI:          {model.FamilyStochRSI},
	model.KindWilliamsR:         {model.FamilyWilliamsR},
	model.KindCCI:               {model.FamilyCCI},
	model.KindROC:               {model.FamilyROC},
	model.KindAwesomeOscillator: {model.FamilyAwesome},
	model.KindBollinger:         {model.FamilyBollinger},
	model.KindBBW:               {model.FamilyBBW},
	model.KindATR:               {model.FamilyATR},
	model.KindKeltner:           {model.FamilyKeltner},
	model.KindDonchian:          {model.FamilyDonchian},
	model.KindTTMSqueeze:        {model.FamilySqueeze},
	model.KindVolume:            {model.FamilyVolumeSMA},
	model.KindOBV:               {model.FamilyOBV},
	model.KindMFI:               {model.FamilyMFI},
	model.KindCMF:               {model.FamilyCMF},
	model.KindVWAP:              {model.FamilyVWAP},
	model.KindADLine:            {model.FamilyADLine},
	model.KindCandlestick:       {model.FamilyCandlestick},
	model.KindChartPattern:      {model.FamilyChartPatterns},
	model.KindDivergence:        {model.FamilyDivergence},
	model.KindSupportResistance: {model.FamilySupportResistance},
	model.KindPivot:             {model.FamilyPivots},
	model.KindFibonacci:         {model.FamilyFibonacci},
}

// Requirements returns the distinct indicator families the given kinds need, in family order
func Requirements(kinds []model.Kind) []model.Family {
	seen := make(map[model.Family]bool)
	var out []model.Family
	for _, k := range kinds {
		if k < 0 || k >= model.KindCount {
			continue
		}
		for _, f := range requirements[k] {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
