package signal

import (
	"fmt"

	"github.com/Alias1177/tradecore/internal/model"
)

// match resolves a declared signal against the candidates of its kind. An exact normalized
// value match wins; otherwise the strongest candidate is used and flagged as a mismatch.
// An empty expected value accepts the strongest candidate.
func match(declared model.StrategySignal, candidates []model.Signal, index int) model.MatchedSignal {
	want := model.Normalize(declared.Value)

	var best, bestExact *model.Signal
	for i := range candidates {
		c := &candidates[i]
		if best == nil || c.Strength > best.Strength {
			best = c
		}
		if (want == "" || model.Normalize(c.Value) == want) && (bestExact == nil || c.Strength > bestExact.Strength) {
			bestExact = c
		}
	}

	switch {
	case bestExact != nil:
		return model.MatchedSignal{
			Signal:     *bestExact,
			Expected:   declared.Value,
			Actual:     bestExact.Value,
			Found:      true,
			ExactMatch: true,
		}
	case best != nil:
		return model.MatchedSignal{
			Signal:     *best,
			Expected:   declared.Value,
			Actual:     best.Value,
			Found:      true,
			Diagnostic: fmt.Sprintf("%s: expected %q, got %q", declared.Type, declared.Value, best.Value),
		}
	default:
		return model.MatchedSignal{
			Signal: model.Signal{
				Type:     declared.Type,
				Value:    declared.Value,
				Category: declared.Type.Category(),
				Bias:     model.Neutral,
			},
			Expected:   declared.Value,
			Found:      false,
			Diagnostic: fmt.Sprintf("%s: no signal at index %d", declared.Type, index),
		}
	}
}
