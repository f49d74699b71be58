package technical

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/tradecore/internal/model"
)

func TestEveryFamilyHasComputation(t *testing.T) {
	for _, f := range model.Families() {
		_, ok := computers[f]
		assert.True(t, ok, "family %s has no computation", f)
	}
}

func TestResolveOrdersDependenciesFirst(t *testing.T) {
	order := Resolve([]model.Family{model.FamilySqueeze, model.FamilyMACD})

	pos := make(map[model.Family]int)
	for i, f := range order {
		pos[f] = i
	}
	require.Len(t, pos, len(order), "families must not repeat")

	before := [][2]model.Family{
		{model.FamilyEMA, model.FamilyMACD},
		{model.FamilyBollinger, model.FamilySqueeze},
		{model.FamilyKeltner, model.FamilySqueeze},
		{model.FamilyATR, model.FamilyKeltner},
		{model.FamilyEMA, model.FamilyKeltner},
	}
	for _, pair := range before {
		assert.Less(t, pos[pair[0]], pos[pair[1]], "%s before %s", pair[0], pair[1])
	}
}

func TestComputeAllAlignsWithCandles(t *testing.T) {
	candles := wavyCandles(260)
	set := NewEngine(DefaultParams()).ComputeAll(candles)

	assert.Empty(t, set.Failures)
	for key, s := range set.Series {
		assert.Len(t, s, len(candles), "series %s", key)
	}
	for _, f := range model.Families() {
		assert.True(t, set.Has(f), "family %s", f)
	}
	assert.Len(t, set.CandlePatterns, len(candles))
	assert.NotNil(t, set.Pivots)
	assert.NotNil(t, set.Fibonacci)

	last := TargetIndex(len(candles))
	for _, key := range []model.SeriesKey{model.SeriesEMA, model.SeriesSMALong, model.SeriesMACDHist, model.SeriesRSI, model.SeriesADX, model.SeriesBBW, model.SeriesSenkouB} {
		assert.True(t, set.Get(key).Valid(last), "series %s should be warm at target", key)
	}
}

func TestComputeWithTooFewCandles(t *testing.T) {
	for _, n := range []int{0, 1, 5, 30} {
		set := NewEngine(DefaultParams()).ComputeAll(wavyCandles(n))
		assert.Empty(t, set.Failures, "n=%d", n)
		for key, s := range set.Series {
			assert.Len(t, s, n, "series %s", key)
		}
	}
}

func TestComputeIsolatesPanics(t *testing.T) {
	original := computers[model.FamilyRSI]
	computers[model.FamilyRSI] = func(*Params, []model.Candle, *model.IndicatorSet, *model.IndicatorSet) {
		var s model.Series
		_ = s[3]
	}
	t.Cleanup(func() { computers[model.FamilyRSI] = original })

	var failed []model.Family
	engine := NewEngine(DefaultParams(),
		WithLogger(zerolog.Nop()),
		WithFailureHook(func(f model.Family) { failed = append(failed, f) }))

	set := engine.Compute(wavyCandles(100), []model.Family{model.FamilyStochRSI, model.FamilyCCI})

	assert.Contains(t, set.Failures, model.FamilyRSI)
	assert.Contains(t, set.Failures[model.FamilyStochRSI], "dependency rsi failed")
	assert.Nil(t, set.Get(model.SeriesRSI))
	assert.Nil(t, set.Get(model.SeriesStochRSIK))
	assert.False(t, set.Has(model.FamilyRSI))

	assert.True(t, set.Has(model.FamilyCCI))
	assert.Len(t, set.Get(model.SeriesCCI), 100)
	assert.Equal(t, []model.Family{model.FamilyRSI, model.FamilyStochRSI}, failed)
}

func TestComputeOnlyRequestedFamilies(t *testing.T) {
	set := NewEngine(DefaultParams()).Compute(wavyCandles(80), []model.Family{model.FamilyMACD})

	assert.True(t, set.Has(model.FamilyEMA))
	assert.True(t, set.Has(model.FamilyMACD))
	assert.False(t, set.Has(model.FamilyRSI))
	assert.Nil(t, set.Get(model.SeriesRSI))
}
