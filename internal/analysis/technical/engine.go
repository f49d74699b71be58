package technical

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Alias1177/tradecore/internal/analysis/pattern"
	"github.com/Alias1177/tradecore/internal/model"
)

// dependencies lists the families whose series a family reads
var dependencies = map[model.Family][]model.Family{
	model.FamilyMACD:       {model.FamilyEMA},
	model.FamilyStochRSI:   {model.FamilyRSI},
	model.FamilyBBW:        {model.FamilyBollinger},
	model.FamilyKeltner:    {model.FamilyEMA, model.FamilyATR},
	model.FamilySqueeze:    {model.FamilyBollinger, model.FamilyKeltner},
	model.FamilyDivergence: {model.FamilyRSI},
}

type computeFunc func(p *Params, candles []model.Candle, in, out *model.IndicatorSet)

var computers = map[model.Family]computeFunc{
	model.FamilySMA: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		closes := model.Closes(c)
		out.Series[model.SeriesSMA] = SMA(closes, p.SMAPeriod)
		out.Series[model.SeriesSMALong] = SMA(closes, p.SMALongPeriod)
	},
	model.FamilyEMA: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		closes := model.Closes(c)
		out.Series[model.SeriesEMA] = EMA(closes, p.EMAPeriod)
		out.Series[model.SeriesEMAFast] = EMA(closes, p.EMAFastPeriod)
		out.Series[model.SeriesEMASlow] = EMA(closes, p.EMASlowPeriod)
	},
	model.FamilyRibbon: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		for i, s := range Ribbon(model.Closes(c), p.RibbonPeriods) {
			out.Series[model.RibbonKey(i)] = s
		}
	},
	model.FamilyMACD: func(p *Params, _ []model.Candle, in, out *model.IndicatorSet) {
		line, signal, hist := MACD(in.Get(model.SeriesEMAFast), in.Get(model.SeriesEMASlow), p.MACDSignal)
		out.Series[model.SeriesMACD] = line
		out.Series[model.SeriesMACDSignal] = signal
		out.Series[model.SeriesMACDHist] = hist
	},
	model.FamilyRSI: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesRSI] = RSI(model.Closes(c), p.RSIPeriod)
	},
	model.FamilyStochastic: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesStochK], out.Series[model.SeriesStochD] = Stochastic(c, p.StochKPeriod, p.StochDPeriod)
	},
	model.FamilyStochRSI: func(p *Params, _ []model.Candle, in, out *model.IndicatorSet) {
		out.Series[model.SeriesStochRSIK], out.Series[model.SeriesStochRSID] = StochRSI(in.Get(model.SeriesRSI), p.StochRSIPeriod, p.StochDPeriod)
	},
	model.FamilyWilliamsR: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesWilliamsR] = WilliamsR(c, p.WilliamsPeriod)
	},
	model.FamilyCCI: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesCCI] = CCI(c, p.CCIPeriod)
	},
	model.FamilyROC: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesROC] = ROC(model.Closes(c), p.ROCPeriod)
	},
	model.FamilyAwesome: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesAO] = AwesomeOscillator(c, p.AOFastPeriod, p.AOSlowPeriod)
	},
	model.FamilyBollinger: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		u, m, l := BollingerBands(model.Closes(c), p.BBPeriod, p.BBStdDev)
		out.Series[model.SeriesBBUpper], out.Series[model.SeriesBBMiddle], out.Series[model.SeriesBBLower] = u, m, l
	},
	model.FamilyBBW: func(_ *Params, _ []model.Candle, in, out *model.IndicatorSet) {
		out.Series[model.SeriesBBW] = BandWidth(in.Get(model.SeriesBBUpper), in.Get(model.SeriesBBMiddle), in.Get(model.SeriesBBLower))
	},
	model.FamilyATR: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesATR] = ATR(c, p.ATRPeriod, p.ATR)
	},
	model.FamilyKeltner: func(p *Params, _ []model.Candle, in, out *model.IndicatorSet) {
		u, m, l := KeltnerChannels(in.Get(model.SeriesEMA), in.Get(model.SeriesATR), p.KeltnerMult)
		out.Series[model.SeriesKCUpper], out.Series[model.SeriesKCMiddle], out.Series[model.SeriesKCLower] = u, m, l
	},
	model.FamilyDonchian: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		u, m, l := DonchianChannels(c, p.DonchianPeriod)
		out.Series[model.SeriesDCUpper], out.Series[model.SeriesDCMiddle], out.Series[model.SeriesDCLower] = u, m, l
	},
	model.FamilySqueeze: func(p *Params, c []model.Candle, in, out *model.IndicatorSet) {
		on, mom := Squeeze(c,
			in.Get(model.SeriesBBUpper), in.Get(model.SeriesBBLower),
			in.Get(model.SeriesKCUpper), in.Get(model.SeriesKCMiddle), in.Get(model.SeriesKCLower),
			p.BBPeriod)
		out.Series[model.SeriesSqueeze], out.Series[model.SeriesSqueezeMom] = on, mom
	},
	model.FamilyADX: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		adx, plus, minus := ADX(c, p.ADXPeriod)
		out.Series[model.SeriesADX], out.Series[model.SeriesPlusDI], out.Series[model.SeriesMinusDI] = adx, plus, minus
	},
	model.FamilyPSAR: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesPSAR], out.Series[model.SeriesPSARTrend] = ParabolicSAR(c, p.PSARStep, p.PSARMax)
	},
	model.FamilyIchimoku: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		t, k, a, b := Ichimoku(c, p.TenkanPeriod, p.KijunPeriod, p.SenkouPeriod)
		out.Series[model.SeriesTenkan], out.Series[model.SeriesKijun] = t, k
		out.Series[model.SeriesSenkouA], out.Series[model.SeriesSenkouB] = a, b
	},
	model.FamilyOBV: func(_ *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesOBV] = OBV(c)
	},
	model.FamilyMFI: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesMFI] = MFI(c, p.MFIPeriod)
	},
	model.FamilyCMF: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesCMF] = CMF(c, p.CMFPeriod)
	},
	model.FamilyVWAP: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesVWAP] = VWAP(c, p.VWAPPeriod)
	},
	model.FamilyADLine: func(_ *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesADLine] = ADLine(c)
	},
	model.FamilyVolumeSMA: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Series[model.SeriesVolumeSMA] = VolumeSMA(c, p.VolumePeriod)
	},
	model.FamilyPivots: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Pivots = PivotPoints(c, TargetIndex(len(c)), p.PivotPeriod)
	},
	model.FamilyFibonacci: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Fibonacci = FibonacciLevels(c, TargetIndex(len(c)), p.FibLookback)
	},
	model.FamilySupportResistance: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.Zones = SupportResistanceZones(c, TargetIndex(len(c)), p.SwingStrength, p.ZoneTolerance, p.MaxZonesPerSide)
	},
	model.FamilyCandlestick: func(_ *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.CandlePatterns = pattern.DetectCandlesticks(c)
	},
	model.FamilyChartPatterns: func(p *Params, c []model.Candle, _, out *model.IndicatorSet) {
		out.ChartPatterns = pattern.DetectChartPatterns(c, TargetIndex(len(c)), p.Chart)
	},
	model.FamilyDivergence: func(p *Params, c []model.Candle, in, out *model.IndicatorSet) {
		out.Divergences = pattern.DetectDivergences(c, in.Get(model.SeriesRSI), TargetIndex(len(c)), p.Divergence)
	},
}

// TargetIndex is the last fully closed candle of a slice of length n
func TargetIndex(n int) int {
	if n < 2 {
		return n - 1
	}
	return n - 2
}

// Engine computes indicator families over a candle slice. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	params    Params
	log       zerolog.Logger
	onFailure func(model.Family)
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l.With().Str("component", "indicators").Logger()
	}
}

// WithFailureHook is called once per family that failed during Compute
func WithFailureHook(fn func(model.Family)) Option {
	return func(e *Engine) {
		e.onFailure = fn
	}
}

// NewEngine creates an indicator engine
func NewEngine(params Params, opts ...Option) *Engine {
	e := &Engine{params: params, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's lookback configuration
func (e *Engine) Params() Params {
	return e.params
}

// Resolve returns the requested families plus their dependencies, dependencies first
func Resolve(families []model.Family) []model.Family {
	seen := make(map[model.Family]bool)
	var order []model.Family
	var visit func(f model.Family)
	visit = func(f model.Family) {
		if seen[f] {
			return
		}
		seen[f] = true
		for _, dep := range dependencies[f] {
			visit(dep)
		}
		order = append(order, f)
	}

	sorted := append([]model.Family(nil), families...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, f := range sorted {
		visit(f)
	}
	return order
}

// Compute runs the requested families and their dependencies. A family that panics is
// logged, recorded in Failures and leaves no output; every other family still runs.
// Families that depend on a failed family are skipped and recorded too.
func (e *Engine) Compute(candles []model.Candle, families []model.Family) *model.IndicatorSet {
	set := model.NewIndicatorSet(len(candles))

	if e.params.ATR.Validate {
		if bad := CorruptedCandles(candles, e.params.ATR); len(bad) > 0 {
			e.log.Warn().Int("count", len(bad)).Ints("indices", bad).Msg("Corrupted candles substituted in true range")
		}
	}

	for _, f := range Resolve(families) {
		if dep, failed := failedDependency(set, f); failed {
			e.fail(set, f, fmt.Errorf("dependency %s failed", dep))
			continue
		}

		out, err := e.run(f, candles, set)
		if err != nil {
			e.fail(set, f, err)
			continue
		}
		merge(set, out)
		set.Computed[f] = true
	}
	return set
}

// ComputeAll runs every known family
func (e *Engine) ComputeAll(candles []model.Candle) *model.IndicatorSet {
	return e.Compute(candles, model.Families())
}

func (e *Engine) run(f model.Family, candles []model.Candle, in *model.IndicatorSet) (out *model.IndicatorSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	compute, ok := computers[f]
	if !ok {
		return nil, fmt.Errorf("no computation registered for %s", f)
	}
	out = model.NewIndicatorSet(len(candles))
	compute(&e.params, candles, in, out)
	return out, nil
}

func (e *Engine) fail(set *model.IndicatorSet, f model.Family, err error) {
	set.Failures[f] = err.Error()
	e.log.Error().Err(err).Str("family", f.String()).Int("candles", set.Len).Msg("Indicator computation failed")
	if e.onFailure != nil {
		e.onFailure(f)
	}
}

func failedDependency(set *model.IndicatorSet, f model.Family) (model.Family, bool) {
	for _, dep := range dependencies[f] {
		if _, failed := set.Failures[dep]; failed {
			return dep, true
		}
	}
	return 0, false
}

func merge(dst, src *model.IndicatorSet) {
	for k, v := range src.Series {
		dst.Series[k] = v
	}
	if src.Pivots != nil {
		dst.Pivots = src.Pivots
	}
	if src.Fibonacci != nil {
		dst.Fibonacci = src.Fibonacci
	}
	if src.Zones != nil {
		dst.Zones = src.Zones
	}
	if src.CandlePatterns != nil {
		dst.CandlePatterns = src.CandlePatterns
	}
	if src.ChartPatterns != nil {
		dst.ChartPatterns = src.ChartPatterns
	}
	if src.Divergences != nil {
		dst.Divergences = src.Divergences
	}
}
