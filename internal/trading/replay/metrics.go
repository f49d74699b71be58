package replay

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Alias1177/tradecore/internal/model"
)

// Results summarizes a replay
type Results struct {
	Bars              int                  `json:"bars"`
	RegimeCounts      map[model.Regime]int `json:"regime_counts"`
	ConfirmedBars     int                  `json:"confirmed_bars"`
	RegimeSwitches    int                  `json:"regime_switches"`
	Anomalies         map[string]int       `json:"anomalies"`
	IndicatorFailures int                  `json:"indicator_failures"`
	GatePassed        int                  `json:"gate_passed"`
	GatePassRate      float64              `json:"gate_pass_rate"`
	MeanStrength      float64              `json:"mean_strength"`
	SizingOutcomes    map[string]int       `json:"sizing_outcomes"`

	TotalTrades    int `json:"total_trades"`
	WinningTrades  int `json:"winning_trades"`
	LosingTrades   int `json:"losing_trades"`
	MaxConsecutive struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
	} `json:"max_consecutive"`
	WinPercentage       float64            `json:"win_percentage"`
	AverageGainPercent  float64            `json:"average_gain_percent"`
	AverageLossPercent  float64            `json:"average_loss_percent"`
	ProfitFactor        float64            `json:"profit_factor"`
	MaxDrawdown         float64            `json:"max_drawdown"`
	SharpeRatio         float64            `json:"sharpe_ratio"`
	EquityGrowthPercent float64            `json:"equity_growth_percent"`
	EquityCurve         []float64          `json:"equity_curve"`
	MonthlyReturns      map[string]float64 `json:"monthly_returns"`
	Trades              []model.Trade      `json:"trades"`

	strengthSum       float64
	consecutiveWins   int
	consecutiveLosses int
}

func newResults() *Results {
	return &Results{
		RegimeCounts:   make(map[model.Regime]int),
		Anomalies:      make(map[string]int),
		SizingOutcomes: make(map[string]int),
		MonthlyReturns: make(map[string]float64),
	}
}

func (r *Results) addTrade(t model.Trade, equity float64) {
	r.Trades = append(r.Trades, t)
	r.TotalTrades++
	if t.PnLUSDT > 0 {
		r.WinningTrades++
		r.consecutiveWins++
		r.consecutiveLosses = 0
	} else {
		r.LosingTrades++
		r.consecutiveLosses++
		r.consecutiveWins = 0
	}
	r.MaxConsecutive.Wins = max(r.MaxConsecutive.Wins, r.consecutiveWins)
	r.MaxConsecutive.Losses = max(r.MaxConsecutive.Losses, r.consecutiveLosses)
	r.MonthlyReturns[t.ExitTime.Format("2006-01")] += t.PnLUSDT
	r.EquityCurve = append(r.EquityCurve, equity)
}

// calculateMetrics computes the summary ratios once the walk is done
func (e *Engine) calculateMetrics(r *Results) {
	if r.Bars > 0 {
		r.GatePassRate = float64(r.GatePassed) / float64(r.Bars) * 100
		r.MeanStrength = r.strengthSum / float64(r.Bars)
	}
	if r.TotalTrades > 0 {
		r.WinPercentage = float64(r.WinningTrades) / float64(r.TotalTrades) * 100
	}

	var gains, losses float64
	for _, t := range r.Trades {
		if t.PnLUSDT > 0 {
			gains += t.PnLPercentage
		} else {
			losses -= t.PnLPercentage
		}
	}
	if r.WinningTrades > 0 {
		r.AverageGainPercent = gains / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AverageLossPercent = losses / float64(r.LosingTrades)
	}
	if losses > 0 {
		r.ProfitFactor = gains / losses
	} else {
		r.ProfitFactor = gains
	}

	r.MaxDrawdown = maxDrawdown(r.EquityCurve) * 100
	if n := len(r.EquityCurve); n > 0 && r.EquityCurve[0] > 0 {
		r.EquityGrowthPercent = (r.EquityCurve[n-1] - r.EquityCurve[0]) / r.EquityCurve[0] * 100
	}
	for month, v := range r.MonthlyReturns {
		r.MonthlyReturns[month] = v / e.cfg.InitialBalance * 100
	}

	var returns []float64
	for i := 1; i < len(r.EquityCurve); i++ {
		if prev := r.EquityCurve[i-1]; prev > 0 {
			returns = append(returns, (r.EquityCurve[i]-prev)/prev)
		}
	}
	m := mean(returns)
	if sd := stdDev(returns, m); sd > 0 {
		r.SharpeRatio = m / sd * math.Sqrt(252)
	}
}

func maxDrawdown(curve []float64) float64 {
	var peak, dd float64
	for _, v := range curve {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			dd = math.Max(dd, (peak-v)/peak)
		}
	}
	return dd
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}

// FormatResults creates a human-readable summary of replay results
func FormatResults(r *Results) string {
	if r == nil {
		return "No replay results available"
	}

	var b strings.Builder
	b.WriteString("\n===== REPLAY RESULTS =====\n")
	fmt.Fprintf(&b, "Bars evaluated: %d\n", r.Bars)
	fmt.Fprintf(&b, "Gate passed: %d (%.2f%%)\n", r.GatePassed, r.GatePassRate)
	fmt.Fprintf(&b, "Mean strength: %.2f\n", r.MeanStrength)
	fmt.Fprintf(&b, "Confirmed regime bars: %d | Regime switches: %d\n", r.ConfirmedBars, r.RegimeSwitches)

	b.WriteString("\nRegime distribution:\n")
	for _, regime := range []model.Regime{model.RegimeUptrend, model.RegimeDowntrend, model.RegimeRanging, model.RegimeNeutral} {
		if n := r.RegimeCounts[regime]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", regime, n, float64(n)/float64(max(r.Bars, 1))*100)
		}
	}

	writeCounts(&b, "Sizing outcomes", r.SizingOutcomes)
	writeCounts(&b, "Anomalies", r.Anomalies)

	fmt.Fprintf(&b, "\nTotal trades: %d\n", r.TotalTrades)
	fmt.Fprintf(&b, "Winning trades: %d (%.2f%%)\n", r.WinningTrades, r.WinPercentage)
	fmt.Fprintf(&b, "Average gain: %.2f%% | Average loss: %.2f%%\n", r.AverageGainPercent, r.AverageLossPercent)
	fmt.Fprintf(&b, "Profit factor: %.2f\n", r.ProfitFactor)
	fmt.Fprintf(&b, "Maximum drawdown: %.2f%%\n", r.MaxDrawdown)
	fmt.Fprintf(&b, "Max consecutive wins: %d | losses: %d\n", r.MaxConsecutive.Wins, r.MaxConsecutive.Losses)

	if len(r.MonthlyReturns) > 0 {
		b.WriteString("\nMonthly returns:\n")
		months := make([]string, 0, len(r.MonthlyReturns))
		for month := range r.MonthlyReturns {
			months = append(months, month)
		}
		sort.Strings(months)
		for _, month := range months {
			v := r.MonthlyReturns[month]
			sign := ""
			if v > 0 {
				sign = "+"
			}
			fmt.Fprintf(&b, "- %s: %s%.2f%%\n", month, sign, v)
		}
	}

	fmt.Fprintf(&b, "\nTotal equity growth: %.2f%%\n", r.EquityGrowthPercent)
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %d\n", k, counts[k])
	}
}
