package backtest

import (
	"fmt"
	"math"

	"github.com/quantcrew/quantcrew/internal/calculate"
	"github.com/quantcrew/quantcrew/models"
)

// Metrics is the standardized performance report for one backtest run.
// Computed once per run from the daily return series and the trade log.
type Metrics struct {
	TotalReturn         float64
	AnnualizedReturn    float64
	SharpeRatio         float64
	SortinoRatio        float64
	MaxDrawdown         float64
	MaxDrawdownDuration int // days
	WinRate             float64
	ProfitFactor        float64
	TotalTrades         int
	WinningTrades       int
	LosingTrades        int
	AvgWin              float64
	AvgLoss             float64
	BestTrade           float64
	WorstTrade          float64
	AvgHoldingPeriod    float64 // days
	Volatility          float64
	CalmarRatio         float64
}

// ComputeMetrics derives performance metrics from a daily return series and
// a trade log. Trade-level statistics are taken over realized trades (sells
// and closes), the only ones carrying a P&L.
func ComputeMetrics(returns []float64, trades []models.TradeRecord, riskFreeRate float64, tradingDays int) Metrics {
	m := Metrics{TotalTrades: len(trades)}

	totalReturn := 1.0
	for _, r := range returns {
		totalReturn *= 1 + r
	}
	m.TotalReturn = totalReturn - 1

	if n := len(returns); n > 0 {
		m.AnnualizedReturn = math.Pow(1+m.TotalReturn, float64(tradingDays)/float64(n)) - 1
	}

	m.Volatility = calculate.StdDev(returns) * math.Sqrt(float64(tradingDays))

	excessReturn := m.AnnualizedReturn - riskFreeRate
	if m.Volatility > 0 {
		m.SharpeRatio = excessReturn / m.Volatility
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downsideStd := calculate.StdDev(downside) * math.Sqrt(float64(tradingDays))
	if downsideStd > 0 {
		m.SortinoRatio = excessReturn / downsideStd
	}

	m.MaxDrawdown, m.MaxDrawdownDuration = drawdown(returns)

	if m.MaxDrawdown > 0 {
		m.CalmarRatio = m.AnnualizedReturn / m.MaxDrawdown
	}

	realized := make([]models.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if t.Action == models.ActionSell || t.Action == models.ActionClose {
			realized = append(realized, t)
		}
	}

	if len(realized) > 0 {
		var winning, losing []float64
		var holding float64
		m.BestTrade = realized[0].PnLPct
		m.WorstTrade = realized[0].PnLPct

		for _, t := range realized {
			if t.PnLPct > 0 {
				winning = append(winning, t.PnLPct)
			} else {
				losing = append(losing, t.PnLPct)
			}
			m.BestTrade = math.Max(m.BestTrade, t.PnLPct)
			m.WorstTrade = math.Min(m.WorstTrade, t.PnLPct)
			holding += float64(t.HoldingDays)
		}

		m.WinningTrades = len(winning)
		m.LosingTrades = len(losing)
		m.WinRate = float64(len(winning)) / float64(len(realized))
		m.AvgWin = calculate.Mean(winning)
		m.AvgLoss = calculate.Mean(losing)
		m.AvgHoldingPeriod = holding / float64(len(realized))

		var totalWins, totalLosses float64
		for _, p := range winning {
			totalWins += p
		}
		for _, p := range losing {
			totalLosses += math.Abs(p)
		}
		if totalLosses > 0 {
			m.ProfitFactor = totalWins / totalLosses
		} else {
			m.ProfitFactor = math.Inf(1)
		}
	}

	return m
}

// drawdown walks the cumulative return curve and reports the largest
// peak-to-trough fractional decline plus the longest run of below-peak days.
func drawdown(returns []float64) (maxDrawdown float64, maxDuration int) {
	cumulative := 1.0
	peak := 1.0
	duration := 0

	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
			duration = 0
			continue
		}

		if cumulative < peak {
			duration++
			if duration > maxDuration {
				maxDuration = duration
			}
			dd := (peak - cumulative) / peak
			if dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	return maxDrawdown, maxDuration
}

// ToMap converts the metrics to a serializable map with formatted
// percentage and ratio strings.
func (m Metrics) ToMap() map[string]any {
	return map[string]any{
		"total_return_pct":           fmt.Sprintf("%.2f%%", m.TotalReturn*100),
		"annualized_return_pct":      fmt.Sprintf("%.2f%%", m.AnnualizedReturn*100),
		"sharpe_ratio":               fmt.Sprintf("%.2f", m.SharpeRatio),
		"sortino_ratio":              fmt.Sprintf("%.2f", m.SortinoRatio),
		"max_drawdown_pct":           fmt.Sprintf("%.2f%%", m.MaxDrawdown*100),
		"max_drawdown_duration_days": m.MaxDrawdownDuration,
		"win_rate_pct":               fmt.Sprintf("%.1f%%", m.WinRate*100),
		"profit_factor":              fmt.Sprintf("%.2f", m.ProfitFactor),
		"total_trades":               m.TotalTrades,
		"winning_trades":             m.WinningTrades,
		"losing_trades":              m.LosingTrades,
		"avg_win_pct":                fmt.Sprintf("%.2f%%", m.AvgWin*100),
		"avg_loss_pct":               fmt.Sprintf("%.2f%%", m.AvgLoss*100),
		"best_trade_pct":             fmt.Sprintf("%.2f%%", m.BestTrade*100),
		"worst_trade_pct":            fmt.Sprintf("%.2f%%", m.WorstTrade*100),
		"avg_holding_days":           fmt.Sprintf("%.1f", m.AvgHoldingPeriod),
		"annual_volatility_pct":      fmt.Sprintf("%.2f%%", m.Volatility*100),
		"calmar_ratio":               fmt.Sprintf("%.2f", m.CalmarRatio),
	}
}

// Summary returns a human-readable performance block.
func (m Metrics) Summary() string {
	return fmt.Sprintf(`
Performance Summary
==================
Total Return:     %8.2f%%
Annual Return:    %8.2f%%
Sharpe Ratio:     %8.2f
Sortino Ratio:    %8.2f
Max Drawdown:     %8.2f%%
Win Rate:         %8.1f%%
Profit Factor:    %8.2f
Total Trades:     %8d
`,
		m.TotalReturn*100,
		m.AnnualizedReturn*100,
		m.SharpeRatio,
		m.SortinoRatio,
		m.MaxDrawdown*100,
		m.WinRate*100,
		m.ProfitFactor,
		m.TotalTrades,
	)
}
