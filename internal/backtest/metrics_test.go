package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantcrew/quantcrew/models"
)

func realizedTrade(pnlPct float64, holdingDays int) models.TradeRecord {
	return models.TradeRecord{
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Symbol:      "AAPL",
		Action:      models.ActionSell,
		Quantity:    10,
		Price:       100,
		PnLPct:      pnlPct,
		HoldingDays: holdingDays,
	}
}

func TestComputeMetricsZeroSeries(t *testing.T) {
	returns := make([]float64, 100)

	m := ComputeMetrics(returns, nil, 0.04, 252)

	assert.Equal(t, 0.0, m.TotalReturn)
	assert.Equal(t, 0.0, m.AnnualizedReturn)
	assert.Equal(t, 0.0, m.Volatility)
	assert.Equal(t, 0.0, m.SharpeRatio, "zero volatility must not divide")
	assert.Equal(t, 0.0, m.SortinoRatio)
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 0, m.MaxDrawdownDuration)
	assert.Equal(t, 0, m.TotalTrades)
}

func TestComputeMetricsReturns(t *testing.T) {
	t.Run("total return compounds", func(t *testing.T) {
		m := ComputeMetrics([]float64{0.1, 0.1}, nil, 0, 252)
		assert.InDelta(t, 0.21, m.TotalReturn, 1e-9)
	})

	t.Run("annualization uses the trading day count", func(t *testing.T) {
		m := ComputeMetrics([]float64{0.01}, nil, 0, 252)
		assert.InDelta(t, math.Pow(1.01, 252)-1, m.AnnualizedReturn, 1e-9)
	})

	t.Run("losses produce a drawdown", func(t *testing.T) {
		m := ComputeMetrics([]float64{0.2, -0.1, -0.1, 0.05}, nil, 0, 252)

		// Peak 1.2, trough 1.2*0.9*0.9 = 0.972.
		assert.InDelta(t, (1.2-0.972)/1.2, m.MaxDrawdown, 1e-9)
		assert.Equal(t, 3, m.MaxDrawdownDuration, "still below peak after the bounce")
	})
}

func TestComputeMetricsTrades(t *testing.T) {
	t.Run("statistics cover realized trades only", func(t *testing.T) {
		trades := []models.TradeRecord{
			{Action: models.ActionBuy, Symbol: "AAPL"},
			realizedTrade(0.10, 10),
			realizedTrade(-0.05, 5),
		}

		m := ComputeMetrics(nil, trades, 0.04, 252)

		assert.Equal(t, 3, m.TotalTrades, "buys count toward activity")
		assert.Equal(t, 1, m.WinningTrades)
		assert.Equal(t, 1, m.LosingTrades)
		assert.InDelta(t, 0.5, m.WinRate, 1e-9)
		assert.InDelta(t, 0.10, m.AvgWin, 1e-9)
		assert.InDelta(t, -0.05, m.AvgLoss, 1e-9)
		assert.InDelta(t, 2.0, m.ProfitFactor, 1e-9)
		assert.InDelta(t, 7.5, m.AvgHoldingPeriod, 1e-9)
		assert.InDelta(t, 0.10, m.BestTrade, 1e-9)
		assert.InDelta(t, -0.05, m.WorstTrade, 1e-9)
	})

	t.Run("no losing trades gives infinite profit factor", func(t *testing.T) {
		m := ComputeMetrics(nil, []models.TradeRecord{realizedTrade(0.10, 3)}, 0.04, 252)
		assert.True(t, math.IsInf(m.ProfitFactor, 1))
		assert.Equal(t, 1.0, m.WinRate)
	})

	t.Run("buys alone leave trade statistics empty", func(t *testing.T) {
		m := ComputeMetrics(nil, []models.TradeRecord{{Action: models.ActionBuy}}, 0.04, 252)
		assert.Equal(t, 1, m.TotalTrades)
		assert.Equal(t, 0, m.WinningTrades)
		assert.Equal(t, 0.0, m.WinRate)
	})
}

func TestMetricsToMap(t *testing.T) {
	m := ComputeMetrics([]float64{0.1}, nil, 0.04, 252)
	out := m.ToMap()

	assert.Equal(t, "10.00%", out["total_return_pct"])
	assert.Contains(t, out, "sharpe_ratio")
	assert.Contains(t, out, "max_drawdown_pct")
}

func TestMetricsSummary(t *testing.T) {
	m := ComputeMetrics([]float64{0.05, -0.02}, []models.TradeRecord{realizedTrade(0.1, 4)}, 0.04, 252)
	text := m.Summary()

	assert.Contains(t, text, "Performance Summary")
	assert.Contains(t, text, "Sharpe Ratio")
}
