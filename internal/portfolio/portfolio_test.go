package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestBuy(t *testing.T) {
	t.Run("opens a position and debits cash", func(t *testing.T) {
		ledger := NewLedger(10000)

		require.True(t, ledger.Buy("AAPL", 10, 150, testDate))

		assert.InDelta(t, 8500, ledger.Cash(), 1e-9)
		pos := ledger.Position("AAPL")
		require.NotNil(t, pos)
		assert.Equal(t, 10.0, pos.Quantity)
		assert.Equal(t, 150.0, pos.AvgCost)
		assert.Equal(t, testDate, pos.EntryDate)
	})

	t.Run("blends average cost on adds", func(t *testing.T) {
		ledger := NewLedger(10000)
		entry := testDate
		later := testDate.AddDate(0, 0, 7)

		require.True(t, ledger.Buy("AAPL", 10, 100, entry))
		require.True(t, ledger.Buy("AAPL", 10, 200, later))

		pos := ledger.Position("AAPL")
		require.NotNil(t, pos)
		assert.Equal(t, 20.0, pos.Quantity)
		assert.InDelta(t, 150, pos.AvgCost, 1e-9)
		assert.Equal(t, entry, pos.EntryDate, "entry date survives adds")
	})

	t.Run("rejects insufficient cash without mutation", func(t *testing.T) {
		ledger := NewLedger(1000)

		assert.False(t, ledger.Buy("AAPL", 100, 150, testDate))
		assert.Equal(t, 1000.0, ledger.Cash())
		assert.Nil(t, ledger.Position("AAPL"))
	})

	t.Run("rejects invalid quantity and price", func(t *testing.T) {
		ledger := NewLedger(10000)

		assert.False(t, ledger.Buy("AAPL", 0, 150, testDate))
		assert.False(t, ledger.Buy("AAPL", -5, 150, testDate))
		assert.False(t, ledger.Buy("AAPL", 10, 0, testDate))
		assert.Equal(t, 10000.0, ledger.Cash())
	})
}

func TestSell(t *testing.T) {
	t.Run("partial sale keeps the position", func(t *testing.T) {
		ledger := NewLedger(10000)
		require.True(t, ledger.Buy("AAPL", 10, 100, testDate))

		require.True(t, ledger.Sell("AAPL", 4, 120))

		assert.InDelta(t, 9000+4*120, ledger.Cash(), 1e-9)
		pos := ledger.Position("AAPL")
		require.NotNil(t, pos)
		assert.Equal(t, 6.0, pos.Quantity)
		assert.Equal(t, 100.0, pos.AvgCost, "average cost untouched by sales")
	})

	t.Run("full sale removes the position", func(t *testing.T) {
		ledger := NewLedger(10000)
		require.True(t, ledger.Buy("AAPL", 10, 100, testDate))

		require.True(t, ledger.Sell("AAPL", 10, 120))

		assert.Nil(t, ledger.Position("AAPL"))
		assert.Equal(t, 0.0, ledger.Quantity("AAPL"))
	})

	t.Run("rejects selling with no position", func(t *testing.T) {
		ledger := NewLedger(10000)

		assert.False(t, ledger.Sell("AAPL", 1, 100))
		assert.Equal(t, 10000.0, ledger.Cash())
	})

	t.Run("rejects selling more than held without mutation", func(t *testing.T) {
		ledger := NewLedger(10000)
		require.True(t, ledger.Buy("AAPL", 5, 100, testDate))

		assert.False(t, ledger.Sell("AAPL", 6, 100))
		assert.Equal(t, 5.0, ledger.Quantity("AAPL"))
		assert.InDelta(t, 9500, ledger.Cash(), 1e-9)
	})
}

func TestValuationInvariant(t *testing.T) {
	ledger := NewLedger(50000)

	require.True(t, ledger.Buy("AAPL", 50, 150, testDate))
	require.True(t, ledger.Buy("MSFT", 20, 300, testDate))
	require.True(t, ledger.Sell("AAPL", 10, 160))
	ledger.UpdatePrices(map[string]float64{"AAPL": 170, "MSFT": 290})

	assert.InDelta(t, ledger.Cash()+ledger.PositionsValue(), ledger.TotalValue(), 1e-9)

	// Mark-to-market only moves the positions leg, never cash.
	cashBefore := ledger.Cash()
	ledger.UpdatePrices(map[string]float64{"AAPL": 10})
	assert.Equal(t, cashBefore, ledger.Cash())
}

func TestUnrealizedPnL(t *testing.T) {
	ledger := NewLedger(10000)
	require.True(t, ledger.Buy("AAPL", 10, 100, testDate))

	ledger.UpdatePrices(map[string]float64{"AAPL": 110})

	pos := ledger.Position("AAPL")
	require.NotNil(t, pos)
	assert.InDelta(t, 100, pos.UnrealizedPnL(), 1e-9)
	assert.InDelta(t, 10, pos.UnrealizedPnLPct(), 1e-9)
}

func TestSummarize(t *testing.T) {
	ledger := NewLedger(10000)
	require.True(t, ledger.Buy("AAPL", 10, 100, testDate))
	ledger.UpdatePrices(map[string]float64{"AAPL": 120})

	summary := ledger.Summarize()

	assert.InDelta(t, 9000, summary.Cash, 1e-9)
	assert.InDelta(t, 1200, summary.PositionsValue, 1e-9)
	assert.InDelta(t, 10200, summary.TotalValue, 1e-9)
	assert.InDelta(t, 200, summary.TotalPnL, 1e-9)
	assert.InDelta(t, 2, summary.TotalPnLPct, 1e-9)
	require.Len(t, summary.Positions, 1)
	assert.Equal(t, "AAPL", summary.Positions[0].Symbol)
}
