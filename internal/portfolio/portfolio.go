// Package portfolio implements the simulated ledger the backtest engine
// trades against: cash plus long positions with volume-weighted average
// cost. The ledger is not thread-safe; callers serialize access.
package portfolio

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// positionEpsilon is the residual quantity below which a position counts as
// fully closed.
const positionEpsilon = 0.0001

// Position is a single holding in the ledger.
type Position struct {
	Symbol       string
	Quantity     float64
	AvgCost      float64
	CurrentPrice float64
	EntryDate    time.Time // first open of this position, kept across adds
}

// MarketValue is the position's value at the last marked price.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// CostBasis is the total acquisition cost of the position.
func (p Position) CostBasis() float64 {
	return p.Quantity * p.AvgCost
}

// UnrealizedPnL is market value over cost basis.
func (p Position) UnrealizedPnL() float64 {
	return p.MarketValue() - p.CostBasis()
}

// UnrealizedPnLPct is the unrealized P&L as a percentage of cost basis.
func (p Position) UnrealizedPnLPct() float64 {
	basis := p.CostBasis()
	if basis == 0 {
		return 0
	}
	return p.UnrealizedPnL() / basis * 100
}

// Ledger holds cash and positions for one simulated run. The invariant
// cash + Σ position market value == TotalValue holds after every trade and
// price update.
type Ledger struct {
	cash         float64
	initialValue float64
	positions    map[string]*Position
	logger       zerolog.Logger
}

// NewLedger creates a ledger funded with initialCash.
func NewLedger(initialCash float64) *Ledger {
	return &Ledger{
		cash:         initialCash,
		initialValue: initialCash,
		positions:    map[string]*Position{},
		logger:       log.With().Str("component", "ledger").Logger(),
	}
}

// Buy executes a purchase. Returns false without mutating state when cash is
// insufficient. Average cost is recomputed as a weighted blend on adds.
func (l *Ledger) Buy(symbol string, quantity, price float64, date time.Time) bool {
	if quantity <= 0 || price <= 0 {
		return false
	}

	totalCost := quantity * price
	if totalCost > l.cash {
		l.logger.Warn().
			Str("symbol", symbol).
			Float64("needed", totalCost).
			Float64("cash", l.cash).
			Msg("buy rejected: insufficient cash")
		return false
	}

	l.cash -= totalCost

	if pos, ok := l.positions[symbol]; ok {
		totalQuantity := pos.Quantity + quantity
		totalBasis := pos.Quantity*pos.AvgCost + quantity*price
		pos.AvgCost = totalBasis / totalQuantity
		pos.Quantity = totalQuantity
		pos.CurrentPrice = price
	} else {
		l.positions[symbol] = &Position{
			Symbol:       symbol,
			Quantity:     quantity,
			AvgCost:      price,
			CurrentPrice: price,
			EntryDate:    date,
		}
	}

	l.logger.Debug().
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", price).
		Msg("buy executed")
	return true
}

// Sell executes a sale. Returns false without mutating state when the held
// quantity is insufficient. A position dropping below epsilon is removed.
func (l *Ledger) Sell(symbol string, quantity, price float64) bool {
	if quantity <= 0 || price <= 0 {
		return false
	}

	pos, ok := l.positions[symbol]
	if !ok {
		l.logger.Warn().Str("symbol", symbol).Msg("sell rejected: no position")
		return false
	}
	if quantity > pos.Quantity {
		l.logger.Warn().
			Str("symbol", symbol).
			Float64("held", pos.Quantity).
			Float64("requested", quantity).
			Msg("sell rejected: insufficient shares")
		return false
	}

	l.cash += quantity * price
	pos.Quantity -= quantity
	pos.CurrentPrice = price

	if pos.Quantity <= positionEpsilon {
		delete(l.positions, symbol)
	}

	l.logger.Debug().
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", price).
		Msg("sell executed")
	return true
}

// UpdatePrices marks held positions to the given closing prices.
func (l *Ledger) UpdatePrices(prices map[string]float64) {
	for symbol, price := range prices {
		if pos, ok := l.positions[symbol]; ok {
			pos.CurrentPrice = price
		}
	}
}

// Position returns the holding for symbol, or nil when flat.
func (l *Ledger) Position(symbol string) *Position {
	return l.positions[symbol]
}

// Quantity returns the held quantity for symbol, zero when flat.
func (l *Ledger) Quantity(symbol string) float64 {
	if pos, ok := l.positions[symbol]; ok {
		return pos.Quantity
	}
	return 0
}

// Cash returns the free cash balance.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// PositionsValue is the summed market value of all holdings.
func (l *Ledger) PositionsValue() float64 {
	var total float64
	for _, pos := range l.positions {
		total += pos.MarketValue()
	}
	return total
}

// TotalValue is cash plus position market value.
func (l *Ledger) TotalValue() float64 {
	return l.cash + l.PositionsValue()
}

// TotalPnL is the gain over the initial funding.
func (l *Ledger) TotalPnL() float64 {
	return l.TotalValue() - l.initialValue
}

// PositionSummary is one row of the ledger summary.
type PositionSummary struct {
	Symbol           string
	Quantity         float64
	AvgCost          float64
	CurrentPrice     float64
	MarketValue      float64
	UnrealizedPnL    float64
	UnrealizedPnLPct float64
}

// Summary reports the ledger state for reporting collaborators.
type Summary struct {
	Cash           float64
	PositionsValue float64
	TotalValue     float64
	InitialValue   float64
	TotalPnL       float64
	TotalPnLPct    float64
	Positions      []PositionSummary
}

// Summarize builds a point-in-time summary of the ledger.
func (l *Ledger) Summarize() Summary {
	positions := make([]PositionSummary, 0, len(l.positions))
	for _, pos := range l.positions {
		positions = append(positions, PositionSummary{
			Symbol:           pos.Symbol,
			Quantity:         pos.Quantity,
			AvgCost:          pos.AvgCost,
			CurrentPrice:     pos.CurrentPrice,
			MarketValue:      pos.MarketValue(),
			UnrealizedPnL:    pos.UnrealizedPnL(),
			UnrealizedPnLPct: pos.UnrealizedPnLPct(),
		})
	}

	pnlPct := 0.0
	if l.initialValue > 0 {
		pnlPct = l.TotalPnL() / l.initialValue * 100
	}

	return Summary{
		Cash:           l.cash,
		PositionsValue: l.PositionsValue(),
		TotalValue:     l.TotalValue(),
		InitialValue:   l.initialValue,
		TotalPnL:       l.TotalPnL(),
		TotalPnLPct:    pnlPct,
		Positions:      positions,
	}
}
