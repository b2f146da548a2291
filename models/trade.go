package models

import "time"

// TradeRecord is one executed trade in a backtest's trade log.
type TradeRecord struct {
	Date        time.Time
	Symbol      string
	Action      TradeAction
	Quantity    float64
	Price       float64
	SignalValue float64
	PnLPct      float64 // realized fractional P&L, sells only
	HoldingDays int     // calendar days since position entry, sells only
}

// EquityPoint is one valuation of the portfolio on a trading date.
type EquityPoint struct {
	Date  time.Time
	Value float64
}
