package models

import "time"

// Candle represents a single daily price bar.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// Closes extracts the close prices from a candle series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Fundamentals is a flat map of fundamental metrics for one instrument.
// Any key may be absent; consumers must treat a missing key as "metric
// unavailable", never as zero.
type Fundamentals map[string]float64

// Fundamentals keys as delivered by the data provider. Sector/industry
// strings travel separately since the map is numeric.
const (
	FundPERatio        = "pe_ratio"
	FundForwardPE      = "forward_pe"
	FundPEGRatio       = "peg_ratio"
	FundProfitMargin   = "profit_margin"
	FundRevenueGrowth  = "revenue_growth"
	FundEarningsGrowth = "earnings_growth"
	FundDebtToEquity   = "debt_to_equity"
	FundCurrentRatio   = "current_ratio"
	Fund52WeekHigh     = "52_week_high"
	Fund52WeekLow      = "52_week_low"
	Fund50DayAvg       = "50_day_avg"
	Fund200DayAvg      = "200_day_avg"
)

// Get returns the metric and whether it is present.
func (f Fundamentals) Get(key string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	v, ok := f[key]
	return v, ok
}
