package agents

import (
	"fmt"

	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

// FundamentalAnalyst scores an instrument from valuation, profitability,
// growth and balance-sheet metrics. A missing metric is excluded from the
// average rather than treated as zero.
type FundamentalAnalyst struct {
	base
}

func NewFundamentalAnalyst(weight float64, store storage.Store) *FundamentalAnalyst {
	return &FundamentalAnalyst{base: newBase("fundamental_analyst", weight, store)}
}

func (a *FundamentalAnalyst) Analyze(symbol string, _ []models.Candle, fundamentals models.Fundamentals) models.Signal {
	if len(fundamentals) == 0 {
		return a.neutral(symbol, "no fundamentals available")
	}

	valuation := analyzeValuation(fundamentals)
	profitability := analyzeProfitability(fundamentals)
	growth := analyzeGrowth(fundamentals)
	health := analyzeFinancialHealth(fundamentals)
	priceVsAvg := analyzePriceVsAverage(fundamentals)

	subSignals := []float64{valuation, profitability, growth, health, priceVsAvg}

	finalValue := valuation*0.25 + profitability*0.20 + growth*0.25 + health*0.15 + priceVsAvg*0.15
	confidence := fundamentalConfidence(fundamentals, subSignals)

	reasoning := map[string]string{
		"valuation":        fmt.Sprintf("%.2f", valuation),
		"profitability":    fmt.Sprintf("%.2f", profitability),
		"growth":           fmt.Sprintf("%.2f", growth),
		"financial_health": fmt.Sprintf("%.2f", health),
		"price_vs_average": fmt.Sprintf("%.2f", priceVsAvg),
	}
	if pe, ok := fundamentals.Get(models.FundPERatio); ok {
		reasoning["pe_ratio"] = fmt.Sprintf("%.2f", pe)
	}
	if growth, ok := fundamentals.Get(models.FundRevenueGrowth); ok {
		reasoning["revenue_growth"] = fmt.Sprintf("%.3f", growth)
	}

	return a.emit(models.NewSignal(symbol, finalValue, confidence, a.name, reasoning))
}

func analyzeValuation(f models.Fundamentals) float64 {
	signal := 0.0
	count := 0

	pe, hasPE := f.Get(models.FundPERatio)
	if hasPE {
		switch {
		case pe < 0:
			signal -= 0.3 // negative earnings
		case pe < 15:
			signal += 0.5
		case pe < 25:
			signal += 0.1
		case pe < 40:
			signal -= 0.2
		default:
			signal -= 0.5
		}
		count++
	}

	// Growth bonus only when both trailing and forward P/E are present and
	// the forward multiple is lower.
	if forwardPE, ok := f.Get(models.FundForwardPE); ok && forwardPE > 0 {
		if hasPE && pe > 0 && forwardPE < pe {
			signal += 0.2
		}
		count++
	}

	if peg, ok := f.Get(models.FundPEGRatio); ok {
		switch {
		case peg < 1:
			signal += 0.4
		case peg < 2:
			signal += 0.1
		default:
			signal -= 0.3
		}
		count++
	}

	return signal / float64(max(count, 1))
}

func analyzeProfitability(f models.Fundamentals) float64 {
	signal := 0.0
	count := 0

	if margin, ok := f.Get(models.FundProfitMargin); ok {
		switch {
		case margin > 0.20:
			signal += 0.5
		case margin > 0.10:
			signal += 0.2
		case margin > 0:
			signal -= 0.1
		default:
			signal -= 0.4
		}
		count++
	}

	return signal / float64(max(count, 1))
}

func analyzeGrowth(f models.Fundamentals) float64 {
	signal := 0.0
	count := 0

	if revGrowth, ok := f.Get(models.FundRevenueGrowth); ok {
		switch {
		case revGrowth > 0.25:
			signal += 0.6
		case revGrowth > 0.10:
			signal += 0.3
		case revGrowth > 0:
			signal += 0.1
		default:
			signal -= 0.3
		}
		count++
	}

	if earnGrowth, ok := f.Get(models.FundEarningsGrowth); ok {
		switch {
		case earnGrowth > 0.25:
			signal += 0.5
		case earnGrowth > 0.10:
			signal += 0.2
		case earnGrowth > 0:
			signal += 0.1
		default:
			signal -= 0.3
		}
		count++
	}

	return signal / float64(max(count, 1))
}

func analyzeFinancialHealth(f models.Fundamentals) float64 {
	signal := 0.0
	count := 0

	if dte, ok := f.Get(models.FundDebtToEquity); ok {
		switch {
		case dte < 0.5:
			signal += 0.4
		case dte < 1.0:
			signal += 0.1
		case dte < 2.0:
			signal -= 0.2
		default:
			signal -= 0.5
		}
		count++
	}

	if current, ok := f.Get(models.FundCurrentRatio); ok {
		switch {
		case current > 2.0:
			signal += 0.3
		case current > 1.0:
			signal += 0.1
		default:
			signal -= 0.4
		}
		count++
	}

	return signal / float64(max(count, 1))
}

func analyzePriceVsAverage(f models.Fundamentals) float64 {
	signal := 0.0

	high52, hasHigh := f.Get(models.Fund52WeekHigh)
	low52, hasLow := f.Get(models.Fund52WeekLow)
	avg50, hasAvg50 := f.Get(models.Fund50DayAvg)
	avg200, hasAvg200 := f.Get(models.Fund200DayAvg)

	if hasHigh && hasLow && hasAvg50 {
		range52 := high52 - low52
		if range52 > 0 {
			// Near the 52-week low reads as value, near the high as stretched.
			position := (avg50 - low52) / range52
			signal += (0.5 - position) * 0.4
		}
	}

	if hasAvg50 && hasAvg200 {
		if avg50 > avg200 {
			signal += 0.2
		} else {
			signal -= 0.2
		}
	}

	return models.Clamp(signal, -1.0, 1.0)
}

// fundamentalConfidence reflects how much of the key data was available and
// how tightly the sub-signals cluster.
func fundamentalConfidence(f models.Fundamentals, subSignals []float64) float64 {
	keyMetrics := []string{
		models.FundPERatio,
		models.FundRevenueGrowth,
		models.FundProfitMargin,
		models.FundDebtToEquity,
	}

	available := 0
	for _, key := range keyMetrics {
		if _, ok := f.Get(key); ok {
			available++
		}
	}
	dataConfidence := float64(available) / float64(len(keyMetrics))

	agreement := 0.5
	if len(subSignals) > 0 {
		lowest, highest := subSignals[0], subSignals[0]
		for _, v := range subSignals[1:] {
			if v < lowest {
				lowest = v
			}
			if v > highest {
				highest = v
			}
		}
		agreement = 1 - (highest-lowest)/2
	}

	return dataConfidence*0.6 + agreement*0.4
}
