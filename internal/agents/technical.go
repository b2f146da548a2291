package agents

import (
	"fmt"
	"math"

	"github.com/quantcrew/quantcrew/internal/calculate"
	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

const technicalMinCandles = 50

// TechnicalAnalyst scores an instrument from price-based indicators: RSI,
// MACD, Bollinger bands, moving-average crossovers and volume.
type TechnicalAnalyst struct {
	base
}

func NewTechnicalAnalyst(weight float64, store storage.Store) *TechnicalAnalyst {
	return &TechnicalAnalyst{base: newBase("technical_analyst", weight, store)}
}

func (a *TechnicalAnalyst) Analyze(symbol string, candles []models.Candle, _ models.Fundamentals) models.Signal {
	if len(candles) < technicalMinCandles {
		return a.neutral(symbol, "insufficient data for analysis")
	}

	closes := models.Closes(candles)
	price := closes[len(closes)-1]

	rsi := calculate.RSI(closes, 14)
	rsiSignal := interpretRSI(rsi)

	macd, signalLine, histogram := calculate.MACD(closes, 12, 26, 9)
	macdSignal := interpretMACD(macd, signalLine, histogram)

	upper, middle, lower := calculate.Bollinger(closes, 20, 2)
	bbSignal := interpretBollinger(price, upper, middle, lower)

	sma20 := calculate.SMA(closes, 20)
	sma50 := calculate.SMA(closes, 50)
	maSignal := interpretMACrossover(price, sma20, sma50)

	volSignal := analyzeVolume(candles)

	finalValue := rsiSignal*0.25 + macdSignal*0.25 + bbSignal*0.2 + maSignal*0.2 + volSignal*0.1
	confidence := technicalConfidence([]float64{rsiSignal, macdSignal, bbSignal, maSignal})

	reasoning := map[string]string{
		"rsi":          fmt.Sprintf("%.1f -> %.2f", rsi, rsiSignal),
		"macd":         fmt.Sprintf("histogram=%.4f -> %.2f", histogram, macdSignal),
		"bollinger":    fmt.Sprintf("%.2f", bbSignal),
		"ma_crossover": fmt.Sprintf("price vs SMA20/50 -> %.2f", maSignal),
		"volume":       fmt.Sprintf("%.2f", volSignal),
		"final":        fmt.Sprintf("%.2f", finalValue),
	}

	return a.emit(models.NewSignal(symbol, finalValue, confidence, a.name, reasoning))
}

// interpretRSI maps extreme oscillator readings to strong opposite signals
// and interior readings to a small linear bias away from the midpoint.
func interpretRSI(rsi float64) float64 {
	switch {
	case rsi >= 80:
		return -0.8
	case rsi >= 70:
		return -0.4
	case rsi <= 20:
		return 0.8
	case rsi <= 30:
		return 0.4
	default:
		return (50 - rsi) / 100
	}
}

// interpretMACD scales the histogram by a fixed multiplier and hard-clamps
// the result to [-0.6, 0.6].
func interpretMACD(macd, signalLine, histogram float64) float64 {
	if histogram > 0 {
		if macd > signalLine {
			return math.Min(0.6, histogram*10)
		}
		return 0.2
	}
	if macd < signalLine {
		return math.Max(-0.6, histogram*10)
	}
	return -0.2
}

// interpretBollinger returns a fixed strong signal outside the band and a
// linearly scaled one inside it. A zero-width band reads as neutral.
func interpretBollinger(price, upper, middle, lower float64) float64 {
	bandWidth := upper - lower
	if bandWidth == 0 {
		return 0.0
	}

	position := (price - middle) / (bandWidth / 2)

	switch {
	case price <= lower:
		return 0.6
	case price >= upper:
		return -0.6
	default:
		return -position * 0.4
	}
}

func interpretMACrossover(price, sma20, sma50 float64) float64 {
	signal := 0.0

	if price > sma20 {
		signal += 0.3
	} else {
		signal -= 0.3
	}

	if sma20 > sma50 {
		signal += 0.4
	} else {
		signal -= 0.4
	}

	return models.Clamp(signal, -1.0, 1.0)
}

func analyzeVolume(candles []models.Candle) float64 {
	volumes := make([]float64, len(candles))
	hasVolume := false
	for i, c := range candles {
		volumes[i] = float64(c.Volume)
		if c.Volume > 0 {
			hasVolume = true
		}
	}
	if !hasVolume {
		return 0.0
	}

	recentVol := calculate.Mean(volumes[len(volumes)-5:])
	avgVol := calculate.Mean(volumes[len(volumes)-20:])
	if avgVol == 0 {
		return 0.0
	}

	volRatio := recentVol / avgVol

	closes := models.Closes(candles)
	ref := closes[len(closes)-5]
	priceChange := 0.0
	if ref != 0 {
		priceChange = (closes[len(closes)-1] - ref) / ref
	}

	switch {
	case volRatio > 1.5: // heavy volume confirms the price move
		if priceChange > 0 {
			return 0.3
		}
		return -0.3
	case volRatio < 0.5: // thin volume, low conviction
		return 0.0
	default:
		return priceChange * 0.2
	}
}

// technicalConfidence blends directional agreement across indicators with
// their average strength.
func technicalConfidence(signals []float64) float64 {
	positive, negative := 0, 0
	var strength float64
	for _, s := range signals {
		if s > 0.1 {
			positive++
		}
		if s < -0.1 {
			negative++
		}
		strength += math.Abs(s)
	}

	agreement := float64(max(positive, negative)) / float64(len(signals))
	avgStrength := strength / float64(len(signals))

	return math.Min(1.0, agreement*0.6+avgStrength*0.4)
}
