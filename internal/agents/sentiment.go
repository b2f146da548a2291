package agents

import (
	"fmt"
	"math"

	"github.com/quantcrew/quantcrew/internal/calculate"
	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

const sentimentMinCandles = 10

// SentimentAnalyst reads crowd mood from price action: momentum streaks,
// up/down volume, volatility shifts and overnight gaps. Without an external
// news feed its confidence is capped at 0.8.
type SentimentAnalyst struct {
	base
}

func NewSentimentAnalyst(weight float64, store storage.Store) *SentimentAnalyst {
	return &SentimentAnalyst{base: newBase("sentiment_analyst", weight, store)}
}

func (a *SentimentAnalyst) Analyze(symbol string, candles []models.Candle, _ models.Fundamentals) models.Signal {
	if len(candles) < sentimentMinCandles {
		return a.neutral(symbol, "insufficient data")
	}

	momentum := analyzeMomentumSentiment(candles)
	volume := analyzeVolumeSentiment(candles)
	volatility := analyzeVolatilitySentiment(candles)
	gaps := analyzeGapSentiment(candles)

	finalValue := momentum*0.35 + volume*0.25 + volatility*0.20 + gaps*0.20
	confidence := sentimentConfidence(candles, []float64{momentum, volume, volatility, gaps})

	reasoning := map[string]string{
		"momentum":   fmt.Sprintf("%.2f", momentum),
		"volume":     fmt.Sprintf("%.2f", volume),
		"volatility": fmt.Sprintf("%.2f", volatility),
		"gaps":       fmt.Sprintf("%.2f", gaps),
		"note":       "sentiment based on price action, no news feed wired",
	}

	return a.emit(models.NewSignal(symbol, finalValue, confidence, a.name, reasoning))
}

func analyzeMomentumSentiment(candles []models.Candle) float64 {
	closes := models.Closes(candles)
	n := len(closes)

	shortRef := closes[n-5]
	shortReturn := 0.0
	if shortRef != 0 {
		shortReturn = (closes[n-1] - shortRef) / shortRef
	}

	medReturn := shortReturn
	if n >= 20 && closes[n-20] != 0 {
		medReturn = (closes[n-1] - closes[n-20]) / closes[n-20]
	}

	// Consecutive up/down days, most recent first.
	streak := 0
	limit := min(10, n)
	for i := 1; i < limit; i++ {
		if closes[n-i] > closes[n-i-1] {
			if streak >= 0 {
				streak++
			} else {
				break
			}
		} else {
			if streak <= 0 {
				streak--
			} else {
				break
			}
		}
	}

	signal := shortReturn*2 + medReturn + float64(streak)*0.1
	return models.Clamp(signal, -1.0, 1.0)
}

func analyzeVolumeSentiment(candles []models.Candle) float64 {
	n := len(candles)
	closes := models.Closes(candles)
	volumes := make([]float64, n)
	for i, c := range candles {
		volumes[i] = float64(c.Volume)
	}

	var upVol, downVol float64
	for i := n - 10; i < n; i++ {
		if i < 1 {
			continue
		}
		if closes[i] > closes[i-1] {
			upVol += volumes[i]
		} else {
			downVol += volumes[i]
		}
	}

	totalVol := upVol + downVol
	if totalVol == 0 {
		return 0.0
	}

	ratio := (upVol - downVol) / totalVol

	recentAvg := calculate.Mean(volumes[n-5:])
	olderAvg := recentAvg
	if n >= 20 {
		olderAvg = calculate.Mean(volumes[n-20 : n-5])
	}

	volTrend := 0.0
	if olderAvg > 0 {
		volChange := (recentAvg - olderAvg) / olderAvg
		// Rising volume amplifies whichever side is winning.
		if volChange > 0.2 && ratio > 0 {
			volTrend = 0.3
		} else if volChange > 0.2 && ratio < 0 {
			volTrend = -0.3
		}
	}

	return models.Clamp(ratio+volTrend, -1.0, 1.0)
}

func analyzeVolatilitySentiment(candles []models.Candle) float64 {
	returns := calculate.Returns(models.Closes(candles))
	if len(returns) < 10 {
		return 0.0
	}

	recentVol := calculate.StdDev(returns[len(returns)-10:])
	historicalVol := calculate.StdDev(returns)
	if historicalVol == 0 {
		return 0.0
	}

	volRatio := recentVol / historicalVol
	switch {
	case volRatio > 1.5:
		return -0.3 // elevated volatility reads as fear
	case volRatio < 0.7:
		return 0.2 // calm tape
	default:
		return 0.0
	}
}

func analyzeGapSentiment(candles []models.Candle) float64 {
	n := len(candles)
	weights := []float64{0.4, 0.3, 0.2, 0.1} // most recent gap weighted highest

	gapSignal := 0.0
	for i, w := range weights {
		idx := n - 1 - i
		prevIdx := n - 2 - i
		if prevIdx < 0 {
			continue
		}

		prevClose := candles[prevIdx].Close
		if prevClose == 0 {
			continue
		}
		gap := (candles[idx].Open - prevClose) / prevClose

		if math.Abs(gap) > 0.01 {
			gapSignal += gap * w * 10
		}
	}

	return models.Clamp(gapSignal, -1.0, 1.0)
}

// sentimentConfidence starts low without a news feed, earns credit for usable
// volume data and directional agreement, and is capped at 0.8.
func sentimentConfidence(candles []models.Candle, subSignals []float64) float64 {
	confidence := 0.4

	n := len(candles)
	var recentVolume float64
	for i := n - 10; i < n; i++ {
		if i >= 0 {
			recentVolume += float64(candles[i].Volume)
		}
	}
	if recentVolume > 0 {
		confidence += 0.2
	}

	allPositive, allNegative := true, true
	for _, v := range subSignals {
		if v < 0 {
			allPositive = false
		}
		if v > 0 {
			allNegative = false
		}
	}
	if allPositive || allNegative {
		confidence += 0.2
	}

	return math.Min(0.8, confidence)
}
