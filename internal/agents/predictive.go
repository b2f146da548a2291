package agents

import (
	"fmt"
	"math"

	"github.com/quantcrew/quantcrew/internal/calculate"
	"github.com/quantcrew/quantcrew/internal/storage"
	"github.com/quantcrew/quantcrew/models"
)

// PredictiveAnalyst forecasts near-term direction from a blend of trend
// following and mean reversion over a trailing lookback window.
type PredictiveAnalyst struct {
	base
	lookback int
}

func NewPredictiveAnalyst(weight float64, lookback int, store storage.Store) *PredictiveAnalyst {
	if lookback <= 0 {
		lookback = 60
	}
	return &PredictiveAnalyst{
		base:     newBase("predictive_analyst", weight, store),
		lookback: lookback,
	}
}

func (a *PredictiveAnalyst) Analyze(symbol string, candles []models.Candle, _ models.Fundamentals) models.Signal {
	if len(candles) < a.lookback {
		return a.neutral(symbol, fmt.Sprintf("need at least %d days of data", a.lookback))
	}

	closes := models.Closes(candles)
	n := len(closes)

	shortMomentum := 0.0
	if closes[n-5] != 0 {
		shortMomentum = (closes[n-1] - closes[n-5]) / closes[n-5]
	}
	medMomentum := 0.0
	if closes[n-20] != 0 {
		medMomentum = (closes[n-1] - closes[n-20]) / closes[n-20]
	}

	sma20 := calculate.SMA(closes, 20)
	deviation := 0.0
	if sma20 != 0 {
		deviation = (closes[n-1] - sma20) / sma20
	}

	trendSignal := (shortMomentum + medMomentum) / 2
	reversionSignal := -deviation * 0.5

	// 60/40 blend of trend following and mean reversion, scaled up since raw
	// daily returns are small.
	value := models.Clamp((trendSignal*0.6+reversionSignal*0.4)*5, -1.0, 1.0)
	confidence := math.Min(0.6, math.Abs(shortMomentum)*5+0.3)

	reasoning := map[string]string{
		"method":         "statistical",
		"short_momentum": fmt.Sprintf("%.4f", shortMomentum),
		"med_momentum":   fmt.Sprintf("%.4f", medMomentum),
		"mean_reversion": fmt.Sprintf("%.4f", reversionSignal),
	}

	return a.emit(models.NewSignal(symbol, value, confidence, a.name, reasoning))
}
