package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantcrew/quantcrew/models"
)

func TestPredictiveAnalystInsufficientData(t *testing.T) {
	a := NewPredictiveAnalyst(1.0, 60, nil)

	sig := a.Analyze("AAPL", flatCandles(30, 100, 1000), nil)

	assert.Equal(t, 0.0, sig.Value)
	assert.Equal(t, 0.1, sig.Confidence)
	assert.Contains(t, sig.Reasoning, "error")
}

func TestPredictiveAnalystFlatSeries(t *testing.T) {
	a := NewPredictiveAnalyst(1.0, 60, nil)

	sig := a.Analyze("AAPL", flatCandles(60, 100, 1000), nil)

	assert.Equal(t, 0.0, sig.Value)
	assert.Equal(t, models.Hold, sig.Type)
	// Base confidence with zero momentum.
	assert.InDelta(t, 0.3, sig.Confidence, 1e-9)
}

func TestPredictiveAnalystTrend(t *testing.T) {
	a := NewPredictiveAnalyst(1.0, 60, nil)

	t.Run("uptrend reads positive", func(t *testing.T) {
		candles := generateCandles(60, func(i int) models.Candle {
			return models.Candle{Close: 100 + float64(i), Volume: 1000}
		})

		sig := a.Analyze("AAPL", candles, nil)

		assert.Greater(t, sig.Value, 0.0)
		assert.Greater(t, sig.Confidence, 0.3)
		assert.Equal(t, "statistical", sig.Reasoning["method"])
	})

	t.Run("downtrend reads negative", func(t *testing.T) {
		candles := generateCandles(60, func(i int) models.Candle {
			return models.Candle{Close: 200 - float64(i), Volume: 1000}
		})

		sig := a.Analyze("AAPL", candles, nil)

		assert.Less(t, sig.Value, 0.0)
	})

	t.Run("stretched spike pulls toward reversion", func(t *testing.T) {
		candles := generateCandles(60, func(i int) models.Candle {
			price := 100.0
			if i == 59 {
				price = 150 // one-day vertical move far above the mean
			}
			return models.Candle{Close: price, Volume: 1000}
		})

		spike := a.Analyze("AAPL", candles, nil)

		trend := (50.0/100 + 50.0/100) / 2
		sma := (19*100.0 + 150) / 20
		reversion := -((150 - sma) / sma) * 0.5

		expected := models.Clamp((trend*0.6+reversion*0.4)*5, -1, 1)
		assert.InDelta(t, expected, spike.Value, 1e-9)
		assert.LessOrEqual(t, spike.Value, 1.0)
	})

	t.Run("confidence capped", func(t *testing.T) {
		candles := generateCandles(60, func(i int) models.Candle {
			return models.Candle{Close: 100 * float64(i+1), Volume: 1000}
		})

		sig := a.Analyze("AAPL", candles, nil)

		assert.LessOrEqual(t, sig.Confidence, 0.6)
	})
}
