package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantcrew/quantcrew/models"
)

func generateCandles(n int, build func(i int) models.Candle) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := build(i)
		c.Date = start.AddDate(0, 0, i)
		candles[i] = c
	}
	return candles
}

func flatCandles(n int, price float64, volume int64) []models.Candle {
	return generateCandles(n, func(i int) models.Candle {
		return models.Candle{Open: price, High: price, Low: price, Close: price, Volume: volume}
	})
}

func TestTechnicalAnalystInsufficientData(t *testing.T) {
	a := NewTechnicalAnalyst(1.0, nil)

	sig := a.Analyze("AAPL", flatCandles(10, 100, 1000), nil)

	assert.Equal(t, 0.0, sig.Value)
	assert.Equal(t, 0.1, sig.Confidence)
	assert.Contains(t, sig.Reasoning, "error")
}

func TestTechnicalAnalystFlatSeries(t *testing.T) {
	a := NewTechnicalAnalyst(1.0, nil)

	sig := a.Analyze("AAPL", flatCandles(60, 100, 1000), nil)

	// Zero-width bands and a neutral oscillator must not blow up; the only
	// residual bias comes from the crossover and MACD tie-break readings.
	assert.Equal(t, models.Hold, sig.Type)
	assert.GreaterOrEqual(t, sig.Value, -0.2)
	assert.LessOrEqual(t, sig.Value, 0.0)
}

func TestInterpretRSI(t *testing.T) {
	tests := []struct {
		name     string
		rsi      float64
		expected float64
	}{
		{"deeply overbought", 85, -0.8},
		{"overbought", 75, -0.4},
		{"deeply oversold", 15, 0.8},
		{"oversold", 25, 0.4},
		{"midpoint", 50, 0.0},
		{"mild bullish bias", 40, 0.1},
		{"mild bearish bias", 60, -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, interpretRSI(tt.rsi), 1e-9)
		})
	}
}

func TestInterpretMACD(t *testing.T) {
	tests := []struct {
		name       string
		macd       float64
		signalLine float64
		histogram  float64
		expected   float64
	}{
		{"bullish momentum scaled", 1.0, 0.95, 0.05, 0.5},
		{"bullish momentum capped", 1.0, 0.8, 0.2, 0.6},
		{"positive histogram without crossover", 0.5, 0.6, 0.1, 0.2},
		{"bearish momentum scaled", -1.0, -0.95, -0.05, -0.5},
		{"bearish momentum capped", -1.0, -0.8, -0.2, -0.6},
		{"flat lines read mildly bearish", 0, 0, 0, -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, interpretMACD(tt.macd, tt.signalLine, tt.histogram), 1e-9)
		})
	}
}

func TestInterpretBollinger(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		upper    float64
		middle   float64
		lower    float64
		expected float64
	}{
		{"zero width band is neutral", 100, 100, 100, 100, 0.0},
		{"below lower band", 89, 110, 100, 90, 0.6},
		{"above upper band", 111, 110, 100, 90, -0.6},
		{"at the middle", 100, 110, 100, 90, 0.0},
		{"above middle leans bearish", 105, 110, 100, 90, -0.2},
		{"below middle leans bullish", 95, 110, 100, 90, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, interpretBollinger(tt.price, tt.upper, tt.middle, tt.lower), 1e-9)
		})
	}
}

func TestInterpretMACrossover(t *testing.T) {
	assert.InDelta(t, 0.7, interpretMACrossover(105, 100, 95), 1e-9)
	assert.InDelta(t, -0.7, interpretMACrossover(90, 95, 100), 1e-9)
	assert.InDelta(t, 0.1, interpretMACrossover(99, 100, 95), 1e-9)
	assert.InDelta(t, -0.1, interpretMACrossover(101, 100, 105), 1e-9)
}

func TestAnalyzeVolume(t *testing.T) {
	t.Run("no volume data is neutral", func(t *testing.T) {
		assert.Equal(t, 0.0, analyzeVolume(flatCandles(30, 100, 0)))
	})

	t.Run("heavy volume confirms a rally", func(t *testing.T) {
		candles := generateCandles(30, func(i int) models.Candle {
			vol := int64(1000)
			if i >= 25 {
				vol = 5000
			}
			return models.Candle{Close: 100 + float64(i), Volume: vol}
		})
		assert.Equal(t, 0.3, analyzeVolume(candles))
	})

	t.Run("heavy volume confirms a selloff", func(t *testing.T) {
		candles := generateCandles(30, func(i int) models.Candle {
			vol := int64(1000)
			if i >= 25 {
				vol = 5000
			}
			return models.Candle{Close: 200 - float64(i), Volume: vol}
		})
		assert.Equal(t, -0.3, analyzeVolume(candles))
	})
}

func TestTechnicalConfidence(t *testing.T) {
	t.Run("full agreement with strong signals", func(t *testing.T) {
		got := technicalConfidence([]float64{0.5, 0.5, 0.5, 0.5})
		assert.InDelta(t, 0.6+0.5*0.4, got, 1e-9)
	})

	t.Run("split indicators score lower", func(t *testing.T) {
		split := technicalConfidence([]float64{0.5, 0.5, -0.5, -0.5})
		aligned := technicalConfidence([]float64{0.5, 0.5, 0.5, 0.5})
		assert.Less(t, split, aligned)
	})

	t.Run("capped at one", func(t *testing.T) {
		assert.LessOrEqual(t, technicalConfidence([]float64{1, 1, 1, 1}), 1.0)
	})
}
