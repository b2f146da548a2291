package calculate

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		period   int
		expected float64
	}{
		{
			name:     "insufficient data returns neutral",
			prices:   []float64{100, 101},
			period:   14,
			expected: 50.0,
		},
		{
			name:     "all gains returns 100",
			prices:   []float64{100, 101, 102, 103, 104, 105},
			period:   5,
			expected: 100.0,
		},
		{
			name:   "equal gains and losses returns 50",
			prices: []float64{100, 101, 100, 101, 100},
			period: 4,
			// avgGain == avgLoss so RS = 1 and RSI = 50
			expected: 50.0,
		},
		{
			name:     "flat series reads neutral",
			prices:   []float64{100, 100, 100, 100, 100, 100},
			period:   5,
			expected: 50.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.prices, tt.period)
			if !almostEqual(got, tt.expected) {
				t.Errorf("RSI() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestEMASeries(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := EMASeries(nil, 10); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("seeded with first value", func(t *testing.T) {
		series := EMASeries([]float64{10, 12, 14}, 3)
		if !almostEqual(series[0], 10) {
			t.Errorf("series[0] = %v, expected 10", series[0])
		}
		// multiplier = 2/(3+1) = 0.5
		if !almostEqual(series[1], 11) {
			t.Errorf("series[1] = %v, expected 11", series[1])
		}
		if !almostEqual(series[2], 12.5) {
			t.Errorf("series[2] = %v, expected 12.5", series[2])
		}
	})

	t.Run("constant prices stay constant", func(t *testing.T) {
		series := EMASeries([]float64{50, 50, 50, 50}, 2)
		for i, v := range series {
			if !almostEqual(v, 50) {
				t.Errorf("series[%d] = %v, expected 50", i, v)
			}
		}
	})
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		period   int
		expected float64
	}{
		{"insufficient data", []float64{1, 2}, 5, 0},
		{"zero period", []float64{1, 2, 3}, 0, 0},
		{"exact window", []float64{1, 2, 3, 4}, 4, 2.5},
		{"trailing window", []float64{100, 1, 2, 3}, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SMA(tt.prices, tt.period); !almostEqual(got, tt.expected) {
				t.Errorf("SMA() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestMACD(t *testing.T) {
	t.Run("insufficient data returns zeros", func(t *testing.T) {
		macd, signal, hist := MACD([]float64{1, 2, 3}, 12, 26, 9)
		if macd != 0 || signal != 0 || hist != 0 {
			t.Errorf("expected zeros, got %v %v %v", macd, signal, hist)
		}
	})

	t.Run("flat series gives zero lines", func(t *testing.T) {
		prices := make([]float64, 60)
		for i := range prices {
			prices[i] = 100
		}
		macd, signal, hist := MACD(prices, 12, 26, 9)
		if !almostEqual(macd, 0) || !almostEqual(signal, 0) || !almostEqual(hist, 0) {
			t.Errorf("expected flat MACD, got %v %v %v", macd, signal, hist)
		}
	})

	t.Run("rising series gives positive macd line", func(t *testing.T) {
		prices := make([]float64, 60)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}
		macd, _, _ := MACD(prices, 12, 26, 9)
		if macd <= 0 {
			t.Errorf("expected positive MACD on uptrend, got %v", macd)
		}
	})
}

func TestBollinger(t *testing.T) {
	t.Run("insufficient data collapses to last price", func(t *testing.T) {
		upper, middle, lower := Bollinger([]float64{100, 101}, 20, 2)
		if upper != 101 || middle != 101 || lower != 101 {
			t.Errorf("expected collapsed bands at 101, got %v %v %v", upper, middle, lower)
		}
	})

	t.Run("flat series gives zero width band", func(t *testing.T) {
		prices := make([]float64, 30)
		for i := range prices {
			prices[i] = 100
		}
		upper, middle, lower := Bollinger(prices, 20, 2)
		if !almostEqual(upper, 100) || !almostEqual(middle, 100) || !almostEqual(lower, 100) {
			t.Errorf("expected zero-width band at 100, got %v %v %v", upper, middle, lower)
		}
	})

	t.Run("bands are symmetric around the middle", func(t *testing.T) {
		prices := []float64{98, 99, 100, 101, 102}
		upper, middle, lower := Bollinger(prices, 5, 2)
		if !almostEqual(upper-middle, middle-lower) {
			t.Errorf("bands not symmetric: upper=%v middle=%v lower=%v", upper, middle, lower)
		}
		if upper <= middle {
			t.Errorf("expected upper above middle, got %v <= %v", upper, middle)
		}
	})
}

func TestReturns(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		if got := Returns([]float64{100}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("basic returns", func(t *testing.T) {
		got := Returns([]float64{100, 110, 99})
		if len(got) != 2 {
			t.Fatalf("expected 2 returns, got %d", len(got))
		}
		if !almostEqual(got[0], 0.1) {
			t.Errorf("got[0] = %v, expected 0.1", got[0])
		}
		if !almostEqual(got[1], -0.1) {
			t.Errorf("got[1] = %v, expected -0.1", got[1])
		}
	})

	t.Run("zero previous price yields zero return", func(t *testing.T) {
		got := Returns([]float64{0, 50})
		if len(got) != 1 || got[0] != 0 {
			t.Errorf("expected [0], got %v", got)
		}
	})
}

func TestStdDev(t *testing.T) {
	t.Run("fewer than two values", func(t *testing.T) {
		if got := StdDev([]float64{5}); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("sample deviation", func(t *testing.T) {
		// variance of {2,4,4,4,5,5,7,9} with n-1 is 32/7
		got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		if !almostEqual(got, math.Sqrt(32.0/7.0)) {
			t.Errorf("StdDev() = %v, expected %v", got, math.Sqrt(32.0/7.0))
		}
	})

	t.Run("population deviation", func(t *testing.T) {
		// variance of {2,4,4,4,5,5,7,9} with n is 4
		got := PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		if !almostEqual(got, 2) {
			t.Errorf("PopStdDev() = %v, expected 2", got)
		}
	})

	t.Run("population never exceeds sample", func(t *testing.T) {
		values := []float64{1, 3, 8, 2, 5}
		if PopStdDev(values) > StdDev(values) {
			t.Error("population deviation should not exceed sample deviation")
		}
	})
}
