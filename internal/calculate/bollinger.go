package calculate

import "math"

// Bollinger computes the upper, middle and lower Bollinger bands over the
// last period prices.
func Bollinger(prices []float64, period int, stdDevs float64) (upper, middle, lower float64) {
	if len(prices) < period {
		last := prices[len(prices)-1]
		return last, last, last
	}

	middle = SMA(prices, period)

	var variance float64
	for i := len(prices) - period; i < len(prices); i++ {
		diff := prices[i] - middle
		variance += diff * diff
	}
	// Sample deviation, matching a rolling window with one degree of freedom.
	sd := 0.0
	if period > 1 {
		sd = math.Sqrt(variance / float64(period-1))
	}

	upper = middle + sd*stdDevs
	lower = middle - sd*stdDevs
	return upper, middle, lower
}
