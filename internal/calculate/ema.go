package calculate

// EMASeries computes the exponential moving average for every index of
// prices, seeded with the first price.
func EMASeries(prices []float64, period int) []float64 {
	if len(prices) == 0 {
		return nil
	}

	multiplier := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = (prices[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// EMA returns the latest exponential moving average value.
func EMA(prices []float64, period int) float64 {
	series := EMASeries(prices, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
