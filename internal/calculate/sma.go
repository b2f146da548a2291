package calculate

// SMA computes the simple moving average over the last period prices.
func SMA(prices []float64, period int) float64 {
	if len(prices) < period || period <= 0 {
		return 0
	}

	var sum float64
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}
