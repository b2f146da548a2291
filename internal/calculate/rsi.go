package calculate

// RSI computes the relative strength index over the last period price
// changes using simple rolling averages of gains and losses.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50.0 // Neutral reading if not enough data
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0 // Flat series reads neutral
		}
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
