package calculate

// MACD computes the MACD line, signal line and histogram for the latest
// price. The signal line is an EMA of the MACD series itself.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram float64) {
	if len(prices) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	fast := EMASeries(prices, fastPeriod)
	slow := EMASeries(prices, slowPeriod)

	macdSeries := make([]float64, len(prices))
	for i := range prices {
		macdSeries[i] = fast[i] - slow[i]
	}

	signalSeries := EMASeries(macdSeries, signalPeriod)

	macd = macdSeries[len(macdSeries)-1]
	signal = signalSeries[len(signalSeries)-1]
	histogram = macd - signal
	return macd, signal, histogram
}
