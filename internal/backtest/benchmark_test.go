package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareToBenchmarkInsufficientData(t *testing.T) {
	short := make([]float64, 29)

	_, err := CompareToBenchmark(short, short, 0.04, 252)

	assert.ErrorIs(t, err, ErrInsufficientData)

	// Unequal lengths truncate first, then the minimum applies.
	long := make([]float64, 100)
	_, err = CompareToBenchmark(long, short, 0.04, 252)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCompareToBenchmarkIdenticalSeries(t *testing.T) {
	returns := make([]float64, 60)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.005
		}
	}

	cmp, err := CompareToBenchmark(returns, returns, 0.04, 252)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cmp.Beta, 1e-9)
	assert.InDelta(t, 0.0, cmp.TrackingError, 1e-9)
	assert.InDelta(t, 0.0, cmp.Outperformance, 1e-9)
	assert.InDelta(t, 1.0, cmp.UpCapture, 1e-9)
	assert.InDelta(t, 1.0, cmp.DownCapture, 1e-9)
}

func TestCompareToBenchmarkLeveredSeries(t *testing.T) {
	bench := make([]float64, 60)
	strat := make([]float64, 60)
	for i := range bench {
		if i%2 == 0 {
			bench[i] = 0.01
		} else {
			bench[i] = -0.01
		}
		strat[i] = bench[i] * 2
	}

	cmp, err := CompareToBenchmark(strat, bench, 0.0, 252)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, cmp.Beta, 1e-9)
	assert.InDelta(t, 2.0, cmp.UpCapture, 1e-9)
	assert.InDelta(t, 2.0, cmp.DownCapture, 1e-9)
	assert.Greater(t, cmp.TrackingError, 0.0)
}

func TestCompareToBenchmarkFlatBenchmark(t *testing.T) {
	bench := make([]float64, 40)
	strat := make([]float64, 40)
	for i := range strat {
		strat[i] = 0.001
	}

	cmp, err := CompareToBenchmark(strat, bench, 0.0, 252)
	require.NoError(t, err)

	assert.Equal(t, 0.0, cmp.Beta, "zero benchmark variance must not divide")
	assert.Equal(t, 0.0, cmp.UpCapture)
	assert.Equal(t, 0.0, cmp.DownCapture)
	assert.Greater(t, cmp.Outperformance, 0.0)
}
