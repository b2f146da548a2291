package backtest

import (
	"errors"
	"math"

	"github.com/quantcrew/quantcrew/internal/calculate"
)

// ErrInsufficientData is returned when too few aligned observations exist
// for a statistically meaningful benchmark comparison.
var ErrInsufficientData = errors.New("insufficient aligned observations for benchmark comparison")

// minBenchmarkObservations is the minimum number of aligned daily returns
// required before beta/alpha are reported.
const minBenchmarkObservations = 30

// BenchmarkComparison holds benchmark-relative statistics for a strategy
// return series.
type BenchmarkComparison struct {
	Beta             float64
	AlphaAnnual      float64
	TrackingError    float64
	InformationRatio float64
	UpCapture        float64
	DownCapture      float64
	StrategyReturn   float64 // annualized
	BenchmarkReturn  float64 // annualized
	Outperformance   float64
}

// CompareToBenchmark computes benchmark-relative statistics from two
// date-aligned daily return series. Series of unequal length are truncated
// to the shorter one; fewer than 30 aligned observations yield
// ErrInsufficientData.
func CompareToBenchmark(strategyReturns, benchmarkReturns []float64, riskFreeRate float64, tradingDays int) (BenchmarkComparison, error) {
	n := min(len(strategyReturns), len(benchmarkReturns))
	if n < minBenchmarkObservations {
		return BenchmarkComparison{}, ErrInsufficientData
	}

	strat := strategyReturns[:n]
	bench := benchmarkReturns[:n]

	benchVariance := variance(bench)
	beta := 0.0
	if benchVariance > 0 {
		beta = covariance(strat, bench) / benchVariance
	}

	stratAnnual := annualize(strat, tradingDays)
	benchAnnual := annualize(bench, tradingDays)
	alpha := stratAnnual - (riskFreeRate + beta*(benchAnnual-riskFreeRate))

	diff := make([]float64, n)
	for i := range strat {
		diff[i] = strat[i] - bench[i]
	}
	trackingError := calculate.StdDev(diff) * math.Sqrt(float64(tradingDays))

	infoRatio := 0.0
	if trackingError > 0 {
		infoRatio = (stratAnnual - benchAnnual) / trackingError
	}

	var upStrat, upBench, downStrat, downBench []float64
	for i := range bench {
		if bench[i] > 0 {
			upStrat = append(upStrat, strat[i])
			upBench = append(upBench, bench[i])
		} else if bench[i] < 0 {
			downStrat = append(downStrat, strat[i])
			downBench = append(downBench, bench[i])
		}
	}

	upCapture := 0.0
	if len(upBench) > 0 && calculate.Mean(upBench) != 0 {
		upCapture = calculate.Mean(upStrat) / calculate.Mean(upBench)
	}
	downCapture := 0.0
	if len(downBench) > 0 && calculate.Mean(downBench) != 0 {
		downCapture = calculate.Mean(downStrat) / calculate.Mean(downBench)
	}

	return BenchmarkComparison{
		Beta:             beta,
		AlphaAnnual:      alpha,
		TrackingError:    trackingError,
		InformationRatio: infoRatio,
		UpCapture:        upCapture,
		DownCapture:      downCapture,
		StrategyReturn:   stratAnnual,
		BenchmarkReturn:  benchAnnual,
		Outperformance:   stratAnnual - benchAnnual,
	}, nil
}

func annualize(returns []float64, tradingDays int) float64 {
	compounded := 1.0
	for _, r := range returns {
		compounded *= 1 + r
	}
	return math.Pow(compounded, float64(tradingDays)/float64(len(returns))) - 1
}

func covariance(a, b []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	meanA := calculate.Mean(a)
	meanB := calculate.Mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(len(a)-1)
}

func variance(values []float64) float64 {
	sd := calculate.StdDev(values)
	return sd * sd
}
