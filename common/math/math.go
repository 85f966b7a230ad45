package math

import (
	"math"
)

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// SampleStandardDeviation standard deviation is a statistic that
// measures the dispersion of a dataset relative to its mean and
// is calculated as the square root of the variance
func SampleStandardDeviation(vals []float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	mean := ArithmeticAverage(vals)
	var combined float64
	for i := range vals {
		combined += math.Pow(vals[i]-mean, 2)
	}
	avg := combined / (float64(len(vals)) - 1)
	return math.Sqrt(avg)
}

// CalculateSharpeRatio returns the annualised sharpe ratio of a set of
// per-interval returns against a per-interval risk-free rate. Zero variance
// or fewer than two returns yields zero rather than a division fault
func CalculateSharpeRatio(movementPerInterval []float64, riskFreeRate, intervalsPerYear float64) float64 {
	if len(movementPerInterval) <= 1 || intervalsPerYear <= 0 {
		return 0
	}
	excessReturns := make([]float64, len(movementPerInterval))
	for i := range movementPerInterval {
		excessReturns[i] = movementPerInterval[i] - riskFreeRate
	}
	standardDeviation := SampleStandardDeviation(excessReturns)
	if standardDeviation == 0 {
		return 0
	}
	return ArithmeticAverage(excessReturns) / standardDeviation * math.Sqrt(intervalsPerYear)
}

// CalculateCompoundAnnualGrowthRate calculates CAGR as a fraction.
// Using years, intervals per year would be 1 and number of intervals would
// be the number of years. Using days, intervals per year would be 365 and
// number of intervals would be the number of days
func CalculateCompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals float64) float64 {
	if openValue <= 0 || closeValue < 0 || intervalsPerYear <= 0 || numberOfIntervals <= 0 {
		return 0
	}
	return math.Pow(closeValue/openValue, intervalsPerYear/numberOfIntervals) - 1
}

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}
