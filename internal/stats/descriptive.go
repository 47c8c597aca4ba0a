// Package stats holds the numeric primitives the ANOVA engine is built from.
package stats

import (
	"anovalab/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of values. An empty sequence has no mean
// and yields core.ErrEmptyInput.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, core.ErrEmptyInput
	}
	return stat.Mean(values, nil), nil
}

// SumOfSquaredDeviations returns Σ(x - mean)². Empty input yields 0.
func SumOfSquaredDeviations(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss
}

// Summary describes a sample for display next to the ANOVA table
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	Max    float64
}

// Summarize computes count, mean, sample standard deviation, min, median and
// max. StdDev is 0 for a single value.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, core.ErrEmptyInput
	}
	data := stats.Float64Data(values)

	mean, err := Mean(values)
	if err != nil {
		return Summary{}, err
	}
	var sd float64
	if len(values) > 1 {
		if sd, err = data.StandardDeviationSample(); err != nil {
			return Summary{}, err
		}
	}
	min, err := data.Min()
	if err != nil {
		return Summary{}, err
	}
	median, err := data.Median()
	if err != nil {
		return Summary{}, err
	}
	max, err := data.Max()
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		N:      len(values),
		Mean:   mean,
		StdDev: sd,
		Min:    min,
		Median: median,
		Max:    max,
	}, nil
}
