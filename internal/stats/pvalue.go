package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ApproximatePValue maps an F statistic to a coarse tail probability:
//
//	p = 1 / (1 + F·sqrt(df1/df2))
//
// This is not the F-distribution upper tail. It is kept so results stay
// comparable with earlier reports of the same study; see ExactPValue for the
// real tail probability. p is 1 at F = 0 and strictly decreasing in F.
func ApproximatePValue(f float64, dfNumerator, dfDenominator int) float64 {
	return 1.0 / (1.0 + f*math.Sqrt(float64(dfNumerator)/float64(dfDenominator)))
}

// ExactPValue returns P(X >= f) for X ~ F(df1, df2). Non-finite or
// undefined inputs propagate as NaN rather than a made-up probability.
func ExactPValue(f float64, dfNumerator, dfDenominator int) float64 {
	switch {
	case dfNumerator <= 0 || dfDenominator <= 0 || math.IsNaN(f):
		return math.NaN()
	case math.IsInf(f, 1):
		return 0
	case f <= 0:
		return 1
	}
	dist := distuv.F{D1: float64(dfNumerator), D2: float64(dfDenominator)}
	return dist.Survival(f)
}
