// Package anova computes the balanced 2×2 fixed-effects analysis of variance
// for the filter × tutorial design.
package anova

import (
	"fmt"
	"math"

	domain "anovalab/domain/anova"
	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal/stats"
)

// roundoff is the relative size below which the residual sum of squares is
// treated as exactly zero
const roundoff = 1e-12

// Options tunes the engine
type Options struct {
	// RequireBalanced rejects designs whose cells differ in size instead of
	// computing with n taken from the (T,T) cell
	RequireBalanced bool
	// ExactP adds the F-distribution tail probability next to the approximate p
	ExactP bool
}

// Engine computes two-way ANOVA tables. It holds no mutable state and may be
// shared between goroutines.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Compute decomposes the variation of one measure into filter, tutorial,
// interaction and error terms.
//
// The sums-of-squares formulas assume every cell holds n values, with n read
// from the (T,T) cell. Unequal cells are flagged on the result (Balanced=false)
// or rejected when RequireBalanced is set. A zero error mean square yields
// non-finite F ratios, which are returned as is.
func (e *Engine) Compute(cells *experiment.Cells) (domain.Result, error) {
	var means [4]float64
	for i, cell := range experiment.CellOrder {
		m, err := stats.Mean(cells.Group(cell))
		if err != nil {
			return domain.Result{}, fmt.Errorf("%w: %s (%s) has no observations", core.ErrEmptyCell, cell.Code(), cell.Label())
		}
		means[i] = m
	}
	meanTT, meanTF, meanFT, meanFF := means[0], means[1], means[2], means[3]

	var warnings []string
	balanced := cells.Balanced()
	if !balanced {
		if e.opts.RequireBalanced {
			return domain.Result{}, core.NewUnbalancedDesignError(cells.Sizes())
		}
		warnings = append(warnings, fmt.Sprintf("unbalanced cells %v: sums of squares assume n=%d per cell and are not valid", cells.Sizes(), cells.Size(experiment.CellOrder[0])))
	}

	tt, tf, ft, ff := experiment.CellOrder[0], experiment.CellOrder[1], experiment.CellOrder[2], experiment.CellOrder[3]
	filterYes := cells.Concat(tt, tf)
	filterNo := cells.Concat(ft, ff)
	tutorialYes := cells.Concat(tt, ft)
	tutorialNo := cells.Concat(tf, ff)

	meanFilterYes, _ := stats.Mean(filterYes)
	meanFilterNo, _ := stats.Mean(filterNo)
	meanTutorialYes, _ := stats.Mean(tutorialYes)
	meanTutorialNo, _ := stats.Mean(tutorialNo)

	all := make([]float64, 0, len(filterYes)+len(filterNo))
	all = append(all, filterYes...)
	all = append(all, filterNo...)
	grandMean, _ := stats.Mean(all)

	n := float64(cells.Size(tt))
	totalN := len(all)

	filterSS := 2 * n * (sq(meanFilterYes-grandMean) + sq(meanFilterNo-grandMean))
	tutorialSS := 2 * n * (sq(meanTutorialYes-grandMean) + sq(meanTutorialNo-grandMean))
	interactionSS := n * (sq(meanTT-meanFilterYes-meanTutorialYes+grandMean) +
		sq(meanTF-meanFilterYes-meanTutorialNo+grandMean) +
		sq(meanFT-meanFilterNo-meanTutorialYes+grandMean) +
		sq(meanFF-meanFilterNo-meanTutorialNo+grandMean))

	totalSS := stats.SumOfSquaredDeviations(all, grandMean)
	errorSS := totalSS - filterSS - tutorialSS - interactionSS
	if math.Abs(errorSS) <= roundoff*totalSS {
		errorSS = 0
	}

	const effectDF = 1
	errorDF := totalN - 4
	totalDF := totalN - 1

	errorMS := errorSS / float64(errorDF)
	if errorDF <= 0 {
		warnings = append(warnings, fmt.Sprintf("%d observations leave no degrees of freedom for error; F ratios are undefined", totalN))
	} else if errorSS == 0 {
		warnings = append(warnings, "no within-cell variation; F ratios are not finite")
	} else if errorSS < 0 {
		warnings = append(warnings, fmt.Sprintf("residual sum of squares is negative (%g); the design does not decompose", errorSS))
	}

	effect := func(name string, ss float64) domain.Effect {
		ms := ss / effectDF
		f := ms / errorMS
		exact := math.NaN()
		if e.opts.ExactP {
			exact = stats.ExactPValue(f, effectDF, errorDF)
		}
		return domain.Effect{
			Name:   name,
			SS:     ss,
			DF:     effectDF,
			MS:     ms,
			F:      f,
			P:      stats.ApproximatePValue(f, effectDF, errorDF),
			ExactP: exact,
		}
	}

	return domain.Result{
		Measure:     cells.Measure,
		Filter:      effect("Filter", filterSS),
		Tutorial:    effect("Tutorial", tutorialSS),
		Interaction: effect("Interaction", interactionSS),
		Error:       domain.Residual{SS: errorSS, DF: errorDF, MS: errorMS},
		Total:       domain.Total{SS: totalSS, DF: totalDF},
		CellMeans:   domain.CellMeans{TT: meanTT, TF: meanTF, FT: meanFT, FF: meanFF},
		MarginalMeans: domain.MarginalMeans{
			FilterOn:    meanFilterYes,
			FilterOff:   meanFilterNo,
			TutorialOn:  meanTutorialYes,
			TutorialOff: meanTutorialNo,
		},
		GrandMean: grandMean,
		CellSize:  cells.Size(tt),
		TotalN:    totalN,
		Balanced:  balanced,
		HasExactP: e.opts.ExactP,
		Warnings:  warnings,
	}, nil
}

// ComputeTwoWay runs Compute with default options
func ComputeTwoWay(cells *experiment.Cells) (domain.Result, error) {
	return NewEngine(Options{}).Compute(cells)
}

func sq(x float64) float64 { return x * x }
