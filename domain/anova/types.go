package anova

import (
	"fmt"
	"math"

	"anovalab/domain/core"
	"anovalab/domain/experiment"
)

// Effect is one tested source of variation: a main effect or the interaction
type Effect struct {
	Name   string  `json:"name"`
	SS     float64 `json:"ss"`
	DF     int     `json:"df"`
	MS     float64 `json:"ms"`
	F      float64 `json:"f"`
	P      float64 `json:"p"`
	ExactP float64 `json:"exact_p"`
}

// Residual is the within-cell (error) term
type Residual struct {
	SS float64 `json:"ss"`
	DF int     `json:"df"`
	MS float64 `json:"ms"`
}

// Total is the overall variation around the grand mean
type Total struct {
	SS float64 `json:"ss"`
	DF int     `json:"df"`
}

// CellMeans holds the mean of each factor combination, keyed by filter/tutorial code
type CellMeans struct {
	TT float64 `json:"TT"`
	TF float64 `json:"TF"`
	FT float64 `json:"FT"`
	FF float64 `json:"FF"`
}

// Of returns the mean for one cell
func (m CellMeans) Of(c experiment.Cell) float64 {
	switch c.Code() {
	case "TT":
		return m.TT
	case "TF":
		return m.TF
	case "FT":
		return m.FT
	default:
		return m.FF
	}
}

// MarginalMeans holds the mean of each factor level across the other factor
type MarginalMeans struct {
	FilterOn    float64 `json:"filter_on"`
	FilterOff   float64 `json:"filter_off"`
	TutorialOn  float64 `json:"tutorial_on"`
	TutorialOff float64 `json:"tutorial_off"`
}

// Result is the full two-way decomposition for one measure. It is built once
// by the engine and passed around by value.
type Result struct {
	Measure     experiment.Measure `json:"measure"`
	Filter      Effect             `json:"filter"`
	Tutorial    Effect             `json:"tutorial"`
	Interaction Effect             `json:"interaction"`
	Error       Residual           `json:"error"`
	Total       Total              `json:"total"`

	CellMeans     CellMeans     `json:"cell_means"`
	MarginalMeans MarginalMeans `json:"marginal_means"`
	GrandMean     float64       `json:"grand_mean"`
	CellSize      int           `json:"cell_size"`
	TotalN        int           `json:"total_n"`
	Balanced      bool          `json:"balanced"`
	HasExactP     bool          `json:"has_exact_p"`
	Warnings      []string      `json:"warnings,omitempty"`
}

// Effects returns filter, tutorial and interaction in report order
func (r Result) Effects() []Effect {
	return []Effect{r.Filter, r.Tutorial, r.Interaction}
}

// Degenerate reports whether the error term cannot support F tests
func (r Result) Degenerate() bool {
	return r.Error.DF <= 0 || !(r.Error.MS > 0) || math.IsInf(r.Error.MS, 0)
}

// Significant reports whether an effect's p-value is below alpha. Non-finite
// p-values are never significant.
func Significant(e Effect, alpha float64) bool {
	return !math.IsNaN(e.P) && e.P < alpha
}

// Check verifies the additive identities of the decomposition: sums of squares
// within a relative tolerance, degrees of freedom exactly.
func (r Result) Check(tolerance float64) error {
	dfSum := r.Filter.DF + r.Tutorial.DF + r.Interaction.DF + r.Error.DF
	if dfSum != r.Total.DF {
		return fmt.Errorf("degrees of freedom do not add up: %d != %d", dfSum, r.Total.DF)
	}
	ssSum := r.Filter.SS + r.Tutorial.SS + r.Interaction.SS + r.Error.SS
	scale := math.Max(1, math.Abs(r.Total.SS))
	if math.Abs(ssSum-r.Total.SS) > tolerance*scale {
		return fmt.Errorf("sums of squares do not add up: %g != %g", ssSum, r.Total.SS)
	}
	return nil
}

// CellSummary describes the values of one factor cell
type CellSummary struct {
	Cell   string  `json:"cell"`
	Label  string  `json:"label"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// MeasureOutcome is the analysis of one measure. Err is set instead of Result
// when that measure could not be analysed.
type MeasureOutcome struct {
	Measure experiment.Measure `json:"measure"`
	Result  *Result            `json:"result,omitempty"`
	Cells   []CellSummary      `json:"cells,omitempty"`
	Err     error              `json:"-"`
}

// Run is one pass of the analysis over a dataset
type Run struct {
	ID           core.RunID       `json:"id"`
	Source       string           `json:"source"`
	Fingerprint  core.Hash        `json:"fingerprint"`
	Observations int              `json:"observations"`
	CreatedAt    core.Timestamp   `json:"created_at"`
	Outcomes     []MeasureOutcome `json:"outcomes"`
}

// Failed returns the outcomes that carry an error
func (r *Run) Failed() []MeasureOutcome {
	var failed []MeasureOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
