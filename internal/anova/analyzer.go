package anova

import (
	"context"
	"fmt"

	domain "anovalab/domain/anova"
	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal"
	"anovalab/internal/stats"

	"golang.org/x/sync/errgroup"
)

// Analyzer runs the engine over several measures of the same dataset. Each
// measure is analysed independently: a failure is recorded on that measure's
// outcome and the others still run.
type Analyzer struct {
	engine      *Engine
	concurrency int
	logger      *internal.Logger
}

// NewAnalyzer creates an analyzer running at most concurrency measures at once
func NewAnalyzer(engine *Engine, concurrency int, logger *internal.Logger) *Analyzer {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Analyzer{engine: engine, concurrency: concurrency, logger: logger.With("anova")}
}

// AnalyzeAll analyses the given measures, or all four when none are given.
// Outcomes come back in the order the measures were requested. The returned
// error is only set for an empty dataset or a cancelled context.
func (a *Analyzer) AnalyzeAll(ctx context.Context, observations []experiment.Observation, measures ...experiment.Measure) ([]domain.MeasureOutcome, error) {
	if len(observations) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if len(measures) == 0 {
		measures = experiment.AllMeasures()
	}

	outcomes := make([]domain.MeasureOutcome, len(measures))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, m := range measures {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = a.AnalyzeMeasure(observations, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	return outcomes, nil
}

// AnalyzeMeasure partitions the observations for one measure, summarises the
// cells and computes the ANOVA table
func (a *Analyzer) AnalyzeMeasure(observations []experiment.Observation, measure experiment.Measure) domain.MeasureOutcome {
	outcome := domain.MeasureOutcome{Measure: measure}

	cells, err := Partition(observations, measure)
	if err != nil {
		outcome.Err = err
		a.logger.Error("%s: %v", measure.Key(), err)
		return outcome
	}

	for _, cell := range experiment.CellOrder {
		summary, err := stats.Summarize(cells.Group(cell))
		if err != nil {
			continue
		}
		outcome.Cells = append(outcome.Cells, domain.CellSummary{
			Cell:   cell.Code(),
			Label:  cell.Label(),
			N:      summary.N,
			Mean:   summary.Mean,
			StdDev: summary.StdDev,
			Min:    summary.Min,
			Median: summary.Median,
			Max:    summary.Max,
		})
	}

	result, err := a.engine.Compute(cells)
	if err != nil {
		outcome.Err = fmt.Errorf("%s: %w", measure.Key(), err)
		a.logger.Error("%v", outcome.Err)
		return outcome
	}
	for _, w := range result.Warnings {
		a.logger.Warn("%s: %s", measure.Key(), w)
	}
	a.logger.Debug("%s: n=%d N=%d F=(%.3f, %.3f, %.3f)", measure.Key(), result.CellSize, result.TotalN,
		result.Filter.F, result.Tutorial.F, result.Interaction.F)

	outcome.Result = &result
	return outcome
}
