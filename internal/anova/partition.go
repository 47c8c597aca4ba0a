package anova

import (
	"anovalab/domain/core"
	"anovalab/domain/experiment"
)

// Partition routes every observation to its factor cell in a single pass,
// projecting out the selected measure. Order within a cell follows input order.
func Partition(observations []experiment.Observation, measure experiment.Measure) (*experiment.Cells, error) {
	if !measure.Valid() {
		return nil, core.NewUnknownMeasureError(measure.Key())
	}

	cells := experiment.NewCells(measure, len(observations)/len(experiment.CellOrder)+1)
	for _, o := range observations {
		cells.Add(o.Cell(), measure.Value(o))
	}
	return cells, nil
}
