package excel

import (
	"fmt"
	"io"
	"math"
	"os"

	"anovalab/domain/anova"

	"github.com/xuri/excelize/v2"
)

var tableHeader = []interface{}{"Source", "SS", "DF", "MS", "F", "p"}

// ExportRun writes one worksheet per measure (ANOVA table, then cell
// summaries) plus a summary sheet describing the run
func ExportRun(run *anova.Run, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Run"); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Run", run.ID.String()},
		{"Source", run.Source},
		{"Fingerprint", run.Fingerprint.String()},
		{"Observations", run.Observations},
		{"Created", run.CreatedAt.String()},
	}
	if err := writeRows(f, "Run", 1, summary); err != nil {
		return err
	}

	for _, outcome := range run.Outcomes {
		sheet := outcome.Measure.Key()
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := writeOutcome(f, sheet, outcome); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveRun writes the workbook to a file
func SaveRun(run *anova.Run, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ExportRun(run, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeOutcome(f *excelize.File, sheet string, outcome anova.MeasureOutcome) error {
	rows := [][]interface{}{{outcome.Measure.Title()}}

	if outcome.Err != nil {
		rows = append(rows, []interface{}{"Error", outcome.Err.Error()})
	}
	if r := outcome.Result; r != nil {
		rows = append(rows, []interface{}{}, tableHeader)
		for _, e := range r.Effects() {
			rows = append(rows, []interface{}{e.Name, cellValue(e.SS), e.DF, cellValue(e.MS), cellValue(e.F), cellValue(e.P)})
		}
		rows = append(rows,
			[]interface{}{"Error", cellValue(r.Error.SS), r.Error.DF, cellValue(r.Error.MS)},
			[]interface{}{"Total", cellValue(r.Total.SS), r.Total.DF},
		)
		for _, warning := range r.Warnings {
			rows = append(rows, []interface{}{"Warning", warning})
		}
	}
	if len(outcome.Cells) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Cell", "Condition", "N", "Mean", "StdDev", "Min", "Median", "Max"})
		for _, c := range outcome.Cells {
			rows = append(rows, []interface{}{c.Cell, c.Label, c.N, cellValue(c.Mean), cellValue(c.StdDev), cellValue(c.Min), cellValue(c.Median), cellValue(c.Max)})
		}
	}
	return writeRows(f, sheet, 1, rows)
}

func writeRows(f *excelize.File, sheet string, start int, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// cellValue keeps non-finite numbers readable; spreadsheets have no NaN
func cellValue(v float64) interface{} {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return v
	}
}
