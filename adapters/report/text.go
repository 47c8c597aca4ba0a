package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"anovalab/domain/anova"
)

const (
	tableRule = "--------------------------------------------------------------------------"
	meansRule = "----------------------------------"
)

// TextRenderer writes the fixed-column console report
type TextRenderer struct {
	opts Options
}

// NewTextRenderer creates a console renderer
func NewTextRenderer(opts Options) *TextRenderer {
	return &TextRenderer{opts: opts}
}

// RenderRun writes group means and the ANOVA table for every measure
func (r *TextRenderer) RenderRun(w io.Writer, run *anova.Run) error {
	bw := bufio.NewWriter(w)
	for _, outcome := range run.Outcomes {
		title := outcome.Measure.Title()
		if len(outcome.Cells) > 0 {
			writeGroupMeans(bw, title, outcome.Cells)
		}
		if outcome.Err != nil {
			fmt.Fprintf(bw, "Analysis failed for %s: %v\n\n", title, outcome.Err)
			continue
		}
		if outcome.Result != nil {
			r.writeTable(bw, *outcome.Result, title)
		}
	}
	return bw.Flush()
}

// WriteResult renders one result under a human-readable measure label
func (r *TextRenderer) WriteResult(w io.Writer, result anova.Result, label string) error {
	bw := bufio.NewWriter(w)
	r.writeTable(bw, result, label)
	return bw.Flush()
}

func (r *TextRenderer) writeTable(w io.Writer, result anova.Result, label string) {
	alpha := r.opts.alpha()

	fmt.Fprintf(w, "Two-way ANOVA Results for %s:\n", label)
	fmt.Fprintln(w, tableRule)
	header := fmt.Sprintf("%-12s %12s %4s %12s %10s %10s", "Source", "SS", "DF", "MS", "F", "p-value")
	if result.HasExactP {
		header += fmt.Sprintf(" %10s", "exact p")
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, tableRule)

	for _, e := range result.Effects() {
		line := fmt.Sprintf("%-12s %12s %4d %12s %10s %10s", e.Name, Number(e.SS), e.DF, Number(e.MS), Number(e.F), Number(e.P))
		if result.HasExactP {
			line += fmt.Sprintf(" %10s", Number(e.ExactP))
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%-12s %12s %4d %12s %10s %10s\n", "Error", Number(result.Error.SS), result.Error.DF, Number(result.Error.MS), "-", "-")
	fmt.Fprintf(w, "%-12s %12s %4d %12s %10s %10s\n", "Total", Number(result.Total.SS), result.Total.DF, "-", "-", "-")
	fmt.Fprintln(w, tableRule)

	fmt.Fprintln(w, "Significance test:")
	for _, e := range result.Effects() {
		fmt.Fprintf(w, "- %s: %s\n", effectTitle(e), Verdict(e, alpha))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	fmt.Fprintln(w)
}

func writeGroupMeans(w io.Writer, title string, cells []anova.CellSummary) {
	fmt.Fprintf(w, "Group Means for %s:\n", title)
	fmt.Fprintln(w, meansRule)
	// control first, as the study protocol lists the conditions
	for i := len(cells) - 1; i >= 0; i-- {
		c := cells[i]
		line := fmt.Sprintf("%s: %s sec", c.Label, formatFixed(c.Mean, 2))
		if c.N > 1 {
			line += fmt.Sprintf(" (sd %s, n=%d)", formatFixed(c.StdDev, 2), c.N)
		} else {
			line += fmt.Sprintf(" (n=%d)", c.N)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, meansRule)
	fmt.Fprintln(w)
}

// Banner is the program heading
func Banner() string {
	title := "Two-Way ANOVA Analysis Program"
	return title + "\n" + strings.Repeat("=", len(title)) + "\n"
}
