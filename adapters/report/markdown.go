package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"anovalab/domain/anova"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownRenderer writes the report as GitHub-style markdown tables
type MarkdownRenderer struct {
	opts Options
}

func (r *MarkdownRenderer) RenderRun(w io.Writer, run *anova.Run) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Two-Way ANOVA: %s\n\n", run.Source)
	fmt.Fprintf(&buf, "%d observations", run.Observations)
	if !run.Fingerprint.IsEmpty() {
		fmt.Fprintf(&buf, ", dataset `%s`", run.Fingerprint.Short())
	}
	buf.WriteString("\n\n")

	alpha := r.opts.alpha()
	for _, outcome := range run.Outcomes {
		fmt.Fprintf(&buf, "## %s\n\n", outcome.Measure.Title())

		if len(outcome.Cells) > 0 {
			buf.WriteString("| Condition | N | Mean (sec) | SD | Median |\n")
			buf.WriteString("|---|---:|---:|---:|---:|\n")
			for i := len(outcome.Cells) - 1; i >= 0; i-- {
				c := outcome.Cells[i]
				fmt.Fprintf(&buf, "| %s | %d | %s | %s | %s |\n", c.Label, c.N,
					formatFixed(c.Mean, 2), formatFixed(c.StdDev, 2), formatFixed(c.Median, 2))
			}
			buf.WriteString("\n")
		}

		if outcome.Err != nil {
			fmt.Fprintf(&buf, "**Analysis failed:** %v\n\n", outcome.Err)
			continue
		}
		res := outcome.Result
		if res == nil {
			continue
		}

		buf.WriteString("| Source | SS | DF | MS | F | p |\n")
		buf.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, e := range res.Effects() {
			fmt.Fprintf(&buf, "| %s | %s | %d | %s | %s | %s |\n", e.Name, Number(e.SS), e.DF, Number(e.MS), Number(e.F), Number(e.P))
		}
		fmt.Fprintf(&buf, "| Error | %s | %d | %s | - | - |\n", Number(res.Error.SS), res.Error.DF, Number(res.Error.MS))
		fmt.Fprintf(&buf, "| Total | %s | %d | - | - | - |\n\n", Number(res.Total.SS), res.Total.DF)

		for _, e := range res.Effects() {
			fmt.Fprintf(&buf, "- %s: %s\n", effectTitle(e), Verdict(e, alpha))
		}
		for _, warning := range res.Warnings {
			fmt.Fprintf(&buf, "- _Warning: %s_\n", warning)
		}
		buf.WriteString("\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// HTMLRenderer converts the markdown report to an HTML fragment
type HTMLRenderer struct {
	markdown MarkdownRenderer
}

func (r *HTMLRenderer) RenderRun(w io.Writer, run *anova.Run) error {
	var md bytes.Buffer
	if err := r.markdown.RenderRun(&md, run); err != nil {
		return err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	_, err := w.Write(markdown.ToHTML(md.Bytes(), p, renderer))
	return err
}

// JSONRenderer writes the run record as indented JSON
type JSONRenderer struct{}

func (JSONRenderer) RenderRun(w io.Writer, run *anova.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
