package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"anovalab/domain/anova"
	"anovalab/internal/config"
)

// DefaultAlpha is the significance threshold used when none is configured
const DefaultAlpha = 0.05

// Options controls rendering
type Options struct {
	Alpha float64
}

func (o Options) alpha() float64 {
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return DefaultAlpha
	}
	return o.Alpha
}

// Renderer writes a finished run in one output format
type Renderer interface {
	RenderRun(w io.Writer, run *anova.Run) error
}

// New returns the renderer for a config format name
func New(format string, opts Options) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", config.FormatText:
		return &TextRenderer{opts: opts}, nil
	case config.FormatMarkdown:
		return &MarkdownRenderer{opts: opts}, nil
	case config.FormatHTML:
		return &HTMLRenderer{markdown: MarkdownRenderer{opts: opts}}, nil
	case config.FormatJSON:
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// Number formats a statistic with three decimals. Non-finite values print as
// Inf, -Inf or NaN.
func Number(v float64) string {
	return formatFixed(v, 3)
}

func formatFixed(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return strconv.FormatFloat(v, 'f', prec, 64)
	}
}

// Verdict is the significance line for one effect
func Verdict(e anova.Effect, alpha float64) string {
	a := strconv.FormatFloat(alpha, 'g', -1, 64)
	switch {
	case math.IsNaN(e.P):
		return "NOT significant (p undefined)"
	case anova.Significant(e, alpha):
		return fmt.Sprintf("SIGNIFICANT (p < %s)", a)
	default:
		return fmt.Sprintf("NOT significant (p > %s)", a)
	}
}

// effectTitle names an effect the way the significance block reads
func effectTitle(e anova.Effect) string {
	switch e.Name {
	case "Filter":
		return "Main effect of Filtering"
	case "Tutorial":
		return "Main effect of Tutorial"
	default:
		return "Interaction effect"
	}
}
