package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"anovalab/domain/anova"
	"anovalab/domain/experiment"
	"anovalab/internal"
	engine "anovalab/internal/anova"
	"anovalab/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studyRun(t *testing.T) *anova.Run {
	t.Helper()
	analyzer := engine.NewAnalyzer(engine.NewEngine(engine.Options{}), 2, internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError))
	outcomes, err := analyzer.AnalyzeAll(context.Background(), testkit.StudyObservations())
	require.NoError(t, err)
	return &anova.Run{Source: testkit.LiteralSourceName, Observations: 20, Outcomes: outcomes}
}

func TestTextRenderer_Study(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer(Options{}).RenderRun(&buf, studyRun(t)))
	out := buf.String()

	assert.Contains(t, out, "Group Means for Task #1: Create Game:")
	assert.Contains(t, out, "Control (no filters, no tutorial): 35.06 sec")
	assert.Contains(t, out, "Filters and tutorial: 25.72 sec")
	assert.Contains(t, out, "Two-way ANOVA Results for Task #1: Create Game:")
	assert.Contains(t, out, "Two-way ANOVA Results for Task #4: Update Profile Info:")
	assert.Contains(t, out, "- Main effect of Filtering: NOT significant (p > 0.05)")
	assert.Contains(t, out, "- Main effect of Tutorial: SIGNIFICANT (p < 0.05)")
	assert.Contains(t, out, "- Interaction effect: SIGNIFICANT (p < 0.05)")
	assert.NotContains(t, out, "exact p")

	// control is listed before the treatment cells
	assert.Less(t, strings.Index(out, "Control (no filters"), strings.Index(out, "Filters and tutorial:"))

	var errorRow, totalRow string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "Error":
			if errorRow == "" {
				errorRow = line
			}
		case "Total":
			if totalRow == "" {
				totalRow = line
			}
		}
	}
	assert.Equal(t, []string{"Error", "68.076", "16", "4.255", "-", "-"}, strings.Fields(errorRow))
	totalFields := strings.Fields(totalRow)
	require.Len(t, totalFields, 6)
	assert.Equal(t, []string{"19", "-", "-", "-"}, totalFields[2:])
}

func TestTextRenderer_NonFiniteValues(t *testing.T) {
	result := anova.Result{
		Measure:     experiment.RSVP,
		Filter:      anova.Effect{Name: "Filter", SS: 800, DF: 1, MS: 800, F: math.Inf(1), P: 0},
		Tutorial:    anova.Effect{Name: "Tutorial", SS: 200, DF: 1, MS: 200, F: math.Inf(1), P: 0},
		Interaction: anova.Effect{Name: "Interaction", DF: 1, F: math.NaN(), P: math.NaN()},
		Error:       anova.Residual{DF: 4},
		Total:       anova.Total{SS: 1000, DF: 7},
		Warnings:    []string{"no within-cell variation; F ratios are not finite"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer(Options{}).WriteResult(&buf, result, experiment.RSVP.Title()))
	out := buf.String()

	assert.Contains(t, out, "Two-way ANOVA Results for Task #3: RSVP:")
	assert.Regexp(t, `Filter\s+800\.000\s+1\s+800\.000\s+Inf\s+0\.000`, out)
	assert.Regexp(t, `Interaction\s+0\.000\s+1\s+0\.000\s+NaN\s+NaN`, out)
	assert.Contains(t, out, "- Main effect of Filtering: SIGNIFICANT (p < 0.05)")
	assert.Contains(t, out, "- Interaction effect: NOT significant (p undefined)")
	assert.Contains(t, out, "Warning: no within-cell variation")
}

func TestTextRenderer_ExactColumnAndAlpha(t *testing.T) {
	result := anova.Result{
		Filter:      anova.Effect{Name: "Filter", DF: 1, F: 2, P: 0.04, ExactP: 0.2},
		Tutorial:    anova.Effect{Name: "Tutorial", DF: 1, F: 2, P: 0.04, ExactP: 0.2},
		Interaction: anova.Effect{Name: "Interaction", DF: 1, F: 2, P: 0.04, ExactP: 0.2},
		HasExactP:   true,
	}

	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer(Options{Alpha: 0.01}).WriteResult(&buf, result, "Task"))
	out := buf.String()
	assert.Contains(t, out, "exact p")
	assert.Contains(t, out, "0.200")
	assert.Contains(t, out, "- Main effect of Tutorial: NOT significant (p > 0.01)")
}

func TestTextRenderer_FailedMeasure(t *testing.T) {
	run := &anova.Run{Outcomes: []anova.MeasureOutcome{
		{Measure: experiment.FindGame, Err: errors.New("findGameTime: empty input sequence: factor cell")},
	}}

	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer(Options{}).RenderRun(&buf, run))
	assert.Contains(t, buf.String(), "Analysis failed for Task #2: Find Game to Attend: findGameTime: empty input sequence")
}

func TestMarkdownAndHTML(t *testing.T) {
	run := studyRun(t)

	md, err := New("markdown", Options{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, md.RenderRun(&buf, run))
	assert.Contains(t, buf.String(), "## Task #1: Create Game")
	assert.Contains(t, buf.String(), "| Error | 68.076 | 16 | 4.255 | - | - |")

	h, err := New("HTML", Options{})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, h.RenderRun(&buf, run))
	out := buf.String()
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "Task #3: RSVP")
}

func TestJSONRenderer(t *testing.T) {
	r, err := New("json", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderRun(&buf, studyRun(t)))

	var back anova.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back.Outcomes, 4)
	assert.InDelta(t, 68.076, back.Outcomes[0].Result.Error.SS, 1e-9)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("pdf", Options{})
	assert.Error(t, err)
}

func TestBanner(t *testing.T) {
	assert.Equal(t, "Two-Way ANOVA Analysis Program\n==============================\n", Banner())
}
