package anova

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"anovalab/domain/experiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func degenerateResult() Result {
	return Result{
		Measure:     experiment.RSVP,
		Filter:      Effect{Name: "Filter", SS: 800, DF: 1, MS: 800, F: math.Inf(1), P: 0, ExactP: math.NaN()},
		Tutorial:    Effect{Name: "Tutorial", SS: 200, DF: 1, MS: 200, F: math.Inf(1), P: 0, ExactP: math.NaN()},
		Interaction: Effect{Name: "Interaction", SS: 0, DF: 1, MS: 0, F: math.NaN(), P: math.NaN(), ExactP: math.NaN()},
		Error:       Residual{SS: 0, DF: 4, MS: 0},
		Total:       Total{SS: 1000, DF: 7},
		CellSize:    2,
		TotalN:      8,
		Balanced:    true,
	}
}

func TestResult_JSONCarriesNonFiniteValues(t *testing.T) {
	data, err := json.Marshal(degenerateResult())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"measure":"rsvpTime"`)
	assert.Contains(t, s, `"f":"+Inf"`)
	assert.Contains(t, s, `"p":"NaN"`)
	assert.NotContains(t, s, `"exact_p":`)
	assert.Contains(t, s, `"has_exact_p":false`)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, experiment.RSVP, back.Measure)
	assert.True(t, math.IsInf(back.Filter.F, 1))
	assert.True(t, math.IsNaN(back.Interaction.F))
	assert.True(t, math.IsNaN(back.Filter.ExactP))
	assert.Equal(t, 4, back.Error.DF)
}

func TestEffect_JSONCarriesFiniteExactP(t *testing.T) {
	data, err := json.Marshal(Effect{Name: "Filter", SS: 10, DF: 1, MS: 10, F: 4, P: 0.2, ExactP: 0.0625})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exact_p":0.0625`)

	var back Effect
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0.0625, back.ExactP)
}

func TestResult_CheckAndDegenerate(t *testing.T) {
	r := degenerateResult()
	assert.NoError(t, r.Check(1e-9))
	assert.True(t, r.Degenerate())

	r.Total.DF = 8
	assert.Error(t, r.Check(1e-9))

	r = degenerateResult()
	r.Error.SS = 5
	assert.Error(t, r.Check(1e-9))
}

func TestSignificant(t *testing.T) {
	assert.True(t, Significant(Effect{P: 0.049}, 0.05))
	assert.False(t, Significant(Effect{P: 0.05}, 0.05))
	assert.False(t, Significant(Effect{P: math.NaN()}, 0.05))
}

func TestMeasureOutcome_JSONCarriesError(t *testing.T) {
	run := Run{Outcomes: []MeasureOutcome{
		{Measure: experiment.FindGame, Err: errors.New("findGameTime: empty input sequence")},
	}}
	data, err := json.Marshal(run)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error":"findGameTime: empty input sequence"`)

	var back Run
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back.Failed(), 1)
	assert.Equal(t, experiment.FindGame, back.Outcomes[0].Measure)
	assert.EqualError(t, back.Outcomes[0].Err, "findGameTime: empty input sequence")
}
