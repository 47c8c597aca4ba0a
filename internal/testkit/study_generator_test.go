package testkit

import (
	"context"
	"testing"

	"anovalab/domain/core"
	"anovalab/domain/experiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudyGenerator_Deterministic(t *testing.T) {
	config := DefaultStudyConfig()

	a := NewStudyGenerator(config).Generate()
	b := NewStudyGenerator(config).Generate()
	assert.Equal(t, a, b)

	config.Seed = 7
	c := NewStudyGenerator(config).Generate()
	assert.NotEqual(t, experiment.Fingerprint(a), experiment.Fingerprint(c))
}

func TestStudyGenerator_Shape(t *testing.T) {
	config := DefaultStudyConfig()
	config.PerCell = 12
	observations := NewStudyGenerator(config).Generate()
	require.Len(t, observations, 48)

	counts := map[experiment.Cell]int{}
	for i, o := range observations {
		assert.Equal(t, i+1, o.Subject)
		assert.NoError(t, o.Validate())
		counts[o.Cell()]++
	}
	for _, cell := range experiment.CellOrder {
		assert.Equal(t, 12, counts[cell], cell.Code())
	}
	assert.Equal(t, experiment.Cell{}, observations[0].Cell(), "control subjects come first")
}

func TestStudyGenerator_NoNoiseGivesCellMeans(t *testing.T) {
	config := DefaultStudyConfig()
	config.Noise = 0
	config.InteractionEffect = 3

	for _, o := range NewStudyGenerator(config).Generate() {
		want := 35.0
		if o.FiltersOn {
			want -= 8
		}
		if o.TutorialGiven {
			want -= 10
		}
		if o.FiltersOn && o.TutorialGiven {
			want += 3
		}
		assert.InDelta(t, want, o.CreateGameTime, 1e-9)
	}
}

func TestStudySource(t *testing.T) {
	source := NewStudySource()
	assert.Equal(t, LiteralSourceName, source.Name())

	observations, err := source.Observations(context.Background())
	require.NoError(t, err)
	require.Len(t, observations, 20)

	observations[0].CreateGameTime = 999
	again, err := source.Observations(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, 999.0, again[0].CreateGameTime)
}

func TestInMemoryResultRepository_NotFound(t *testing.T) {
	repo := NewInMemoryResultRepository()
	_, err := repo.GetRun(context.Background(), core.NewRunID())
	assert.True(t, core.IsNotFoundError(err))

	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
