package testkit

import (
	"math"
	"math/rand"

	"anovalab/domain/experiment"
)

// StudyGeneratorConfig configures the synthetic study generator. Effects are
// in seconds and apply to every measure: a cell's expected duration is
// baseline + filter + tutorial + interaction for the levels that are on.
type StudyGeneratorConfig struct {
	PerCell           int                            `json:"per_cell"`
	Baselines         map[experiment.Measure]float64 `json:"baselines"`
	FilterEffect      float64                        `json:"filter_effect"`
	TutorialEffect    float64                        `json:"tutorial_effect"`
	InteractionEffect float64                        `json:"interaction_effect"`
	Noise             float64                        `json:"noise"` // std dev of the within-cell noise
	Seed              int64                          `json:"seed"`
}

// DefaultStudyConfig returns a study shaped like the usability experiment
func DefaultStudyConfig() StudyGeneratorConfig {
	return StudyGeneratorConfig{
		PerCell: 5,
		Baselines: map[experiment.Measure]float64{
			experiment.CreateGame:    35,
			experiment.FindGame:      48,
			experiment.RSVP:          11,
			experiment.UpdateProfile: 31,
		},
		FilterEffect:   -8,
		TutorialEffect: -10,
		Noise:          2,
		Seed:           42,
	}
}

// StudyGenerator produces reproducible synthetic observations
type StudyGenerator struct {
	config StudyGeneratorConfig
	rng    *rand.Rand
}

// NewStudyGenerator creates a new study generator
func NewStudyGenerator(config StudyGeneratorConfig) *StudyGenerator {
	return &StudyGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns PerCell subjects for each cell, cells in control-first
// order, subjects numbered from 1
func (g *StudyGenerator) Generate() []experiment.Observation {
	observations := make([]experiment.Observation, 0, 4*g.config.PerCell)
	subject := 1
	for i := len(experiment.CellOrder) - 1; i >= 0; i-- {
		cell := experiment.CellOrder[i]
		for j := 0; j < g.config.PerCell; j++ {
			o := experiment.Observation{
				Subject:       subject,
				FiltersOn:     cell.Filter,
				TutorialGiven: cell.Tutorial,
			}
			o.CreateGameTime = g.duration(experiment.CreateGame, cell)
			o.FindGameTime = g.duration(experiment.FindGame, cell)
			o.RSVPTime = g.duration(experiment.RSVP, cell)
			o.UpdateProfileTime = g.duration(experiment.UpdateProfile, cell)
			observations = append(observations, o)
			subject++
		}
	}
	return observations
}

// duration draws one positive value rounded to a tenth of a second, as the
// study timings were recorded
func (g *StudyGenerator) duration(m experiment.Measure, cell experiment.Cell) float64 {
	mean := g.config.Baselines[m]
	if cell.Filter {
		mean += g.config.FilterEffect
	}
	if cell.Tutorial {
		mean += g.config.TutorialEffect
	}
	if cell.Filter && cell.Tutorial {
		mean += g.config.InteractionEffect
	}

	v := mean + g.rng.NormFloat64()*g.config.Noise
	v = math.Round(v*10) / 10
	if v < 0.1 {
		v = 0.1
	}
	return v
}
