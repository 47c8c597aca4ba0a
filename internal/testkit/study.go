package testkit

import (
	"context"

	"anovalab/domain/experiment"
)

// LiteralSourceName identifies the built-in study in reports and stored runs
const LiteralSourceName = "builtin:app-usability-study"

// StudyObservations returns the built-in 20-subject usability study: five
// subjects per cell, durations in seconds.
func StudyObservations() []experiment.Observation {
	return []experiment.Observation{
		// Control: no filters, no tutorial
		{Subject: 1, CreateGameTime: 32.4, FindGameTime: 48.2, RSVPTime: 11.3, UpdateProfileTime: 29.8},
		{Subject: 2, CreateGameTime: 38.1, FindGameTime: 51.7, RSVPTime: 10.9, UpdateProfileTime: 33.1},
		{Subject: 3, CreateGameTime: 35.7, FindGameTime: 45.9, RSVPTime: 12.4, UpdateProfileTime: 31.6},
		{Subject: 4, CreateGameTime: 31.9, FindGameTime: 49.3, RSVPTime: 9.8, UpdateProfileTime: 28.7},
		{Subject: 5, CreateGameTime: 37.2, FindGameTime: 47.6, RSVPTime: 11.7, UpdateProfileTime: 34.2},

		// No filters, tutorial given
		{Subject: 6, CreateGameTime: 17.2, FindGameTime: 42.8, RSVPTime: 10.4, UpdateProfileTime: 22.5, TutorialGiven: true},
		{Subject: 7, CreateGameTime: 21.5, FindGameTime: 39.6, RSVPTime: 11.8, UpdateProfileTime: 24.9, TutorialGiven: true},
		{Subject: 8, CreateGameTime: 18.9, FindGameTime: 41.1, RSVPTime: 9.6, UpdateProfileTime: 21.3, TutorialGiven: true},
		{Subject: 9, CreateGameTime: 16.4, FindGameTime: 43.5, RSVPTime: 10.2, UpdateProfileTime: 23.8, TutorialGiven: true},
		{Subject: 10, CreateGameTime: 20.4, FindGameTime: 38.9, RSVPTime: 12.1, UpdateProfileTime: 20.6, TutorialGiven: true},

		// Filters on, no tutorial
		{Subject: 11, CreateGameTime: 24.1, FindGameTime: 23.4, RSVPTime: 11.1, UpdateProfileTime: 30.2, FiltersOn: true},
		{Subject: 12, CreateGameTime: 27.9, FindGameTime: 21.8, RSVPTime: 10.3, UpdateProfileTime: 32.7, FiltersOn: true},
		{Subject: 13, CreateGameTime: 26.3, FindGameTime: 24.6, RSVPTime: 12.6, UpdateProfileTime: 29.4, FiltersOn: true},
		{Subject: 14, CreateGameTime: 23.8, FindGameTime: 20.9, RSVPTime: 9.9, UpdateProfileTime: 31.5, FiltersOn: true},
		{Subject: 15, CreateGameTime: 26.3, FindGameTime: 22.7, RSVPTime: 11.4, UpdateProfileTime: 33.8, FiltersOn: true},

		// Filters on, tutorial given
		{Subject: 16, CreateGameTime: 25.0, FindGameTime: 19.2, RSVPTime: 10.8, UpdateProfileTime: 21.9, FiltersOn: true, TutorialGiven: true},
		{Subject: 17, CreateGameTime: 27.4, FindGameTime: 18.6, RSVPTime: 11.5, UpdateProfileTime: 23.4, FiltersOn: true, TutorialGiven: true},
		{Subject: 18, CreateGameTime: 24.3, FindGameTime: 20.3, RSVPTime: 9.7, UpdateProfileTime: 22.8, FiltersOn: true, TutorialGiven: true},
		{Subject: 19, CreateGameTime: 26.8, FindGameTime: 17.9, RSVPTime: 12.2, UpdateProfileTime: 20.7, FiltersOn: true, TutorialGiven: true},
		{Subject: 20, CreateGameTime: 25.1, FindGameTime: 19.8, RSVPTime: 10.6, UpdateProfileTime: 24.1, FiltersOn: true, TutorialGiven: true},
	}
}

// LiteralSource serves a fixed set of observations
type LiteralSource struct {
	name         string
	observations []experiment.Observation
}

// NewStudySource returns a source over the built-in study
func NewStudySource() *LiteralSource {
	return NewLiteralSource(LiteralSourceName, StudyObservations())
}

// NewLiteralSource wraps observations as a named source
func NewLiteralSource(name string, observations []experiment.Observation) *LiteralSource {
	return &LiteralSource{name: name, observations: observations}
}

func (s *LiteralSource) Name() string { return s.name }

// Observations returns a copy so callers cannot alter the fixture
func (s *LiteralSource) Observations(ctx context.Context) ([]experiment.Observation, error) {
	out := make([]experiment.Observation, len(s.observations))
	copy(out, s.observations)
	return out, nil
}
