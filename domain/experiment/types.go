package experiment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"anovalab/domain/core"
)

// Observation is one subject's record: four task durations in seconds and the
// two factor levels the subject was assigned to.
type Observation struct {
	Subject           int     `json:"subject"`
	CreateGameTime    float64 `json:"create_game_time"`
	FindGameTime      float64 `json:"find_game_time"`
	RSVPTime          float64 `json:"rsvp_time"`
	UpdateProfileTime float64 `json:"update_profile_time"`
	FiltersOn         bool    `json:"filters_on"`
	TutorialGiven     bool    `json:"tutorial_given"`
}

// Cell returns the factor combination the observation belongs to
func (o Observation) Cell() Cell {
	return Cell{Filter: o.FiltersOn, Tutorial: o.TutorialGiven}
}

// Validate checks that every duration is a positive finite number
func (o Observation) Validate() error {
	for _, m := range AllMeasures() {
		v := m.Value(o)
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: subject %d has non-positive %s (%v)", core.ErrMalformedRecord, o.Subject, m.Key(), v)
		}
	}
	return nil
}

// Fingerprint hashes the observations in order so two runs over the same
// input can be recognised as such.
func Fingerprint(observations []Observation) core.Hash {
	var b strings.Builder
	for _, o := range observations {
		b.WriteString(strconv.Itoa(o.Subject))
		for _, m := range AllMeasures() {
			b.WriteByte('|')
			b.WriteString(strconv.FormatFloat(m.Value(o), 'g', -1, 64))
		}
		b.WriteByte('|')
		b.WriteString(strconv.FormatBool(o.FiltersOn))
		b.WriteByte('|')
		b.WriteString(strconv.FormatBool(o.TutorialGiven))
		b.WriteByte('\n')
	}
	return core.NewHash([]byte(b.String()))
}
