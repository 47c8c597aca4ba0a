package experiment

import (
	"strconv"
	"strings"

	"anovalab/domain/core"
)

// Measure selects one of the four dependent task-completion-time variables
type Measure int

const (
	CreateGame Measure = iota + 1
	FindGame
	RSVP
	UpdateProfile
)

type measureInfo struct {
	key   string
	label string
	value func(Observation) float64
}

var measures = map[Measure]measureInfo{
	CreateGame:    {"createGameTime", "Create Game", func(o Observation) float64 { return o.CreateGameTime }},
	FindGame:      {"findGameTime", "Find Game to Attend", func(o Observation) float64 { return o.FindGameTime }},
	RSVP:          {"rsvpTime", "RSVP", func(o Observation) float64 { return o.RSVPTime }},
	UpdateProfile: {"updateProfileTime", "Update Profile Info", func(o Observation) float64 { return o.UpdateProfileTime }},
}

// AllMeasures returns the measures in task order
func AllMeasures() []Measure {
	return []Measure{CreateGame, FindGame, RSVP, UpdateProfile}
}

// Valid reports whether m is one of the four known measures
func (m Measure) Valid() bool {
	_, ok := measures[m]
	return ok
}

// Key is the stable machine name, matching the CSV column header
func (m Measure) Key() string {
	if info, ok := measures[m]; ok {
		return info.key
	}
	return "unknown"
}

// Label is the human-readable task name
func (m Measure) Label() string {
	if info, ok := measures[m]; ok {
		return info.label
	}
	return "Unknown Task"
}

// Title is the numbered heading used in reports, e.g. "Task #3: RSVP"
func (m Measure) Title() string {
	if !m.Valid() {
		return m.Label()
	}
	return "Task #" + strconv.Itoa(int(m)) + ": " + m.Label()
}

func (m Measure) String() string {
	return m.Key()
}

// Value projects the observation onto this measure. Unknown measures yield 0.
func (m Measure) Value(o Observation) float64 {
	if info, ok := measures[m]; ok {
		return info.value(o)
	}
	return 0
}

// ParseMeasure accepts a measure key (case-insensitive) or its task number
func ParseMeasure(s string) (Measure, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Measure(n)
		if m.Valid() {
			return m, nil
		}
		return 0, core.NewUnknownMeasureError(s)
	}
	for _, m := range AllMeasures() {
		if strings.EqualFold(m.Key(), s) {
			return m, nil
		}
	}
	return 0, core.NewUnknownMeasureError(s)
}

// MarshalText encodes the measure as its key
func (m Measure) MarshalText() ([]byte, error) {
	return []byte(m.Key()), nil
}

// UnmarshalText decodes a measure key or task number
func (m *Measure) UnmarshalText(text []byte) error {
	parsed, err := ParseMeasure(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
