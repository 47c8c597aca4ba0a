package ports

import (
	"context"

	"anovalab/domain/experiment"
)

// ObservationSource supplies the subject records of one study. Implementations
// decide how malformed rows are handled; an empty result is not an error here.
type ObservationSource interface {
	// Name identifies the source in reports and stored runs
	Name() string
	Observations(ctx context.Context) ([]experiment.Observation, error)
}
