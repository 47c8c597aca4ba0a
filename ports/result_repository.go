package ports

import (
	"context"

	"anovalab/domain/anova"
	"anovalab/domain/core"
)

// ResultWriterPort persists completed analysis runs
type ResultWriterPort interface {
	SaveRun(ctx context.Context, run *anova.Run) error
}

// ResultReaderPort provides read-only access to stored runs
type ResultReaderPort interface {
	GetRun(ctx context.Context, id core.RunID) (*anova.Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// ResultRepository combines read and write access to analysis runs
type ResultRepository interface {
	ResultWriterPort
	ResultReaderPort
}

// RunSummary is the listing view of a stored run
type RunSummary struct {
	ID           core.RunID     `json:"id"`
	Source       string         `json:"source"`
	Fingerprint  core.Hash      `json:"fingerprint"`
	Observations int            `json:"observations"`
	Measures     int            `json:"measures"`
	Failed       int            `json:"failed"`
	CreatedAt    core.Timestamp `json:"created_at"`
}

// SummarizeRun builds the listing view of a run
func SummarizeRun(run *anova.Run) RunSummary {
	return RunSummary{
		ID:           run.ID,
		Source:       run.Source,
		Fingerprint:  run.Fingerprint,
		Observations: run.Observations,
		Measures:     len(run.Outcomes),
		Failed:       len(run.Failed()),
		CreatedAt:    run.CreatedAt,
	}
}
