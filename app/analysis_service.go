package app

import (
	"context"
	"time"

	domain "anovalab/domain/anova"
	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal"
	"anovalab/internal/anova"
	"anovalab/internal/errors"
	"anovalab/ports"
)

// AnalysisService reads a dataset, runs the two-way ANOVA for each measure
// and records the run
type AnalysisService struct {
	analyzer *anova.Analyzer
	repo     ports.ResultRepository // optional
	logger   *internal.Logger
}

// AnalysisRequest selects the data and measures of one run
type AnalysisRequest struct {
	Source   ports.ObservationSource
	Measures []experiment.Measure // empty means all four
}

// NewAnalysisService creates the service. repo may be nil, in which case runs
// are not persisted and lookups fail.
func NewAnalysisService(analyzer *anova.Analyzer, repo ports.ResultRepository, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{analyzer: analyzer, repo: repo, logger: logger.With("app")}
}

// Run loads the observations from the source and analyses them
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*domain.Run, error) {
	observations, err := req.Source.Observations(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", req.Source.Name())
	}
	return s.Analyze(ctx, req.Source.Name(), observations, req.Measures...)
}

// Analyze runs the analysis over observations already in memory. When a
// repository is configured the run is saved; a save failure is returned
// together with the completed run.
func (s *AnalysisService) Analyze(ctx context.Context, source string, observations []experiment.Observation, measures ...experiment.Measure) (*domain.Run, error) {
	start := time.Now()

	outcomes, err := s.analyzer.AnalyzeAll(ctx, observations, measures...)
	if err != nil {
		return nil, errors.Wrap(err, "analysis failed")
	}

	run := &domain.Run{
		ID:           core.NewRunID(),
		Source:       source,
		Fingerprint:  experiment.Fingerprint(observations),
		Observations: len(observations),
		CreatedAt:    core.Now(),
		Outcomes:     outcomes,
	}
	s.logger.Info("run %s: %d observations, %d measures, %d failed in %s",
		run.ID, run.Observations, len(run.Outcomes), len(run.Failed()), time.Since(start).Round(time.Microsecond))

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run); err != nil {
			s.logger.Error("failed to save run %s: %v", run.ID, err)
			return run, errors.StorageError("failed to save run", err)
		}
	}
	return run, nil
}

// GetRun loads a stored run
func (s *AnalysisService) GetRun(ctx context.Context, id core.RunID) (*domain.Run, error) {
	if s.repo == nil {
		return nil, errors.StorageError("no result store configured", nil)
	}
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load run %s", id)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if s.repo == nil {
		return nil, errors.StorageError("no result store configured", nil)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

// Persistent reports whether runs are being stored
func (s *AnalysisService) Persistent() bool {
	return s.repo != nil
}
