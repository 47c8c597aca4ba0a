package testkit

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"anovalab/domain/anova"
	"anovalab/domain/core"
	"anovalab/ports"
)

// InMemoryResultRepository keeps runs in process memory. Runs are stored as
// JSON so a read never aliases the caller's value.
type InMemoryResultRepository struct {
	mu    sync.RWMutex
	runs  map[core.RunID][]byte
	order []core.RunID
}

// NewInMemoryResultRepository creates an empty repository
func NewInMemoryResultRepository() *InMemoryResultRepository {
	return &InMemoryResultRepository{runs: make(map[core.RunID][]byte)}
}

func (s *InMemoryResultRepository) SaveRun(ctx context.Context, run *anova.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = data
	return nil
}

func (s *InMemoryResultRepository) GetRun(ctx context.Context, id core.RunID) (*anova.Run, error) {
	s.mu.RLock()
	data, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, core.NewNotFoundError("run", id.String())
	}

	var run anova.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first
func (s *InMemoryResultRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	s.mu.RLock()
	ids := make([]core.RunID, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	summaries := make([]ports.RunSummary, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ports.SummarizeRun(run))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Time().After(summaries[j].CreatedAt.Time())
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

var _ ports.ResultRepository = (*InMemoryResultRepository)(nil)
