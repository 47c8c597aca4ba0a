package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anovalab/domain/anova"
	"anovalab/domain/core"
	"anovalab/ports"

	"github.com/jmoiron/sqlx"
)

// ResultRepositoryImpl stores analysis runs in PostgreSQL. Outcomes are kept
// as one JSONB document per run.
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

type runRow struct {
	ID           string    `db:"id"`
	Source       string    `db:"source"`
	Fingerprint  string    `db:"fingerprint"`
	Observations int       `db:"observations"`
	Measures     int       `db:"measures"`
	Failed       int       `db:"failed"`
	Outcomes     []byte    `db:"outcomes"`
	CreatedAt    time.Time `db:"created_at"`
}

// SaveRun inserts a run, replacing any previous run with the same id
func (r *ResultRepositoryImpl) SaveRun(ctx context.Context, run *anova.Run) error {
	outcomes, err := json.Marshal(run.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to encode outcomes: %w", err)
	}
	createdAt := run.CreatedAt.Time()
	if run.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO anova_runs (id, source, fingerprint, observations, measures, failed, outcomes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			fingerprint = EXCLUDED.fingerprint,
			observations = EXCLUDED.observations,
			measures = EXCLUDED.measures,
			failed = EXCLUDED.failed,
			outcomes = EXCLUDED.outcomes,
			created_at = EXCLUDED.created_at
	`, run.ID.String(), run.Source, run.Fingerprint.String(), run.Observations,
		len(run.Outcomes), len(run.Failed()), string(outcomes), createdAt)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by id
func (r *ResultRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*anova.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, source, fingerprint, observations, measures, failed, outcomes, created_at
		FROM anova_runs
		WHERE id = $1
	`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("run", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	run := &anova.Run{
		ID:           core.RunID(row.ID),
		Source:       row.Source,
		Fingerprint:  core.Hash(row.Fingerprint),
		Observations: row.Observations,
		CreatedAt:    core.NewTimestamp(row.CreatedAt),
	}
	if err := json.Unmarshal(row.Outcomes, &run.Outcomes); err != nil {
		return nil, fmt.Errorf("failed to decode outcomes of run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns run summaries, newest first
func (r *ResultRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	query := `
		SELECT id, source, fingerprint, observations, measures, failed, created_at
		FROM anova_runs
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	summaries := make([]ports.RunSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, ports.RunSummary{
			ID:           core.RunID(row.ID),
			Source:       row.Source,
			Fingerprint:  core.Hash(row.Fingerprint),
			Observations: row.Observations,
			Measures:     row.Measures,
			Failed:       row.Failed,
			CreatedAt:    core.NewTimestamp(row.CreatedAt),
		})
	}
	return summaries, nil
}
