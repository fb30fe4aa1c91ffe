package pipeline

import (
	"context"
	"database/sql"
	"time"
)

// Repository records pipeline runs for auditing. The database is the only
// place runs persist; results themselves are owned by the report writers.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new run repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun inserts a new run record and fills in its ID.
func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO pipeline_runs (
			kind, source_files, output_rows, started_at, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		run.Kind, run.SourceFiles, run.OutputRows,
		run.StartedAt, run.Status, run.ErrorMessage,
	).Scan(&run.ID)

	return err
}

// UpdateRun updates the mutable fields of an existing run.
func (r *Repository) UpdateRun(ctx context.Context, run *Run) error {
	query := `
		UPDATE pipeline_runs
		SET status = $1, output_rows = $2, completed_at = $3, error_message = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(
		ctx, query,
		run.Status, run.OutputRows, run.CompletedAt, run.ErrorMessage, run.ID,
	)

	return err
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id int64) (*Run, error) {
	query := `
		SELECT id, kind, source_files, output_rows,
		       started_at, completed_at, status, error_message
		FROM pipeline_runs
		WHERE id = $1
	`

	run := &Run{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Kind, &run.SourceFiles, &run.OutputRows,
		&run.StartedAt, &run.CompletedAt, &run.Status, &run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRecentRuns returns the latest runs of a kind, newest first.
func (r *Repository) ListRecentRuns(ctx context.Context, kind RunKind, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, kind, source_files, output_rows,
		       started_at, completed_at, status, error_message
		FROM pipeline_runs
		WHERE kind = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.ID, &run.Kind, &run.SourceFiles, &run.OutputRows,
			&run.StartedAt, &run.CompletedAt, &run.Status, &run.ErrorMessage,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// FinishRun stamps a terminal status onto a run. Persistence failures are
// reported to the caller but must never mask the pipeline error itself.
func (r *Repository) FinishRun(ctx context.Context, run *Run, status RunStatus, runErr error) error {
	now := time.Now()
	run.Status = status
	run.CompletedAt = &now
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	return r.UpdateRun(ctx, run)
}
