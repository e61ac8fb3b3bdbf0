package history

import (
	"database/sql"
	"fmt"
)

// Repository handles run persistence over the runs table created by the
// schema migrations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Repository with the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a completed run.
func (r *Repository) Create(run *Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (
			id, source_id, source_title, dest_id, dest_title,
			copied, media_transferred, media_fallback, skipped, errors,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.SourceID,
		run.SourceTitle,
		run.DestID,
		run.DestTitle,
		run.Copied,
		run.MediaTransferred,
		run.MediaFallback,
		run.Skipped,
		run.Errors,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID.
func (r *Repository) Get(id string) (*Run, error) {
	query := `
		SELECT
			id, source_id, source_title, dest_id, dest_title,
			copied, media_transferred, media_fallback, skipped, errors,
			started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run := &Run{}
	err := r.db.QueryRow(query, id).Scan(
		&run.ID, &run.SourceID, &run.SourceTitle, &run.DestID, &run.DestTitle,
		&run.Copied, &run.MediaTransferred, &run.MediaFallback, &run.Skipped, &run.Errors,
		&run.StartedAt, &run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

// List retrieves runs newest-first, optionally filtered by source channel.
// A limit of 0 means no limit.
func (r *Repository) List(sourceID int64, limit int) ([]*Run, error) {
	query := `
		SELECT
			id, source_id, source_title, dest_id, dest_title,
			copied, media_transferred, media_fallback, skipped, errors,
			started_at, finished_at
		FROM runs
	`
	args := []any{}

	if sourceID != 0 {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}

	query += " ORDER BY finished_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID, &run.SourceID, &run.SourceTitle, &run.DestID, &run.DestTitle,
			&run.Copied, &run.MediaTransferred, &run.MediaFallback, &run.Skipped, &run.Errors,
			&run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Delete removes a run record by ID.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}
