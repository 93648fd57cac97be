// Package store provides an optional SQLite audit trail of the registry's
// job definitions. It is write-only bookkeeping: the scheduler's own
// in-memory registry is never reconstructed from it, and nothing here is
// consulted to decide when a job fires. It exists purely for operational
// visibility — `chronoflow jobs list --from-db` — after a restart when the
// in-memory registry has already been rebuilt from jobs_dir.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chronoflow/chronoflow/internal/job"
)

// Record is one audited job definition, timestamped by its last upsert.
type Record struct {
	Job       job.Job
	UpdatedAt time.Time
}

// JobStore is a narrow, optional persistence seam for a relational audit
// trail. The scheduler never implements this interface itself; it is
// wired in only by the CLI's audit-trail path.
type JobStore interface {
	Upsert(j job.Job) error
	Remove(jobID string) error
	LoadAll() ([]Record, error)
	Close() error
}

// SQLiteStore is a JobStore backed by a single-file SQLite database via
// github.com/mattn/go-sqlite3, grounded on the pack's own
// SQLiteJobStorage pattern (jholhewres-goclaw's scheduler package).
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (if needed) the jobs table at path and returns a ready
// SQLiteStore.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id      TEXT PRIMARY KEY,
	description TEXT,
	schedule    TEXT NOT NULL,
	task_type   TEXT NOT NULL,
	command     TEXT,
	updated_at  TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Upsert records j's current definition, overwriting any prior row with
// the same job_id.
func (s *SQLiteStore) Upsert(j job.Job) error {
	_, err := s.db.Exec(`
INSERT INTO jobs (job_id, description, schedule, task_type, command, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(job_id) DO UPDATE SET
	description = excluded.description,
	schedule    = excluded.schedule,
	task_type   = excluded.task_type,
	command     = excluded.command,
	updated_at  = excluded.updated_at`,
		j.ID, j.Description, j.Schedule, string(j.Task.Type), j.Task.Command,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert job %q: %w", j.ID, err)
	}
	return nil
}

// Remove deletes jobID's row, if any.
func (s *SQLiteStore) Remove(jobID string) error {
	if _, err := s.db.Exec(`DELETE FROM jobs WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("remove job %q: %w", jobID, err)
	}
	return nil
}

// LoadAll returns every audited job, most recently updated first.
func (s *SQLiteStore) LoadAll() ([]Record, error) {
	rows, err := s.db.Query(`
SELECT job_id, description, schedule, task_type, command, updated_at
FROM jobs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r         Record
			desc      sql.NullString
			taskType  string
			command   sql.NullString
			updatedAt string
		)
		if err := rows.Scan(&r.Job.ID, &desc, &r.Job.Schedule, &taskType, &command, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		r.Job.Description = desc.String
		r.Job.Task.Type = job.TaskType(taskType)
		r.Job.Task.Command = command.String
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
