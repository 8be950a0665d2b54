// Package jobs keeps track of asynchronous imports in the import_jobs table.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	FormatGedcomX = "gedcomx"
	FormatGedcom  = "gedcom"
)

const maxErrorLength = 2000

var ErrNotFound = errors.New("import job not found")

type Job struct {
	ID                    string     `json:"id"`
	Format                string     `json:"format"`
	FileKey               string     `json:"file_key"`
	Status                string     `json:"status"`
	PersonsImported       int        `json:"persons_imported"`
	PersonsSkipped        int        `json:"persons_skipped"`
	RelationshipsImported int        `json:"relationships_imported"`
	RelationshipsSkipped  int        `json:"relationships_skipped"`
	ErrorMessage          *string    `json:"error,omitempty"`
	DurationMs            *int64     `json:"duration_ms,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	FinishedAt            *time.Time `json:"finished_at,omitempty"`
}

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db dbConn
}

// New accepts a *pgxpool.Pool or anything else with Exec and QueryRow.
func New(db dbConn) *Repository {
	return &Repository{db: db}
}

// NewID returns a fresh job id.
func NewID() (string, error) {
	return gonanoid.New()
}

func (r *Repository) Create(ctx context.Context, id, format, fileKey string) (*Job, error) {
	row := r.db.QueryRow(ctx, createJobSQL, id, format, fileKey, StatusPending)
	return scanJob(row)
}

func (r *Repository) Get(ctx context.Context, id string) (*Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, getJobSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func (r *Repository) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx, markRunningSQL, id, StatusRunning)
}

func (r *Repository) MarkCompleted(ctx context.Context, id string, result *importer.Result, duration time.Duration) error {
	return r.exec(ctx, markCompletedSQL,
		id,
		StatusCompleted,
		result.PersonsImported,
		result.PersonsSkipped,
		result.RelationshipsImported,
		result.RelationshipsSkipped,
		duration.Milliseconds(),
	)
}

func (r *Repository) MarkFailed(ctx context.Context, id string, cause error, duration time.Duration) error {
	msg := util.Truncate(util.SanitizePostgresText(cause.Error()), maxErrorLength)
	return r.exec(ctx, markFailedSQL, id, StatusFailed, msg, duration.Milliseconds())
}

func (r *Repository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID,
		&job.Format,
		&job.FileKey,
		&job.Status,
		&job.PersonsImported,
		&job.PersonsSkipped,
		&job.RelationshipsImported,
		&job.RelationshipsSkipped,
		&job.ErrorMessage,
		&job.DurationMs,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

const jobColumns = `
id, format, file_key, status,
persons_imported, persons_skipped, relationships_imported, relationships_skipped,
error_message, duration_ms, created_at, updated_at, finished_at
`

const createJobSQL = `
INSERT INTO import_jobs (id, format, file_key, status)
VALUES ($1, $2, $3, $4)
RETURNING` + jobColumns

const getJobSQL = `
SELECT` + jobColumns + `
FROM import_jobs
WHERE id = $1
`

const markRunningSQL = `
UPDATE import_jobs
SET status = $2,
    error_message = NULL,
    updated_at = now()
WHERE id = $1
`

const markCompletedSQL = `
UPDATE import_jobs
SET status = $2,
    persons_imported = $3,
    persons_skipped = $4,
    relationships_imported = $5,
    relationships_skipped = $6,
    duration_ms = $7,
    error_message = NULL,
    updated_at = now(),
    finished_at = now()
WHERE id = $1
`

const markFailedSQL = `
UPDATE import_jobs
SET status = $2,
    error_message = $3,
    duration_ms = $4,
    updated_at = now(),
    finished_at = now()
WHERE id = $1
`
