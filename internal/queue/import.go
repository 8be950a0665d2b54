package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
)

// ImportMessage is the body of a message in ImportQueue.
type ImportMessage struct {
	JobID   string `json:"job_id"`
	Format  string `json:"format"`
	FileKey string `json:"file_key"`
}

type JobStore interface {
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, result *importer.Result, duration time.Duration) error
	MarkFailed(ctx context.Context, id string, cause error, duration time.Duration) error
}

type FileGetter interface {
	GetFile(ctx context.Context, key string) ([]byte, error)
}

type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// ImportProcessor runs queued imports.
type ImportProcessor struct {
	Importer *importer.Importer
	Jobs     JobStore
	Files    FileGetter
	Locks    Locker
	LeaseTTL time.Duration
}

// PublishImport queues a job for the worker.
func PublishImport(ctx context.Context, pub Publisher, msg ImportMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ctx, pub, ImportQueue, data)
}

// Process handles one delivery. A nil return means the message is done and
// can be acked, including payloads that can never succeed. Any other error
// is worth a retry.
func (p *ImportProcessor) Process(ctx context.Context, body []byte) error {
	var msg ImportMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.JobID == "" {
		logger.Error("[Queue] Dropping malformed import message", "err", err)
		return nil
	}

	return p.Locks.WithLease(ctx, leaselock.ImportJobKey(msg.JobID), leaselock.Options{TTL: p.LeaseTTL}, func(ctx context.Context) error {
		return p.run(ctx, msg)
	})
}

func (p *ImportProcessor) run(ctx context.Context, msg ImportMessage) error {
	start := time.Now()
	if err := p.Jobs.MarkRunning(ctx, msg.JobID); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			logger.Warn("[Queue] Import job does not exist", "job_id", msg.JobID)
			return nil
		}
		return fmt.Errorf("mark job running: %w", err)
	}
	logger.Info("[Queue] Import started", "job_id", msg.JobID, "format", msg.Format)

	result, err := p.importFile(ctx, msg)
	duration := time.Since(start)

	// a cancelled worker must still be able to record the outcome
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err != nil {
		if markErr := p.Jobs.MarkFailed(updateCtx, msg.JobID, err, duration); markErr != nil {
			logger.Warn("[Queue] Failed to mark import job as failed", "job_id", msg.JobID, "err", markErr)
		}
		if errors.Is(err, importer.ErrInvalidPayload) || errors.Is(err, importer.ErrInvalidRelationshipType) {
			logger.Error("[Queue] Import payload rejected", "job_id", msg.JobID, "err", err)
			return nil
		}
		return err
	}

	if err := p.Jobs.MarkCompleted(updateCtx, msg.JobID, result, duration); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	logger.Info("[Queue] Import finished",
		"job_id", msg.JobID,
		"persons", result.PersonsImported,
		"relationships", result.RelationshipsImported,
		"duration", duration.Round(time.Millisecond),
	)
	return nil
}

func (p *ImportProcessor) importFile(ctx context.Context, msg ImportMessage) (*importer.Result, error) {
	payload, err := p.Files.GetFile(ctx, msg.FileKey)
	if err != nil {
		return nil, err
	}

	switch msg.Format {
	case jobs.FormatGedcomX:
		return p.Importer.ImportGedcomX(ctx, payload)
	case jobs.FormatGedcom:
		return p.Importer.ImportGedcom(ctx, bytes.NewReader(payload))
	}
	return nil, fmt.Errorf("%w: unknown format %q", importer.ErrInvalidPayload, msg.Format)
}
