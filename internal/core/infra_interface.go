package core

import (
	"context"
	"time"

	"github.com/mediora-ai/mediora/internal/models"
)

// DbClient defines all persistence operations the pipeline needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	GetJob(ctx context.Context, jobID string) (*models.ProcessingJob, error)
	ListJobs(ctx context.Context, userID string, status models.JobStatus) ([]models.ProcessingJob, error)

	// ClaimJob conditionally moves a pending job to processing and stamps
	// started_at. It reports whether the claim took effect; false means the
	// row was missing or already claimed.
	ClaimJob(ctx context.Context, jobID string, startedAt time.Time) (bool, error)

	// UpdateStage writes the free-text progress marker and commits
	// immediately. Zero rows affected means the job row vanished and is
	// surfaced as ErrJobCancelled.
	UpdateStage(ctx context.Context, jobID, stage string) error

	// FinishJob records the terminal transition. It reports whether the
	// transition took effect; false with a nil error means the job was
	// already settled and the call was a no-op.
	FinishJob(ctx context.Context, jobID string, status models.JobStatus, errorMessage string, completedAt time.Time) (bool, error)

	// ReplaceChunks atomically swaps the chunk set for a document: delete
	// all prior chunks, bulk-insert the new set, commit. No partial set is
	// ever visible.
	ReplaceChunks(ctx context.Context, documentID string, chunks []models.Chunk) error

	Close()
}

// ObjectInfo describes a stored object without fetching its bytes.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Metadata(ctx context.Context, key string) (*ObjectInfo, error)
}
