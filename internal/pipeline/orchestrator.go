// Package pipeline drives a processing job from intake to completion:
// classify the file, fetch it, run the type-specific strategy, and persist
// the resulting chunk set while keeping the job row's live progress honest.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mediora-ai/mediora/internal/core"
	db "github.com/mediora-ai/mediora/internal/core/database"
	objectclient "github.com/mediora-ai/mediora/internal/core/object-client"
	"github.com/mediora-ai/mediora/internal/media"
	"github.com/mediora-ai/mediora/internal/models"
	"github.com/mediora-ai/mediora/internal/retry"
	"github.com/mediora-ai/mediora/internal/router"
	"github.com/mediora-ai/mediora/internal/tokens"
)

// Config tunes the pipeline.
type Config struct {
	MaxTextTokens    int
	BatchSize        int
	FailureTolerance float64
	SegmentTimeout   time.Duration
	LanguageHint     string
	TempDir          string

	DBRetry      retry.Policy
	StorageRetry retry.Policy
	ModelRetry   retry.Policy
}

func (c *Config) applyDefaults() {
	if c.MaxTextTokens <= 0 {
		c.MaxTextTokens = 2048
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 4
	}
	if c.SegmentTimeout <= 0 {
		c.SegmentTimeout = 2 * time.Minute
	}
	zero := retry.Policy{}
	if c.DBRetry == zero {
		c.DBRetry = retry.DefaultPolicy()
	}
	if c.StorageRetry == zero {
		c.StorageRetry = retry.DefaultPolicy()
	}
	if c.ModelRetry == zero {
		c.ModelRetry = retry.DefaultPolicy()
	}
}

// Orchestrator coordinates router, segmenter, external clients and storage
// for one job at a time. All collaborators are injected; the orchestrator
// holds no job state between calls; the database is the source of truth.
type Orchestrator struct {
	db          core.DbClient
	obj         core.ObjectClient
	embedder    core.EmbeddingProvider
	transcriber core.Transcriber
	converter   core.DocumentConverter
	segmenter   *media.Segmenter
	counter     tokens.Counter
	pool        *ants.Pool
	cfg         Config
	log         *slog.Logger
}

func NewOrchestrator(
	dbClient core.DbClient,
	obj core.ObjectClient,
	embedder core.EmbeddingProvider,
	transcriber core.Transcriber,
	converter core.DocumentConverter,
	segmenter *media.Segmenter,
	counter tokens.Counter,
	cfg Config,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if dbClient == nil {
		return nil, ErrDbClientRequired
	}
	if obj == nil {
		return nil, ErrObjectClientRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if transcriber == nil {
		return nil, ErrTranscriberRequired
	}
	if converter == nil {
		return nil, ErrConverterRequired
	}
	if segmenter == nil {
		return nil, ErrSegmenterRequired
	}
	if counter == nil {
		counter = tokens.ApproxCounter
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	pool, err := ants.NewPool(cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("create segment pool: %w", err)
	}

	return &Orchestrator{
		db:          dbClient,
		obj:         obj,
		embedder:    embedder,
		transcriber: transcriber,
		converter:   converter,
		segmenter:   segmenter,
		counter:     counter,
		pool:        pool,
		cfg:         cfg,
		log:         logger,
	}, nil
}

// Release frees the segment worker pool.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// GetJob fetches one job for its owner.
func (o *Orchestrator) GetJob(ctx context.Context, jobID, userID string) (*models.ProcessingJob, error) {
	job, err := o.readJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, core.ErrJobNotFound
	}
	if job.UserID != userID {
		return nil, core.ErrNotOwner
	}
	return job, nil
}

// ListJobs lists the caller's jobs, optionally filtered by status.
func (o *Orchestrator) ListJobs(ctx context.Context, userID string, status models.JobStatus) ([]models.ProcessingJob, error) {
	return retry.Do(ctx, o.cfg.DBRetry, db.ClassifyError, func(ctx context.Context) ([]models.ProcessingJob, error) {
		return o.db.ListJobs(ctx, userID, status)
	})
}

// StartJob claims a pending job, runs it to a terminal state, and returns
// the final job row. Jobs already processing or settled return their
// current state instead of restarting. Processing failures never escape as
// errors: they end up persisted on the job row.
func (o *Orchestrator) StartJob(ctx context.Context, jobID, userID string) (*models.ProcessingJob, error) {
	job, err := o.readJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, core.ErrJobNotFound
	}
	if job.UserID != userID {
		return nil, core.ErrNotOwner
	}
	if job.Status != models.JobPending {
		o.log.Info("start requested for non-pending job", "job", jobID, "status", job.Status)
		return job, nil
	}

	startedAt := time.Now().UTC()
	claimed, err := retry.Do(ctx, o.cfg.DBRetry, db.ClassifyError, func(ctx context.Context) (bool, error) {
		return o.db.ClaimJob(ctx, jobID, startedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		// Lost the race: deleted, or another worker claimed it.
		current, err := o.readJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, core.ErrJobNotFound
		}
		o.log.Info("job claimed elsewhere", "job", jobID, "status", current.Status)
		return current, nil
	}
	job.Status = models.JobProcessing
	job.StartedAt = &startedAt

	o.log.Info("job started", "job", jobID, "file", job.FileName, "size", job.FileSize)
	procErr := o.process(ctx, job)
	o.finish(ctx, job, procErr)

	final, err := o.readJob(ctx, jobID)
	if err != nil || final == nil {
		return job, nil
	}
	return final, nil
}

// process runs the content-type strategy and persists the chunk set.
func (o *Orchestrator) process(ctx context.Context, job *models.ProcessingJob) error {
	ct, err := router.Classify(job.FileName, "")
	if err != nil {
		if ct, err = router.Classify(job.SourcePath, ""); err != nil {
			return core.Terminal(err)
		}
	}

	ws, err := NewWorkspace(o.cfg.TempDir, job.JobID, o.log)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := o.advanceStage(ctx, job.JobID, "downloading"); err != nil {
		return err
	}
	data, err := retry.Do(ctx, o.cfg.StorageRetry, objectclient.ClassifyError, func(ctx context.Context) ([]byte, error) {
		return o.obj.Download(ctx, job.SourcePath)
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", job.SourcePath, err)
	}

	docID := job.ChunkDocumentID()

	var chunks []models.Chunk
	switch ct {
	case router.Document:
		chunks, err = o.processDocument(ctx, job, docID, data)
	case router.Video:
		chunks, err = o.processVideo(ctx, job, docID, ws, data)
	case router.Audio:
		chunks, err = o.processAudio(ctx, job, docID, ws, data)
	case router.Image:
		chunks, err = o.processImage(ctx, job, docID, data)
	default:
		err = core.Terminalf("no strategy for content type %q", ct)
	}
	if err != nil {
		return err
	}

	if err := o.advanceStage(ctx, job.JobID, "storing"); err != nil {
		return err
	}
	_, err = retry.Do(ctx, o.cfg.DBRetry, db.ClassifyError, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.db.ReplaceChunks(ctx, docID, chunks)
	})
	if err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	o.log.Info("chunks stored", "job", job.JobID, "document", docID, "chunks", len(chunks))
	return nil
}

// finish records the terminal transition exactly once. Cancelled jobs have
// no row left to write; their partial work was already discarded.
func (o *Orchestrator) finish(ctx context.Context, job *models.ProcessingJob, procErr error) {
	completedAt := time.Now().UTC()

	status := models.JobProcessed
	message := ""
	switch {
	case procErr == nil:
	case core.IsCancelled(procErr):
		o.log.Warn("job cancelled mid-flight, discarding work", "job", job.JobID)
		return
	default:
		status = models.JobError
		message = procErr.Error()
		o.log.Error("job failed", "job", job.JobID, "error", procErr)
	}

	applied, err := retry.Do(ctx, o.cfg.DBRetry, db.ClassifyError, func(ctx context.Context) (bool, error) {
		return o.db.FinishJob(ctx, job.JobID, status, message, completedAt)
	})
	if err != nil {
		if core.IsCancelled(err) {
			o.log.Warn("job vanished before finish", "job", job.JobID)
			return
		}
		o.log.Error("failed to finalize job", "job", job.JobID, "status", status, "error", err)
		return
	}
	if !applied {
		o.log.Warn("job already finalized, finish was a no-op", "job", job.JobID, "status", status)
		return
	}
	if status == models.JobProcessed {
		o.log.Info("job processed", "job", job.JobID)
	}
}

// advanceStage is a best-effort progress marker with one crucial property:
// it is how cancellation is detected. The vanished-row signal comes back
// as ErrJobCancelled and is never retried.
func (o *Orchestrator) advanceStage(ctx context.Context, jobID, stage string) error {
	_, err := retry.Do(ctx, o.cfg.DBRetry, db.ClassifyError, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.db.UpdateStage(ctx, jobID, stage)
	})
	if err != nil {
		return err
	}
	o.log.Debug("stage advanced", "job", jobID, "stage", stage)
	return nil
}

func (o *Orchestrator) readJob(ctx context.Context, jobID string) (*models.ProcessingJob, error) {
	return retry.Do(ctx, o.cfg.DBRetry, db.ClassifyError, func(ctx context.Context) (*models.ProcessingJob, error) {
		return o.db.GetJob(ctx, jobID)
	})
}
