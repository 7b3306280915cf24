package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/mediora-ai/mediora/internal/config"
	"github.com/mediora-ai/mediora/internal/core"
	"github.com/mediora-ai/mediora/internal/models"
)

// DatabaseClient is the pooled, transactional storage layer for jobs and
// chunks. The pool is the only shared mutable resource in the process; a
// connection is checked out per statement and never held across a
// long-running external call.
type DatabaseClient struct {
	pool *pgxpool.Pool
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 10 * time.Minute

	// pgvector types must be registered on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	// Validate every checkout with a trivial liveness probe. Returning
	// false destroys the connection and the pool issues a fresh one, so a
	// broken connection is never handed to a caller.
	poolCfg.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		return conn.Ping(ctx) == nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{pool: pool}, nil
}

func (c *DatabaseClient) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *DatabaseClient) GetJob(ctx context.Context, jobID string) (*models.ProcessingJob, error) {
	const q = `
		SELECT job_id, document_id, user_id, organization_id, source_path, file_name,
		       file_size, status, processing_stage, error_message,
		       created_at, started_at, completed_at
		FROM processing_jobs
		WHERE job_id = $1
	`
	var j models.ProcessingJob
	err := c.pool.QueryRow(ctx, q, jobID).Scan(
		&j.JobID, &j.DocumentID, &j.UserID, &j.OrganizationID, &j.SourcePath, &j.FileName,
		&j.FileSize, &j.Status, &j.ProcessingStage, &j.ErrorMessage,
		&j.CreatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *DatabaseClient) ListJobs(ctx context.Context, userID string, status models.JobStatus) ([]models.ProcessingJob, error) {
	const q = `
		SELECT job_id, document_id, user_id, organization_id, source_path, file_name,
		       file_size, status, processing_stage, error_message,
		       created_at, started_at, completed_at
		FROM processing_jobs
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`
	rows, err := c.pool.Query(ctx, q, userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProcessingJob
	for rows.Next() {
		var j models.ProcessingJob
		if err := rows.Scan(
			&j.JobID, &j.DocumentID, &j.UserID, &j.OrganizationID, &j.SourcePath, &j.FileName,
			&j.FileSize, &j.Status, &j.ProcessingStage, &j.ErrorMessage,
			&j.CreatedAt, &j.StartedAt, &j.CompletedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ClaimJob moves a pending job to processing. The WHERE clause enforces the
// monotonic transition; a zero-row result means the row is gone or already
// claimed, which the orchestrator disambiguates by re-reading.
func (c *DatabaseClient) ClaimJob(ctx context.Context, jobID string, startedAt time.Time) (bool, error) {
	const q = `
		UPDATE processing_jobs
		SET status = $2, processing_stage = 'claimed', started_at = $3
		WHERE job_id = $1 AND status = $4
	`
	tag, err := c.pool.Exec(ctx, q, jobID, models.JobProcessing, startedAt, models.JobPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStage commits a progress marker immediately so external observers
// see live progress. Zero rows affected is the cancellation signal.
func (c *DatabaseClient) UpdateStage(ctx context.Context, jobID, stage string) error {
	const q = `
		UPDATE processing_jobs
		SET processing_stage = $2
		WHERE job_id = $1 AND status = $3
	`
	tag, err := c.pool.Exec(ctx, q, jobID, stage, models.JobProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s vanished or left processing: %w", jobID, core.ErrJobCancelled)
	}
	return nil
}

// FinishJob records the single terminal transition for a job. A false
// return with nil error means the job was already settled.
func (c *DatabaseClient) FinishJob(ctx context.Context, jobID string, status models.JobStatus, errorMessage string, completedAt time.Time) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("finish with non-terminal status %q", status)
	}

	var errMsg *string
	if errorMessage != "" {
		errMsg = &errorMessage
	}

	const q = `
		UPDATE processing_jobs
		SET status = $2, error_message = $3, completed_at = $4
		WHERE job_id = $1 AND status = $5
	`
	tag, err := c.pool.Exec(ctx, q, jobID, status, errMsg, completedAt, models.JobProcessing)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		current, err := c.GetJob(ctx, jobID)
		if err != nil {
			return false, err
		}
		if current == nil {
			return false, fmt.Errorf("job %s vanished before finish: %w", jobID, core.ErrJobCancelled)
		}
		return false, nil
	}
	return true, nil
}

// ReplaceChunks atomically swaps the chunk set for a document. All prior
// chunks are deleted and the new set inserted in one transaction; any
// failure rolls back fully so no partial set is ever visible.
func (c *DatabaseClient) ReplaceChunks(ctx context.Context, documentID string, chunks []models.Chunk) error {
	for i := range chunks {
		if err := chunks[i].Validate(); err != nil {
			return core.Terminal(fmt.Errorf("chunk %d invalid: %w", i, err))
		}
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete prior chunks: %w", err)
	}

	const q = `
		INSERT INTO chunks
			(chunk_id, document_id, ordinal_index, text, text_embedding,
			 multimodal_embedding, context, silent, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
	`
	batch := &pgx.Batch{}
	for i := range chunks {
		ch := &chunks[i]

		meta, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}

		var contextText *string
		if ch.Context != "" {
			contextText = &ch.Context
		}
		var createdAt *time.Time
		if !ch.CreatedAt.IsZero() {
			createdAt = &ch.CreatedAt
		}

		batch.Queue(q,
			ch.ChunkID, documentID, ch.OrdinalIndex, ch.Text,
			nullableVector(ch.TextEmbedding), nullableVector(ch.MultimodalEmbedding),
			contextText, ch.Silent, meta, createdAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func nullableVector(v []float32) *pgvector.Vector {
	if len(v) == 0 {
		return nil
	}
	vec := pgvector.NewVector(v)
	return &vec
}
