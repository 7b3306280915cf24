package models

import (
	"errors"
	"time"
)

// JobStatus is the lifecycle state of a processing job.
// Transitions are monotonic: pending -> processing -> processed|error.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobProcessed  JobStatus = "processed"
	JobError      JobStatus = "error"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobProcessed || s == JobError
}

// ProcessingJob is one row per file submitted for processing.
// The row is created pending by the intake side; the orchestrator claims,
// advances and finalizes it.
type ProcessingJob struct {
	JobID           string     `db:"job_id" json:"job_id"`
	DocumentID      *string    `db:"document_id" json:"document_id,omitempty"`
	UserID          string     `db:"user_id" json:"user_id"`
	OrganizationID  *string    `db:"organization_id" json:"organization_id,omitempty"`
	SourcePath      string     `db:"source_path" json:"source_path"`
	FileName        string     `db:"file_name" json:"file_name"`
	FileSize        int64      `db:"file_size" json:"file_size"`
	Status          JobStatus  `db:"status" json:"status"`
	ProcessingStage string     `db:"processing_stage" json:"processing_stage"`
	ErrorMessage    *string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	StartedAt       *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// ChunkDocumentID resolves the logical document a job's chunks belong to.
// Jobs created before a document record exists fall back to the job id.
func (j *ProcessingJob) ChunkDocumentID() string {
	if j.DocumentID != nil && *j.DocumentID != "" {
		return *j.DocumentID
	}
	return j.JobID
}

// Chunk is one retrievable unit of content produced from a job.
type Chunk struct {
	ChunkID             string        `db:"chunk_id" json:"chunk_id"`
	DocumentID          string        `db:"document_id" json:"document_id"`
	OrdinalIndex        int           `db:"ordinal_index" json:"ordinal_index"`
	Text                string        `db:"text" json:"text"`
	TextEmbedding       []float32     `db:"text_embedding" json:"text_embedding,omitempty"`
	MultimodalEmbedding []float32     `db:"multimodal_embedding" json:"multimodal_embedding,omitempty"`
	Context             string        `db:"context" json:"context,omitempty"`
	Silent              bool          `db:"silent" json:"silent"`
	Metadata            ChunkMetadata `db:"metadata" json:"metadata"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
}

var errChunkNoEmbedding = errors.New("chunk has text but no embedding and is not marked silent")

// Validate enforces the embedding invariant: every chunk carries at least
// one embedding unless it is explicitly silent.
func (c *Chunk) Validate() error {
	if len(c.TextEmbedding) == 0 && len(c.MultimodalEmbedding) == 0 && !c.Silent {
		return errChunkNoEmbedding
	}
	if err := c.Metadata.Validate(); err != nil {
		return err
	}
	return nil
}
