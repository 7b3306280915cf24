package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mediora-ai/mediora/internal/core"
	"github.com/mediora-ai/mediora/internal/core/llm"
	"github.com/mediora-ai/mediora/internal/models"
	"github.com/mediora-ai/mediora/internal/retry"
	"github.com/mediora-ai/mediora/internal/tokens"
)

// processImage produces exactly one chunk: a multimodal embedding of the
// image, optionally steered by a model-generated description. The
// description is best-effort context; its failure degrades the chunk, it
// does not fail the job.
func (o *Orchestrator) processImage(ctx context.Context, job *models.ProcessingJob, docID string, data []byte) ([]models.Chunk, error) {
	if err := o.advanceStage(ctx, job.JobID, "describing"); err != nil {
		return nil, err
	}

	mimeType := mimetype.Detect(data).String()

	description, err := retry.Do(ctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) (string, error) {
		return o.transcriber.Describe(ctx, data, mimeType)
	})
	if err != nil {
		if core.IsCancelled(err) {
			return nil, err
		}
		o.log.Warn("image description failed, embedding without context", "job", job.JobID, "error", err)
		description = ""
	}
	description = tokens.Truncate(description, o.counter, descriptionTokenBudget)

	if err := o.advanceStage(ctx, job.JobID, "embedding"); err != nil {
		return nil, err
	}
	embedding, err := retry.Do(ctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) ([]float32, error) {
		return o.embedder.EmbedMedia(ctx, data, mimeType, description)
	})
	if err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}

	meta, err := models.ImageMetadata(job.FileName)
	if err != nil {
		return nil, core.Terminal(err)
	}

	return []models.Chunk{{
		ChunkID:             uuid.NewString(),
		DocumentID:          docID,
		OrdinalIndex:        0,
		MultimodalEmbedding: embedding,
		Context:             description,
		Metadata:            meta,
		CreatedAt:           time.Now().UTC(),
	}}, nil
}
