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

// processDocument converts the document into ordered text blocks, embeds
// them in one batch request and builds the chunk set in document order.
func (o *Orchestrator) processDocument(ctx context.Context, job *models.ProcessingJob, docID string, data []byte) ([]models.Chunk, error) {
	if err := o.advanceStage(ctx, job.JobID, "converting"); err != nil {
		return nil, err
	}

	contentType := mimetype.Detect(data).String()
	blocks, err := o.converter.ConvertAndChunk(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	if len(blocks) == 0 {
		return nil, core.Terminalf("document produced no text blocks")
	}

	type pendingBlock struct {
		text  string
		pages []int
	}
	pending := make([]pendingBlock, 0, len(blocks))
	for i, block := range blocks {
		stage := fmt.Sprintf("processing_chunk_%d_of_%d", i+1, len(blocks))
		if err := o.advanceStage(ctx, job.JobID, stage); err != nil {
			return nil, err
		}

		text := tokens.Truncate(block.Text, o.counter, o.cfg.MaxTextTokens)
		if text == "" {
			continue
		}
		pending = append(pending, pendingBlock{text: text, pages: block.Pages})
	}
	if len(pending) == 0 {
		return nil, core.Terminalf("document produced no embeddable text")
	}

	if err := o.advanceStage(ctx, job.JobID, "embedding"); err != nil {
		return nil, err
	}
	texts := make([]string, len(pending))
	for i := range pending {
		texts[i] = pending[i].text
	}
	embeddings, err := retry.Do(ctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) ([][]float32, error) {
		return o.embedder.EmbedTexts(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("embed blocks: %w", err)
	}
	if len(embeddings) != len(pending) {
		return nil, core.Terminalf("embedder returned %d vectors for %d blocks", len(embeddings), len(pending))
	}

	chunks := make([]models.Chunk, 0, len(pending))
	for i, p := range pending {
		meta, err := models.DocumentMetadata(p.pages)
		if err != nil {
			return nil, core.Terminal(err)
		}

		chunks = append(chunks, models.Chunk{
			ChunkID:       uuid.NewString(),
			DocumentID:    docID,
			OrdinalIndex:  i,
			Text:          p.text,
			TextEmbedding: embeddings[i],
			Metadata:      meta,
			CreatedAt:     time.Now().UTC(),
		})
	}
	return chunks, nil
}

func (o *Orchestrator) embedText(ctx context.Context, text string) ([]float32, error) {
	return retry.Do(ctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) ([]float32, error) {
		return o.embedder.EmbedText(ctx, text)
	})
}
