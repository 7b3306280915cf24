package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mediora-ai/mediora/internal/core"
	"github.com/mediora-ai/mediora/internal/core/llm"
	"github.com/mediora-ai/mediora/internal/media"
	"github.com/mediora-ai/mediora/internal/models"
	"github.com/mediora-ai/mediora/internal/retry"
	"github.com/mediora-ai/mediora/internal/tokens"
)

// descriptionTokenBudget bounds the scene description passed as context to
// the multimodal embedding; it is steering text, not content.
const descriptionTokenBudget = 256

// segmentResult is the fully-processed outcome of one media segment,
// carried from the batch workers to chunk assembly.
type segmentResult struct {
	window      media.Window
	text        string
	context     string
	textEmb     []float32
	mmEmb       []float32
	silent      bool
}

// processVideo segments the video, compresses each segment under the byte
// ceiling, and runs transcription, description and both embeddings per
// segment inside the fail-fast batch framework.
func (o *Orchestrator) processVideo(ctx context.Context, job *models.ProcessingJob, docID string, ws *Workspace, data []byte) ([]models.Chunk, error) {
	src, err := ws.WriteFile("source"+filepath.Ext(job.FileName), data)
	if err != nil {
		return nil, err
	}

	if err := o.advanceStage(ctx, job.JobID, "segmenting"); err != nil {
		return nil, err
	}
	windows, err := o.segmenter.Plan(ctx, src)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, core.Terminalf("video shorter than minimum segment duration")
	}

	n := len(windows)
	results, err := runBatches(ctx, o.pool, n, o.cfg.BatchSize, o.cfg.FailureTolerance, o.cfg.SegmentTimeout,
		func(ctx context.Context, i int) (segmentResult, error) {
			return o.processVideoSegment(ctx, src, ws, windows[i])
		},
		func(done int) error {
			return o.advanceStage(ctx, job.JobID, fmt.Sprintf("processing_chunk_%d_of_%d", done, n))
		},
		o.log,
	)
	if err != nil {
		return nil, err
	}

	return assembleSegmentChunks(docID, models.KindVideo, results)
}

// processVideoSegment is one batch task: encode the window, then fan out
// transcription and scene description, then embed.
func (o *Orchestrator) processVideoSegment(ctx context.Context, src string, ws *Workspace, w media.Window) (segmentResult, error) {
	var out segmentResult

	seg, err := o.segmenter.EncodeVideoSegment(ctx, src, ws.Dir(), w)
	if err != nil {
		return out, err
	}
	segBytes, err := os.ReadFile(seg.Path)
	if err != nil {
		return out, err
	}
	// Encoded segments can be large; drop each one as soon as it is read.
	_ = os.Remove(seg.Path)

	var (
		transcript  *core.Transcript
		description string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := retry.Do(gctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) (*core.Transcript, error) {
			return o.transcriber.Transcribe(ctx, segBytes, media.VideoSegmentMIME, o.cfg.LanguageHint)
		})
		transcript = t
		return err
	})
	g.Go(func() error {
		d, err := retry.Do(gctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) (string, error) {
			return o.transcriber.Describe(ctx, segBytes, media.VideoSegmentMIME)
		})
		description = d
		return err
	})
	if err := g.Wait(); err != nil {
		return out, err
	}

	out.window = w
	out.text = tokens.Truncate(transcript.Text, o.counter, o.cfg.MaxTextTokens)
	out.context = tokens.Truncate(description, o.counter, descriptionTokenBudget)

	if out.text != "" {
		if out.textEmb, err = o.embedText(ctx, out.text); err != nil {
			return out, err
		}
	}
	out.mmEmb, err = retry.Do(ctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) ([]float32, error) {
		return o.embedder.EmbedMedia(ctx, segBytes, media.VideoSegmentMIME, out.context)
	})
	if err != nil {
		return out, err
	}
	return out, nil
}

// assembleSegmentChunks turns succeeded segment results into chunks.
// Ordinal indexes are assigned from the time-ascending result order, so a
// dropped segment under the failure tolerance leaves no gap.
func assembleSegmentChunks(docID string, kind models.ContentKind, results []segmentResult) ([]models.Chunk, error) {
	chunks := make([]models.Chunk, 0, len(results))
	for _, r := range results {
		var (
			meta models.ChunkMetadata
			err  error
		)
		switch kind {
		case models.KindVideo:
			meta, err = models.VideoSegmentMetadata(r.window.Index, r.window.Start, r.window.End)
		case models.KindAudio:
			meta, err = models.AudioSegmentMetadata(r.window.Index, r.window.Start, r.window.End)
		default:
			err = fmt.Errorf("unexpected segment kind %q", kind)
		}
		if err != nil {
			return nil, core.Terminal(err)
		}

		chunks = append(chunks, models.Chunk{
			ChunkID:             uuid.NewString(),
			DocumentID:          docID,
			OrdinalIndex:        len(chunks),
			Text:                r.text,
			TextEmbedding:       r.textEmb,
			MultimodalEmbedding: r.mmEmb,
			Context:             r.context,
			Silent:              r.silent,
			Metadata:            meta,
			CreatedAt:           time.Now().UTC(),
		})
	}
	return chunks, nil
}
