package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mediora-ai/mediora/internal/core"
	"github.com/mediora-ai/mediora/internal/core/llm"
	"github.com/mediora-ai/mediora/internal/media"
	"github.com/mediora-ai/mediora/internal/models"
	"github.com/mediora-ai/mediora/internal/retry"
	"github.com/mediora-ai/mediora/internal/tokens"
)

// processAudio segments the audio, re-encodes each segment to the fixed
// profile and transcribes it. Segments with no speech become silent chunks
// with no embeddings; everything else gets a text embedding.
func (o *Orchestrator) processAudio(ctx context.Context, job *models.ProcessingJob, docID string, ws *Workspace, data []byte) ([]models.Chunk, error) {
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
		return nil, core.Terminalf("audio shorter than minimum segment duration")
	}

	n := len(windows)
	results, err := runBatches(ctx, o.pool, n, o.cfg.BatchSize, o.cfg.FailureTolerance, o.cfg.SegmentTimeout,
		func(ctx context.Context, i int) (segmentResult, error) {
			return o.processAudioSegment(ctx, src, ws, windows[i])
		},
		func(done int) error {
			return o.advanceStage(ctx, job.JobID, fmt.Sprintf("processing_chunk_%d_of_%d", done, n))
		},
		o.log,
	)
	if err != nil {
		return nil, err
	}

	return assembleSegmentChunks(docID, models.KindAudio, results)
}

func (o *Orchestrator) processAudioSegment(ctx context.Context, src string, ws *Workspace, w media.Window) (segmentResult, error) {
	var out segmentResult

	seg, err := o.segmenter.EncodeAudioSegment(ctx, src, ws.Dir(), w)
	if err != nil {
		return out, err
	}
	segBytes, err := os.ReadFile(seg.Path)
	if err != nil {
		return out, err
	}
	_ = os.Remove(seg.Path)

	transcript, err := retry.Do(ctx, o.cfg.ModelRetry, llm.ClassifyError, func(ctx context.Context) (*core.Transcript, error) {
		return o.transcriber.Transcribe(ctx, segBytes, media.AudioSegmentMIME, o.cfg.LanguageHint)
	})
	if err != nil {
		return out, err
	}

	out.window = w
	out.text = tokens.Truncate(transcript.Text, o.counter, o.cfg.MaxTextTokens)
	if out.text == "" {
		// No speech in this window; keep the chunk for coverage but mark it.
		out.silent = true
		return out, nil
	}

	if out.textEmb, err = o.embedText(ctx, out.text); err != nil {
		return out, err
	}
	return out, nil
}
