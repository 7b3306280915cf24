package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mediora-ai/mediora/internal/core"
)

// runBatches executes n segment tasks in batches: parallel within a batch
// on the worker pool, sequential across batches. Each task runs under its
// own timeout; a timeout counts as a segment failure. Failures feed a
// fail-fast counter: once more than floor(n*tolerance) segments have
// failed, the whole run aborts terminally instead of burning time on a job
// that cannot reach acceptable completeness. afterBatch runs between
// batches; its error (notably the cancellation signal from a stage update)
// stops all further launches.
//
// The returned values are the succeeded tasks only, ordered by index. A
// run where every segment failed is always an error, regardless of
// tolerance.
func runBatches[R any](
	ctx context.Context,
	pool *ants.Pool,
	n, batchSize int,
	tolerance float64,
	timeout time.Duration,
	task func(ctx context.Context, index int) (R, error),
	afterBatch func(done int) error,
	logger *slog.Logger,
) ([]R, error) {
	if n == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	maxFailures := int(float64(n) * tolerance)

	type slot struct {
		value R
		err   error
		ok    bool
	}
	slots := make([]slot, n)

	var (
		failures int
		lastErr  error
	)

	for start := 0; start < n; start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batchSize
		if end > n {
			end = n
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			run := func() {
				defer wg.Done()
				taskCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				v, err := task(taskCtx, i)
				if err != nil {
					slots[i] = slot{err: err}
					return
				}
				slots[i] = slot{value: v, ok: true}
			}
			if err := pool.Submit(run); err != nil {
				// Pool unavailable; run inline rather than dropping the segment.
				run()
			}
		}
		wg.Wait()

		for i := start; i < end; i++ {
			if slots[i].ok {
				continue
			}
			err := slots[i].err
			if core.IsCancelled(err) {
				return nil, err
			}
			failures++
			lastErr = err
			logger.Warn("segment failed", "segment", i, "failures", failures, "budget", maxFailures, "error", err)
			if failures > maxFailures {
				return nil, core.Terminal(fmt.Errorf("aborting after %d segment failures (budget %d): %w", failures, maxFailures, err))
			}
		}

		if afterBatch != nil {
			if err := afterBatch(end); err != nil {
				return nil, err
			}
		}
	}

	out := make([]R, 0, n-failures)
	for i := range slots {
		if slots[i].ok {
			out = append(out, slots[i].value)
		}
	}
	if len(out) == 0 {
		return nil, core.Terminal(fmt.Errorf("no segments succeeded: %w", lastErr))
	}
	return out, nil
}
