package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediora-ai/mediora/internal/core"
)

// fastPolicy keeps test runs snappy.
func fastPolicy(attempts uint) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Microsecond,
		MaxDelay:    time.Millisecond,
		Exponential: true,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(5), nil, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryableRetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastPolicy(5), nil, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", core.Retryable(errors.New("flaky"))
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, calls)
}

func TestDo_TerminalFailsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("bad input")
	_, err := Do(context.Background(), fastPolicy(5), nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, core.Terminal(boom)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)
	assert.True(t, core.IsTerminal(err))
}

func TestDo_ExhaustionBecomesTerminal(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(3), nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, core.Retryable(errors.New("still flaky"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, core.IsTerminal(err), "an exhausted retry budget must not look retryable to outer loops")
}

func TestDo_CancellationNeverRetried(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(5), nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, core.ErrJobCancelled
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, core.IsCancelled(err))
	assert.False(t, core.IsTerminal(err))
}

func TestDo_ClassifierDecidesUnwrapped(t *testing.T) {
	classify := func(err error) Kind {
		if err.Error() == "rate limited" {
			return KindRetryable
		}
		return KindTerminal
	}

	calls := 0
	_, err := Do(context.Background(), fastPolicy(5), classify, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("rate limited")
		}
		return 0, errors.New("invalid argument")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestKindOf(t *testing.T) {
	alwaysRetry := func(error) Kind { return KindRetryable }

	tests := []struct {
		name     string
		err      error
		classify Classifier
		want     Kind
	}{
		{
			name: "cancellation first",
			err:  fmt.Errorf("stage: %w", core.ErrJobCancelled),
			want: KindCancelled,
		},
		{
			name: "context cancellation",
			err:  context.Canceled,
			want: KindCancelled,
		},
		{
			name: "explicit terminal",
			err:  core.Terminal(errors.New("nope")),
			want: KindTerminal,
		},
		{
			name: "terminal buried under wrapping",
			err:  fmt.Errorf("outer: %w", core.Terminal(errors.New("inner"))),
			want: KindTerminal,
		},
		{
			name:     "explicit wrapper beats classifier",
			err:      core.Terminal(errors.New("exhausted")),
			classify: alwaysRetry,
			want:     KindTerminal,
		},
		{
			name: "explicit retryable",
			err:  core.Retryable(errors.New("flaky")),
			want: KindRetryable,
		},
		{
			name: "outermost wrapper wins over deeper one",
			err:  core.Terminal(core.Retryable(errors.New("inner flaky"))),
			want: KindTerminal,
		},
		{
			name: "unwrapped defaults retryable",
			err:  errors.New("mystery"),
			want: KindRetryable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.classify, tt.err))
		})
	}
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Exponential: true,
	}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, 800*time.Millisecond, p.Delay(4))
	// Capped at MaxDelay from here on.
	assert.Equal(t, time.Second, p.Delay(5))
	assert.Equal(t, time.Second, p.Delay(40))
}

func TestPolicyDelay_Jitter(t *testing.T) {
	p := Policy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Exponential: true,
		Jitter:      true,
	}

	for i := 0; i < 50; i++ {
		d := p.Delay(2)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 200*time.Millisecond)
	}
}
