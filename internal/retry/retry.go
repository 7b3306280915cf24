// Package retry wraps fallible operations with error classification,
// capped exponential backoff with jitter, and attempt budgets.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	retrygo "github.com/avast/retry-go/v4"

	"github.com/mediora-ai/mediora/internal/core"
)

// Kind is the outcome of classifying an error.
type Kind int

const (
	KindRetryable Kind = iota
	KindTerminal
	KindCancelled
)

// Classifier maps a dependency-specific error to a Kind. Classification is
// pluggable per external dependency: rate limits and 5xx are worth
// retrying, auth and validation failures are not.
type Classifier func(error) Kind

// Policy is the value object controlling retry behavior.
type Policy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Exponential bool
	Jitter      bool
}

// DefaultPolicy matches the common external-call profile.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Exponential: true,
		Jitter:      true,
	}
}

// Delay computes the sleep before retry attempt (1-based): attempt 1 already
// failed, so the first delay uses 2^0. The result is capped at MaxDelay and,
// with jitter, scaled by a uniform factor in [0.5, 1.0).
func (p Policy) Delay(attempt uint) time.Duration {
	d := p.BaseDelay
	if p.Exponential && attempt > 1 {
		shift := attempt - 1
		// Guard against overflow for absurd attempt counts.
		if shift > 32 {
			shift = 32
		}
		d = p.BaseDelay << shift
		if d <= 0 {
			d = p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()*0.5))
	}
	return d
}

// KindOf resolves the kind of err. Explicit wrappers on the chain win over
// the classifier, which keeps nested retries honest: an inner call's
// terminal verdict is never re-judged retryable by an outer loop.
// Unwrapped errors fall through to classify; with no classifier they
// default to retryable.
func KindOf(classify Classifier, err error) Kind {
	if core.IsCancelled(err) {
		return KindCancelled
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *core.TerminalError:
			return KindTerminal
		case *core.RetryableError:
			return KindRetryable
		}
	}
	if classify != nil {
		return classify(err)
	}
	return KindRetryable
}

// Do runs op under the policy. Terminal and cancellation errors propagate
// immediately with no sleep; retryable errors back off and retry up to the
// attempt budget, after which the last error is wrapped as a final,
// non-retryable failure.
func Do[T any](ctx context.Context, policy Policy, classify Classifier, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	out, err := retrygo.DoWithData(
		func() (T, error) { return op(ctx) },
		retrygo.Context(ctx),
		retrygo.Attempts(attempts),
		retrygo.LastErrorOnly(true),
		retrygo.RetryIf(func(err error) bool {
			return KindOf(classify, err) == KindRetryable
		}),
		retrygo.DelayType(func(n uint, _ error, _ *retrygo.Config) time.Duration {
			return policy.Delay(n + 1)
		}),
	)
	if err == nil {
		return out, nil
	}

	switch KindOf(classify, err) {
	case KindCancelled, KindTerminal:
		return out, err
	default:
		// Budget exhausted on a retryable error: the failure is final now.
		return out, core.Terminal(fmt.Errorf("retries exhausted after %d attempts: %w", attempts, err))
	}
}
