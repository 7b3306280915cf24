package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/mediora-ai/mediora/internal/retry"
)

// ClassifyError decides whether a model-provider error is worth retrying.
// Rate limits and 5xx are transient; auth, validation and quota-exhausted
// 4xx responses cannot be fixed by retrying and only waste budget.
func ClassifyError(err error) retry.Kind {
	if err == nil {
		return retry.KindRetryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.KindRetryable
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
			return retry.KindRetryable
		case apiErr.Code >= 400:
			return retry.KindTerminal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.KindRetryable
	}

	return retry.KindRetryable
}
