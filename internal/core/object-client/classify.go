package objectclient

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/mediora-ai/mediora/internal/retry"
)

// ClassifyError decides whether an object-store error is worth retrying.
// Throttling, 5xx and network blips are transient; a missing object or any
// auth/validation 4xx is terminal.
func ClassifyError(err error) retry.Kind {
	if err == nil {
		return retry.KindRetryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.KindRetryable
	}

	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return retry.KindTerminal
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		code := respErr.HTTPStatusCode()
		switch {
		case code == http.StatusTooManyRequests || code >= 500:
			return retry.KindRetryable
		case code >= 400:
			return retry.KindTerminal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.KindRetryable
	}

	return retry.KindRetryable
}
