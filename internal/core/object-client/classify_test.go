package objectclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"

	"github.com/mediora-ai/mediora/internal/retry"
)

func respError(status int) error {
	return &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
		Err:      errors.New("request failed"),
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Kind
	}{
		{name: "missing key is terminal", err: &types.NoSuchKey{}, want: retry.KindTerminal},
		{name: "not found is terminal", err: &types.NotFound{}, want: retry.KindTerminal},
		{name: "wrapped missing key", err: fmt.Errorf("download: %w", &types.NoSuchKey{}), want: retry.KindTerminal},
		{name: "throttled", err: respError(http.StatusTooManyRequests), want: retry.KindRetryable},
		{name: "server error", err: respError(http.StatusServiceUnavailable), want: retry.KindRetryable},
		{name: "forbidden is terminal", err: respError(http.StatusForbidden), want: retry.KindTerminal},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: retry.KindRetryable},
		{name: "plain error defaults retryable", err: errors.New("tls handshake timeout"), want: retry.KindRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
