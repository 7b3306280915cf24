package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/mediora-ai/mediora/internal/retry"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Kind
	}{
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, want: retry.KindRetryable},
		{name: "server error", err: &googleapi.Error{Code: http.StatusInternalServerError}, want: retry.KindRetryable},
		{name: "bad request is terminal", err: &googleapi.Error{Code: http.StatusBadRequest}, want: retry.KindTerminal},
		{name: "unauthorized is terminal", err: &googleapi.Error{Code: http.StatusUnauthorized}, want: retry.KindTerminal},
		{name: "wrapped api error", err: fmt.Errorf("embed: %w", &googleapi.Error{Code: http.StatusForbidden}), want: retry.KindTerminal},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: retry.KindRetryable},
		{name: "plain error defaults retryable", err: errors.New("stream reset"), want: retry.KindRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
