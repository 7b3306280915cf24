package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/mediora-ai/mediora/internal/retry"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Kind
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: retry.KindRetryable},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: retry.KindRetryable},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: retry.KindRetryable},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, want: retry.KindRetryable},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: retry.KindRetryable},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: retry.KindTerminal},
		{name: "invalid text representation", err: &pgconn.PgError{Code: "22P02"}, want: retry.KindTerminal},
		{name: "undefined column", err: &pgconn.PgError{Code: "42703"}, want: retry.KindTerminal},
		{name: "wrapped pg error", err: fmt.Errorf("update stage: %w", &pgconn.PgError{Code: "23503"}), want: retry.KindTerminal},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: retry.KindRetryable},
		{name: "plain error defaults retryable", err: errors.New("connection reset by peer"), want: retry.KindRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
