package db

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediora-ai/mediora/internal/retry"
)

// ClassifyError decides whether a database error is worth retrying.
// Connection loss, timeouts and lock contention are transient; constraint
// violations and malformed statements cannot be fixed by retrying.
func ClassifyError(err error) retry.Kind {
	if err == nil {
		return retry.KindRetryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.KindRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		// 40001 serialization failure, 40P01 deadlock.
		case strings.HasPrefix(pgErr.Code, "40"):
			return retry.KindRetryable
		// 08xxx connection exceptions.
		case strings.HasPrefix(pgErr.Code, "08"):
			return retry.KindRetryable
		// 53xxx insufficient resources, 57xxx operator intervention.
		case strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57"):
			return retry.KindRetryable
		// 22xxx data exceptions, 23xxx integrity violations, 42xxx syntax.
		case strings.HasPrefix(pgErr.Code, "22"),
			strings.HasPrefix(pgErr.Code, "23"),
			strings.HasPrefix(pgErr.Code, "42"):
			return retry.KindTerminal
		default:
			return retry.KindRetryable
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.KindRetryable
	}
	if pgconn.SafeToRetry(err) {
		return retry.KindRetryable
	}

	return retry.KindRetryable
}
