package middleware

import (
	"context"
	"log/slog"
)

// Timeout returns middleware that enforces a per-task execution deadline.
// If the task has a non-zero Timeout, a context.WithTimeout wraps the handler
// call. When the deadline is exceeded the context is cancelled and the
// handler should return context.DeadlineExceeded. The task itself must
// observe the context; nothing here preempts it.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, info Info, next Handler) error {
		if info.Timeout > 0 {
			logger.Debug("task timeout set",
				slog.String("task_id", info.ID.String()),
				slog.Duration("timeout", info.Timeout),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, info.Timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
