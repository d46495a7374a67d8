package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs task start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, info Info, next Handler) error {
		logger.Info("task started",
			slog.String("task_name", info.Name),
			slog.String("task_id", info.ID.String()),
			slog.String("source", info.Source),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("task failed",
				slog.String("task_name", info.Name),
				slog.String("task_id", info.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("task completed",
				slog.String("task_name", info.Name),
				slog.String("task_id", info.ID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
