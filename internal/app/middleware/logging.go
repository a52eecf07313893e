package middleware

import (
	"context"
	"log/slog"
	"time"

	"roomfinder/internal/app/queries"
)

// QueryLogging logs every query with its outcome and duration.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		if logger == nil {
			return next
		}
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			attrs := []any{"query", q.Key(), "duration", time.Since(start)}
			if err != nil {
				logger.WarnContext(ctx, "query failed", append(attrs, "error", err)...)
				return res, err
			}
			logger.DebugContext(ctx, "query handled", attrs...)
			return res, nil
		})
	}
}
