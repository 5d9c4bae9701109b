package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-pg/pg/v10"
)

const slowQueryThreshold = 200 * time.Millisecond

// QueryHook logs document statements at debug level; failed or slow ones at
// warn level.
type QueryHook struct {
	logger *slog.Logger
	slow   time.Duration
}

func NewQueryHook(logger *slog.Logger) *QueryHook {
	return &QueryHook{
		logger: logger,
		slow:   slowQueryThreshold,
	}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *pg.QueryEvent) (context.Context, error) {
	return ctx, nil
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *pg.QueryEvent) error {
	query, err := event.FormattedQuery()
	if err != nil {
		h.logger.Error("failed to format query", "error", err)
		return nil
	}

	duration := time.Since(event.StartTime)
	level := slog.LevelDebug
	if event.Err != nil || duration >= h.slow {
		level = slog.LevelWarn
	}

	attrs := []any{"query", string(query), "duration", duration}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err)
	}
	if event.Result != nil {
		attrs = append(attrs, "rows", event.Result.RowsAffected())
	}

	h.logger.Log(ctx, level, "document query", attrs...)

	return nil
}
