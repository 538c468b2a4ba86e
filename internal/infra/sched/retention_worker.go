package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stratoguide/internal/domain/ports/repository"
	"stratoguide/internal/infra/metrics"
)

// RetentionWorker periodically deletes answer-log rows older than the retention window.
type RetentionWorker struct {
	interval time.Duration
	days     int
	logs     repository.AnswerLogRepository
	log      *zerolog.Logger
}

func NewRetentionWorker(interval time.Duration, days int, logs repository.AnswerLogRepository, logger *zerolog.Logger) *RetentionWorker {
	retLog := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{
		interval: interval,
		days:     days,
		logs:     logs,
		log:      &retLog,
	}
}

// Run sweeps once at start, then every interval until ctx is done.
func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Int("days", w.days).Dur("interval", w.interval).Msg("Starting retention worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	n, err := w.logs.CleanupOlderThan(ctx, w.days)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("retention sweep error")
		}
		return
	}
	if n > 0 {
		metrics.AddAnswerLogCleanup(n)
		w.log.Info().Int64("count", n).Msg("old answer log rows removed")
	}
}
