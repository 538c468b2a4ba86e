package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"stratoguide/internal/domain/model"
	"stratoguide/internal/infra/logging"
)

type countingLogs struct {
	sweeps atomic.Int32
	days   atomic.Int32
}

func (c *countingLogs) Save(ctx context.Context, rec *model.AnswerRecord) error { return nil }
func (c *countingLogs) FindByID(ctx context.Context, id string) (*model.AnswerRecord, error) {
	return nil, nil
}
func (c *countingLogs) ListRecent(ctx context.Context, limit int) ([]*model.AnswerRecord, error) {
	return nil, nil
}
func (c *countingLogs) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	c.sweeps.Add(1)
	c.days.Store(int32(retentionDays))
	return 2, nil
}

func TestRetentionWorker_SweepsUntilCancelled(t *testing.T) {
	logs := &countingLogs{}
	w := NewRetentionWorker(10*time.Millisecond, 30, logs, logging.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}
	if logs.sweeps.Load() < 2 {
		t.Fatalf("sweeps = %d", logs.sweeps.Load())
	}
	if logs.days.Load() != 30 {
		t.Fatalf("days = %d", logs.days.Load())
	}
}
