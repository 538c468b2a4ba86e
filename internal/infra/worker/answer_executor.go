package worker

import (
	"context"
	"errors"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/infra/metrics"
	"stratoguide/internal/usecase"
)

var _ usecase.AnswerUseCase = (*AnswerExecutor)(nil)

// AnswerExecutor runs answer requests on the pool so at most N provider
// round-trips are in flight.
type AnswerExecutor struct {
	pool    *Pool
	answers usecase.AnswerUseCase
}

func NewAnswerExecutor(pool *Pool, answers usecase.AnswerUseCase) *AnswerExecutor {
	return &AnswerExecutor{pool: pool, answers: answers}
}

func (e *AnswerExecutor) Answer(ctx context.Context, query string) (*model.AnswerRecord, error) {
	rec, err := Do(ctx, e.pool, func(ctx context.Context) (*model.AnswerRecord, error) {
		return e.answers.Answer(ctx, query)
	})
	switch {
	case errors.Is(err, domain.ErrWorkerSaturated):
		metrics.IncAnswerJob("rejected")
	case err != nil:
		metrics.IncAnswerJob("failed")
	default:
		metrics.IncAnswerJob("completed")
	}
	return rec, err
}
