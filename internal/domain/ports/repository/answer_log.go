package repository

import (
	"context"

	"stratoguide/internal/domain/model"
)

type AnswerLogRepository interface {
	Save(ctx context.Context, rec *model.AnswerRecord) error
	FindByID(ctx context.Context, id string) (*model.AnswerRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*model.AnswerRecord, error)
	// CleanupOlderThan deletes records older than the provided retention.
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// AnswerCache keeps answers keyed by normalized query.
// A miss is reported as ("", false, nil).
type AnswerCache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Set(ctx context.Context, query, answer string) error
}
