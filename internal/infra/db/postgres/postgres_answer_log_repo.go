// File: internal/infra/db/postgres/postgres_answer_log_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/repository"
	"stratoguide/internal/infra/security"
)

var _ repository.AnswerLogRepository = (*AnswerLogRepo)(nil)

// undefined_table
const pgUndefinedTable = "42P01"

// AnswerLogRepo persists answered queries. Query and answer text are sealed
// with the encryption service when one is configured.
type AnswerLogRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewAnswerLogRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *AnswerLogRepo {
	return &AnswerLogRepo{pool: pool, enc: enc}
}

func (r *AnswerLogRepo) Save(ctx context.Context, rec *model.AnswerRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	q, err := r.enc.Seal(rec.Query)
	if err != nil {
		return fmt.Errorf("seal query: %w", err)
	}
	a, err := r.enc.Seal(rec.Answer)
	if err != nil {
		return fmt.Errorf("seal answer: %w", err)
	}

	const stmt = `
INSERT INTO answer_log (id, query, answer, provider, model, cached, latency_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING;`
	if _, err := r.pool.Exec(ctx, stmt, rec.ID, q, a, rec.Provider, rec.Model, rec.Cached, rec.LatencyMs, rec.CreatedAt); err != nil {
		return wrapPgErr("save answer log", err)
	}
	return nil
}

func (r *AnswerLogRepo) FindByID(ctx context.Context, id string) (*model.AnswerRecord, error) {
	const q = `
SELECT id, query, answer, provider, model, cached, latency_ms, created_at
FROM answer_log WHERE id = $1;`
	rec, err := r.scan(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *AnswerLogRepo) ListRecent(ctx context.Context, limit int) ([]*model.AnswerRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, query, answer, provider, model, cached, latency_ms, created_at
FROM answer_log ORDER BY created_at DESC LIMIT $1;`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, wrapPgErr("list answer log", err)
	}
	defer rows.Close()

	var out []*model.AnswerRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *AnswerLogRepo) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, domain.ErrInvalidArgument
	}
	const q = `DELETE FROM answer_log WHERE created_at < NOW() - ($1::int * INTERVAL '1 day');`
	tag, err := r.pool.Exec(ctx, q, retentionDays)
	if err != nil {
		return 0, wrapPgErr("cleanup answer log", err)
	}
	return tag.RowsAffected(), nil
}

func (r *AnswerLogRepo) scan(row pgx.Row) (*model.AnswerRecord, error) {
	var rec model.AnswerRecord
	if err := row.Scan(&rec.ID, &rec.Query, &rec.Answer, &rec.Provider, &rec.Model, &rec.Cached, &rec.LatencyMs, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, domain.ErrReadDatabaseRow
	}
	var err error
	if rec.Query, err = r.enc.Open(rec.Query); err != nil {
		return nil, fmt.Errorf("open query: %w", err)
	}
	if rec.Answer, err = r.enc.Open(rec.Answer); err != nil {
		return nil, fmt.Errorf("open answer: %w", err)
	}
	return &rec, nil
}

func wrapPgErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%s: answer_log table missing, apply deploy/postgres/init.sql: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
