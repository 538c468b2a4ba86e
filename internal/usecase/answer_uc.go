// File: internal/usecase/answer_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/adapter"
	"stratoguide/internal/domain/ports/repository"
	"stratoguide/internal/infra/logging"
)

// Compile-time check
var _ AnswerUseCase = (*answerUC)(nil)

// AnswerUseCase produces advisor answers for the chat endpoint.
type AnswerUseCase interface {
	Answer(ctx context.Context, query string) (*model.AnswerRecord, error)
}

// AnswerDeps groups the optional collaborators; nil fields are skipped.
type AnswerDeps struct {
	Router    adapter.ChatRouter
	Cache     repository.AnswerCache
	Logs      repository.AnswerLogRepository
	Retriever adapter.ContextRetriever
	TopK      int
}

type answerUC struct {
	deps AnswerDeps
	log  *zerolog.Logger
	dev  bool
	now  func() time.Time
}

func NewAnswerUseCase(deps AnswerDeps, logger *zerolog.Logger, dev bool) *answerUC {
	if deps.TopK <= 0 {
		deps.TopK = 5
	}
	return &answerUC{deps: deps, log: logger, dev: dev, now: time.Now}
}

// NormalizeQuery trims and collapses internal whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

func (a *answerUC) Answer(ctx context.Context, query string) (*model.AnswerRecord, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(ctx, a.log)
	defer logging.TraceDuration(log, "AnswerUC.Answer")()
	start := a.now()

	rec := &model.AnswerRecord{ID: uuid.NewString(), Query: query, CreatedAt: start}

	if a.deps.Cache != nil {
		cached, ok, err := a.deps.Cache.Get(ctx, query)
		if err != nil {
			log.Warn().Err(err).Msg("answer cache read failed")
		}
		if ok {
			rec.Answer, rec.Cached, rec.Provider = cached, true, "cache"
			rec.LatencyMs = a.now().Sub(start).Milliseconds()
			a.record(ctx, log, rec)
			return rec, nil
		}
	}

	var passages []string
	if a.deps.Retriever != nil {
		p, err := a.deps.Retriever.Retrieve(ctx, query, a.deps.TopK)
		if err != nil {
			log.Warn().Err(err).Msg("context retrieval failed; answering without context")
		}
		passages = p
	}

	reply, err := a.deps.Router.Route(ctx, BuildAdvisorPrompt(query, passages))
	if err != nil {
		log.Error().Err(err).Str("query", logging.Redact(query, a.dev)).Msg("all providers failed")
		return nil, fmt.Errorf("answer: %w", err)
	}
	if strings.TrimSpace(reply.Text) == "" {
		return nil, domain.ErrNoAnswer
	}

	rec.Answer = reply.Text
	rec.Provider = reply.Provider
	rec.Model = reply.Model
	rec.LatencyMs = a.now().Sub(start).Milliseconds()

	if a.deps.Cache != nil {
		if err := a.deps.Cache.Set(ctx, query, rec.Answer); err != nil {
			log.Warn().Err(err).Msg("answer cache write failed")
		}
	}
	a.record(ctx, log, rec)

	log.Info().
		Str("provider", rec.Provider).
		Bool("fallback", reply.Fallback).
		Int("passages", len(passages)).
		Int("tokens", reply.Usage.TotalTokens).
		Int64("latency_ms", rec.LatencyMs).
		Msg("answered")
	return rec, nil
}

// record writes the answer log; failures never fail the request.
func (a *answerUC) record(ctx context.Context, log *zerolog.Logger, rec *model.AnswerRecord) {
	if a.deps.Logs == nil {
		return
	}
	if err := a.deps.Logs.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Str("answer_id", rec.ID).Msg("answer log write failed")
	}
}
