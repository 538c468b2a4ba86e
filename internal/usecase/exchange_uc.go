// File: internal/usecase/exchange_uc.go
package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"stratoguide/internal/config"
	"stratoguide/internal/domain"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/adapter"
	"stratoguide/internal/domain/ports/repository"
	"stratoguide/internal/infra/logging"
)

// Compile-time check
var _ ExchangeUseCase = (*exchangeUC)(nil)

// ExchangeState is the single-flight state of the controller.
type ExchangeState int32

const (
	StateIdle ExchangeState = iota
	StatePending
)

func (s ExchangeState) String() string {
	if s == StatePending {
		return "pending"
	}
	return "idle"
}

// Exchange is an accepted question waiting for its reply.
// The reply always lands in SessionID, even if the user switched sessions meanwhile.
type Exchange struct {
	SessionID string
	Query     string
	StartedAt time.Time
}

// ExchangeUseCase sends user questions to the answer service and writes the
// outcome into the session transcript. At most one exchange is in flight.
type ExchangeUseCase interface {
	// Begin validates text and appends it to the active session.
	// Returns domain.ErrEmptyMessage or domain.ErrExchangePending on rejection.
	Begin(ctx context.Context, text string) (*Exchange, error)
	// Resolve performs the single outbound call and appends the reply or the fixed error text.
	Resolve(ctx context.Context, ex *Exchange) model.ChatMessage
	// Send is Begin followed by Resolve.
	Send(ctx context.Context, text string) (model.ChatMessage, error)
	Pending() bool
	State() ExchangeState
}

type exchangeUC struct {
	store   repository.SessionStore
	answers adapter.AnswerService
	cfg     config.ChatConfig
	log     *zerolog.Logger
	dev     bool

	state atomic.Int32
}

func NewExchangeUseCase(store repository.SessionStore, answers adapter.AnswerService, cfg config.ChatConfig, logger *zerolog.Logger, dev bool) *exchangeUC {
	return &exchangeUC{store: store, answers: answers, cfg: cfg, log: logger, dev: dev}
}

func (e *exchangeUC) Begin(ctx context.Context, text string) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StatePending)) {
		return nil, domain.ErrExchangePending
	}

	id := e.store.ActiveID()
	if !e.store.Append(id, model.NewUserMessage(text)) {
		// active id always exists; guard anyway so the machine never sticks
		e.state.Store(int32(StateIdle))
		return nil, domain.ErrNotFound
	}
	return &Exchange{SessionID: id, Query: text, StartedAt: time.Now()}, nil
}

func (e *exchangeUC) Resolve(ctx context.Context, ex *Exchange) model.ChatMessage {
	defer e.state.Store(int32(StateIdle))

	log := logging.With(logging.WithSessID(ctx, ex.SessionID), e.log)
	defer logging.TraceDuration(log, "ExchangeUC.Resolve")()

	answer, err := e.answers.Ask(ctx, ex.Query)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = domain.ErrNoAnswer
	}
	if err != nil {
		log.Warn().Err(err).
			Str("query", logging.Redact(ex.Query, e.dev)).
			Dur("elapsed", time.Since(ex.StartedAt)).
			Msg("answer service failed")
		msg := model.NewAssistantMessage(e.cfg.ErrorText)
		e.store.Append(ex.SessionID, msg)
		return msg
	}

	msg := model.NewAssistantMessage(answer)
	if !e.store.Append(ex.SessionID, msg) {
		log.Debug().Msg("session deleted before reply arrived; reply dropped")
		return msg
	}
	if s, err := e.store.Get(ex.SessionID); err == nil && !s.Titled && s.UserMessageCount() == 1 {
		e.store.Rename(ex.SessionID, TitleFromQuery(ex.Query, e.cfg.TitleMaxLen, e.cfg.TitleEllipsis))
	}
	log.Debug().Dur("elapsed", time.Since(ex.StartedAt)).Int("answer_len", len(answer)).Msg("exchange answered")
	return msg
}

func (e *exchangeUC) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	ex, err := e.Begin(ctx, text)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return e.Resolve(ctx, ex), nil
}

func (e *exchangeUC) Pending() bool { return e.State() == StatePending }

func (e *exchangeUC) State() ExchangeState { return ExchangeState(e.state.Load()) }

// TitleFromQuery keeps the first limit runes of query and appends ellipsis.
func TitleFromQuery(query string, limit int, ellipsis string) string {
	r := []rune(query)
	if limit > 0 && len(r) > limit {
		r = r[:limit]
	}
	return string(r) + ellipsis
}
