package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"stratoguide/internal/domain"
	"stratoguide/internal/infra/logging"
	"stratoguide/internal/usecase"
)

const maxQueryBody = 64 << 10

// Server exposes the advisor answer endpoint.
type Server struct {
	answers usecase.AnswerUseCase
	log     *zerolog.Logger
	origins []string
	timeout time.Duration
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// NewServer builds the HTTP layer. timeout bounds each request; zero disables it.
func NewServer(answers usecase.AnswerUseCase, origins []string, timeout time.Duration, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "api").Logger()
	return &Server{answers: answers, log: &l, origins: origins, timeout: timeout}
}

// Router returns the chi router with the middleware chain installed.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), CORS(s.origins))
	if s.timeout > 0 {
		r.Use(Timeout(s.timeout))
	}
	s.Register(r)
	return r
}

// Register attaches handlers to the provided router.
func (s *Server) Register(r chi.Router) {
	r.Post("/chatbot", s.handleChat)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQueryBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "invalid JSON body"})
		return
	}
	if usecase.NormalizeQuery(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "query is required"})
		return
	}

	rec, err := s.answers.Answer(r.Context(), req.Query)
	if err != nil {
		l := logging.With(r.Context(), s.log)
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeJSON(w, http.StatusBadRequest, errorBody{Detail: "query is required"})
		case errors.Is(err, domain.ErrWorkerSaturated):
			l.Warn().Msg("answer queue full")
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "advisor is busy, try again shortly"})
		default:
			l.Error().Err(err).Msg("answer failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Detail: err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: rec.Answer})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
