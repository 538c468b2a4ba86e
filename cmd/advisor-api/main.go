// File: cmd/advisor-api/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"stratoguide/internal/config"
	"stratoguide/internal/domain/ports/adapter"
	"stratoguide/internal/domain/ports/repository"
	aiAdapters "stratoguide/internal/infra/adapters/ai"
	"stratoguide/internal/infra/api"
	pg "stratoguide/internal/infra/db/postgres"
	"stratoguide/internal/infra/knowledge"
	"stratoguide/internal/infra/logging"
	"stratoguide/internal/infra/metrics"
	red "stratoguide/internal/infra/redis"
	"stratoguide/internal/infra/sched"
	"stratoguide/internal/infra/security"
	"stratoguide/internal/infra/worker"
	"stratoguide/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, echo provider when no key is set")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.Runtime.Dev {
		if err := cfg.RequireAI(); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	logger, logCloser, err := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logCloser.Close()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Bool("dev", cfg.Runtime.Dev).Msg("starting advisor api")

	// ---- AI providers (Gemini -> Groq) ----
	router, err := buildRouter(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai providers")
	}

	deps := usecase.AnswerDeps{Router: router}

	// ---- Knowledge file ----
	if path := cfg.AI.KnowledgeFile; path != "" {
		kb, err := knowledge.LoadFile(path)
		if err != nil {
			logger.Fatal().Err(err).Msg("knowledge")
		}
		deps.Retriever = kb
		logger.Info().Str("file", path).Int("passages", kb.Len()).Msg("knowledge loaded")
	}

	// ---- Redis answer cache (optional) ----
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; answer cache disabled")
		} else {
			defer rc.Close()
			deps.Cache = red.NewAnswerCache(rc, cfg.Redis.TTL)
			logger.Info().Dur("ttl", cfg.Redis.TTL).Msg("answer cache enabled")
		}
	}

	// ---- Postgres answer log (optional) ----
	var logs repository.AnswerLogRepository
	if cfg.Database.URL != "" {
		dbPool, err := pg.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer dbPool.Close()
		go pg.ReportPoolStats(ctx, dbPool, 15*time.Second)

		var enc *security.EncryptionService
		if cfg.Security.EncryptionKey != "" {
			enc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
			if err != nil {
				logger.Fatal().Err(err).Msg("encryption")
			}
		} else {
			logger.Warn().Msg("security.encryption_key not set; answer log stored in plaintext")
		}
		logs = pg.NewAnswerLogRepo(dbPool, enc)
		deps.Logs = logs
	}

	answers := usecase.NewAnswerUseCase(deps, logger, cfg.Runtime.Dev)

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Server.Workers, cfg.Server.Workers*16, logger)
	pool.Start(ctx)
	defer pool.Stop()
	exec := worker.NewAnswerExecutor(pool, answers)

	// ---- Retention worker ----
	if logs != nil {
		rw := sched.NewRetentionWorker(cfg.Retention.Interval, cfg.Retention.Days, logs, logger)
		go func() { _ = rw.Run(ctx) }()
	}

	// ---- HTTP server ----
	srv := api.NewServer(exec, cfg.Server.AllowOrigins, cfg.Server.RequestTimeout, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

// buildRouter assembles the provider chain in fallback order. In dev mode with
// no keys it answers with the echo adapter.
func buildRouter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*aiAdapters.FallbackAdapter, error) {
	var chain []adapter.AIServiceAdapter
	limit := cfg.Server.Workers

	if cfg.AI.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.GeminiModel, cfg.AI.MaxOutTokens, cfg.AI.Temperature)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		chain = append(chain, aiAdapters.NewLimitedAI(g, limit))
		logger.Info().Str("model", cfg.AI.GeminiModel).Msg("AI provider: gemini")
	}
	if cfg.AI.GroqKey != "" {
		q, err := aiAdapters.NewGroqAdapter(cfg.AI.GroqKey, cfg.AI.GroqBaseURL, cfg.AI.GroqModel, cfg.AI.MaxOutTokens, cfg.AI.Temperature)
		if err != nil {
			return nil, fmt.Errorf("groq adapter: %w", err)
		}
		chain = append(chain, aiAdapters.NewLimitedAI(q, limit))
		logger.Info().Str("model", cfg.AI.GroqModel).Str("base", cfg.AI.GroqBaseURL).Msg("AI provider: groq")
	}
	if len(chain) == 0 {
		if !cfg.Runtime.Dev {
			return nil, errors.New("no AI provider configured")
		}
		logger.Warn().Msg("[DEV MODE] no AI key set; using echo provider")
		chain = append(chain, aiAdapters.NewNoopAIAdapter(300*time.Millisecond))
	}
	return aiAdapters.NewFallbackAdapter(logger, chain...), nil
}
