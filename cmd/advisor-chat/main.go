// File: cmd/advisor-chat/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"stratoguide/internal/config"
	"stratoguide/internal/domain/model"
	"stratoguide/internal/domain/ports/adapter"
	"stratoguide/internal/infra/adapters/answer"
	"stratoguide/internal/infra/i18n"
	"stratoguide/internal/infra/identity"
	"stratoguide/internal/infra/logging"
	"stratoguide/internal/infra/memory"
	"stratoguide/internal/ui/chat"
	"stratoguide/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: verbose logs, raw queries in logs")
	endpoint := flag.String("endpoint", "", "answer service URL (overrides chat.endpoint)")
	plain := flag.Bool("plain", false, "render replies as plain text instead of markdown")
	lang := flag.String("lang", "", "interface language (overrides chat.lang)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *endpoint != "" {
		cfg.Chat.Endpoint = *endpoint
	}
	if *lang != "" {
		cfg.Chat.Lang = *lang
	}

	// The TUI owns stdout, so logs only go to a file.
	logger := logging.Nop()
	if cfg.Log.File != "" {
		l, closer, err := logging.New(cfg.Log, false)
		if err != nil {
			log.Fatalf("logging: %v", err)
		}
		defer closer.Close()
		logger = l
	}

	// ---- Answer service ----
	var answers adapter.AnswerService
	if cfg.Chat.Endpoint != "" {
		c, err := answer.NewHTTPClient(cfg.Chat.Endpoint, cfg.Chat.Timeout)
		if err != nil {
			log.Fatalf("answer client: %v", err)
		}
		answers = c
		logger.Info().Str("endpoint", cfg.Chat.Endpoint).Msg("answer service: http")
	} else {
		answers = answer.NewSimulated(cfg.Chat.SimulateDelay)
		logger.Info().Dur("delay", cfg.Chat.SimulateDelay).Msg("answer service: simulated")
	}

	text, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Chat.Lang)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Chat core ----
	store := memory.NewSessionStore(cfg.Chat.SeedTitle, cfg.Chat.Greeting)
	exchange := usecase.NewExchangeUseCase(store, answers, cfg.Chat, logger, cfg.Runtime.Dev)

	deps := chat.Deps{
		Ctx:      ctx,
		Store:    store,
		Exchange: exchange,
		Logger:   logger,
		Text:     text,
		Markdown: !*plain,
	}

	// ---- Identity (optional) ----
	var idp *identity.FirebaseAuth
	if cfg.Identity.APIKey != "" {
		idp, err = identity.NewFirebaseAuth(cfg.Identity.APIKey, cfg.Identity.BaseURL, cfg.Chat.Timeout, logger)
		if err != nil {
			log.Fatalf("identity: %v", err)
		}
		deps.Identity = idp
		deps.Email = cfg.Identity.Email
		deps.Password = cfg.Identity.Password
	}

	p := tea.NewProgram(chat.New(deps), tea.WithAltScreen(), tea.WithContext(ctx))

	if idp != nil {
		go watchUser(ctx, idp, p, logger)
	}

	_, err = p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	if err != nil && !interrupted {
		fmt.Fprintf(os.Stderr, "advisor-chat: %v\n", err)
		os.Exit(1)
	}
}

// watchUser forwards identity changes into the program until ctx ends.
func watchUser(ctx context.Context, idp adapter.IdentityProvider, p *tea.Program, logger *zerolog.Logger) {
	unsubscribe := idp.Subscribe(func(u *model.User) {
		p.Send(chat.UserChangedMsg{User: u})
	})
	defer unsubscribe()
	<-ctx.Done()
	logger.Debug().Msg("identity watcher stopped")
}
