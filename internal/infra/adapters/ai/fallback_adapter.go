// File: internal/infra/adapters/ai/fallback_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stratoguide/internal/domain/ports/adapter"
	"stratoguide/internal/infra/metrics"
)

var (
	_ adapter.AIServiceAdapter = (*FallbackAdapter)(nil)
	_ adapter.ChatRouter       = (*FallbackAdapter)(nil)
)

// FallbackAdapter tries providers in order and returns the first answer.
// Any error from a provider (transport, quota, empty reply) moves on to the next.
type FallbackAdapter struct {
	chain []adapter.AIServiceAdapter
	log   *zerolog.Logger
}

func NewFallbackAdapter(logger *zerolog.Logger, chain ...adapter.AIServiceAdapter) *FallbackAdapter {
	out := make([]adapter.AIServiceAdapter, 0, len(chain))
	for _, a := range chain {
		if a != nil {
			out = append(out, a)
		}
	}
	return &FallbackAdapter{chain: out, log: logger}
}

func (f *FallbackAdapter) Provider() string {
	if len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

func (f *FallbackAdapter) Model() string {
	if len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Model()
}

// Len reports how many providers are configured.
func (f *FallbackAdapter) Len() int { return len(f.chain) }

func (f *FallbackAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	r, err := f.Route(ctx, messages)
	return r.Text, err
}

func (f *FallbackAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	r, err := f.Route(ctx, messages)
	return r.Text, r.Usage, err
}

// Route ignores per-call model names; each provider uses its own default.
func (f *FallbackAdapter) Route(ctx context.Context, messages []adapter.Message) (adapter.Reply, error) {
	if len(f.chain) == 0 {
		return adapter.Reply{}, errors.New("no AI provider configured")
	}
	var errs []error
	for i, a := range f.chain {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		text, usage, err := a.ChatWithUsage(ctx, "", messages)
		latency := time.Since(start).Milliseconds()
		metrics.ObserveChatUsage(a.Provider(), a.Model(), usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, latency, err == nil)
		if err != nil {
			f.log.Warn().Err(err).Str("provider", a.Provider()).Str("model", a.Model()).Int64("latency_ms", latency).Msg("provider failed")
			errs = append(errs, fmt.Errorf("%s: %w", a.Provider(), err))
			continue
		}
		if i > 0 {
			metrics.IncFallback(f.chain[0].Provider(), a.Provider())
		}
		return adapter.Reply{Text: text, Usage: usage, Provider: a.Provider(), Model: a.Model(), Fallback: i > 0}, nil
	}
	return adapter.Reply{}, errors.Join(errs...)
}
