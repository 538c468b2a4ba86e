package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stratoguide/internal/domain/ports/adapter"
	ai "stratoguide/internal/infra/adapters/ai"
)

func TestLimitedAI_ZeroIsPassthrough(t *testing.T) {
	s := &stubAI{name: "x", reply: "y"}
	if got := ai.NewLimitedAI(s, 0); got != adapter.AIServiceAdapter(s) {
		t.Fatal("want the inner adapter back")
	}
}

func TestLimitedAI_ReleasesSlot(t *testing.T) {
	s := &stubAI{name: "x", reply: "y"}
	l := ai.NewLimitedAI(s, 1)
	if l.Provider() != "x" || l.Model() != "x-model" {
		t.Fatalf("identity not forwarded: %s/%s", l.Provider(), l.Model())
	}
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := l.Chat(ctx, "", msgs)
		cancel()
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if s.calls != 3 {
		t.Fatalf("calls = %d", s.calls)
	}
}

func TestNoopAI_HonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ai.NewNoopAIAdapter(time.Hour).Chat(ctx, "", msgs); !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}
