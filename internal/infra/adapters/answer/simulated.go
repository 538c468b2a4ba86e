package answer

import (
	"context"
	"time"

	"stratoguide/internal/domain/ports/adapter"
)

var _ adapter.AnswerService = (*Simulated)(nil)

// PlaceholderAnswer is returned when no answer endpoint is configured.
const PlaceholderAnswer = "I understand your concern. Let me help you with that. This is a placeholder response - integrate with an AI API for real responses."

// Simulated answers every query with a fixed text after a delay.
type Simulated struct {
	delay time.Duration
	text  string
}

func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{delay: delay, text: PlaceholderAnswer}
}

func (s *Simulated) Ask(ctx context.Context, query string) (string, error) {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return s.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
