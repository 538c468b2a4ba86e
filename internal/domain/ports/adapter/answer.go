package adapter

import "context"

// AnswerService is the remote query-answering backend the chat core calls.
// Any error (transport, status, payload) is a failed exchange.
type AnswerService interface {
	Ask(ctx context.Context, query string) (string, error)
}
