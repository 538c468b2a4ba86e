package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single chat call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIServiceAdapter is the port for LLM chat.
type AIServiceAdapter interface {
	// Provider names the backend for logs and metrics ("gemini", "groq", ...).
	Provider() string

	// Model returns the model used when the caller passes an empty name.
	Model() string

	// Chat returns only the assistant text
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// ChatWithUsage returns assistant text + usage as reported by the provider.
	ChatWithUsage(ctx context.Context, model string, messages []Message) (string, Usage, error)
}

// Reply is a chat result tagged with the backend that produced it.
type Reply struct {
	Text     string
	Usage    Usage
	Provider string
	Model    string
	Fallback bool // served by a provider other than the first
}

// ChatRouter answers a conversation using an ordered set of providers.
type ChatRouter interface {
	Route(ctx context.Context, messages []Message) (Reply, error)
}

// ContextRetriever returns up to k passages relevant to query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}
