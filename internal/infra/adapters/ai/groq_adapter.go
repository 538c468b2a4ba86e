// File: internal/infra/adapters/ai/groq_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"stratoguide/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*GroqAdapter)(nil)

// GroqAdapter talks to Groq (or any OpenAI-compatible endpoint) through the
// Chat Completions API of the openai-go SDK.
type GroqAdapter struct {
	client       openai.Client
	defaultModel string
	maxOut       int
	temperature  float64
}

func NewGroqAdapter(apiKey, baseURL, defaultModel string, maxOut int, temperature float64) (*GroqAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("groq: empty api key")
	}
	if defaultModel == "" {
		defaultModel = "llama-3.1-8b-instant"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &GroqAdapter{
		client:       openai.NewClient(opts...),
		defaultModel: defaultModel,
		maxOut:       maxOut,
		temperature:  temperature,
	}, nil
}

func (o *GroqAdapter) Provider() string { return "groq" }

func (o *GroqAdapter) Model() string { return o.defaultModel }

func (o *GroqAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := o.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (o *GroqAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if len(messages) == 0 {
		return "", adapter.Usage{}, errors.New("groq: no messages")
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelOrDefault(model, o.defaultModel)),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(o.temperature),
	}
	if o.maxOut > 0 {
		params.MaxTokens = openai.Int(int64(o.maxOut))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	for _, c := range resp.Choices {
		if s := strings.TrimSpace(c.Message.Content); s != "" {
			return s, u, nil
		}
	}
	return "", u, errors.New("groq: no choice content")
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant", "model":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
