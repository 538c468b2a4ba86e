// File: internal/infra/adapters/answer/http_client.go
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stratoguide/internal/domain"
	"stratoguide/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AnswerService = (*HTTPClient)(nil)

// HTTPClient calls the advisor answer endpoint: POST {"query"} -> {"answer"}.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string, timeout time.Duration) (*HTTPClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("answer endpoint is empty")
	}
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Detail string `json:"detail"`
}

// Ask makes exactly one request. Transport errors, non-2xx statuses and
// missing or empty answers are all errors.
func (c *HTTPClient) Ask(ctx context.Context, query string) (string, error) {
	b, err := json.Marshal(askRequest{Query: query})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("answer service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}

	var payload askResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && payload.Detail != "" {
			return "", fmt.Errorf("answer service http %d: %s", resp.StatusCode, payload.Detail)
		}
		return "", fmt.Errorf("answer service http %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode answer: %w", decodeErr)
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return "", domain.ErrNoAnswer
	}
	return payload.Answer, nil
}
