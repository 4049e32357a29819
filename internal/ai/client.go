// Package ai talks to the LLM proxy and turns its completions into
// schema-validated ledger content.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 20 * time.Second

// Message is a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrTimeout marks a completion that exceeded the request budget.
var ErrTimeout = errors.New("ai request timed out")

// ErrTransport marks a completion that failed before producing content.
var ErrTransport = errors.New("ai request failed")

// Client calls the chat-completions proxy. The proxy relays the standard
// chat envelope; the client only ever reads choices[0].message.content.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(baseURL, model string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing AI base URL")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type chatRequest struct {
	Model          string    `json:"model,omitempty"`
	Temperature    float64   `json:"temperature,omitempty"`
	ResponseFormat string    `json:"response_format,omitempty"`
	Messages       []Message `json:"messages"`
}

type chatResponse struct {
	Error   string `json:"error,omitempty"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompleteText requests a free-form completion.
func (c *Client) CompleteText(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, "text")
}

// CompleteJSON requests a completion constrained to a JSON object.
func (c *Client) CompleteJSON(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, messages, "json_object")
}

func (c *Client) complete(ctx context.Context, messages []Message, format string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		ResponseFormat: format,
		Messages:       messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/openai/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: proxy returned %d", ErrTransport, resp.StatusCode)
	}

	var envelope chatResponse
	if err := json.Unmarshal(text, &envelope); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", ErrTransport, err)
	}
	if envelope.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrTransport, envelope.Error)
	}
	if len(envelope.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrTransport)
	}

	slog.DebugContext(ctx, "Chat completion received",
		"duration_ms", time.Since(start).Milliseconds(),
		"format", format)

	return envelope.Choices[0].Message.Content, nil
}

func isClientTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
