package llm

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

	"storyweaver/internal/config"
	"storyweaver/internal/ports"
)

const maxAttempts = 3

// APIError carries the upstream HTTP status so callers can map rate limits
// and server errors to their own taxonomy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion api error %d: %s", e.StatusCode, e.Message)
}

// retryable reports whether the upstream status warrants another attempt:
// rate limits and server errors only.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client implements ports.ChatClient backed by OpenAI-compatible APIs, with
// up to three attempts and exponential backoff on transient failures.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
	logger     *slog.Logger
}

var _ ports.ChatClient = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.OpenAIConfig, logger *slog.Logger) *Client {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: defaultBackoff,
		logger:  logger,
	}
}

// Model reports which model serves requests.
func (c *Client) Model() string {
	return c.model
}

// defaultBackoff grows exponentially per attempt and caps at ten seconds.
func defaultBackoff(attempt int) time.Duration {
	delay := time.Second << attempt
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return delay
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion posts the conversation and returns the first choice's
// content. Rate-limit and server-error responses are retried with backoff;
// other errors propagate immediately.
func (c *Client) ChatCompletion(ctx context.Context, messages []ports.ChatMessage, opts ports.ChatOptions) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("completion client misconfigured")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload := chatRequest{
		Model:       c.model,
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		content, err := c.send(ctx, body)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.retryable() || attempt == maxAttempts-1 {
			return "", err
		}

		delay := c.backoff(attempt)
		if c.logger != nil {
			c.logger.Warn("completion attempt failed, retrying", "attempt", attempt+1, "status", apiErr.StatusCode, "delay", delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(payload)),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content generated")
	}

	return decoded.Choices[0].Message.Content, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
