// Package assistant answers user questions with an OpenAI-compatible chat
// completions API.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
	maxTokens    = 500
)

// Client calls a chat completions endpoint.
// Fields are ordered to minimize memory padding.
type Client struct {
	client       *http.Client
	apiKey       string
	baseURL      string // Full chat completions URL
	model        string
	systemPrompt string
	retryDelay   time.Duration
}

// Ensure Client implements domain.Assistant.
var _ domain.Assistant = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// New creates a Client from the [assistant] configuration.
// A zero Timeout leaves calls unbounded except by the caller's context.
func New(cfg domain.AssistantConfig) *Client {
	return &Client{
		client:       &http.Client{Timeout: cfg.Timeout},
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		retryDelay:   initialDelay,
	}
}

// Complete returns the model's answer to prompt.
// Rate limits and server errors are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	messages := make([]chatMessage, 0, 2)
	if c.systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1x, 2x, 4x the base delay
			delay := c.retryDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		answer, retry, err := c.call(ctx, body)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
	}
	return "", fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

func (c *Client) call(ctx context.Context, body []byte) (answer string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			err = fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		} else {
			err = fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
		}
		// Retry on rate limit (429) or server errors (5xx)
		return "", resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("no choices returned")
	}
	return parsed.Choices[0].Message.Content, false, nil
}
