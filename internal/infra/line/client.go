package line

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

// DefaultTimeout bounds one Messaging API call.
const DefaultTimeout = 10 * time.Second

// Client sends messages through the LINE Messaging API.
type Client struct {
	httpClient  *http.Client
	apiBase     string // e.g. "https://api.line.me/v2/bot"
	accessToken string
}

// Ensure Client implements domain.Messenger.
var _ domain.Messenger = (*Client)(nil)

// NewClient creates a Client. A nil httpClient gets DefaultTimeout.
func NewClient(apiBase, accessToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		httpClient:  httpClient,
		apiBase:     apiBase,
		accessToken: accessToken,
	}
}

type replyRequest struct {
	ReplyToken string           `json:"replyToken"`
	Messages   []domain.Message `json:"messages"`
}

type pushRequest struct {
	To       string           `json:"to"`
	Messages []domain.Message `json:"messages"`
}

// Reply answers an event with its reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, msgs []domain.Message) error {
	if replyToken == "" {
		return fmt.Errorf("line: empty reply token")
	}
	return c.post(ctx, "/message/reply", replyRequest{ReplyToken: replyToken, Messages: msgs})
}

// Push sends messages to a user without a reply token.
func (c *Client) Push(ctx context.Context, to string, msgs []domain.Message) error {
	if to == "" {
		return fmt.Errorf("line: empty push target")
	}
	return c.post(ctx, "/message/push", pushRequest{To: to, Messages: msgs})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("line: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("line: HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
