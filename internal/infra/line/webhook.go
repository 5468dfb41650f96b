// Package line adapts the LINE Messaging API: webhook decoding, signature
// verification and the reply/push client.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Line-Signature"

// webhookBody is the top-level webhook payload from the LINE Platform.
type webhookBody struct {
	Destination string         `json:"destination"`
	Events      []webhookEvent `json:"events"`
}

// webhookEvent is a single webhook event.
// Fields are ordered to minimize memory padding.
type webhookEvent struct {
	Message        *inboundMessage `json:"message,omitempty"`
	Postback       *postback       `json:"postback,omitempty"`
	Type           string          `json:"type"` // "message", "postback", "follow", "unfollow", ...
	ReplyToken     string          `json:"replyToken,omitempty"`
	WebhookEventID string          `json:"webhookEventId,omitempty"`
	Source         source          `json:"source"`
	Timestamp      int64           `json:"timestamp"` // Unix milliseconds
}

// source identifies who sent an event.
type source struct {
	Type    string `json:"type"` // "user", "group", "room"
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// inboundMessage is the message of a "message" event.
type inboundMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "text", "image", "sticker", ...
	Text string `json:"text,omitempty"`
}

// postback is the payload of a "postback" event.
type postback struct {
	Data string `json:"data"`
}

// Sign returns the base64 HMAC-SHA256 of body keyed by the channel secret.
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the X-Line-Signature header against body.
// An empty channel secret disables the check.
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(channelSecret, body)), []byte(signature))
}

// ParseWebhook decodes a webhook body into chat events, preserving order.
// Events the bot does not act on become domain.Unsupported.
func ParseWebhook(body []byte) ([]domain.Event, error) {
	var hook webhookBody
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("parse webhook: %w", err)
	}

	events := make([]domain.Event, 0, len(hook.Events))
	for _, e := range hook.Events {
		events = append(events, toEvent(e))
	}
	return events, nil
}

func toEvent(e webhookEvent) domain.Event {
	base := domain.EventBase{
		ID:         e.WebhookEventID,
		UserID:     e.Source.UserID,
		ReplyToken: e.ReplyToken,
		Timestamp:  time.UnixMilli(e.Timestamp),
	}

	switch e.Type {
	case "message":
		if e.Message == nil {
			return domain.Unsupported{EventBase: base, Kind: "message", Err: fmt.Errorf("message event without message: %w", domain.ErrUnknownEvent)}
		}
		if base.ID == "" {
			base.ID = e.Message.ID
		}
		if e.Message.Type != "text" {
			return domain.Unsupported{EventBase: base, Kind: e.Message.Type}
		}
		if domain.IsSnapshot(e.Message.Text) {
			return domain.SyncRequest{EventBase: base, Payload: e.Message.Text}
		}
		return domain.TextMessage{EventBase: base, Text: e.Message.Text}

	case "postback":
		if e.Postback == nil {
			return domain.Unsupported{EventBase: base, Kind: "postback", Err: domain.ErrInvalidPostback}
		}
		data, err := domain.ParsePostback(e.Postback.Data)
		if err != nil {
			return domain.Unsupported{EventBase: base, Kind: "postback", Err: err}
		}
		return domain.Postback{EventBase: base, Data: data}

	case "follow":
		return domain.Follow{EventBase: base}

	default:
		return domain.Unsupported{EventBase: base, Kind: e.Type}
	}
}
