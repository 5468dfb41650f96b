package domain

import "time"

// Event is an inbound chat event. The set of implementations is closed:
// TextMessage, Postback, SyncRequest, Follow and Unsupported.
type Event interface {
	Base() EventBase
	isEvent()
}

// EventBase holds the fields shared by every event.
type EventBase struct {
	Timestamp  time.Time
	ID         string // Webhook event id, used for redelivery dedupe
	UserID     string
	ReplyToken string
}

// Base returns the common event fields.
func (b EventBase) Base() EventBase { return b }

func (EventBase) isEvent() {}

// TextMessage is a free-text message from the user.
type TextMessage struct {
	Text string
	EventBase
}

// Postback is a tap on a card control.
type Postback struct {
	Data PostbackData
	EventBase
}

// SyncRequest carries a task-list snapshot from the browser surface.
type SyncRequest struct {
	Payload string
	EventBase
}

// Follow is sent when a user adds the bot.
type Follow struct {
	EventBase
}

// Unsupported is any event the bot does not act on (stickers, images,
// malformed postbacks). Err is set when the event was rejected as invalid.
type Unsupported struct {
	Err  error
	Kind string
	EventBase
}
