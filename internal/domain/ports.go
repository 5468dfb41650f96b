package domain

import (
	"context"
	"time"
)

// UserStore holds per-user state. Update serializes all calls for the same
// user, so fn sees and mutates state no other event is touching.
type UserStore interface {
	// Update runs fn on the user's state under that user's lock.
	// Changes made by fn are kept even when fn returns an error.
	Update(ctx context.Context, userID string, fn func(*UserState) error) error

	// Snapshot returns a deep copy of the user's state.
	Snapshot(ctx context.Context, userID string) (UserState, error)
}

// MessageKind classifies an audited inbound message.
type MessageKind string

const (
	MessageKindTask     MessageKind = "task"
	MessageKindQuestion MessageKind = "question"
	MessageKindTag      MessageKind = "tag"
	MessageKindSync     MessageKind = "sync"
)

// MessageRecord is one audited inbound message.
type MessageRecord struct {
	CreatedAt time.Time   `json:"createdAt"`
	UserID    string      `json:"userId"`
	Text      string      `json:"text"`
	Kind      MessageKind `json:"kind"`
}

// Persistence is the best-effort audit log. Failures never undo in-memory
// changes; callers log them and move on.
type Persistence interface {
	// UpsertMessage records an inbound message.
	UpsertMessage(ctx context.Context, rec MessageRecord) error

	// SaveFavorite creates or updates a favorite template.
	SaveFavorite(ctx context.Context, userID string, fav FavoriteTask) error

	// DeleteFavorite removes a favorite template.
	DeleteFavorite(ctx context.Context, userID, favoriteID string) error

	// ListMessages returns the user's most recent audited messages, newest
	// first. A limit of zero or less returns everything.
	ListMessages(ctx context.Context, userID string, limit int) ([]MessageRecord, error)
}

// TagSource provides a user's tags.
type TagSource interface {
	// QueryTags returns the user's tags. An empty result means "use defaults".
	QueryTags(ctx context.Context, userID string) ([]Tag, error)
}

// TagWriter replaces a user's stored tags.
type TagWriter interface {
	ReplaceTags(ctx context.Context, userID string, tags []Tag) error
}

// Assistant answers free-text questions.
type Assistant interface {
	// Complete returns the assistant's answer to prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Messenger delivers outbound chat messages.
type Messenger interface {
	// Reply answers an event using its reply token.
	Reply(ctx context.Context, replyToken string, msgs []Message) error

	// Push sends messages to a user without a reply token.
	Push(ctx context.Context, to string, msgs []Message) error
}

// Ticketer issues and verifies the tokens that let the browser surface act
// for a user.
type Ticketer interface {
	// Issue returns a ticket for userID.
	Issue(userID string) (string, error)

	// Verify returns the user a ticket was issued for.
	Verify(ticket string) (string, error)
}

// Logger writes categorized log lines, optionally attributed to a user.
type Logger interface {
	Debug(userID, category, msg string)
	Info(userID, category, msg string)
	Warn(userID, category, msg string)
	Error(userID, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(_, _, _ string) {}
func (NopLogger) Info(_, _, _ string)  {}
func (NopLogger) Warn(_, _, _ string)  {}
func (NopLogger) Error(_, _, _ string) {}

// IDGenerator creates identifiers for new favorites.
type IDGenerator interface {
	NewID() string
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
