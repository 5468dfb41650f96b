// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockPersistence is a test double for domain.Persistence.
// Fields are ordered to minimize memory padding.
type MockPersistence struct {
	Favorites map[string]domain.FavoriteTask
	UpsertErr error
	SaveErr   error
	DeleteErr error
	Messages  []domain.MessageRecord
	Deleted   []string
	mu        sync.Mutex
}

// NewMockPersistence creates a new MockPersistence with initialized maps.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Favorites: make(map[string]domain.FavoriteTask),
	}
}

// UpsertMessage records the message.
func (m *MockPersistence) UpsertMessage(_ context.Context, rec domain.MessageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Messages = append(m.Messages, rec)
	return nil
}

// SaveFavorite stores the favorite.
func (m *MockPersistence) SaveFavorite(_ context.Context, _ string, fav domain.FavoriteTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Favorites[fav.ID] = fav
	return nil
}

// DeleteFavorite removes the favorite.
func (m *MockPersistence) DeleteFavorite(_ context.Context, _, favoriteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Favorites, favoriteID)
	m.Deleted = append(m.Deleted, favoriteID)
	return nil
}

// ListMessages returns recorded messages for the user, newest first.
func (m *MockPersistence) ListMessages(_ context.Context, userID string, limit int) ([]domain.MessageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MessageRecord
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].UserID != userID {
			continue
		}
		out = append(out, m.Messages[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MessageCount returns the number of recorded messages.
func (m *MockPersistence) MessageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// MockTagSource is a test double for domain.TagSource.
type MockTagSource struct {
	Err  error
	Tags []domain.Tag
}

// QueryTags returns the configured tags.
func (m *MockTagSource) QueryTags(_ context.Context, _ string) ([]domain.Tag, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tags, nil
}

// MockAssistant is a test double for domain.Assistant.
// Fields are ordered to minimize memory padding.
type MockAssistant struct {
	Err     error
	Panic   any // Panics with this value when set
	Answer  string
	Prompts []string
	mu      sync.Mutex
}

// Complete records the prompt and returns the configured answer.
func (m *MockAssistant) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.Panic != nil {
		panic(m.Panic)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}

// SentMessages is one delivery recorded by MockMessenger.
type SentMessages struct {
	Target   string // Reply token or user id
	Messages []domain.Message
}

// MockMessenger is a test double for domain.Messenger.
// Fields are ordered to minimize memory padding.
type MockMessenger struct {
	ReplyErr error
	PushErr  error
	Replies  []SentMessages
	Pushes   []SentMessages
	mu       sync.Mutex
}

// Reply records a reply.
func (m *MockMessenger) Reply(_ context.Context, replyToken string, msgs []domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplyErr != nil {
		return m.ReplyErr
	}
	m.Replies = append(m.Replies, SentMessages{Target: replyToken, Messages: msgs})
	return nil
}

// Push records a push.
func (m *MockMessenger) Push(_ context.Context, to string, msgs []domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PushErr != nil {
		return m.PushErr
	}
	m.Pushes = append(m.Pushes, SentMessages{Target: to, Messages: msgs})
	return nil
}

// Sent returns copies of the recorded replies and pushes.
func (m *MockMessenger) Sent() (replies, pushes []SentMessages) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessages(nil), m.Replies...), append([]SentMessages(nil), m.Pushes...)
}

// MockTicketer is a test double for domain.Ticketer.
// Tickets are "ticket:" + userID.
type MockTicketer struct {
	IssueErr error
}

// Issue returns a predictable ticket.
func (m *MockTicketer) Issue(userID string) (string, error) {
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	return "ticket:" + userID, nil
}

// Verify accepts tickets produced by Issue.
func (m *MockTicketer) Verify(ticket string) (string, error) {
	userID, ok := strings.CutPrefix(ticket, "ticket:")
	if !ok || userID == "" {
		return "", domain.ErrInvalidTicket
	}
	return userID, nil
}

// SequentialIDs is a test double for domain.IDGenerator returning fav-1, fav-2, ...
type SequentialIDs struct {
	n  int
	mu sync.Mutex
}

// NewID returns the next id.
func (s *SequentialIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("fav-%d", s.n)
}

// LogLine is one line recorded by RecordingLogger.
type LogLine struct {
	Level    string
	UserID   string
	Category string
	Msg      string
}

// RecordingLogger is a domain.Logger that keeps every line in memory.
type RecordingLogger struct {
	Lines []LogLine
	mu    sync.Mutex
}

func (l *RecordingLogger) Debug(userID, category, msg string) { l.add("DEBUG", userID, category, msg) }
func (l *RecordingLogger) Info(userID, category, msg string)  { l.add("INFO", userID, category, msg) }
func (l *RecordingLogger) Warn(userID, category, msg string)  { l.add("WARN", userID, category, msg) }
func (l *RecordingLogger) Error(userID, category, msg string) { l.add("ERROR", userID, category, msg) }

// Has reports whether a line with the level and category was logged.
func (l *RecordingLogger) Has(level, category string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.Lines {
		if line.Level == level && line.Category == category {
			return true
		}
	}
	return false
}

func (l *RecordingLogger) add(level, userID, category, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, LogLine{Level: level, UserID: userID, Category: category, Msg: msg})
}
