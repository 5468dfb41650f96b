package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/usecase/shared"
)

// TextRoute is where a free-text message was routed.
type TextRoute string

const (
	RouteTask     TextRoute = "task"     // A new task was created
	RouteQuestion TextRoute = "question" // The text is a question for the assistant
	RouteTag      TextRoute = "tag"      // The text answered a pending tag question
)

// ReceiveTextInput contains the parameters for receiving a text message.
type ReceiveTextInput struct {
	UserID string
	Text   string // Raw message text
}

// ReceiveTextOutput contains the result of routing a text message.
// Fields are ordered to minimize memory padding.
type ReceiveTextOutput struct {
	Favorite *domain.FavoriteTask // Favorite renamed by a tag, if any
	Route    TextRoute
	Text     string        // Cleaned message text
	Tasks    []domain.Task // Task list after the change
	Task     domain.Task   // Created or tagged task
	Expired  bool          // A pending tag question timed out before this message
}

// ReceiveText is the use case for an inbound text message.
// In one serialized update it decides whether the text answers a pending tag
// question, is a question for the assistant, or is a new task, and applies
// the resulting change.
// Fields are ordered to minimize memory padding.
type ReceiveText struct {
	users       domain.UserStore
	persistence domain.Persistence
	clock       domain.Clock
	log         domain.Logger
	tagTimeout  time.Duration
}

// NewReceiveText creates a new ReceiveText use case.
// A tagTimeout of zero keeps a pending tag question open until the next text.
func NewReceiveText(users domain.UserStore, persistence domain.Persistence, clock domain.Clock, log domain.Logger, tagTimeout time.Duration) *ReceiveText {
	return &ReceiveText{
		users:       users,
		persistence: persistence,
		clock:       clock,
		log:         orNop(log),
		tagTimeout:  tagTimeout,
	}
}

// Execute routes the message and applies its state change.
// Errors:
//   - domain.ErrEmptyMessage: nothing left after cleaning; a pending tag
//     question is still consumed
//   - domain.ErrTaskNotFound: the task awaiting a tag no longer exists; the
//     tag question is cleared
func (uc *ReceiveText) Execute(ctx context.Context, in ReceiveTextInput) (*ReceiveTextOutput, error) {
	now := uc.clock.Now()
	text, validateErr := shared.ValidateMessage(in.Text)

	out := &ReceiveTextOutput{Text: text}
	err := uc.users.Update(ctx, in.UserID, func(s *domain.UserState) error {
		if s.Dialogue.Expired(now, uc.tagTimeout) {
			s.Dialogue.Reset()
			out.Expired = true
		}

		if taskID, ok := s.Dialogue.Consume(); ok {
			if validateErr != nil {
				return validateErr
			}
			task, fav, err := s.ApplyTag(taskID, text)
			if err != nil {
				return err
			}
			out.Route = RouteTag
			out.Task = task
			out.Favorite = fav
			out.Tasks = s.Clone().Tasks
			return nil
		}

		if validateErr != nil {
			return validateErr
		}
		if domain.IsQuestion(text) {
			out.Route = RouteQuestion
			return nil
		}
		out.Route = RouteTask
		out.Task = s.CreateTask(text, now)
		out.Tasks = s.Clone().Tasks
		return nil
	})
	if out.Expired {
		uc.log.Info(in.UserID, "dialogue", "pending tag question expired")
	}
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, fmt.Errorf("apply tag %q: %w", text, err)
		}
		return nil, err
	}

	shared.Audit(ctx, uc.persistence, uc.log, domain.MessageRecord{
		UserID:    in.UserID,
		Text:      text,
		Kind:      recordKind(out.Route),
		CreatedAt: now,
	})
	if out.Favorite != nil {
		shared.SaveFavorite(ctx, uc.persistence, uc.log, in.UserID, *out.Favorite)
	}

	return out, nil
}

func recordKind(route TextRoute) domain.MessageKind {
	switch route {
	case RouteQuestion:
		return domain.MessageKindQuestion
	case RouteTag:
		return domain.MessageKindTag
	default:
		return domain.MessageKindTask
	}
}

func orNop(log domain.Logger) domain.Logger {
	if log == nil {
		return domain.NopLogger{}
	}
	return log
}
