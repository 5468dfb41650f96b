package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/usecase/shared"
	"github.com/xiaowang-jiji/taskbot/internal/view"
)

// HandleEventDeps contains dependencies for dispatching chat events.
// Fields are ordered to minimize memory padding.
type HandleEventDeps struct {
	Users       domain.UserStore
	Persistence domain.Persistence // Optional
	Tags        domain.TagSource   // Optional; defaults are used without it
	Assistant   domain.Assistant   // Optional; questions get an apology without it
	Ticketer    domain.Ticketer    // Optional; card links carry no ticket without it
	IDs         domain.IDGenerator
	Clock       domain.Clock
	Logger      domain.Logger
	Links       domain.LinksConfig
	TagTimeout  time.Duration // 0 keeps a tag question open until the next text
}

// HandleEvent is the event dispatcher: it turns one inbound chat event into
// state changes and the reply for it.
// Fields are ordered to minimize memory padding.
type HandleEvent struct {
	receive  *ReceiveText
	complete *CompleteTask
	favorite *FavoriteTask
	sync     *SyncTasks
	list     *ListTasks
	ask      *AskAssistant
	tags     domain.TagSource
	ticketer domain.Ticketer
	log      domain.Logger
	links    domain.LinksConfig
}

// NewHandleEvent creates a new HandleEvent use case.
func NewHandleEvent(deps HandleEventDeps) *HandleEvent {
	log := orNop(deps.Logger)
	return &HandleEvent{
		receive:  NewReceiveText(deps.Users, deps.Persistence, deps.Clock, log, deps.TagTimeout),
		complete: NewCompleteTask(deps.Users),
		favorite: NewFavoriteTask(deps.Users, deps.Persistence, deps.IDs, deps.Clock, log),
		sync:     NewSyncTasks(deps.Users, deps.Persistence, deps.Clock, log),
		list:     NewListTasks(deps.Users),
		ask:      NewAskAssistant(deps.Assistant, log),
		tags:     deps.Tags,
		ticketer: deps.Ticketer,
		log:      log,
		links:    deps.Links,
	}
}

// Execute handles one event and returns the reply to send.
// It never fails: every error becomes a user-facing reply, and a panic while
// handling the event becomes the apology reply. A nil reply means the event
// deliberately gets no answer.
func (uc *HandleEvent) Execute(ctx context.Context, ev domain.Event) (reply *domain.Reply) {
	if ev == nil {
		return nil
	}
	userID := ev.Base().UserID
	defer func() {
		if r := recover(); r != nil {
			uc.log.Error(userID, "dispatch", fmt.Sprintf("panic: %v\n%s", r, debug.Stack()))
			reply = domain.TextReply(view.TextApology)
		}
	}()

	switch e := ev.(type) {
	case domain.TextMessage:
		return uc.onText(ctx, e)
	case domain.Postback:
		return uc.onPostback(ctx, e)
	case domain.SyncRequest:
		return uc.onSync(ctx, e)
	case domain.Follow:
		uc.log.Info(userID, "dispatch", "new follower")
		return domain.TextReply(view.TextWelcome)
	case domain.Unsupported:
		return uc.onUnsupported(e)
	default:
		uc.log.Error(userID, "dispatch", fmt.Sprintf("%v: %T", domain.ErrUnknownEvent, ev))
		return domain.TextReply(view.TextApology)
	}
}

func (uc *HandleEvent) onText(ctx context.Context, e domain.TextMessage) *domain.Reply {
	out, err := uc.receive.Execute(ctx, ReceiveTextInput{UserID: e.UserID, Text: e.Text})
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return domain.TextReply(view.TextEmptyMessage)
	case errors.Is(err, domain.ErrTaskNotFound):
		uc.log.Info(e.UserID, "dialogue", err.Error())
		return uc.withCard(ctx, e.UserID, domain.TextMessageOf(view.TextTaskNotFound))
	case err != nil:
		return uc.fail(e.UserID, "text", err)
	}

	switch out.Route {
	case RouteQuestion:
		answer, err := uc.ask.Execute(ctx, AskAssistantInput{UserID: e.UserID, Question: out.Text})
		if err != nil {
			return domain.TextReply(view.TextAssistantDown)
		}
		return domain.TextReply(answer.Answer)
	case RouteTag:
		uc.log.Info(e.UserID, "dialogue", fmt.Sprintf("tagged task %d", out.Task.ID))
		return domain.NewReply(uc.card(ctx, e.UserID, out.Tasks))
	default:
		uc.log.Debug(e.UserID, "task", fmt.Sprintf("created task %d", out.Task.ID))
		return domain.NewReply(uc.card(ctx, e.UserID, out.Tasks))
	}
}

func (uc *HandleEvent) onPostback(ctx context.Context, e domain.Postback) *domain.Reply {
	switch e.Data.Action {
	case domain.ActionComplete:
		out, err := uc.complete.Execute(ctx, CompleteTaskInput{UserID: e.UserID, TaskID: e.Data.TaskID})
		if errors.Is(err, domain.ErrTaskNotFound) {
			return uc.withCard(ctx, e.UserID, domain.TextMessageOf(view.TextTaskNotFound))
		}
		if err != nil {
			return uc.fail(e.UserID, "complete", err)
		}
		return domain.NewReply(
			domain.TextMessageOf(view.CompletedText(out.Task)),
			uc.card(ctx, e.UserID, out.Tasks),
		)

	case domain.ActionFavorite:
		out, err := uc.favorite.Execute(ctx, FavoriteTaskInput{UserID: e.UserID, TaskID: e.Data.TaskID})
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.TextReply(view.TextTaskNotFound)
		}
		if err != nil {
			return uc.fail(e.UserID, "favorite", err)
		}
		if out.Favorite == nil {
			return domain.TextReply(view.TextAlreadyFaved)
		}
		tags := shared.LoadTags(ctx, uc.tags, e.UserID, uc.log)
		return domain.NewReply(view.TagPrompt(out.Task, tags))

	case domain.ActionList:
		return uc.withCard(ctx, e.UserID)

	default:
		uc.log.Warn(e.UserID, "postback", fmt.Sprintf("%v: action %q", domain.ErrInvalidPostback, e.Data.Action))
		return domain.TextReply(view.TextInvalidAction)
	}
}

func (uc *HandleEvent) onSync(ctx context.Context, e domain.SyncRequest) *domain.Reply {
	out, err := uc.sync.Execute(ctx, SyncTasksInput{UserID: e.UserID, Payload: e.Payload})
	if err != nil {
		return uc.fail(e.UserID, "sync", err)
	}
	if out.Rejected() {
		return domain.NewReply(
			domain.TextMessageOf(view.TextSyncRejected),
			uc.card(ctx, e.UserID, out.Tasks),
		)
	}
	return domain.NewReply(uc.card(ctx, e.UserID, out.Tasks))
}

func (uc *HandleEvent) onUnsupported(e domain.Unsupported) *domain.Reply {
	if e.Err == nil {
		uc.log.Debug(e.UserID, "dispatch", "ignored "+e.Kind+" event")
		return nil
	}
	uc.log.Warn(e.UserID, "dispatch", fmt.Sprintf("rejected %s event: %v", e.Kind, e.Err))
	return domain.TextReply(view.TextInvalidAction)
}

// withCard replies with msgs followed by the user's current card.
func (uc *HandleEvent) withCard(ctx context.Context, userID string, msgs ...domain.Message) *domain.Reply {
	out, err := uc.list.Execute(ctx, ListTasksInput{UserID: userID})
	if err != nil {
		return uc.fail(userID, "list", err)
	}
	return domain.NewReply(append(msgs, uc.card(ctx, userID, out.Tasks))...)
}

func (uc *HandleEvent) card(ctx context.Context, userID string, tasks []domain.Task) domain.Message {
	tags := shared.LoadTags(ctx, uc.tags, userID, uc.log)
	links := shared.BuildLinks(uc.links, uc.ticketer, userID, uc.log)
	return view.Render(tasks, tags, links)
}

func (uc *HandleEvent) fail(userID, category string, err error) *domain.Reply {
	uc.log.Error(userID, category, err.Error())
	return domain.TextReply(view.TextApology)
}
