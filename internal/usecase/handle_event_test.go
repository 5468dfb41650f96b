package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/view"
)

// firstRow returns the label, favorite and completion cells of the card's first row.
func firstRow(t *testing.T, msg domain.Message) []domain.Component {
	t.Helper()
	require.True(t, msg.IsCard())
	for _, c := range msg.Contents.Body.Contents {
		if c.Type == "box" && c.Layout == "horizontal" && len(c.Contents) == 3 {
			return c.Contents
		}
	}
	t.Fatal("card has no task row")
	return nil
}

func TestHandleEvent_Scenarios(t *testing.T) {
	f := newFixture()
	uc := NewHandleEvent(f.deps())
	ctx := context.Background()

	// Scenario 1: a plain text becomes a task and the reply is the card.
	reply := uc.Execute(ctx, textEvent("buy milk"))

	require.NotNil(t, reply)
	require.Len(t, reply.Messages, 1)
	card := reply.Messages[0]
	assert.Equal(t, "總共 1 件事要做", card.AltText)
	row := firstRow(t, card)
	assert.Equal(t, "1. buy milk", row[0].Text)
	assert.Equal(t, "☆", row[1].Text)
	assert.Equal(t, "□", row[2].Text)

	state := f.state(t)
	require.Len(t, state.Tasks, 1)
	task := state.Tasks[0]
	assert.False(t, task.Completed)
	assert.False(t, task.Favorited)

	// Scenario 2: favorite starts the tag dialogue; the reply is plain text.
	reply = uc.Execute(ctx, postbackEvent(domain.ActionFavorite, task.ID))

	require.Len(t, reply.Messages, 1)
	assert.False(t, reply.Messages[0].IsCard())
	require.NotNil(t, reply.Messages[0].QuickReply)
	assert.Len(t, reply.Messages[0].QuickReply.Items, 5)

	state = f.state(t)
	assert.True(t, state.Tasks[0].Favorited)
	require.Len(t, state.Favorites, 1)
	assert.Equal(t, "buy milk", state.Favorites[0].Name)
	assert.Equal(t, domain.DialogueAwaitingTag, state.Dialogue.State())
	assert.Equal(t, task.ID, state.Dialogue.TargetTaskID)

	// Scenario 3: the next text is the tag label.
	reply = uc.Execute(ctx, textEvent("Groceries"))

	require.Len(t, reply.Messages, 1)
	assert.True(t, reply.Messages[0].IsCard())
	state = f.state(t)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "(Groceries)buy milk", state.Tasks[0].Text)
	assert.Equal(t, "(Groceries)buy milk", state.Favorites[0].Name)
	assert.Equal(t, domain.DialogueIdle, state.Dialogue.State())

	// Scenario 4: a question goes to the assistant and leaves the store alone.
	before := f.state(t)
	reply = uc.Execute(ctx, textEvent("What tasks do I have?"))

	require.Len(t, reply.Messages, 1)
	assert.Equal(t, "You have 1 task.", reply.Messages[0].Text)
	assert.Equal(t, before, f.state(t))
	assert.Equal(t, []string{"What tasks do I have?"}, f.assistant.Prompts)

	// Scenario 5: a sync snapshot replaces the store.
	reply = uc.Execute(ctx, domain.SyncRequest{
		EventBase: base(),
		Payload:   `SYNC_TASKS:[{"id":1,"text":"a","completed":false}]`,
	})

	require.Len(t, reply.Messages, 1)
	assert.True(t, reply.Messages[0].IsCard())
	state = f.state(t)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, int64(1), state.Tasks[0].ID)
	assert.Equal(t, "a", state.Tasks[0].Text)

	// Scenario 6: completing an absent task changes nothing and still replies.
	before = f.state(t)
	reply = uc.Execute(ctx, postbackEvent(domain.ActionComplete, 999))

	require.NotNil(t, reply)
	assert.Equal(t, view.TextTaskNotFound, reply.Messages[0].Text)
	assert.Equal(t, before, f.state(t))
}

func TestHandleEvent_Complete(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "buy milk")[0]
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), postbackEvent(domain.ActionComplete, task.ID))

	// Assert
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, view.CompletedText(domain.Task{Text: "buy milk"}), reply.Messages[0].Text)
	row := firstRow(t, reply.Messages[1])
	assert.Equal(t, "☑", row[2].Text)
	assert.Equal(t, "line-through", row[0].Decoration)
	assert.True(t, f.state(t).Tasks[0].Completed)
}

func TestHandleEvent_DoubleTapComplete(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "buy milk")[0]
	uc := NewHandleEvent(f.deps())

	// Execute
	var wg sync.WaitGroup
	replies := make([]*domain.Reply, 2)
	for i := range replies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replies[i] = uc.Execute(context.Background(), postbackEvent(domain.ActionComplete, task.ID))
		}()
	}
	wg.Wait()

	// Assert
	for _, r := range replies {
		require.NotNil(t, r)
		require.Len(t, r.Messages, 2)
	}
	state := f.state(t)
	require.Len(t, state.Tasks, 1)
	assert.True(t, state.Tasks[0].Completed)
}

func TestHandleEvent_FavoriteTwice(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "buy milk")[0]
	uc := NewHandleEvent(f.deps())
	uc.Execute(context.Background(), postbackEvent(domain.ActionFavorite, task.ID))

	// Execute
	reply := uc.Execute(context.Background(), postbackEvent(domain.ActionFavorite, task.ID))

	// Assert
	assert.Equal(t, view.TextAlreadyFaved, reply.Messages[0].Text)
	assert.Len(t, f.state(t).Favorites, 1)
}

func TestHandleEvent_FavoriteUsesUserTags(t *testing.T) {
	// Setup
	f := newFixture()
	f.tags.Tags = []domain.Tag{
		{ID: 2, Name: "second", SortOrder: 2, IsActive: true},
		{ID: 1, Name: "first", SortOrder: 1, IsActive: true},
	}
	task := f.seed(t, "buy milk")[0]
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), postbackEvent(domain.ActionFavorite, task.ID))

	// Assert
	items := reply.Messages[0].QuickReply.Items
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Action.Text)
	assert.Equal(t, "second", items[1].Action.Text)
}

func TestHandleEvent_TagLookupFailureUsesDefaults(t *testing.T) {
	// Setup
	f := newFixture()
	f.tags.Err = assert.AnError
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), textEvent("buy milk"))

	// Assert
	require.NotNil(t, reply.Messages[0].QuickReply)
	assert.Len(t, reply.Messages[0].QuickReply.Items, 5)
	assert.True(t, f.log.Has("WARN", "tags"))
	assert.Len(t, f.state(t).Tasks, 1)
}

func TestHandleEvent_TagForVanishedTask(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "buy milk")[0]
	uc := NewHandleEvent(f.deps())
	uc.Execute(context.Background(), postbackEvent(domain.ActionFavorite, task.ID))
	uc.Execute(context.Background(), domain.SyncRequest{EventBase: base(), Payload: `SYNC_TASKS:[{"id":1,"text":"other"}]`})

	// Execute
	reply := uc.Execute(context.Background(), textEvent("Groceries"))

	// Assert
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, view.TextTaskNotFound, reply.Messages[0].Text)
	assert.True(t, reply.Messages[1].IsCard())
	state := f.state(t)
	assert.Equal(t, domain.DialogueIdle, state.Dialogue.State())
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "other", state.Tasks[0].Text)
}

func TestHandleEvent_AssistantFailure(t *testing.T) {
	// Setup
	f := newFixture()
	f.assistant.Err = errors.New("timeout")
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), textEvent("how do I cook rice"))

	// Assert
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, view.TextAssistantDown, reply.Messages[0].Text)
	assert.Empty(t, f.state(t).Tasks)
}

func TestHandleEvent_PanicBecomesApology(t *testing.T) {
	// Setup
	f := newFixture()
	f.assistant.Panic = "boom"
	uc := NewHandleEvent(f.deps())

	// Execute
	var reply *domain.Reply
	assert.NotPanics(t, func() {
		reply = uc.Execute(context.Background(), textEvent("why is the sky blue?"))
	})

	// Assert
	require.NotNil(t, reply)
	assert.Equal(t, view.TextApology, reply.Messages[0].Text)
	assert.True(t, f.log.Has("ERROR", "dispatch"))
}

func TestHandleEvent_SyncRejected(t *testing.T) {
	// Setup
	f := newFixture()
	f.seed(t, "keep me")
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), domain.SyncRequest{EventBase: base(), Payload: "SYNC_TASKS:not json"})

	// Assert
	require.Len(t, reply.Messages, 2)
	assert.Equal(t, view.TextSyncRejected, reply.Messages[0].Text)
	assert.Equal(t, "1. keep me", firstRow(t, reply.Messages[1])[0].Text)
	assert.Equal(t, "keep me", f.state(t).Tasks[0].Text)
}

func TestHandleEvent_List(t *testing.T) {
	// Setup
	f := newFixture()
	f.seed(t, "a", "b")
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), domain.Postback{EventBase: base(), Data: domain.PostbackData{Action: domain.ActionList}})

	// Assert
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, "總共 2 件事要做", reply.Messages[0].AltText)
}

func TestHandleEvent_CardLinksCarryTicket(t *testing.T) {
	// Setup
	f := newFixture()
	uc := NewHandleEvent(f.deps())

	// Execute
	reply := uc.Execute(context.Background(), textEvent("buy milk"))

	// Assert
	row := firstRow(t, reply.Messages[0])
	require.NotNil(t, row[0].Action)
	assert.Contains(t, row[0].Action.URI, "ticket=ticket%3A"+testUser)
	assert.Contains(t, row[0].Action.URI, "taskId=")
}

func TestHandleEvent_OtherEvents(t *testing.T) {
	f := newFixture()
	uc := NewHandleEvent(f.deps())
	ctx := context.Background()

	t.Run("follow", func(t *testing.T) {
		reply := uc.Execute(ctx, domain.Follow{EventBase: base()})
		require.NotNil(t, reply)
		assert.Equal(t, view.TextWelcome, reply.Messages[0].Text)
	})

	t.Run("sticker is ignored", func(t *testing.T) {
		reply := uc.Execute(ctx, domain.Unsupported{EventBase: base(), Kind: "sticker"})
		assert.Nil(t, reply)
	})

	t.Run("invalid postback", func(t *testing.T) {
		reply := uc.Execute(ctx, domain.Unsupported{EventBase: base(), Kind: "postback", Err: domain.ErrInvalidPostback})
		require.NotNil(t, reply)
		assert.Equal(t, view.TextInvalidAction, reply.Messages[0].Text)
	})

	t.Run("empty text", func(t *testing.T) {
		reply := uc.Execute(ctx, textEvent("\n"))
		require.NotNil(t, reply)
		assert.Equal(t, view.TextEmptyMessage, reply.Messages[0].Text)
	})

	t.Run("nil event", func(t *testing.T) {
		assert.Nil(t, uc.Execute(ctx, nil))
	})
}
