package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/userstore"
	"github.com/xiaowang-jiji/taskbot/internal/testutil"
)

const testUser = "U1234"

var testNow = time.Date(2025, 9, 11, 10, 0, 0, 0, time.UTC)

// fixture bundles the collaborators shared by use case tests.
type fixture struct {
	users       *userstore.Store
	persistence *testutil.MockPersistence
	tags        *testutil.MockTagSource
	assistant   *testutil.MockAssistant
	ticketer    *testutil.MockTicketer
	ids         *testutil.SequentialIDs
	clock       *testutil.MockClock
	log         *testutil.RecordingLogger
}

func newFixture() *fixture {
	return &fixture{
		users:       userstore.New(),
		persistence: testutil.NewMockPersistence(),
		tags:        &testutil.MockTagSource{},
		assistant:   &testutil.MockAssistant{Answer: "You have 1 task."},
		ticketer:    &testutil.MockTicketer{},
		ids:         &testutil.SequentialIDs{},
		clock:       &testutil.MockClock{NowTime: testNow},
		log:         &testutil.RecordingLogger{},
	}
}

func (f *fixture) deps() HandleEventDeps {
	return HandleEventDeps{
		Users:       f.users,
		Persistence: f.persistence,
		Tags:        f.tags,
		Assistant:   f.assistant,
		Ticketer:    f.ticketer,
		IDs:         f.ids,
		Clock:       f.clock,
		Logger:      f.log,
		Links: domain.LinksConfig{
			EditURL:      "https://example.com/edit",
			RecordsURL:   "https://example.com/records",
			FavoritesURL: "https://example.com/favorites",
		},
	}
}

// seed creates tasks for testUser and returns them.
func (f *fixture) seed(t *testing.T, texts ...string) []domain.Task {
	t.Helper()
	var tasks []domain.Task
	err := f.users.Update(context.Background(), testUser, func(s *domain.UserState) error {
		for _, text := range texts {
			tasks = append(tasks, s.CreateTask(text, f.clock.Now()))
		}
		return nil
	})
	require.NoError(t, err)
	return tasks
}

func (f *fixture) state(t *testing.T) domain.UserState {
	t.Helper()
	s, err := f.users.Snapshot(context.Background(), testUser)
	require.NoError(t, err)
	return s
}

func base() domain.EventBase {
	return domain.EventBase{ID: "evt-1", UserID: testUser, ReplyToken: "rt-1", Timestamp: testNow}
}

func textEvent(text string) domain.TextMessage {
	return domain.TextMessage{EventBase: base(), Text: text}
}

func postbackEvent(action domain.Action, taskID int64) domain.Postback {
	return domain.Postback{EventBase: base(), Data: domain.PostbackData{Action: action, TaskID: taskID}}
}
