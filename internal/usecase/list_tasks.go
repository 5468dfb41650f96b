package usecase

import (
	"context"
	"fmt"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// ListTasksInput contains the parameters for listing a user's tasks.
type ListTasksInput struct {
	UserID string
}

// ListTasksOutput contains a user's tasks and favorites.
type ListTasksOutput struct {
	Payload   string // Tasks encoded as a sync snapshot
	Tasks     []domain.Task
	Favorites []domain.FavoriteTask
}

// ListTasks is the use case for reading a user's task list.
type ListTasks struct {
	users domain.UserStore
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(users domain.UserStore) *ListTasks {
	return &ListTasks{users: users}
}

// Execute returns a copy of the user's tasks and favorites.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	state, err := uc.users.Snapshot(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("snapshot user: %w", err)
	}

	payload, err := domain.EncodeSnapshot(state.Tasks)
	if err != nil {
		return nil, err
	}

	tasks := state.Tasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	favorites := state.Favorites
	if favorites == nil {
		favorites = []domain.FavoriteTask{}
	}
	return &ListTasksOutput{
		Payload:   payload,
		Tasks:     tasks,
		Favorites: favorites,
	}, nil
}
