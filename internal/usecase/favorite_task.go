package usecase

import (
	"context"
	"fmt"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/usecase/shared"
)

// FavoriteTaskInput contains the parameters for favoriting a task.
type FavoriteTaskInput struct {
	UserID string
	TaskID int64
}

// FavoriteTaskOutput contains the result of favoriting a task.
// Fields are ordered to minimize memory padding.
type FavoriteTaskOutput struct {
	Favorite *domain.FavoriteTask // New favorite; nil when the task was already favorited
	Task     domain.Task
}

// FavoriteTask is the use case for saving a task as a favorite template.
// A new favorite puts the user's dialogue into AwaitingTag for the task.
// Fields are ordered to minimize memory padding.
type FavoriteTask struct {
	users       domain.UserStore
	persistence domain.Persistence
	ids         domain.IDGenerator
	clock       domain.Clock
	log         domain.Logger
}

// NewFavoriteTask creates a new FavoriteTask use case.
func NewFavoriteTask(users domain.UserStore, persistence domain.Persistence, ids domain.IDGenerator, clock domain.Clock, log domain.Logger) *FavoriteTask {
	return &FavoriteTask{
		users:       users,
		persistence: persistence,
		ids:         ids,
		clock:       clock,
		log:         orNop(log),
	}
}

// Execute favorites the task. Favoriting an already favorited task is a no-op.
// Returns domain.ErrTaskNotFound when the task is absent.
func (uc *FavoriteTask) Execute(ctx context.Context, in FavoriteTaskInput) (*FavoriteTaskOutput, error) {
	now := uc.clock.Now()
	favoriteID := uc.ids.NewID()

	var out FavoriteTaskOutput
	err := uc.users.Update(ctx, in.UserID, func(s *domain.UserState) error {
		i := s.FindTask(in.TaskID)
		if i < 0 {
			return fmt.Errorf("favorite task %d: %w", in.TaskID, domain.ErrTaskNotFound)
		}
		if fav, created := s.FavoriteTask(in.TaskID, favoriteID, now); created {
			out.Favorite = &fav
		}
		out.Task = s.Tasks[i]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Favorite != nil {
		shared.SaveFavorite(ctx, uc.persistence, uc.log, in.UserID, *out.Favorite)
	}
	return &out, nil
}
