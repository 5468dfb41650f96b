package usecase

import (
	"context"
	"fmt"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// CompleteTaskInput contains the parameters for completing a task.
type CompleteTaskInput struct {
	UserID string
	TaskID int64
}

// CompleteTaskOutput contains the result of completing a task.
type CompleteTaskOutput struct {
	Tasks []domain.Task // Task list after the change
	Task  domain.Task   // The completed task
}

// CompleteTask is the use case for marking a task as completed.
// Completing an already completed task changes nothing.
type CompleteTask struct {
	users domain.UserStore
}

// NewCompleteTask creates a new CompleteTask use case.
func NewCompleteTask(users domain.UserStore) *CompleteTask {
	return &CompleteTask{users: users}
}

// Execute marks the task completed.
// Returns domain.ErrTaskNotFound, with the state untouched, when the task is absent.
func (uc *CompleteTask) Execute(ctx context.Context, in CompleteTaskInput) (*CompleteTaskOutput, error) {
	var out CompleteTaskOutput
	err := uc.users.Update(ctx, in.UserID, func(s *domain.UserState) error {
		task, ok := s.CompleteTask(in.TaskID)
		if !ok {
			return fmt.Errorf("complete task %d: %w", in.TaskID, domain.ErrTaskNotFound)
		}
		out.Task = task
		out.Tasks = s.Clone().Tasks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
