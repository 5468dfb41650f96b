package usecase

import (
	"context"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/usecase/shared"
)

// SyncTasksInput contains the parameters for applying a sync snapshot.
type SyncTasksInput struct {
	UserID  string
	Payload string // Encoded snapshot, marker included
}

// SyncTasksOutput contains the result of applying a sync snapshot.
type SyncTasksOutput struct {
	// RejectErr is set when the payload was malformed. It wraps
	// domain.ErrMalformedSync and Tasks is the unchanged last known list.
	RejectErr error
	Tasks     []domain.Task
}

// Rejected reports whether the snapshot was refused.
func (o *SyncTasksOutput) Rejected() bool {
	return o.RejectErr != nil
}

// SyncTasks is the use case for replacing a user's task list with a snapshot
// from the browser surface. The last snapshot received wins; there is no
// per-task merge. Favorites and a pending tag question are left alone.
// Fields are ordered to minimize memory padding.
type SyncTasks struct {
	users       domain.UserStore
	persistence domain.Persistence
	clock       domain.Clock
	log         domain.Logger
}

// NewSyncTasks creates a new SyncTasks use case.
func NewSyncTasks(users domain.UserStore, persistence domain.Persistence, clock domain.Clock, log domain.Logger) *SyncTasks {
	return &SyncTasks{
		users:       users,
		persistence: persistence,
		clock:       clock,
		log:         orNop(log),
	}
}

// Execute decodes the payload and replaces the task list.
// A malformed payload is not an error of Execute: the output carries the
// reason and the last known list.
func (uc *SyncTasks) Execute(ctx context.Context, in SyncTasksInput) (*SyncTasksOutput, error) {
	var out SyncTasksOutput
	err := uc.users.Update(ctx, in.UserID, func(s *domain.UserState) error {
		current := s.Clone().Tasks
		tasks, decodeErr := domain.DecodeSnapshot(in.Payload, current)
		if decodeErr != nil {
			out.RejectErr = decodeErr
			out.Tasks = tasks
			return nil
		}
		s.ReplaceAll(tasks)
		out.Tasks = s.Clone().Tasks
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Rejected() {
		uc.log.Warn(in.UserID, "sync", out.RejectErr.Error())
		return &out, nil
	}
	uc.log.Info(in.UserID, "sync", "replaced task list")
	shared.Audit(ctx, uc.persistence, uc.log, domain.MessageRecord{
		UserID:    in.UserID,
		Text:      in.Payload,
		Kind:      domain.MessageKindSync,
		CreatedAt: uc.clock.Now(),
	})
	return &out, nil
}
