package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// TagSet lists per-user tag sets to import.
type TagSet interface {
	Users() []string
	UserTags(userID string) []domain.Tag
}

// ImportTagsInput contains parameters for ImportTags.
type ImportTagsInput struct {
	Source TagSet
	// UserID limits the import to one user when set.
	UserID string
}

// ImportTagsOutput contains import results.
type ImportTagsOutput struct {
	Users int
	Tags  int
}

// ImportTags copies per-user tag sets into the tag store, replacing what
// each imported user had.
type ImportTags struct {
	dest domain.TagWriter
	log  domain.Logger
}

// NewImportTags creates a new ImportTags use case.
func NewImportTags(dest domain.TagWriter, log domain.Logger) *ImportTags {
	return &ImportTags{dest: dest, log: orNop(log)}
}

// Execute imports the tag sets.
func (uc *ImportTags) Execute(ctx context.Context, in ImportTagsInput) (*ImportTagsOutput, error) {
	if uc.dest == nil {
		return nil, errors.New("tag store does not accept writes")
	}
	if in.Source == nil {
		return nil, errors.New("tag source is nil")
	}

	users := in.Source.Users()
	if in.UserID != "" {
		if !slices.Contains(users, in.UserID) {
			return nil, fmt.Errorf("user %s has no tags in source", in.UserID)
		}
		users = []string{in.UserID}
	}

	out := &ImportTagsOutput{}
	for _, userID := range users {
		tags := in.Source.UserTags(userID)
		if err := uc.dest.ReplaceTags(ctx, userID, tags); err != nil {
			return out, fmt.Errorf("replace tags for %s: %w", userID, err)
		}
		uc.log.Info(userID, "tags", fmt.Sprintf("imported %d tags", len(tags)))
		out.Users++
		out.Tags += len(tags)
	}
	return out, nil
}
