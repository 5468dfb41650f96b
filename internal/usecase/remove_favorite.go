package usecase

import (
	"context"
	"fmt"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// RemoveFavoriteInput contains the parameters for removing a favorite.
type RemoveFavoriteInput struct {
	UserID     string
	FavoriteID string
}

// RemoveFavoriteOutput contains the removed favorite.
type RemoveFavoriteOutput struct {
	Favorite domain.FavoriteTask
}

// RemoveFavorite is the use case for deleting a favorite template.
// The source task keeps its Favorited flag.
type RemoveFavorite struct {
	users       domain.UserStore
	persistence domain.Persistence
	log         domain.Logger
}

// NewRemoveFavorite creates a new RemoveFavorite use case.
func NewRemoveFavorite(users domain.UserStore, persistence domain.Persistence, log domain.Logger) *RemoveFavorite {
	return &RemoveFavorite{
		users:       users,
		persistence: persistence,
		log:         orNop(log),
	}
}

// Execute removes the favorite.
// Returns domain.ErrFavoriteNotFound when the favorite is absent.
func (uc *RemoveFavorite) Execute(ctx context.Context, in RemoveFavoriteInput) (*RemoveFavoriteOutput, error) {
	var out RemoveFavoriteOutput
	err := uc.users.Update(ctx, in.UserID, func(s *domain.UserState) error {
		fav, err := s.RemoveFavorite(in.FavoriteID)
		if err != nil {
			return fmt.Errorf("remove favorite %s: %w", in.FavoriteID, err)
		}
		out.Favorite = fav
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.persistence != nil {
		if err := uc.persistence.DeleteFavorite(ctx, in.UserID, in.FavoriteID); err != nil {
			uc.log.Warn(in.UserID, "persist", "delete favorite "+in.FavoriteID+" failed: "+err.Error())
		}
	}
	return &out, nil
}
