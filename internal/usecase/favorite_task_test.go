package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

func TestFavoriteTask_Execute_Success(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "(工作)寫報告")[0]
	uc := NewFavoriteTask(f.users, f.persistence, f.ids, f.clock, f.log)

	// Execute
	out, err := uc.Execute(context.Background(), FavoriteTaskInput{UserID: testUser, TaskID: task.ID})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, out.Favorite)
	assert.Equal(t, "fav-1", out.Favorite.ID)
	assert.Equal(t, "(工作)寫報告", out.Favorite.Name)
	assert.Equal(t, "工作", out.Favorite.Category)
	assert.Equal(t, task.ID, out.Favorite.SourceTaskID)
	assert.True(t, out.Task.Favorited)

	state := f.state(t)
	assert.True(t, state.Tasks[0].Favorited)
	assert.True(t, state.Dialogue.AwaitingTag())
	assert.Equal(t, task.ID, state.Dialogue.TargetTaskID)
	assert.Contains(t, f.persistence.Favorites, "fav-1")
}

func TestFavoriteTask_Execute_AlreadyFavorited(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "a")[0]
	uc := NewFavoriteTask(f.users, f.persistence, f.ids, f.clock, f.log)
	_, err := uc.Execute(context.Background(), FavoriteTaskInput{UserID: testUser, TaskID: task.ID})
	require.NoError(t, err)
	require.NoError(t, f.users.Update(context.Background(), testUser, func(s *domain.UserState) error {
		s.Dialogue.Reset()
		return nil
	}))

	// Execute
	out, err := uc.Execute(context.Background(), FavoriteTaskInput{UserID: testUser, TaskID: task.ID})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, out.Favorite)
	state := f.state(t)
	assert.Len(t, state.Favorites, 1)
	assert.False(t, state.Dialogue.AwaitingTag(), "no-op must not reopen the dialogue")
}

func TestFavoriteTask_Execute_TaskNotFound(t *testing.T) {
	// Setup
	f := newFixture()
	uc := NewFavoriteTask(f.users, f.persistence, f.ids, f.clock, f.log)

	// Execute
	_, err := uc.Execute(context.Background(), FavoriteTaskInput{UserID: testUser, TaskID: 1})

	// Assert
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Empty(t, f.state(t).Favorites)
	assert.Empty(t, f.persistence.Favorites)
}

func TestFavoriteTask_Execute_SaveFailureKeepsFavorite(t *testing.T) {
	// Setup
	f := newFixture()
	task := f.seed(t, "a")[0]
	f.persistence.SaveErr = assert.AnError
	uc := NewFavoriteTask(f.users, f.persistence, f.ids, f.clock, f.log)

	// Execute
	out, err := uc.Execute(context.Background(), FavoriteTaskInput{UserID: testUser, TaskID: task.ID})

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, out.Favorite)
	assert.Len(t, f.state(t).Favorites, 1)
	assert.True(t, f.log.Has("WARN", "persist"))
}
