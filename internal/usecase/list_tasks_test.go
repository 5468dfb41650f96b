package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

func TestListTasks_Execute(t *testing.T) {
	// Setup
	f := newFixture()
	tasks := f.seed(t, "a", "b")
	uc := NewListTasks(f.users)

	// Execute
	out, err := uc.Execute(context.Background(), ListTasksInput{UserID: testUser})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, tasks, out.Tasks)
	assert.NotNil(t, out.Favorites)

	decoded, err := domain.DecodeSnapshot(out.Payload, nil)
	require.NoError(t, err)
	assert.Equal(t, tasks, decoded)
}

func TestListTasks_Execute_UnknownUser(t *testing.T) {
	// Setup
	f := newFixture()
	uc := NewListTasks(f.users)

	// Execute
	out, err := uc.Execute(context.Background(), ListTasksInput{UserID: "nobody"})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, out.Tasks)
	assert.NotNil(t, out.Tasks)
	assert.Equal(t, "SYNC_TASKS:[]", out.Payload)
}
