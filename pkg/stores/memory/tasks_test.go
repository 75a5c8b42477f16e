package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	taskerrors "github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(
		tasks.Task{ID: "A", UserID: "u1", Title: "Reunião"},
		tasks.Task{ID: "B", UserID: "u2", Title: "Outro usuário"},
	)

	created, err := repo.Create(ctx, tasks.Task{UserID: "u1", Title: "Comprar pão"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, tasks.StatusTodo, created.Status)
	assert.Equal(t, tasks.PriorityMedium, created.Priority)

	mine, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "A", mine[0].ID)
	assert.Equal(t, created.ID, mine[1].ID)

	created.Status = tasks.StatusDone
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusDone, stored.Status)

	require.NoError(t, repo.Delete(ctx, "A"))
	_, err = repo.Get(ctx, "A")
	assert.True(t, errors.Is(err, taskerrors.ErrTaskNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, "A"), taskerrors.ErrTaskNotFound))

	_, err = repo.Update(ctx, tasks.Task{ID: "ghost"})
	assert.True(t, errors.Is(err, taskerrors.ErrTaskNotFound))
}

func TestTaskRepositorySeed(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(
		tasks.Task{ID: "A", UserID: "u1", Title: "Reunião"},
		tasks.Task{ID: "A", UserID: "u1", Title: "Duplicada"},
		tasks.Task{ID: "B", UserID: "u1", Title: "Comprar pão"},
	)

	mine, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Reunião", mine[0].Title)
	assert.Equal(t, "B", mine[1].ID)

	_, err = repo.Create(ctx, tasks.Task{ID: "B", UserID: "u2", Title: "Roubada"})
	assert.True(t, errors.Is(err, taskerrors.ErrTaskExists))

	stored, err := repo.Get(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
}
