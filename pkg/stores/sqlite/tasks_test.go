package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	taskerrors "github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

func openTemp(t *testing.T) *TaskRepository {
	t.Helper()

	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestTaskRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	due := time.Date(2026, 10, 18, 17, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, tasks.Task{
		UserID: "u1", Title: "Reunião", Priority: tasks.PriorityHigh, DueDate: &due, CreatedAt: &created,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = repo.Create(ctx, tasks.Task{UserID: "u1", Title: "Comprar pão"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, tasks.Task{UserID: "u2", Title: "Alheia"})
	require.NoError(t, err)

	mine, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Reunião", mine[0].Title)
	assert.True(t, mine[0].DueDate.Equal(due))
	assert.Equal(t, tasks.PriorityHigh, mine[0].Priority)
	assert.Equal(t, tasks.StatusTodo, mine[1].Status)
	assert.Nil(t, mine[1].DueDate)

	first.Status = tasks.StatusDone
	first.CompletedAt = &created
	_, err = repo.Update(ctx, first)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusDone, stored.Status)
	assert.NotNil(t, stored.CompletedAt)

	require.NoError(t, repo.Delete(ctx, first.ID))

	_, err = repo.Get(ctx, first.ID)
	assert.True(t, errors.Is(err, taskerrors.ErrTaskNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, first.ID), taskerrors.ErrTaskNotFound))

	_, err = repo.Update(ctx, tasks.Task{ID: "ghost"})
	assert.True(t, errors.Is(err, taskerrors.ErrTaskNotFound))
}

func TestExecutorOverSQLite(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	executor := tasks.NewExecutor(repo, tasks.WithExecutorClock(func() time.Time { return now }))

	task, err := executor.Create(ctx, "u1", tasks.Draft{Title: "Ligar para o contador"})
	require.NoError(t, err)
	assert.Equal(t, tasks.PriorityMedium, task.Priority)

	_, err = executor.Complete(ctx, "intruder", task.ID)
	assert.True(t, errors.Is(err, taskerrors.ErrTaskNotFound))

	done, err := executor.Complete(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusDone, done.Status)
	assert.True(t, done.CompletedAt.Equal(now))
}
