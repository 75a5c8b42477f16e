package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

/*
TaskRepository is the in-memory task store used by the demo server and the
tests.  Tasks are copied on the way in and out so callers can never alias
stored values.
*/
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]tasks.Task
	order []string
}

func NewTaskRepository(seed ...tasks.Task) *TaskRepository {
	repo := &TaskRepository{tasks: map[string]tasks.Task{}}

	for _, task := range seed {
		if _, err := repo.Create(context.Background(), task); err != nil {
			log.Warn("seed task rejected", "id", task.ID, "error", err)
		}
	}

	return repo
}

// ListForUser returns the user's tasks in creation order.
func (repo *TaskRepository) ListForUser(_ context.Context, userID string) ([]tasks.Task, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	out := []tasks.Task{}

	for _, id := range repo.order {
		if task := repo.tasks[id]; task.UserID == userID {
			out = append(out, task)
		}
	}

	return out, nil
}

func (repo *TaskRepository) Get(_ context.Context, id string) (tasks.Task, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	task, ok := repo.tasks[id]

	if !ok {
		return tasks.Task{}, errors.ErrTaskNotFound
	}

	return task, nil
}

func (repo *TaskRepository) Create(_ context.Context, task tasks.Task) (tasks.Task, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	task.ID = cmp.Or(task.ID, uuid.NewString())
	task.Status = cmp.Or(task.Status, tasks.StatusTodo)
	task.Priority = cmp.Or(task.Priority, tasks.PriorityMedium)

	if _, exists := repo.tasks[task.ID]; exists {
		return tasks.Task{}, errors.ErrTaskExists
	}

	repo.order = append(repo.order, task.ID)
	repo.tasks[task.ID] = task

	return task, nil
}

func (repo *TaskRepository) Update(_ context.Context, task tasks.Task) (tasks.Task, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.tasks[task.ID]; !ok {
		return tasks.Task{}, errors.ErrTaskNotFound
	}

	repo.tasks[task.ID] = task

	return task, nil
}

func (repo *TaskRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.tasks[id]; !ok {
		return errors.ErrTaskNotFound
	}

	delete(repo.tasks, id)
	repo.order = slices.DeleteFunc(repo.order, func(existing string) bool { return existing == id })

	return nil
}
