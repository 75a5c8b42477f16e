package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/errors"
)

/*
Repository is the persistence port for tasks.  Get returns
errors.ErrTaskNotFound for unknown ids.
*/
type Repository interface {
	ListForUser(ctx context.Context, userID string) ([]Task, error)
	Get(ctx context.Context, id string) (Task, error)
	Create(ctx context.Context, task Task) (Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id string) error
}

/*
Executor performs the mutations the assistant is allowed to request.  Every
method re-reads the task and checks that it belongs to userID before
touching it; a foreign task is reported exactly like a missing one.
*/
type Executor struct {
	repo  Repository
	clock Clock
}

type ExecutorOption func(*Executor)

func NewExecutor(repo Repository, options ...ExecutorOption) *Executor {
	executor := &Executor{
		repo:  repo,
		clock: time.Now,
	}

	for _, option := range options {
		option(executor)
	}

	return executor
}

func WithExecutorClock(clock Clock) ExecutorOption {
	return func(executor *Executor) {
		executor.clock = clock
	}
}

// ListForUser exposes the repository read so an Executor can also serve as
// the snapshot provider.
func (executor *Executor) ListForUser(ctx context.Context, userID string) ([]Task, error) {
	return executor.repo.ListForUser(ctx, userID)
}

func (executor *Executor) owned(ctx context.Context, userID, taskID string) (Task, error) {
	if taskID == "" {
		return Task{}, errors.ErrInvalidPayload
	}

	task, err := executor.repo.Get(ctx, taskID)

	if err != nil {
		if errors.Is(err, errors.ErrTaskNotFound) {
			return Task{}, errors.ErrTaskNotFound
		}

		return Task{}, fmt.Errorf("load task %s: %w", taskID, err)
	}

	if task.UserID != userID {
		log.Warn("task ownership mismatch", "task", taskID, "user", userID)
		return Task{}, errors.ErrTaskNotFound
	}

	return task, nil
}

// Complete marks the task done and stamps the completion time.
func (executor *Executor) Complete(ctx context.Context, userID, taskID string) (Task, error) {
	return executor.UpdateStatus(ctx, userID, taskID, StatusDone)
}

/*
UpdateStatus sets the status.  The completion time is only stamped when the
new status is done.
*/
func (executor *Executor) UpdateStatus(
	ctx context.Context, userID, taskID string, status Status,
) (Task, error) {
	task, err := executor.owned(ctx, userID, taskID)

	if err != nil {
		return Task{}, err
	}

	task.Status = status

	if status == StatusDone {
		now := executor.clock()
		task.CompletedAt = &now
	}

	return executor.repo.Update(ctx, task)
}

// Delete removes the task and returns what it looked like beforehand.
func (executor *Executor) Delete(ctx context.Context, userID, taskID string) (Task, error) {
	task, err := executor.owned(ctx, userID, taskID)

	if err != nil {
		return Task{}, err
	}

	if err = executor.repo.Delete(ctx, taskID); err != nil {
		return Task{}, fmt.Errorf("delete task %s: %w", taskID, err)
	}

	return task, nil
}

// Create stores a new todo task owned by userID.
func (executor *Executor) Create(ctx context.Context, userID string, draft Draft) (Task, error) {
	if len([]rune(draft.Title)) == 0 {
		return Task{}, errors.ErrInvalidPayload
	}

	priority := draft.Priority

	if priority == "" || priority == PriorityUnknown {
		priority = PriorityMedium
	}

	now := executor.clock()

	return executor.repo.Create(ctx, Task{
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      StatusTodo,
		Priority:    priority,
		DueDate:     draft.DueDate,
		CreatedAt:   &now,
	})
}
