package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	taskerrors "github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/stores/memory"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

func TestExecutor(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	Convey("Given tasks owned by two users", t, func() {
		repo := memory.NewTaskRepository(
			tasks.Task{ID: "A", UserID: "u1", Title: "Reunião", Status: tasks.StatusTodo},
			tasks.Task{ID: "B", UserID: "u2", Title: "Alheia", Status: tasks.StatusTodo},
		)
		executor := tasks.NewExecutor(repo, tasks.WithExecutorClock(func() time.Time { return now }))

		Convey("Completing stamps the completion time", func() {
			task, err := executor.Complete(ctx, "u1", "A")

			So(err, ShouldBeNil)
			So(task.Status, ShouldEqual, tasks.StatusDone)
			So(task.CompletedAt.Equal(now), ShouldBeTrue)
		})

		Convey("Moving back to in progress leaves the completion time alone", func() {
			task, err := executor.UpdateStatus(ctx, "u1", "A", tasks.StatusInProgress)

			So(err, ShouldBeNil)
			So(task.CompletedAt, ShouldBeNil)
		})

		Convey("A foreign task looks exactly like a missing one", func() {
			_, foreign := executor.Delete(ctx, "u1", "B")
			_, missing := executor.Delete(ctx, "u1", "Z")

			So(errors.Is(foreign, taskerrors.ErrTaskNotFound), ShouldBeTrue)
			So(errors.Is(missing, taskerrors.ErrTaskNotFound), ShouldBeTrue)

			still, err := repo.Get(ctx, "B")
			So(err, ShouldBeNil)
			So(still.Title, ShouldEqual, "Alheia")
		})

		Convey("Deleting returns the task as it was", func() {
			task, err := executor.Delete(ctx, "u1", "A")

			So(err, ShouldBeNil)
			So(task.Title, ShouldEqual, "Reunião")

			remaining, _ := executor.ListForUser(ctx, "u1")
			So(remaining, ShouldBeEmpty)
		})

		Convey("Creating needs a title and defaults the priority", func() {
			_, err := executor.Create(ctx, "u1", tasks.Draft{})
			So(errors.Is(err, taskerrors.ErrInvalidPayload), ShouldBeTrue)

			task, err := executor.Create(ctx, "u1", tasks.Draft{Title: "Nova", Priority: tasks.PriorityUnknown})
			So(err, ShouldBeNil)
			So(task.Priority, ShouldEqual, tasks.PriorityMedium)
			So(task.Status, ShouldEqual, tasks.StatusTodo)
			So(task.CreatedAt.Equal(now), ShouldBeTrue)
		})

		Convey("An empty id is rejected before the store is asked", func() {
			_, err := executor.Complete(ctx, "u1", "")

			So(errors.Is(err, taskerrors.ErrInvalidPayload), ShouldBeTrue)
		})
	})
}
