package ui

import (
	"fmt"
	"time"

	"github.com/theapemachine/taskagent/pkg/tasks"
)

var statusLabels = map[tasks.Status]string{
	tasks.StatusTodo:       "a fazer",
	tasks.StatusInProgress: "em progresso",
	tasks.StatusDone:       "concluída",
	tasks.StatusCancelled:  "cancelada",
}

// taskItem implements list.Item for the sidebar.
type taskItem struct {
	task     tasks.Task
	location *time.Location
}

func (i taskItem) Title() string {
	if i.task.IsDone() {
		return "✓ " + i.task.Title
	}

	return i.task.Title
}

func (i taskItem) Description() string {
	status, ok := statusLabels[i.task.Status]

	if !ok {
		status = string(i.task.Status)
	}

	if i.task.DueDate == nil {
		return fmt.Sprintf("%s · %s", status, i.task.Priority)
	}

	return fmt.Sprintf("%s · %s · %s", status, i.task.Priority, i.task.DueDate.In(i.location).Format("02/01 15:04"))
}

func (i taskItem) FilterValue() string {
	return i.task.Title
}
