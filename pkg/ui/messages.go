package ui

import (
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

// Message types for internal events
type replyMsg struct{ response types.Response }
type actionMsg struct{ result types.ActionResult }
type tasksMsg struct{ tasks []tasks.Task }
type clearedMsg struct{}
type errorMsg struct{ err error }
