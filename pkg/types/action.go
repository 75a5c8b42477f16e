package types

import "time"

// Action names accepted by the execute endpoint and carried by ActionButtons.
const (
	ActionCreate       = "create"
	ActionComplete     = "complete"
	ActionDelete       = "delete"
	ActionUpdateStatus = "update_status"
	ActionCancel       = "cancel"
)

/*
ActionRequest is posted by the client when the user clicks a confirmation
button.  TaskID is required for complete, delete and update_status; TaskData
carries the create payload or the target status.
*/
type ActionRequest struct {
	Action   string         `json:"action"`
	TaskID   string         `json:"task_id,omitempty"`
	TaskData map[string]any `json:"task_data,omitempty"`
}

// TaskSummary is the slice of a task echoed back after an action ran.
type TaskSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Priority string  `json:"priority,omitempty"`
	DueDate  *string `json:"due_date,omitempty"`
}

/*
ActionResult reports the outcome of an executed action.  Failures are
reported through Success rather than an error so the client can show the
message as-is.
*/
type ActionResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Task    *TaskSummary `json:"task,omitempty"`
}

// AuditEntry records one mutation performed on behalf of the user.
type AuditEntry struct {
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id"`
	TaskTitle string    `json:"task_title"`
	Timestamp time.Time `json:"timestamp"`
}
