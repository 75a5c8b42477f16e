package tasks

import (
	"encoding/json"
	"strings"
	"time"
)

/*
Status is the canonical task status.  The upstream domain accepts both
Portuguese and English spellings; everything is mapped onto these values
at the boundary and compared only in this form afterwards.
*/
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
	StatusUnknown    Status = "unknown"
)

var statusAliases = map[string]Status{
	"todo":         StatusTodo,
	"to_do":        StatusTodo,
	"pending":      StatusTodo,
	"pendente":     StatusTodo,
	"a_fazer":      StatusTodo,
	"afazer":       StatusTodo,
	"in_progress":  StatusInProgress,
	"inprogress":   StatusInProgress,
	"doing":        StatusInProgress,
	"em_progresso": StatusInProgress,
	"em_andamento": StatusInProgress,
	"andamento":    StatusInProgress,
	"done":         StatusDone,
	"completed":    StatusDone,
	"complete":     StatusDone,
	"concluida":    StatusDone,
	"concluída":    StatusDone,
	"feita":        StatusDone,
	"cancelled":    StatusCancelled,
	"canceled":     StatusCancelled,
	"cancelada":    StatusCancelled,
}

/*
Priority is the canonical task priority.
*/
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
	PriorityUnknown Priority = "unknown"
)

var priorityAliases = map[string]Priority{
	"low":     PriorityLow,
	"baixa":   PriorityLow,
	"medium":  PriorityMedium,
	"media":   PriorityMedium,
	"média":   PriorityMedium,
	"normal":  PriorityMedium,
	"high":    PriorityHigh,
	"alta":    PriorityHigh,
	"urgent":  PriorityUrgent,
	"urgente": PriorityUrgent,
}

// normalizeToken lowercases, drops enum prefixes such as "TaskStatus." and
// folds spaces and dashes into underscores.
func normalizeToken(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))

	if idx := strings.LastIndex(value, "."); idx >= 0 {
		value = value[idx+1:]
	}

	return strings.NewReplacer(" ", "_", "-", "_").Replace(value)
}

// CanonicalStatus maps any accepted spelling onto a Status.
func CanonicalStatus(raw string) Status {
	if status, ok := statusAliases[normalizeToken(raw)]; ok {
		return status
	}

	return StatusUnknown
}

// CanonicalPriority maps any accepted spelling onto a Priority.
func CanonicalPriority(raw string) Priority {
	if priority, ok := priorityAliases[normalizeToken(raw)]; ok {
		return priority
	}

	return PriorityUnknown
}

func (status *Status) UnmarshalJSON(data []byte) error {
	var raw string

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*status = CanonicalStatus(raw)
	return nil
}

func (priority *Priority) UnmarshalJSON(data []byte) error {
	var raw string

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*priority = CanonicalPriority(raw)
	return nil
}

// Rank orders priorities for sorting: lower is more important.
func (priority Priority) Rank() int {
	switch priority {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}

	return 99
}

/*
Task is the read-only reference to one of the user's tasks.  The assistant
receives a point-in-time slice of these per turn and never mutates it.
*/
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (task Task) IsDone() bool {
	return task.Status == StatusDone
}

// IsActive reports whether the task still needs work.
func (task Task) IsActive() bool {
	return task.Status != StatusDone && task.Status != StatusCancelled
}

/*
Draft carries the fields needed to create a task from chat.
*/
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

// NotDone filters out completed tasks, keeping the snapshot order.
func NotDone(snapshot []Task) []Task {
	out := make([]Task, 0, len(snapshot))

	for _, task := range snapshot {
		if !task.IsDone() {
			out = append(out, task)
		}
	}

	return out
}

// Filter keeps the tasks matching keep, in snapshot order.
func Filter(snapshot []Task, keep func(Task) bool) []Task {
	out := make([]Task, 0, len(snapshot))

	for _, task := range snapshot {
		if keep(task) {
			out = append(out, task)
		}
	}

	return out
}

// Count returns how many tasks satisfy match.
func Count(snapshot []Task, match func(Task) bool) int {
	n := 0

	for _, task := range snapshot {
		if match(task) {
			n++
		}
	}

	return n
}
