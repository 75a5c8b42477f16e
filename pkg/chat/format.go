package chat

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/theapemachine/taskagent/pkg/tasks"
)

var statusText = map[tasks.Status]string{
	tasks.StatusTodo:       "A Fazer",
	tasks.StatusInProgress: "Em Progresso",
	tasks.StatusDone:       "Concluída",
	tasks.StatusCancelled:  "Cancelada",
}

var statusEmoji = map[tasks.Status]string{
	tasks.StatusTodo:       "📋",
	tasks.StatusInProgress: "🔄",
	tasks.StatusDone:       "✅",
	tasks.StatusCancelled:  "❌",
}

var priorityText = map[tasks.Priority]string{
	tasks.PriorityUrgent: "Urgente",
	tasks.PriorityHigh:   "Alta",
	tasks.PriorityMedium: "Média",
	tasks.PriorityLow:    "Baixa",
}

var priorityEmoji = map[tasks.Priority]string{
	tasks.PriorityUrgent: "🚨",
	tasks.PriorityHigh:   "🔴",
	tasks.PriorityMedium: "🟡",
	tasks.PriorityLow:    "🟢",
}

func formatStatus(status tasks.Status) string {
	if label, ok := statusText[status]; ok {
		return label
	}

	return string(status)
}

func formatStatusBadge(status tasks.Status) string {
	if emoji, ok := statusEmoji[status]; ok {
		return emoji + " " + formatStatus(status)
	}

	return formatStatus(status)
}

func formatPriority(priority tasks.Priority) string {
	if label, ok := priorityText[priority]; ok {
		return label
	}

	return string(priority)
}

func formatPriorityBadge(priority tasks.Priority) string {
	if emoji, ok := priorityEmoji[priority]; ok {
		return emoji + " " + formatPriority(priority)
	}

	return formatPriority(priority)
}

// truncate cuts s to limit runes, replacing the tail with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)

	return string(runes[:limit-3]) + "..."
}

// clip cuts s to limit runes without any marker.
func clip(s string, limit int) string {
	runes := []rune(s)

	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}

/*
dueTag renders the relative due date used in task lists: overdue by n
days, today, tomorrow, or the plain date.
*/
func dueTag(due *time.Time, now time.Time, loc *time.Location) string {
	if due == nil {
		return ""
	}

	local := due.In(loc)

	switch diff := tasks.DayDiff(now, local, loc); {
	case diff < 0:
		return fmt.Sprintf(" [ATRASADA %dd]", -diff)
	case diff == 0:
		return " [HOJE " + local.Format("15:04") + "]"
	case diff == 1:
		return " [AMANHÃ " + local.Format("15:04") + "]"
	}

	return " [" + local.Format("02/01 15:04") + "]"
}

// taskRow is one line of a rendered task list.
func taskRow(idx int, task tasks.Task, now time.Time, loc *time.Location) string {
	return fmt.Sprintf(
		"%d. %s | %s | %s%s",
		idx,
		truncate(task.Title, 60),
		strings.ToUpper(formatStatus(task.Status)),
		strings.ToUpper(formatPriority(task.Priority)),
		dueTag(task.DueDate, now, loc),
	)
}

func numbered(candidates []Candidate) string {
	lines := make([]string, 0, len(candidates))

	for idx, candidate := range candidates {
		lines = append(lines, fmt.Sprintf("%d. %s", idx+1, candidate.Title))
	}

	return strings.Join(lines, "\n")
}

/*
TaskView is the JSON shape of a task inside response data.
*/
type TaskView struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"due_date"`
}

func viewOf(task tasks.Task) TaskView {
	view := TaskView{
		ID:       task.ID,
		Title:    task.Title,
		Status:   string(task.Status),
		Priority: string(task.Priority),
	}

	if task.DueDate != nil {
		due := task.DueDate.Format(time.RFC3339)
		view.DueDate = &due
	}

	return view
}
