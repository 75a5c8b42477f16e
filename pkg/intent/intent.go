package intent

import "strings"

/*
Intent is the closed set of things a user can ask the assistant for.
*/
type Intent string

const (
	Greeting        Intent = "greeting"
	Thanks          Intent = "thanks"
	AboutSystem     Intent = "about_system"
	Help            Intent = "help"
	ListTasks       Intent = "list_tasks"
	CreateTask      Intent = "create_task"
	CompleteTask    Intent = "complete_task"
	DeleteTask      Intent = "delete_task"
	UpdateTask      Intent = "update_task"
	SuggestNextTask Intent = "suggest_next_task"
	TaskStatus      Intent = "task_status"
	ConfirmYes      Intent = "confirm_yes"
	ConfirmNo       Intent = "confirm_no"
	SelectComplete  Intent = "select_complete"
	SelectDelete    Intent = "select_delete"
	SelectUpdate    Intent = "select_update"
	General         Intent = "general"
)

/*
ActionKind names the mutation a dialogue is heading towards.  KindNone means
no selection list is outstanding.
*/
type ActionKind string

const (
	KindNone     ActionKind = ""
	KindCreate   ActionKind = "create"
	KindComplete ActionKind = "complete"
	KindDelete   ActionKind = "delete"
	KindUpdate   ActionKind = "update"
)

// Select returns the select_* intent for a pending selection of this kind.
func (kind ActionKind) Select() (Intent, bool) {
	switch kind {
	case KindComplete:
		return SelectComplete, true
	case KindDelete:
		return SelectDelete, true
	case KindUpdate:
		return SelectUpdate, true
	}

	return "", false
}

// classifiable is what the external classifier may answer with.
var classifiable = map[Intent]struct{}{
	Greeting:        {},
	Thanks:          {},
	AboutSystem:     {},
	Help:            {},
	ListTasks:       {},
	CreateTask:      {},
	CompleteTask:    {},
	DeleteTask:      {},
	UpdateTask:      {},
	SuggestNextTask: {},
	TaskStatus:      {},
	General:         {},
}

/*
ParseLabel validates a classifier answer against the intents it is allowed
to return.  Quotes, trailing punctuation and case are tolerated.
*/
func ParseLabel(raw string) (Intent, bool) {
	label := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "\"'`.!,;: \n"))
	label = strings.ReplaceAll(label, " ", "_")

	if _, ok := classifiable[Intent(label)]; ok {
		return Intent(label), true
	}

	return "", false
}

// Labels lists the classifiable intents, used to build the classifier prompt.
func Labels() []Intent {
	return []Intent{
		Greeting, Thanks, AboutSystem, Help, ListTasks, CreateTask, CompleteTask,
		DeleteTask, UpdateTask, SuggestNextTask, TaskStatus, General,
	}
}

// Normalize is the form the quick matcher and the keyword classifier read.
func Normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

// IsNumeric reports a non-empty message made only of ASCII digits.
func IsNumeric(message string) bool {
	if message == "" {
		return false
	}

	for _, r := range message {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
