package intent

import (
	"strings"

	"github.com/theapemachine/taskagent/pkg/types"
)

/*
Context is what the previous assistant turn was waiting for.
*/
type Context string

const (
	ContextNone                  Context = "none"
	AwaitingCreateConfirmation   Context = "awaiting_create_confirmation"
	AwaitingCompleteConfirmation Context = "awaiting_complete_confirmation"
	AwaitingDeleteConfirmation   Context = "awaiting_delete_confirmation"
	AwaitingTaskDescription      Context = "awaiting_task_description"
	AwaitingSelection            Context = "awaiting_selection"
)

// IsConfirmation reports one of the three awaiting_*_confirmation contexts.
func (current Context) IsConfirmation() bool {
	switch current {
	case AwaitingCreateConfirmation, AwaitingCompleteConfirmation, AwaitingDeleteConfirmation:
		return true
	}

	return false
}

const contextWindow = 4

var descriptionRequests = []string{
	"descreva a tarefa",
	"que tarefa você quer criar",
	"me diga qual tarefa",
	"qual seria a tarefa",
}

/*
Infer looks at the most recent assistant turn within the last four turns and
maps its wording onto a Context.  Markers are checked in a fixed order, so a
prompt that both lists tasks for deletion and asks for a number reads as a
delete confirmation.
*/
func Infer(history []types.ConversationTurn) Context {
	start := max(len(history)-contextWindow, 0)

	for idx := len(history) - 1; idx >= start; idx-- {
		if history[idx].Role != types.RoleAssistant {
			continue
		}

		return classifyPrompt(strings.ToLower(history[idx].Content))
	}

	return ContextNone
}

func classifyPrompt(content string) Context {
	has := func(marker string) bool { return strings.Contains(content, marker) }

	switch {
	case has("vou criar a tarefa") || has("confirmar para criar"):
		return AwaitingCreateConfirmation
	case has("marcar como concluída") || (has("confirmar") && has("concluí")):
		return AwaitingCompleteConfirmation
	case has("excluir tarefa") || has("deletar"):
		return AwaitingDeleteConfirmation
	case has("descreva a tarefa") || has("qual tarefa você quer"):
		return AwaitingTaskDescription
	case has("digite o número") || has("qual delas"):
		return AwaitingSelection
	}

	return ContextNone
}

/*
IsWaitingForDescription reports whether the most recent assistant turn in
the last four is the create handler asking for a task description.  Only a
turn recorded as create_task counts; other replies may mention tasks in
passing.
*/
func IsWaitingForDescription(history []types.ConversationTurn) bool {
	start := max(len(history)-contextWindow, 0)

	for idx := len(history) - 1; idx >= start; idx-- {
		if history[idx].Role != types.RoleAssistant {
			continue
		}

		if history[idx].Intent != string(CreateTask) {
			return false
		}

		content := strings.ToLower(history[idx].Content)

		for _, phrase := range descriptionRequests {
			if strings.Contains(content, phrase) {
				return true
			}
		}

		return false
	}

	return false
}

/*
selectionKind recovers the action a numbered list was shown for from the
wording of the prompt, for when the dialogue mode no longer carries it.
*/
func selectionKind(history []types.ConversationTurn) ActionKind {
	for idx := len(history) - 1; idx >= 0; idx-- {
		if history[idx].Role != types.RoleAssistant {
			continue
		}

		content := strings.ToLower(history[idx].Content)

		switch {
		case strings.Contains(content, "delet"), strings.Contains(content, "exclu"),
			strings.Contains(content, "remov"):
			return KindDelete
		case strings.Contains(content, "atualiz"):
			return KindUpdate
		}

		return KindComplete
	}

	return KindComplete
}
