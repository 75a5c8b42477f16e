package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

const (
	noConfirmation = "Nenhuma confirmação pendente para esta ação."
	taskNotFound   = "Tarefa não encontrada"
	executeFailed  = "Erro ao executar ação. Tente novamente."
)

/*
ExecuteAction runs a mutation the user confirmed through an action button.
Nothing reaches the executor unless the stored mode is a confirmation of the
same kind for the same task.  A cancel clears whatever is pending.

The returned error classifies failures for transport layers; the result is
always filled in with a message that can be shown as-is.
*/
func (assistant *Assistant) ExecuteAction(
	ctx context.Context, userID string, request types.ActionRequest,
) (types.ActionResult, error) {
	unlock := assistant.locks.Lock(userID)
	defer unlock()

	state, err := assistant.load(ctx, userID)

	if err != nil {
		return types.ActionResult{Success: false, Message: executeFailed}, err
	}

	now := assistant.clock().In(assistant.location)

	if request.Action == types.ActionCancel {
		state.Mode = Idle()
		state.UpdatedAt = now

		if err = assistant.sessions.Put(ctx, userID, state); err != nil {
			return types.ActionResult{Message: executeFailed}, fmt.Errorf("store session %s: %w", userID, err)
		}

		return types.ActionResult{Success: true, Message: assistant.pick(cancelReplies)}, nil
	}

	run, err := assistant.authorize(state.Mode, request)

	if err != nil {
		message := noConfirmation

		if errors.Is(err, errors.ErrUnsupportedAction) {
			message = fmt.Sprintf("Ação '%s' não suportada", request.Action)
		}

		log.Warn("action rejected", "user", userID, "action", request.Action, "task", request.TaskID, "error", err)
		assistant.metrics.RecordAction(request.Action, false)

		return types.ActionResult{Success: false, Message: message}, err
	}

	task, err := run(ctx, userID)

	if errors.Is(err, errors.ErrTaskNotFound) {
		assistant.metrics.RecordAction(request.Action, false)
		state.Mode = Idle()
		state.UpdatedAt = now

		if putErr := assistant.sessions.Put(ctx, userID, state); putErr != nil {
			return types.ActionResult{Message: executeFailed}, fmt.Errorf("store session %s: %w", userID, putErr)
		}

		return types.ActionResult{Success: false, Message: taskNotFound}, nil
	}

	if err != nil {
		log.Error("action failed", "user", userID, "action", request.Action, "error", err)
		assistant.metrics.RecordAction(request.Action, false)

		return types.ActionResult{Success: false, Message: executeFailed}, err
	}

	entry := types.AuditEntry{
		Action:    request.Action,
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Timestamp: now,
	}

	state.ExecutedActions = append(state.ExecutedActions, entry)
	state.Mode = Idle()
	state.UpdatedAt = now

	if err = assistant.sessions.Put(ctx, userID, state); err != nil {
		return types.ActionResult{Message: executeFailed}, fmt.Errorf("store session %s: %w", userID, err)
	}

	if assistant.audit != nil {
		assistant.audit(userID, entry)
	}

	assistant.metrics.RecordAction(request.Action, true)

	log.Info("action executed", "user", userID, "action", request.Action, "task", task.ID)

	return types.ActionResult{
		Success: true,
		Message: assistant.successMessage(request.Action, task),
		Task:    summaryOf(task, assistant.location),
	}, nil
}

type mutation func(ctx context.Context, userID string) (tasks.Task, error)

/*
authorize checks request against the pending confirmation and returns the
mutation to run.  It never touches the executor itself.
*/
func (assistant *Assistant) authorize(mode Mode, request types.ActionRequest) (mutation, error) {
	if assistant.executor == nil {
		return nil, errors.ErrPortUnavailable
	}

	switch request.Action {
	case types.ActionComplete:
		if !mode.IsConfirming(intent.KindComplete) || mode.Target().ID != request.TaskID {
			return nil, errors.ErrNoPendingConfirmation
		}

		return func(ctx context.Context, userID string) (tasks.Task, error) {
			return assistant.executor.Complete(ctx, userID, request.TaskID)
		}, nil
	case types.ActionDelete:
		if !mode.IsConfirming(intent.KindDelete) || mode.Target().ID != request.TaskID {
			return nil, errors.ErrNoPendingConfirmation
		}

		return func(ctx context.Context, userID string) (tasks.Task, error) {
			return assistant.executor.Delete(ctx, userID, request.TaskID)
		}, nil
	case types.ActionUpdateStatus:
		if !mode.IsConfirming(intent.KindUpdate) || mode.Target().ID != request.TaskID {
			return nil, errors.ErrNoPendingConfirmation
		}

		status := mode.Status()

		if raw, ok := request.TaskData["status"].(string); ok && raw != "" {
			if tasks.CanonicalStatus(raw) != status {
				return nil, errors.ErrNoPendingConfirmation
			}
		}

		if status == "" || status == tasks.StatusUnknown {
			return nil, errors.ErrInvalidPayload
		}

		return func(ctx context.Context, userID string) (tasks.Task, error) {
			return assistant.executor.UpdateStatus(ctx, userID, request.TaskID, status)
		}, nil
	case types.ActionCreate:
		if !mode.IsConfirming(intent.KindCreate) {
			return nil, errors.ErrNoPendingConfirmation
		}

		draft, err := assistant.draftFrom(mode.Draft(), request.TaskData)

		if err != nil {
			return nil, err
		}

		return func(ctx context.Context, userID string) (tasks.Task, error) {
			return assistant.executor.Create(ctx, userID, draft)
		}, nil
	}

	return nil, errors.ErrUnsupportedAction
}

/*
draftFrom builds the create payload.  Fields posted with the button win over
the stored draft so the client can edit the title before confirming.
*/
func (assistant *Assistant) draftFrom(pending CreateDraft, posted map[string]any) (tasks.Draft, error) {
	title := pending.Title
	priority := pending.Priority
	due := pending.DueDate

	if value, ok := posted["title"].(string); ok && strings.TrimSpace(value) != "" {
		title = strings.TrimSpace(value)
	}

	if value, ok := posted["priority"].(string); ok && value != "" {
		priority = value
	}

	if value, ok := posted["due_date"].(string); ok && value != "" {
		due = &value
	}

	if title == "" {
		return tasks.Draft{}, errors.ErrInvalidPayload
	}

	draft := tasks.Draft{
		Title:       title,
		Description: pending.Text,
		Priority:    tasks.CanonicalPriority(priority),
	}

	if due != nil {
		if parsed, ok := tasks.ParseDueDate(*due, assistant.location); ok {
			draft.DueDate = &parsed
		}
	}

	return draft, nil
}

func (assistant *Assistant) successMessage(action string, task tasks.Task) string {
	switch action {
	case types.ActionCreate:
		message := fmt.Sprintf("✅ Tarefa '%s' criada com sucesso!", task.Title)

		if task.DueDate != nil {
			message += "\n📅 Agendada para: " + task.DueDate.In(assistant.location).Format("02/01/2006 às 15:04")
		}

		return message
	case types.ActionComplete:
		return fmt.Sprintf("✅ Tarefa '%s' marcada como concluída!", task.Title)
	case types.ActionDelete:
		return fmt.Sprintf("🗑️ Tarefa '%s' deletada com sucesso!", task.Title)
	}

	return fmt.Sprintf("✅ Status de '%s' alterado para %s!", task.Title, formatStatus(task.Status))
}

func summaryOf(task tasks.Task, loc *time.Location) *types.TaskSummary {
	summary := &types.TaskSummary{
		ID:       task.ID,
		Title:    task.Title,
		Status:   string(task.Status),
		Priority: string(task.Priority),
	}

	if task.DueDate != nil {
		due := tasks.FormatDueDate(*task.DueDate, loc)
		summary.DueDate = &due
	}

	return summary
}
