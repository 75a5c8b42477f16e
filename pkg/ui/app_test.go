package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

type fakeBackend struct {
	reply    types.Response
	result   types.ActionResult
	snapshot []tasks.Task
	sent     []string
	executed []types.ActionRequest
	cleared  int
	err      error
}

func (f *fakeBackend) Send(_ context.Context, message string) (types.Response, error) {
	f.sent = append(f.sent, message)
	return f.reply, f.err
}

func (f *fakeBackend) Execute(_ context.Context, request types.ActionRequest) (types.ActionResult, error) {
	f.executed = append(f.executed, request)
	return f.result, f.err
}

func (f *fakeBackend) Tasks(context.Context) ([]tasks.Task, error) {
	return f.snapshot, f.err
}

func (f *fakeBackend) ClearHistory(context.Context) error {
	f.cleared++
	return f.err
}

func step(t *testing.T, m tea.Model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)

	return out, cmd
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()

	for _, r := range text {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func TestSendAndConfirm(t *testing.T) {
	backend := &fakeBackend{
		reply: types.Response{
			Message:              "Deseja marcar \"Build\" como concluída?",
			Action:               "confirm_complete",
			RequiresConfirmation: true,
			ActionButtons: []types.ActionButton{
				{Label: "Sim, concluir", Action: types.ActionComplete, Data: map[string]any{"task_id": "B"}},
				{Label: "Cancelar", Action: types.ActionCancel, Data: nil},
			},
		},
		result: types.ActionResult{Success: true, Message: "Tarefa concluída!"},
	}

	m, ok := New(backend, time.UTC).(model)
	require.True(t, ok)

	m = typeText(t, m, "concluir build")
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)

	reply, ok := cmd().(replyMsg)
	require.True(t, ok)

	m, _ = step(t, m, reply)
	assert.False(t, m.waiting)
	assert.Len(t, m.buttons, 2)
	assert.Equal(t, []string{"concluir build"}, backend.sent)

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)

	msg := cmd()
	result, ok := msg.(actionMsg)
	require.True(t, ok)
	require.Len(t, backend.executed, 1)
	assert.Equal(t, types.ActionComplete, backend.executed[0].Action)
	assert.Equal(t, "B", backend.executed[0].TaskID)

	m, _ = step(t, m, result)
	assert.Empty(t, m.buttons)
	assert.Contains(t, m.messages[len(m.messages)-1], "Tarefa concluída!")
}

func TestCancelWithoutButtonsDoesNothing(t *testing.T) {
	backend := &fakeBackend{}
	m := New(backend, time.UTC).(model)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.Nil(t, cmd)
	assert.Empty(t, backend.executed)
	assert.Empty(t, m.messages)
}

func TestRequestFrom(t *testing.T) {
	request := requestFrom(types.ActionButton{
		Action: types.ActionCreate,
		Data:   map[string]any{"title": "Comprar pão", "priority": "high"},
	})

	assert.Equal(t, types.ActionCreate, request.Action)
	assert.Empty(t, request.TaskID)
	assert.Equal(t, "Comprar pão", request.TaskData["title"])

	request = requestFrom(types.ActionButton{Action: types.ActionCancel})
	assert.Nil(t, request.TaskData)
}

func TestTasksAndErrors(t *testing.T) {
	backend := &fakeBackend{
		snapshot: []tasks.Task{
			{ID: "A", Title: "Revisar PR", Status: tasks.StatusTodo},
			{ID: "B", Title: "Build", Status: tasks.StatusDone},
		},
	}

	m := New(backend, time.UTC).(model)
	msg := m.loadTasks()()

	m, _ = step(t, m, msg)
	assert.Equal(t, 2, m.tasks.Len())

	backend.err = errors.New("connection refused")
	m, _ = step(t, m, m.clear()())

	assert.Equal(t, 1, backend.cleared)
	assert.Contains(t, m.messages[len(m.messages)-1], "connection refused")

	backend.err = nil
	m, _ = step(t, m, m.clear()())
	assert.Empty(t, m.messages)
}
