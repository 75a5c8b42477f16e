package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

const gap = "\n\n"

const welcome = `Bem-vindo ao assistente de tarefas!
Escreva uma mensagem e pressione Enter. Quando uma ação pedir confirmação,
use ctrl+y para confirmar ou ctrl+n para cancelar.`

// Backend is what the chat screen needs from the server; *client.ChatClient satisfies it.
type Backend interface {
	Send(ctx context.Context, message string) (types.Response, error)
	Execute(ctx context.Context, request types.ActionRequest) (types.ActionResult, error)
	Tasks(ctx context.Context) ([]tasks.Task, error)
	ClearHistory(ctx context.Context) error
}

type focus int

const (
	focusInput focus = iota
	focusTasks
)

type model struct {
	backend  Backend
	timeout  time.Duration
	viewport viewport.Model
	textarea textarea.Model
	tasks    TaskList
	layout   Layout
	focus    focus
	messages []string
	buttons  []types.ActionButton
	waiting  bool
}

func New(backend Backend, location *time.Location) tea.Model {
	ta := textarea.New()
	ta.Placeholder = "Pergunte algo ou peça para criar, concluir ou excluir uma tarefa..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 2000

	ta.SetWidth(80)
	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent(welcome)

	return model{
		backend:  backend,
		timeout:  60 * time.Second,
		viewport: vp,
		textarea: ta,
		tasks:    NewTaskList(location),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadTasks())
}

func (m model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		return fn(ctx)
	}
}

func (m model) loadTasks() tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		snapshot, err := m.backend.Tasks(ctx)

		if err != nil {
			return errorMsg{err}
		}

		return tasksMsg{snapshot}
	})
}

func (m model) send(text string) tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		response, err := m.backend.Send(ctx, text)

		if err != nil {
			return errorMsg{err}
		}

		return replyMsg{response}
	})
}

func (m model) execute(button types.ActionButton) tea.Cmd {
	request := requestFrom(button)

	return m.call(func(ctx context.Context) tea.Msg {
		result, err := m.backend.Execute(ctx, request)

		if err != nil && result.Message == "" {
			return errorMsg{err}
		}

		return actionMsg{result}
	})
}

func (m model) clear() tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		if err := m.backend.ClearHistory(ctx); err != nil {
			return errorMsg{err}
		}

		return clearedMsg{}
	})
}

/*
requestFrom turns a button into the request the server expects.  Button data
arrives as a decoded JSON object; task_id is lifted out and the rest is sent
back untouched as task_data.
*/
func requestFrom(button types.ActionButton) types.ActionRequest {
	request := types.ActionRequest{Action: button.Action}

	data, ok := button.Data.(map[string]any)

	if !ok {
		return request
	}

	if id, ok := data["task_id"].(string); ok {
		request.TaskID = id
	}

	request.TaskData = data

	return request
}

func (m model) button(action string) (types.ActionButton, bool) {
	for _, button := range m.buttons {
		if button.Action == action {
			return button, true
		}
	}

	return types.ActionButton{}, false
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg)
		m.viewport.Width = m.layout.ChatWidth
		m.viewport.Height = m.layout.ChatHeight
		m.textarea.SetWidth(m.layout.ChatWidth)
		m.tasks.SetSize(m.layout.SidebarWidth, m.layout.ChatHeight+m.layout.InputHeight+2)
		m.render()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, defaultKeymap.quit):
			return m, tea.Quit
		case key.Matches(msg, defaultKeymap.tab):
			m.toggleFocus()
			return m, nil
		case key.Matches(msg, defaultKeymap.refresh):
			return m, m.loadTasks()
		case key.Matches(msg, defaultKeymap.clear):
			return m, m.clear()
		case key.Matches(msg, defaultKeymap.confirm), key.Matches(msg, defaultKeymap.cancel):
			return m.press(msg)
		case key.Matches(msg, defaultKeymap.send) && m.focus == focusInput:
			text := strings.TrimSpace(m.textarea.Value())

			if text == "" || m.waiting {
				return m, nil
			}

			m.textarea.Reset()
			m.waiting = true
			m.append(userStyle.Render("Você: ") + text)

			return m, m.send(text)
		}

	case replyMsg:
		m.waiting = false
		m.buttons = msg.response.ActionButtons
		m.append(agentStyle.Render("Assistente: ") + msg.response.Message)

		if len(m.buttons) > 0 {
			m.append(buttonStyle.Render(buttonHint(m.buttons)))
		}

	case actionMsg:
		m.waiting = false
		m.buttons = nil

		if msg.result.Success {
			m.append(agentStyle.Render("✔ ") + msg.result.Message)
		} else {
			m.append(errorStyle.Render("✘ ") + msg.result.Message)
		}

		cmds = append(cmds, m.loadTasks())

	case tasksMsg:
		m.tasks.SetItems(msg.tasks)

	case clearedMsg:
		m.messages = nil
		m.buttons = nil
		m.viewport.SetContent(welcome)

	case errorMsg:
		m.waiting = false
		m.append(errorStyle.Render("Erro: ") + msg.err.Error())
	}

	var cmd tea.Cmd

	if m.focus == focusInput {
		m.textarea, cmd = m.textarea.Update(msg)
	} else {
		m.tasks, cmd = m.tasks.Update(msg)
	}

	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// press runs the confirm or cancel button of the last reply, if it offered one.
func (m model) press(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	wanted := types.ActionCancel

	if key.Matches(msg, defaultKeymap.confirm) {
		for _, button := range m.buttons {
			if button.Action != types.ActionCancel {
				wanted = button.Action
				break
			}
		}
	}

	button, ok := m.button(wanted)

	if !ok || m.waiting {
		return m, nil
	}

	m.waiting = true
	m.append(userStyle.Render("Você: ") + "[" + button.Label + "]")

	return m, m.execute(button)
}

func buttonHint(buttons []types.ActionButton) string {
	labels := make([]string, 0, len(buttons))

	for _, button := range buttons {
		shortcut := "ctrl+y"

		if button.Action == types.ActionCancel {
			shortcut = "ctrl+n"
		}

		labels = append(labels, fmt.Sprintf("[%s] %s", shortcut, button.Label))
	}

	return strings.Join(labels, "   ")
}

func (m *model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusTasks
		m.textarea.Blur()
		return
	}

	m.focus = focusInput
	m.textarea.Focus()
}

func (m *model) append(line string) {
	m.messages = append(m.messages, line)
	m.render()
}

func (m *model) render() {
	if len(m.messages) == 0 {
		return
	}

	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(strings.Join(m.messages, "\n\n")))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	chatStyle, sideStyle := activeStyle, inactiveStyle

	if m.focus == focusTasks {
		chatStyle, sideStyle = inactiveStyle, activeStyle
	}

	chat := chatStyle.Render(fmt.Sprintf("%s%s%s", m.viewport.View(), gap, m.textarea.View()))
	side := sideStyle.Render(m.tasks.View())

	status := defaultKeymap.help()

	if m.waiting {
		status = "aguardando resposta... • " + status
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, side, chat),
		statusBarStyle.Render(status),
	)
}
