package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

// TaskList is the read-only sidebar showing the user's tasks.
type TaskList struct {
	list     list.Model
	location *time.Location
}

func NewTaskList(location *time.Location) TaskList {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)
	delegate.ShortHelpFunc = func() []key.Binding { return []key.Binding{} }
	delegate.FullHelpFunc = func() [][]key.Binding { return [][]key.Binding{} }

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Tarefas"
	l.Styles.Title = titleStyle
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.KeyMap = newDelegateKeyMap()

	return TaskList{list: l, location: location}
}

func (tl TaskList) Update(msg tea.Msg) (TaskList, tea.Cmd) {
	var cmd tea.Cmd
	tl.list, cmd = tl.list.Update(msg)
	return tl, cmd
}

func (tl TaskList) View() string { return tl.list.View() }

func (tl *TaskList) SetSize(w, h int) { tl.list.SetSize(w, h) }

func (tl *TaskList) SetItems(snapshot []tasks.Task) {
	items := make([]list.Item, len(snapshot))

	for i, task := range snapshot {
		items[i] = taskItem{task: task, location: tl.location}
	}

	tl.list.SetItems(items)
}

func (tl TaskList) Len() int {
	return len(tl.list.Items())
}
