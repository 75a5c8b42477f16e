package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

// keymap defines the global key bindings of the chat client.
type keymap struct {
	tab     key.Binding
	send    key.Binding
	confirm key.Binding
	cancel  key.Binding
	refresh key.Binding
	clear   key.Binding
	quit    key.Binding
}

func newKeymap() keymap {
	return keymap{
		tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "alternar foco")),
		send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "enviar")),
		confirm: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "confirmar")),
		cancel:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "cancelar")),
		refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "atualizar tarefas")),
		clear:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "limpar conversa")),
		quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "sair")),
	}
}

// defaultKeymap provides a convenient globally accessible set of bindings.
var defaultKeymap = newKeymap()

// newDelegateKeyMap disables filtering and quit keys for list delegates and only
// exposes navigation shortcuts.
func newDelegateKeyMap() list.KeyMap {
	return list.KeyMap{
		CursorUp:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		CursorDown:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		PrevPage:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "prev page")),
		NextPage:      key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "next page")),
		GoToStart:     key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "start")),
		GoToEnd:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "end")),
		Filter:        key.NewBinding(key.WithDisabled()),
		Quit:          key.NewBinding(key.WithDisabled()),
		ShowFullHelp:  key.NewBinding(key.WithDisabled()),
		CloseFullHelp: key.NewBinding(key.WithDisabled()),
	}
}

func (k keymap) help() string {
	out := ""

	for i, binding := range []key.Binding{k.send, k.confirm, k.cancel, k.refresh, k.clear, k.tab, k.quit} {
		if i > 0 {
			out += " • "
		}

		out += binding.Help().Key + " " + binding.Help().Desc
	}

	return out
}
