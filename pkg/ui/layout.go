package ui

import tea "github.com/charmbracelet/bubbletea"

// Layout contains the computed dimensions for all panels.
type Layout struct {
	Width  int
	Height int

	SidebarWidth int
	ChatWidth    int
	ChatHeight   int
	InputHeight  int
}

/*
NewLayout splits the window into a task sidebar on the left and the chat
on the right, with the input below the conversation.
*/
func NewLayout(msg tea.WindowSizeMsg) Layout {
	l := Layout{Width: msg.Width, Height: msg.Height, InputHeight: 3}

	l.SidebarWidth = max(msg.Width/4, 20)
	l.ChatWidth = max(msg.Width-l.SidebarWidth-4, 20)

	// two border rows per panel, one status line and the gap above the input
	l.ChatHeight = max(msg.Height-l.InputHeight-7, 3)

	return l
}
