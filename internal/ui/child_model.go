package ui

import tea "charm.land/bubbletea/v2"

// ChildModel is implemented by every pane. The root model owns the panes and
// routes key messages to the focused one.
type ChildModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (ChildModel, tea.Cmd)
	View() string
}

// ModelWithTitle is implemented by panes that show a title in their border.
type ModelWithTitle interface {
	Title() string
}

// ModelWithSize is implemented by panes that respond to resize events.
// Width and height include the pane border.
type ModelWithSize interface {
	SetSize(width, height int)
}

// ModelWithFocus is implemented by panes that can take keyboard focus.
type ModelWithFocus interface {
	Focus() tea.Cmd
	Blur()
	Focused() bool
}
