package ui

import "charm.land/bubbles/v2/key"

// KeyMap holds every binding of the browser. It implements help.KeyMap.
type KeyMap struct {
	// global
	Cycle       key.Binding
	CycleBack   key.Binding
	Refocus     key.Binding
	FocusFilter key.Binding
	Help        key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding

	// tables
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	Select    key.Binding

	// properties
	Reveal key.Binding
	Edit   key.Binding
	Copy   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Cycle:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		CycleBack:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous pane")),
		Refocus:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to filter / clear")),
		FocusFilter: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "search")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "show help")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "row")),
		Down:      key.NewBinding(key.WithKeys("down")),
		PrevPage:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "page")),
		NextPage:  key.NewBinding(key.WithKeys("right")),
		FirstPage: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "first page")),
		LastPage:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "last page")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),

		Reveal: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "show/hide value")),
		Edit:   key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "open value in $EDITOR")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy value")),
	}
}

// ShortHelp is shown in the header.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusFilter, k.Help, k.Cycle, k.Refocus, k.ForceQuit}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Cycle, k.CycleBack, k.Refocus, k.FocusFilter, k.Help, k.Quit, k.ForceQuit},
		{k.Up, k.PrevPage, k.FirstPage, k.LastPage, k.Select},
		{k.Reveal, k.Edit, k.Copy},
	}
}
