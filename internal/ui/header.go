package ui

import (
	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// HeaderModel is the title box with the short key hints.
type HeaderModel struct {
	Title string
	Width int

	help   help.Model
	keys   KeyMap
	styles Styles
}

// NewHeaderModel creates the header.
func NewHeaderModel(title string, keys KeyMap, styles Styles) HeaderModel {
	return HeaderModel{
		Title:  title,
		Width:  80,
		help:   newHelp(styles),
		keys:   keys,
		styles: styles,
	}
}

// SetWidth sets the outer width, border included.
func (m *HeaderModel) SetWidth(w int) {
	m.Width = w
	m.help.SetWidth(max(1, w-4))
}

// View renders the header box.
func (m HeaderModel) View() string {
	inner := max(1, m.Width-4)
	title := m.styles.Title().Render(ansi.Truncate(m.Title, inner, "…"))
	hints := m.help.ShortHelpView(m.keys.ShortHelp())
	box := m.styles.Pane(false, false).
		Width(m.Width).
		PaddingLeft(1).
		PaddingRight(1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, hints))
}

// newHelp returns a bubbles help model styled with the current theme.
func newHelp(styles Styles) help.Model {
	h := help.New()
	if styles.NoColor {
		h.Styles = help.Styles{}
		return h
	}
	h.Styles.ShortKey = styles.Accent()
	h.Styles.FullKey = styles.Accent()
	h.Styles.ShortDesc = styles.KeyHint()
	h.Styles.FullDesc = styles.KeyHint()
	return h
}
