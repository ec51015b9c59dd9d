package ui

import (
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"
)

// HelpModel is the help overlay: the about text and every key binding.
type HelpModel struct {
	Visible bool
	Width   int
	Height  int
	About   AboutConfig

	help   help.Model
	keys   KeyMap
	styles Styles
}

// NewHelpModel creates the help overlay.
func NewHelpModel(about AboutConfig, keys KeyMap, styles Styles) HelpModel {
	h := newHelp(styles)
	h.ShowAll = true
	return HelpModel{
		Width:  80,
		Height: 24,
		About:  about,
		help:   h,
		keys:   keys,
		styles: styles,
	}
}

// SetSize sets the area the overlay is centered in.
func (m *HelpModel) SetSize(width, height int) {
	m.Width = width
	m.Height = height
	m.help.SetWidth(max(1, width-8))
}

// View renders the overlay centered in the window.
func (m HelpModel) View() string {
	var b strings.Builder
	if m.About.Title != "" {
		b.WriteString(m.styles.Title().Render(m.About.Title))
		b.WriteString("\n")
	}
	if m.About.Description != "" {
		b.WriteString(m.styles.Label().Render(m.About.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(m.styles.KeyHint().Render("press esc or ? to close"))

	box := m.styles.Pane(true, false).
		Padding(1, 2).
		MaxWidth(m.Width)
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}
