package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvb/internal/filter"
)

const filterPlaceholder = "type to filter secrets, enter to browse"

// FilterModel is the filter box. Editing goes straight to the filter
// controller, which re-queries the index and publishes the new result.
type FilterModel struct {
	ctl     *filter.Controller
	styles  Styles
	width   int
	height  int
	focused bool
}

// NewFilterModel returns the filter box over ctl.
func NewFilterModel(ctl *filter.Controller, styles Styles) *FilterModel {
	return &FilterModel{ctl: ctl, styles: styles, width: 40, height: FilterLineCount}
}

func (m *FilterModel) Init() tea.Cmd { return nil }

func (m *FilterModel) Update(msg tea.Msg) (ChildModel, tea.Cmd) {
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "enter":
		m.ctl.Submit()
	case "backspace", "ctrl+h":
		m.ctl.Backspace()
	case "delete", "ctrl+d":
		m.ctl.DeleteForward()
	case "left", "ctrl+b":
		m.ctl.MoveLeft()
	case "right", "ctrl+f":
		m.ctl.MoveRight()
	case "home", "ctrl+a":
		m.ctl.MoveHome()
	case "end", "ctrl+e":
		m.ctl.MoveEnd()
	default:
		key := km.Key()
		if key.Text != "" && key.Mod&(tea.ModCtrl|tea.ModAlt) == 0 {
			m.ctl.InsertString(key.Text)
		}
	}
	return m, nil
}

func (m *FilterModel) Title() string { return "( search )" }

func (m *FilterModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *FilterModel) Focus() tea.Cmd {
	m.focused = true
	return nil
}

func (m *FilterModel) Blur()         { m.focused = false }
func (m *FilterModel) Focused() bool { return m.focused }

// View renders the buffer with a block cursor when focused.
func (m *FilterModel) View() string {
	inner := max(1, m.width-4)
	var line string
	switch {
	case m.ctl.Len() == 0 && !m.focused:
		line = m.styles.KeyHint().Render(runewidth.Truncate(filterPlaceholder, inner, "…"))
	default:
		line = m.renderBuffer(inner)
	}
	box := m.styles.Pane(m.focused, !m.ctl.Valid()).
		Width(m.width).
		Height(m.height).
		PaddingLeft(1).
		PaddingRight(1)
	return withTitle(box.Render(line), m.Title(), m.styles)
}

func (m *FilterModel) renderBuffer(width int) string {
	buf := []rune(m.ctl.Value())
	cursor := m.ctl.Cursor()
	// Keep the cursor in view on long queries.
	start := 0
	for runewidth.StringWidth(string(buf[start:cursor]))+1 > width && start < cursor {
		start++
	}
	before := string(buf[start:cursor])
	if !m.focused {
		return runewidth.Truncate(string(buf[start:]), width, "…")
	}
	at, after := " ", ""
	if cursor < len(buf) {
		at = string(buf[cursor])
		after = string(buf[cursor+1:])
	}
	room := width - runewidth.StringWidth(before) - runewidth.StringWidth(at)
	after = runewidth.Truncate(after, max(0, room), "")
	cursorStyle := lipgloss.NewStyle().Reverse(true)
	return before + cursorStyle.Render(at) + after
}

// withTitle writes title over the top border of box.
func withTitle(box, title string, styles Styles) string {
	if title == "" {
		return box
	}
	lines := strings.SplitN(box, "\n", 2)
	rendered := styles.Label().Render(title)
	border := lines[0]
	bw := lipgloss.Width(border)
	tw := lipgloss.Width(rendered)
	if tw+4 > bw {
		return box
	}
	lines[0] = ansi.Truncate(border, 2, "") + rendered + ansi.TruncateLeft(border, 2+tw, "")
	return strings.Join(lines, "\n")
}
