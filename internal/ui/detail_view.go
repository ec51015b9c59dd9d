package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvb/internal/events"
	"github.com/oakwood-commons/kvb/internal/session"
	"github.com/oakwood-commons/kvb/internal/store"
)

// DateTimeLayout is how every timestamp in the browser is printed.
const DateTimeLayout = "2006-01-02 15:04:05"

const (
	lockedIcon   = "🔒"
	unlockedIcon = "🔓"
)

// editorClosedMsg is sent when the external editor exits.
type editorClosedMsg struct{ err error }

// propertyRow is one label/value line of the properties pane.
type propertyRow struct {
	Label string
	Value string
}

// PropertiesModel shows the attributes of the selected version and, once
// revealed, its value.
type PropertiesModel struct {
	sess   *session.Session
	keys   KeyMap
	styles Styles
	editor string

	width   int
	height  int
	focused bool
}

// NewPropertiesModel returns the properties pane. editor is the configured
// editor command, which may be empty.
func NewPropertiesModel(sess *session.Session, keys KeyMap, styles Styles, editor string) *PropertiesModel {
	return &PropertiesModel{sess: sess, keys: keys, styles: styles, editor: editor, width: 40, height: 10}
}

func (m *PropertiesModel) Init() tea.Cmd { return nil }

func (m *PropertiesModel) Update(msg tea.Msg) (ChildModel, tea.Cmd) {
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	bus := m.sess.Bus()
	switch {
	case key.Matches(km, m.keys.Reveal):
		if err := m.sess.ToggleReveal(); err != nil {
			events.Notify(bus, events.Warning, "Select a version first.")
		}
	case key.Matches(km, m.keys.Edit):
		value, revealed, ok := m.sess.Value()
		if !ok || !revealed {
			return m, nil
		}
		cmd, err := openInEditor(m.editor, m.sess.SelectedItem(), value)
		if err != nil {
			events.Notify(bus, events.Error, editorFailedMessage)
			return m, nil
		}
		return m, cmd
	case key.Matches(km, m.keys.Copy):
		value, revealed, ok := m.sess.Value()
		if !ok || !revealed {
			events.Notify(bus, events.Warning, "Reveal the value with ctrl+s before copying.")
			return m, nil
		}
		if err := CopyToClipboard(value); err != nil {
			events.Notify(bus, events.Error, fmt.Sprintf("Copy failed: %v", err))
			return m, nil
		}
		events.Notify(bus, events.Success, fmt.Sprintf("Copied %s to the clipboard.", m.sess.SelectedItem()))
	}
	return m, nil
}

// Title is "<name> @ <version>" once a version is selected.
func (m *PropertiesModel) Title() string {
	v, ok := m.sess.SelectedVersion()
	if !ok {
		return "( properties )"
	}
	return fmt.Sprintf("( %s @ %s )", v.Name, v.ID)
}

func (m *PropertiesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *PropertiesModel) Focus() tea.Cmd {
	m.focused = true
	return nil
}

func (m *PropertiesModel) Blur()         { m.focused = false }
func (m *PropertiesModel) Focused() bool { return m.focused }

func (m *PropertiesModel) View() string {
	inner := max(1, m.width-4)
	var lines []string
	v, ok := m.sess.SelectedVersion()
	if !ok {
		lines = []string{m.styles.KeyHint().Render(runewidth.Truncate("select a version to see its properties", inner, "…"))}
	} else {
		value, revealed, _ := m.sess.Value()
		lines = m.renderRows(propertyRows(v, revealed), inner)
		if revealed {
			lines = append(lines, "")
			for _, l := range strings.Split(value, "\n") {
				lines = append(lines, m.styles.Value().Render(runewidth.Truncate(l, inner, "…")))
			}
		}
	}
	if room := m.height - PaneBorderLines; room > 0 && len(lines) > room {
		lines = lines[:room]
	}
	box := m.styles.Pane(m.focused, false).
		Width(m.width).
		Height(m.height).
		PaddingLeft(1).
		PaddingRight(1)
	return withTitle(box.Render(strings.Join(lines, "\n")), m.Title(), m.styles)
}

func (m *PropertiesModel) renderRows(rows []propertyRow, width int) []string {
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, runewidth.StringWidth(r.Label))
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		label := runewidth.FillRight(r.Label, labelWidth)
		room := max(0, width-labelWidth-1)
		out = append(out, m.styles.Label().Render(label)+" "+runewidth.Truncate(r.Value, room, "…"))
	}
	return out
}

// propertyRows lists the attributes of v in display order.
func propertyRows(v store.Version, revealed bool) []propertyRow {
	valueRow := lockedIcon + " hidden"
	if revealed {
		valueRow = unlockedIcon + " shown"
	}
	return []propertyRow{
		{"created on", formatTime(v.Created)},
		{"updated on", formatTime(v.Updated)},
		{"expires on", formatTime(v.Expires)},
		{"not before", formatTime(v.NotBefore)},
		{"content type", orDash(v.ContentType)},
		{"enabled", strconv.FormatBool(v.Enabled)},
		{"key id", orDash(v.KeyID)},
		{"recoverable days", strconv.Itoa(v.RecoverableDays)},
		{"recovery level", orDash(v.RecoveryLevel)},
		{"tags", formatTags(v.Tags)},
		{"value", valueRow},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateTimeLayout)
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + tags[k]
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
