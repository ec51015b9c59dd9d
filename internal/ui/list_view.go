package ui

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvb/internal/events"
	"github.com/oakwood-commons/kvb/internal/paging"
	"github.com/oakwood-commons/kvb/internal/ui/table"
)

// ListModel is a paged list pane. The rows come from items and the cursor
// from page; the embedded table only renders the current page.
type ListModel[V any] struct {
	pane     events.Pane
	title    string
	empty    func() string
	page     *paging.State
	items    func() []V
	onSelect func() tea.Cmd
	onResize func(rows int)

	table  *table.Model[V]
	keys   KeyMap
	styles Styles

	width   int
	height  int
	focused bool
}

// ListOptions configures a ListModel.
type ListOptions[V any] struct {
	Pane    events.Pane
	Title   string
	Empty   func() string // shown when items is empty
	Columns []table.Column
	ToRow   func(V) table.Row
	Page    *paging.State
	Items   func() []V
	// OnSelect runs on enter; it returns the command that fetches the next stage.
	OnSelect func() tea.Cmd
	// OnResize reports the number of body rows after a resize.
	OnResize func(rows int)
}

// NewListModel returns a list pane.
func NewListModel[V any](opts ListOptions[V], keys KeyMap, styles Styles) *ListModel[V] {
	t := table.NewModel(opts.Columns, opts.ToRow)
	th := CurrentTheme()
	t.SetColors(th.AccentFG, th.SelectedFG, th.SelectedBG)
	t.SetNoColor(styles.NoColor)
	return &ListModel[V]{
		pane:     opts.Pane,
		title:    opts.Title,
		empty:    opts.Empty,
		page:     opts.Page,
		items:    opts.Items,
		onSelect: opts.OnSelect,
		onResize: opts.OnResize,
		table:    t,
		keys:     keys,
		styles:   styles,
		width:    40,
		height:   10,
	}
}

func (m *ListModel[V]) Init() tea.Cmd { return nil }

func (m *ListModel[V]) Update(msg tea.Msg) (ChildModel, tea.Cmd) {
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Up):
		m.page.PrevRow()
	case key.Matches(km, m.keys.Down):
		m.page.NextRow()
	case key.Matches(km, m.keys.PrevPage):
		m.page.PrevPage()
	case key.Matches(km, m.keys.NextPage):
		m.page.NextPage()
	case key.Matches(km, m.keys.FirstPage):
		m.page.FirstPage()
	case key.Matches(km, m.keys.LastPage):
		m.page.LastPage()
	case key.Matches(km, m.keys.Select):
		if m.onSelect != nil {
			return m, m.onSelect()
		}
	}
	return m, nil
}

func (m *ListModel[V]) Title() string { return fmt.Sprintf("( %s )", m.title) }

// Pane identifies the list on the bus.
func (m *ListModel[V]) Pane() events.Pane { return m.pane }

func (m *ListModel[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	inner := max(1, width-PaneBorderLines)
	tableHeight := max(TableHeaderLines+MinTableRows, height-PaneBorderLines-PagerLineCount)
	m.table.SetSize(inner, tableHeight)
	if m.onResize != nil {
		m.onResize(tableHeight - TableHeaderLines)
	}
}

func (m *ListModel[V]) Focus() tea.Cmd {
	m.focused = true
	m.table.Focus()
	return nil
}

func (m *ListModel[V]) Blur() {
	m.focused = false
	m.table.Blur()
}

func (m *ListModel[V]) Focused() bool { return m.focused }

// Selected returns the value under the cursor.
func (m *ListModel[V]) Selected() (V, bool) {
	return paging.Active(m.page, m.items())
}

func (m *ListModel[V]) emptyText() string {
	if m.empty == nil {
		return "empty"
	}
	return m.empty()
}

func (m *ListModel[V]) View() string {
	items := m.items()
	m.table.SetRows(paging.Slice(m.page, items), m.page.Row())

	inner := max(1, m.width-PaneBorderLines)
	var pager string
	if len(items) == 0 {
		pager = m.styles.KeyHint().Render(runewidth.Truncate(m.emptyText(), inner, "…"))
	} else {
		pager = m.styles.KeyHint().Render(runewidth.Truncate(
			fmt.Sprintf("page %d/%d · %d", m.page.Page(), m.page.PageCount(), len(items)), inner, "…"))
	}
	body := m.table.View() + "\n" + pager
	box := m.styles.Pane(m.focused, false).
		Width(m.width).
		Height(m.height)
	return withTitle(box.Render(body), m.Title(), m.styles)
}
