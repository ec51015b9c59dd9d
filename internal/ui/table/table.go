package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	"charm.land/lipgloss/v2"
)

// Re-export common table types so callers can construct columns/rows without
// importing bubbles directly.
type Column = bubtable.Column
type Row = bubtable.Row

// Model is a generic table showing one page of V values. Paging and the
// cursor are owned by the caller; the table only renders what it is given.
//
// Type parameter V is the row data type (e.g. store.Secret).
type Model[V any] struct {
	table   bubtable.Model
	styles  bubtable.Styles
	rows    []V
	columns []Column
	ratios  []int

	toRow func(V) Row

	width   int
	height  int
	focused bool
	noColor bool

	headerFG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a table. Each column's Width is used as its share of the
// available width when the table is resized.
func NewModel[V any](columns []Column, toRow func(V) Row) *Model[V] {
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	ratios := make([]int, len(columns))
	for i, c := range columns {
		ratios[i] = max(1, c.Width)
	}

	return &Model[V]{
		table:   t,
		styles:  s,
		columns: columns,
		ratios:  ratios,
		toRow:   toRow,
		width:   80,
		height:  10,
	}
}

// SetRows replaces the rows with one page of values and moves the cursor to row.
func (m *Model[V]) SetRows(rows []V, row int) {
	m.rows = rows
	tableRows := make([]Row, len(rows))
	for i, r := range rows {
		tableRows[i] = m.toRow(r)
	}
	m.table.SetRows(tableRows)
	if len(rows) > 0 {
		m.table.SetCursor(min(max(row, 0), len(rows)-1))
	}
}

// Rows returns the rows of the current page.
func (m *Model[V]) Rows() []V {
	return m.rows
}

// Cursor returns the cursor position on the page.
func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

// SelectedRow returns the value under the cursor, or nil if the page is empty.
func (m *Model[V]) SelectedRow() *V {
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[cursor]
}

// SetSize sets the table dimensions and spreads the width over the columns.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(height)

	total := 0
	for _, r := range m.ratios {
		total += r
	}
	cols := make([]Column, len(m.columns))
	used := 0
	for i, c := range m.columns {
		w := width * m.ratios[i] / total
		if i == len(m.columns)-1 {
			w = width - used
		}
		c.Width = max(1, w-1)
		used += w
		cols[i] = c
	}
	m.table.SetColumns(cols)
}

// Focus sets the table focus state.
func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
	m.applyColorScheme()
}

// Blur removes focus from the table.
func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
	m.applyColorScheme()
}

// Focused returns true if the table has focus.
func (m *Model[V]) Focused() bool {
	return m.focused
}

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors.
func (m *Model[V]) SetColors(headerFG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

// applyColorScheme highlights the selected row only while focused.
func (m *Model[V]) applyColorScheme() {
	s := m.styles
	s.Header = s.Header.UnsetForeground().UnsetBackground()
	s.Selected = s.Selected.UnsetForeground().UnsetBackground().UnsetReverse().UnsetBold()

	switch {
	case m.noColor:
		if m.focused {
			s.Selected = s.Selected.Reverse(true)
		}
	default:
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.focused {
			if m.selectedFG != nil {
				s.Selected = s.Selected.Foreground(m.selectedFG)
			}
			if m.selectedBG != nil {
				s.Selected = s.Selected.Background(m.selectedBG)
			}
		} else {
			s.Selected = s.Selected.Bold(true)
		}
	}

	m.table.SetStyles(s)
	m.styles = s
}

// View renders the table to a string.
func (m *Model[V]) View() string {
	return m.table.View()
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, cursor=%d, focused=%t]", len(m.rows), m.Cursor(), m.focused)
}
