package ui

import (
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/kvb/internal/events"
)

// flashClearMsg clears the flash after its timeout. ID correlates it with
// the notice it was scheduled for; a newer notice wins.
type flashClearMsg struct {
	ID int
}

// StatusModel is the one-line flash bar. It shows the latest notice and a
// spinner while fetches are in flight.
type StatusModel struct {
	Notice   events.Notice
	FlashID  int
	Timeout  time.Duration
	Inflight int
	Spinner  spinner.Model
	Width    int
	styles   Styles
}

// NewStatusModel creates the flash bar.
func NewStatusModel(styles Styles, timeout time.Duration) StatusModel {
	return StatusModel{
		Timeout: timeout,
		Spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		Width:   80,
		styles:  styles,
	}
}

// Flash shows n and returns the command that clears it after the timeout.
func (m *StatusModel) Flash(n events.Notice) tea.Cmd {
	m.Notice = n
	m.FlashID++
	return clearFlashAfter(m.FlashID, m.Timeout)
}

// Busy records a fetch starting. The returned command starts the spinner
// when it was idle.
func (m *StatusModel) Busy() tea.Cmd {
	m.Inflight++
	if m.Inflight == 1 {
		return m.Spinner.Tick
	}
	return nil
}

// Done records a fetch finishing.
func (m *StatusModel) Done() {
	if m.Inflight > 0 {
		m.Inflight--
	}
}

// Update handles the flash timer and spinner ticks.
func (m StatusModel) Update(msg tea.Msg) (StatusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case flashClearMsg:
		if msg.ID == m.FlashID {
			m.Notice = events.Notice{}
		}
	case spinner.TickMsg:
		if m.Inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the bar on a single line.
func (m StatusModel) View() string {
	line := ""
	if m.Inflight > 0 {
		line = m.styles.Accent().Render(m.Spinner.View()) + " "
	}
	if m.Notice.Message != "" {
		room := max(1, m.Width-ansi.StringWidth(line))
		line += m.styles.Notice(m.Notice.Kind).Render(ansi.Truncate(m.Notice.Message, room, "…"))
	}
	return line
}

// clearFlashAfter returns a command that clears the flash with the given ID
// after delay.
func clearFlashAfter(id int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return flashClearMsg{ID: id}
	})
}
