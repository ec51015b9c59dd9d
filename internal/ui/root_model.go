package ui

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvb/internal/events"
	"github.com/oakwood-commons/kvb/internal/selection"
	"github.com/oakwood-commons/kvb/internal/session"
	"github.com/oakwood-commons/kvb/internal/store"
	"github.com/oakwood-commons/kvb/internal/ui/table"
)

// Mode represents the current UI mode/state.
type Mode int

const (
	// NormalMode is the default browsing mode.
	NormalMode Mode = iota
	// HelpMode displays the help overlay and swallows every key but its own.
	HelpMode
)

// jobDoneMsg carries the result of a session job back to the update loop.
type jobDoneMsg struct {
	result session.Result
}

// focusOrder is the tab order of the panes.
var focusOrder = []events.Pane{
	events.PaneFilter,
	events.PaneSecrets,
	events.PaneVersions,
	events.PaneProperties,
}

// RootOptions configures the root model.
type RootOptions struct {
	Context      context.Context
	Logger       logr.Logger
	NoColor      bool
	Editor       string
	About        AboutConfig
	FlashTimeout time.Duration
}

// RootModel is the top-level model. It owns the panes, routes keys to the
// focused one and turns bus events into focus changes and flash notices.
//
// Session jobs run as commands; their results come back as jobDoneMsg and
// are applied on the update loop, so the session is only touched there.
type RootModel struct {
	mode Mode

	sess *session.Session
	ctx  context.Context
	log  logr.Logger
	keys KeyMap

	header HeaderModel
	status StatusModel
	help   HelpModel
	panes  map[events.Pane]ChildModel
	focus  events.Pane

	layout  *LayoutManager
	heights ComponentHeights
	width   int
	height  int

	// pending collects commands produced by bus handlers during Update.
	pending     []tea.Cmd
	unsubscribe []func()
	quitting    bool
}

// NewRootModel builds the browser over sess.
func NewRootModel(sess *session.Session, opts RootOptions) *RootModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	if opts.FlashTimeout <= 0 {
		opts.FlashTimeout = 3 * time.Second
	}
	if opts.About.Title == "" {
		opts.About.Title = "Azure Key Vault 🔑"
	}
	styles := NewStyles(opts.NoColor)
	keys := DefaultKeyMap()

	m := &RootModel{
		mode:   NormalMode,
		sess:   sess,
		ctx:    opts.Context,
		log:    opts.Logger,
		keys:   keys,
		header: NewHeaderModel(opts.About.Title, keys, styles),
		status: NewStatusModel(styles, opts.FlashTimeout),
		help:   NewHelpModel(opts.About, keys, styles),
		focus:  events.PaneFilter,
		layout: NewLayoutManager(80, 24),
		width:  80,
		height: 24,
	}

	filterPane := NewFilterModel(sess.Filter(), styles)
	secretsPane := NewListModel(ListOptions[store.Secret]{
		Pane:  events.PaneSecrets,
		Title: "secrets",
		Empty: func() string {
			if !sess.Loaded() {
				return "loading…"
			}
			return "no secrets"
		},
		Columns: []table.Column{{Title: "name", Width: 3}, {Title: "updated on", Width: 2}},
		ToRow: func(s store.Secret) table.Row {
			return table.Row{s.Name, formatTime(s.Updated)}
		},
		Page:  sess.SecretsPage(),
		Items: sess.Visible,
		OnSelect: func() tea.Cmd {
			job, ok := sess.SelectActiveSecret()
			if !ok {
				return nil
			}
			return m.run(job)
		},
		OnResize: func(rows int) { sess.Resize(events.PaneSecrets, rows) },
	}, keys, styles)
	versionsPane := NewListModel(ListOptions[store.Version]{
		Pane:  events.PaneVersions,
		Title: "versions",
		Empty: func() string { return "select a secret" },
		Columns: []table.Column{{Title: "version", Width: 3}, {Title: "created on", Width: 2}},
		ToRow: func(v store.Version) table.Row {
			return table.Row{v.ID, formatTime(v.Created)}
		},
		Page:  sess.VersionsPage(),
		Items: sess.Versions,
		OnSelect: func() tea.Cmd {
			job, ok := sess.SelectActiveVersion()
			if !ok {
				return nil
			}
			return m.run(job)
		},
		OnResize: func(rows int) { sess.Resize(events.PaneVersions, rows) },
	}, keys, styles)

	m.panes = map[events.Pane]ChildModel{
		events.PaneFilter:     filterPane,
		events.PaneSecrets:    secretsPane,
		events.PaneVersions:   versionsPane,
		events.PaneProperties: NewPropertiesModel(sess, keys, styles, opts.Editor),
	}
	filterPane.Focus()

	bus := sess.Bus()
	m.unsubscribe = append(m.unsubscribe,
		events.Subscribe(bus, m.onNotice),
		events.Subscribe(bus, m.onFocus),
	)
	m.resize(m.width, m.height)
	return m
}

// Close detaches the model from the session bus.
func (m *RootModel) Close() {
	for _, u := range m.unsubscribe {
		u()
	}
	m.unsubscribe = nil
}

// Focus returns the focused pane.
func (m *RootModel) Focus() events.Pane { return m.focus }

// Mode returns the current mode.
func (m *RootModel) Mode() Mode { return m.mode }

// Init starts loading the secret list.
func (m *RootModel) Init() tea.Cmd {
	return m.run(m.sess.Load())
}

// run hands job to the runtime and reports its result as a jobDoneMsg.
func (m *RootModel) run(job session.Job) tea.Cmd {
	ctx := m.ctx
	return tea.Batch(m.status.Busy(), func() tea.Msg {
		return jobDoneMsg{result: job(ctx)}
	})
}

func (m *RootModel) onNotice(n events.Notice) {
	m.log.V(1).Info("notice", "kind", n.Kind.String(), "message", n.Message)
	m.pending = append(m.pending, m.status.Flash(n))
}

func (m *RootModel) onFocus(f events.Focus) {
	m.setFocus(f.Pane)
}

// setFocus moves keyboard focus to p. Leaving the properties pane hides the
// value.
func (m *RootModel) setFocus(p events.Pane) {
	if p == m.focus {
		return
	}
	if old, ok := m.panes[m.focus].(ModelWithFocus); ok {
		old.Blur()
	}
	if m.focus == events.PaneProperties {
		m.sess.HideValue()
	}
	m.log.V(1).Info("focus", "from", m.focus.String(), "to", p.String())
	m.focus = p
	if next, ok := m.panes[p].(ModelWithFocus); ok {
		m.pending = append(m.pending, next.Focus())
	}
}

func (m *RootModel) cycle(step int) {
	idx := 0
	for i, p := range focusOrder {
		if p == m.focus {
			idx = i
			break
		}
	}
	n := len(focusOrder)
	m.setFocus(focusOrder[((idx+step)%n+n)%n])
}

// Update handles messages and routes them to the panes.
func (m *RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case jobDoneMsg:
		m.status.Done()
		if err := m.sess.Apply(msg.result); err != nil && !errors.Is(err, selection.ErrStale) {
			m.log.Error(err, "job failed")
		}

	case editorClosedMsg:
		if msg.err != nil {
			m.log.Error(msg.err, "editor failed")
			events.Notify(m.sess.Bus(), events.Error, editorFailedMessage)
		}

	case flashClearMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyPressMsg:
		cmds = append(cmds, m.handleKey(msg))
	}

	cmds = append(cmds, m.pending...)
	m.pending = nil
	return m, tea.Batch(cmds...)
}

func (m *RootModel) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return tea.Quit
	}

	if m.mode == HelpMode {
		if key.Matches(msg, m.keys.Help, m.keys.Refocus, m.keys.Quit) {
			m.mode = NormalMode
			m.help.Visible = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = HelpMode
		m.help.Visible = true
	case key.Matches(msg, m.keys.Cycle):
		m.cycle(1)
	case key.Matches(msg, m.keys.CycleBack):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Refocus):
		if m.focus == events.PaneFilter {
			m.sess.ClearToSearch()
		} else {
			m.setFocus(events.PaneFilter)
		}
	case key.Matches(msg, m.keys.FocusFilter) && !m.editKeyApplies():
		m.setFocus(events.PaneFilter)
	case key.Matches(msg, m.keys.Quit) && m.focus != events.PaneFilter:
		m.quitting = true
		return tea.Quit
	default:
		return m.updatePane(m.focus, msg)
	}
	return nil
}

// editKeyApplies reports whether ctrl+k should open the editor rather than
// jump to the filter.
func (m *RootModel) editKeyApplies() bool {
	if m.focus != events.PaneProperties {
		return false
	}
	_, revealed, ok := m.sess.Value()
	return ok && revealed
}

func (m *RootModel) updatePane(p events.Pane, msg tea.Msg) tea.Cmd {
	child, ok := m.panes[p]
	if !ok {
		return nil
	}
	child, cmd := child.Update(msg)
	m.panes[p] = child
	return cmd
}

func (m *RootModel) resize(width, height int) {
	m.width, m.height = width, height
	m.layout.SetDimensions(width, height)
	m.heights = m.layout.CalculateHeights()
	widths := m.layout.CalculateWidths()

	m.header.SetWidth(width)
	m.status.Width = width
	m.help.SetSize(width, height)

	sizes := map[events.Pane][2]int{
		events.PaneFilter:     {width, m.heights.FilterHeight},
		events.PaneSecrets:    {widths.Secrets, m.heights.PaneHeight},
		events.PaneVersions:   {widths.Versions, m.heights.PaneHeight},
		events.PaneProperties: {widths.Properties, m.heights.PaneHeight},
	}
	for p, sz := range sizes {
		if sized, ok := m.panes[p].(ModelWithSize); ok {
			sized.SetSize(sz[0], sz[1])
		}
	}
}

// View renders the browser in the alternate screen.
func (m *RootModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the header, the filter, the three columns and the flash bar,
// or the help overlay.
func (m *RootModel) render() string {
	if m.quitting {
		return ""
	}
	if m.mode == HelpMode {
		return m.help.View()
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		m.panes[events.PaneSecrets].View(),
		m.panes[events.PaneVersions].View(),
		m.panes[events.PaneProperties].View(),
	)
	parts := make([]string, 0, 4)
	if m.heights.HeaderHeight > 0 {
		parts = append(parts, m.header.View())
	}
	parts = append(parts, m.panes[events.PaneFilter].View(), columns, m.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
