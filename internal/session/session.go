// Package session owns the browse state shared by every pane: the loaded
// secrets, the search index and filter, both paginators and the selection
// chain.
//
// All methods must be called from one goroutine, the UI update loop. Work
// that touches the store is handed out as a Job; the caller runs it
// elsewhere and feeds the Result back through Apply.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvb/internal/events"
	"github.com/oakwood-commons/kvb/internal/filter"
	"github.com/oakwood-commons/kvb/internal/paging"
	"github.com/oakwood-commons/kvb/internal/search"
	"github.com/oakwood-commons/kvb/internal/selection"
	"github.com/oakwood-commons/kvb/internal/store"
)

// Pager names used on paging.Changed events.
const (
	SecretsPager  = "secrets"
	VersionsPager = "versions"
)

// Job is deferred store work. It must not touch the session.
type Job func(ctx context.Context) Result

// Result is what a Job produced.
type Result interface {
	isResult()
}

// SecretsLoaded carries the secret list.
type SecretsLoaded struct {
	Secrets []store.Secret
	Err     error
}

// VersionsLoaded carries the versions of the ticket's item.
type VersionsLoaded struct {
	Ticket   selection.Ticket
	Versions []store.Version
	Err      error
}

// ValueLoaded carries the value of the ticket's version.
type ValueLoaded struct {
	Ticket selection.Ticket
	Value  string
	Err    error
}

func (SecretsLoaded) isResult()  {}
func (VersionsLoaded) isResult() {}
func (ValueLoaded) isResult()    {}

// Session is the single owner of browse state.
type Session struct {
	store store.Store
	bus   *events.Bus
	log   logr.Logger

	index  *search.Index
	filter *filter.Controller
	chain  *selection.Chain

	secretsPage  *paging.State
	versionsPage *paging.State

	secrets  []store.Secret
	byName   map[string]int
	visible  []store.Secret
	versions []store.Version
	loaded   bool

	unsubscribe func()
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logr.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithSearchLimit caps the hits of every filter query.
func WithSearchLimit(n int) Option {
	return func(s *Session) { s.filter.SetLimit(n) }
}

// New returns an empty session reading from st and publishing on bus.
func New(st store.Store, bus *events.Bus, opts ...Option) *Session {
	if bus == nil {
		bus = events.New()
	}
	index := search.New(search.WithBus(bus))
	s := &Session{
		store:        st,
		bus:          bus,
		log:          logr.Discard(),
		index:        index,
		filter:       filter.New(index, bus),
		chain:        selection.New(bus),
		secretsPage:  paging.New(0, paging.DefaultPageSize, paging.WithBus(bus, SecretsPager)),
		versionsPage: paging.New(0, paging.DefaultPageSize, paging.WithBus(bus, VersionsPager)),
		byName:       map[string]int{},
	}
	for _, o := range opts {
		o(s)
	}
	s.unsubscribe = events.Subscribe(bus, s.onFilterChanged)
	return s
}

// Close detaches the session from the bus.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Session) Bus() *events.Bus                { return s.bus }
func (s *Session) Filter() *filter.Controller      { return s.filter }
func (s *Session) Chain() *selection.Chain         { return s.chain }
func (s *Session) Index() *search.Index            { return s.index }
func (s *Session) SecretsPage() *paging.State      { return s.secretsPage }
func (s *Session) VersionsPage() *paging.State     { return s.versionsPage }
func (s *Session) Loaded() bool                    { return s.loaded }
func (s *Session) Secrets() []store.Secret         { return s.secrets }
func (s *Session) Versions() []store.Version       { return s.versions }
func (s *Session) Pending() bool                   { return s.chain.Pending() }
func (s *Session) Visible() []store.Secret         { return s.visible }
func (s *Session) VisibleNames() []string          { return store.Names(s.visible) }
func (s *Session) Query() string                   { return s.filter.Value() }
func (s *Session) FilterResult() search.Result     { return s.filter.Result() }
func (s *Session) SelectedItem() string            { return s.chain.Item() }
func (s *Session) SelectionState() selection.State { return s.chain.State() }

// Load returns the job that fetches the secret list.
func (s *Session) Load() Job {
	st := s.store
	return func(ctx context.Context) Result {
		secrets, err := st.ListSecrets(ctx)
		return SecretsLoaded{Secrets: secrets, Err: err}
	}
}

// Apply folds a job result into the session. Stale selection results are
// dropped and reported as selection.ErrStale. Fetch failures are published
// as error notices and returned.
func (s *Session) Apply(r Result) error {
	switch r := r.(type) {
	case SecretsLoaded:
		return s.applySecrets(r)
	case VersionsLoaded:
		return s.applyVersions(r)
	case ValueLoaded:
		return s.applyValue(r)
	default:
		return fmt.Errorf("unknown result %T", r)
	}
}

func (s *Session) applySecrets(r SecretsLoaded) error {
	if r.Err != nil {
		err := fmt.Errorf("loading secrets: %w", r.Err)
		events.Notify(s.bus, events.Error, err.Error())
		return err
	}
	s.secrets = r.Secrets
	s.byName = make(map[string]int, len(r.Secrets))
	for i, sec := range r.Secrets {
		if _, dup := s.byName[sec.Name]; !dup {
			s.byName[sec.Name] = i
		}
	}
	s.index.Build(store.Names(r.Secrets))
	s.loaded = true
	s.log.V(1).Info("secrets loaded", "count", len(r.Secrets))
	// Refresh publishes filter.Changed, which recomputes Visible.
	s.filter.Refresh()
	return nil
}

func (s *Session) onFilterChanged(c filter.Changed) {
	s.visible = s.visibleFor(c.Result)
	s.secretsPage.Rewind(len(s.visible))
}

func (s *Session) visibleFor(res search.Result) []store.Secret {
	if !res.Active() {
		return s.secrets
	}
	keys := res.Keys()
	out := make([]store.Secret, 0, len(keys))
	for _, k := range keys {
		if i, ok := s.byName[k]; ok {
			out = append(out, s.secrets[i])
		}
	}
	return out
}

// ActiveSecret is the secret under the cursor of the secrets pane.
func (s *Session) ActiveSecret() (store.Secret, bool) {
	return paging.Active(s.secretsPage, s.visible)
}

// ActiveVersion is the version under the cursor of the versions pane.
func (s *Session) ActiveVersion() (store.Version, bool) {
	return paging.Active(s.versionsPage, s.versions)
}

// SelectedVersion is the version whose value the chain holds.
func (s *Session) SelectedVersion() (store.Version, bool) {
	if s.chain.State() < selection.VersionSelected {
		return store.Version{}, false
	}
	for _, v := range s.versions {
		if v.ID == s.chain.Version() {
			return v, true
		}
	}
	return store.Version{}, false
}

// SelectActiveSecret starts loading the versions of the active secret. It
// reports false when the secrets pane is empty.
func (s *Session) SelectActiveSecret() (Job, bool) {
	sec, ok := s.ActiveSecret()
	if !ok {
		return nil, false
	}
	t := s.chain.SelectItem(sec.Name)
	st := s.store
	s.log.V(1).Info("select secret", "secret", sec.Name, "ticket", t.ID)
	return func(ctx context.Context) Result {
		versions, err := st.ListVersions(ctx, t.Item)
		return VersionsLoaded{Ticket: t, Versions: versions, Err: err}
	}, true
}

// SelectActiveVersion starts loading the value of the active version.
func (s *Session) SelectActiveVersion() (Job, bool) {
	v, ok := s.ActiveVersion()
	if !ok {
		return nil, false
	}
	t, err := s.chain.SelectVersion(v.ID)
	if err != nil {
		return nil, false
	}
	st := s.store
	s.log.V(1).Info("select version", "secret", t.Item, "version", t.Version, "ticket", t.ID)
	return func(ctx context.Context) Result {
		value, err := st.GetValue(ctx, t.Item, t.Version)
		return ValueLoaded{Ticket: t, Value: value, Err: err}
	}, true
}

func (s *Session) applyVersions(r VersionsLoaded) error {
	if err := s.chain.CompleteItem(r.Ticket, r.Err); err != nil {
		s.logDrop(err, r.Ticket)
		return err
	}
	versions := append([]store.Version(nil), r.Versions...)
	store.SortNewestFirst(versions)
	s.versions = versions
	s.versionsPage.Rewind(len(versions))
	return nil
}

func (s *Session) applyValue(r ValueLoaded) error {
	if err := s.chain.CompleteVersion(r.Ticket, r.Value, r.Err); err != nil {
		s.logDrop(err, r.Ticket)
		return err
	}
	return nil
}

func (s *Session) logDrop(err error, t selection.Ticket) {
	if errors.Is(err, selection.ErrStale) {
		s.log.V(1).Info("dropped stale result", "item", t.Item, "version", t.Version, "ticket", t.ID)
		return
	}
	s.log.Error(err, "fetch failed", "item", t.Item, "version", t.Version)
}

// Value returns the held value and whether it is revealed.
func (s *Session) Value() (value string, revealed, ok bool) {
	v, ok := s.chain.Value()
	return v, s.chain.Revealed(), ok
}

// ToggleReveal flips the visibility of the held value.
func (s *Session) ToggleReveal() error { return s.chain.ToggleReveal() }

// HideValue hides the value; used when the properties pane loses focus.
func (s *Session) HideValue() { s.chain.Hide() }

// ClearToSearch drops the selection, the versions and the filter, and asks
// for focus on the filter.
func (s *Session) ClearToSearch() {
	s.chain.ClearToSearch()
	s.versions = nil
	s.versionsPage.Rewind(0)
	s.filter.Clear()
}

// Resize sets the page size of the list shown in pane.
func (s *Session) Resize(pane events.Pane, rows int) {
	switch pane {
	case events.PaneSecrets:
		s.secretsPage.Resize(rows)
	case events.PaneVersions:
		s.versionsPage.Resize(rows)
	}
}
