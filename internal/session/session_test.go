package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvb/internal/events"
	"github.com/oakwood-commons/kvb/internal/search"
	"github.com/oakwood-commons/kvb/internal/selection"
	"github.com/oakwood-commons/kvb/internal/store"
)

var t0 = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func seeded() *store.Memory {
	m := store.NewMemory()
	m.Add(store.Version{Name: "db-password", ID: "p1", Created: t0}, "old-pw")
	m.Add(store.Version{Name: "db-password", ID: "p2", Created: t0.Add(time.Hour)}, "new-pw")
	m.Add(store.Version{Name: "db-password-backup", ID: "b1", Created: t0}, "backup")
	m.Add(store.Version{Name: "api-key", ID: "k1", Created: t0}, "key")
	return m
}

// failingStore fails the calls named in fail.
type failingStore struct {
	store.Store
	fail map[string]error
}

func (f failingStore) ListSecrets(ctx context.Context) ([]store.Secret, error) {
	if err := f.fail["secrets"]; err != nil {
		return nil, err
	}
	return f.Store.ListSecrets(ctx)
}

func (f failingStore) ListVersions(ctx context.Context, name string) ([]store.Version, error) {
	if err := f.fail["versions"]; err != nil {
		return nil, err
	}
	return f.Store.ListVersions(ctx, name)
}

func (f failingStore) GetValue(ctx context.Context, name, version string) (string, error) {
	if err := f.fail["value"]; err != nil {
		return "", err
	}
	return f.Store.GetValue(ctx, name, version)
}

func loaded(t *testing.T, st store.Store) *Session {
	t.Helper()
	s := New(st, events.New())
	t.Cleanup(s.Close)
	require.NoError(t, s.Apply(s.Load()(context.Background())))
	return s
}

func run(t *testing.T, s *Session, start func() (Job, bool)) error {
	t.Helper()
	job, ok := start()
	require.True(t, ok)
	return s.Apply(job(context.Background()))
}

func TestLoadBuildsIndexAndVisible(t *testing.T) {
	s := loaded(t, seeded())

	assert.True(t, s.Loaded())
	assert.True(t, s.Index().Built())
	assert.Equal(t, []string{"api-key", "db-password", "db-password-backup"}, s.VisibleNames())
	assert.Equal(t, 3, s.SecretsPage().Total())
}

func TestFilterNarrowsVisibleAndRewinds(t *testing.T) {
	s := loaded(t, seeded())
	s.SecretsPage().NextRow()
	s.SecretsPage().NextRow()
	require.Equal(t, 2, s.SecretsPage().Row())

	s.Filter().InsertString("db")
	assert.Equal(t, []string{"db-password", "db-password-backup"}, s.VisibleNames())
	assert.Equal(t, 0, s.SecretsPage().Row(), "identity change rewinds the cursor")
	assert.Equal(t, 2, s.SecretsPage().Total())

	s.Filter().Backspace()
	assert.Equal(t, search.NoFilter, s.FilterResult().Kind())
	assert.Len(t, s.Visible(), 3)

	s.Filter().Clear()
	s.Filter().InsertString("zzz")
	assert.True(t, s.FilterResult().IsNoMatch())
	assert.Len(t, s.Visible(), 3, "no match shows the full list")
}

func TestDrillDown(t *testing.T) {
	s := loaded(t, seeded())
	s.Filter().InsertString("db-password")
	require.Equal(t, "db-password", s.VisibleNames()[0])

	require.NoError(t, run(t, s, s.SelectActiveSecret))
	assert.Equal(t, selection.ItemSelected, s.SelectionState())
	require.Len(t, s.Versions(), 2)
	assert.Equal(t, "p2", s.Versions()[0].ID, "newest first")

	s.VersionsPage().NextRow()
	require.NoError(t, run(t, s, s.SelectActiveVersion))
	assert.Equal(t, selection.VersionSelected, s.SelectionState())

	v, ok := s.SelectedVersion()
	require.True(t, ok)
	assert.Equal(t, "p1", v.ID)

	val, revealed, ok := s.Value()
	assert.True(t, ok)
	assert.False(t, revealed)
	assert.Equal(t, "old-pw", val)

	require.NoError(t, s.ToggleReveal())
	_, revealed, _ = s.Value()
	assert.True(t, revealed)

	s.HideValue()
	_, revealed, _ = s.Value()
	assert.False(t, revealed)
}

func TestStaleVersionsDiscarded(t *testing.T) {
	s := loaded(t, seeded())

	slow, ok := s.SelectActiveSecret() // api-key
	require.True(t, ok)
	s.SecretsPage().NextRow()
	fast, ok := s.SelectActiveSecret() // db-password
	require.True(t, ok)

	require.NoError(t, s.Apply(fast(context.Background())))
	err := s.Apply(slow(context.Background()))
	assert.ErrorIs(t, err, selection.ErrStale)
	assert.Equal(t, "db-password", s.SelectedItem())
	assert.Len(t, s.Versions(), 2)
}

func TestFetchFailureNotifiesAndRollsBack(t *testing.T) {
	boom := errors.New("403 forbidden")
	fs := failingStore{Store: seeded(), fail: map[string]error{}}
	s := New(fs, events.New())
	t.Cleanup(s.Close)

	var notices []events.Notice
	events.Subscribe(s.Bus(), func(n events.Notice) { notices = append(notices, n) })

	require.NoError(t, s.Apply(s.Load()(context.Background())))
	require.NoError(t, run(t, s, s.SelectActiveSecret))

	fs.fail["value"] = boom
	err := run(t, s, s.SelectActiveVersion)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, selection.ItemSelected, s.SelectionState())

	fs.fail["versions"] = boom
	s.SecretsPage().NextRow()
	err = run(t, s, s.SelectActiveSecret)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "api-key", s.SelectedItem())

	require.Len(t, notices, 2)
	for _, n := range notices {
		assert.Equal(t, events.Error, n.Kind)
		assert.Contains(t, n.Message, "403 forbidden")
	}
}

func TestLoadFailure(t *testing.T) {
	boom := errors.New("no login")
	s := New(failingStore{Store: seeded(), fail: map[string]error{"secrets": boom}}, nil)
	t.Cleanup(s.Close)

	var notices []events.Notice
	events.Subscribe(s.Bus(), func(n events.Notice) { notices = append(notices, n) })

	err := s.Apply(s.Load()(context.Background()))
	require.ErrorIs(t, err, boom)
	assert.False(t, s.Loaded())
	require.Len(t, notices, 1)
	assert.Equal(t, "loading secrets: no login", notices[0].Message)
}

func TestClearToSearch(t *testing.T) {
	s := loaded(t, seeded())
	var focus []events.Pane
	events.Subscribe(s.Bus(), func(f events.Focus) { focus = append(focus, f.Pane) })

	s.Filter().InsertString("db")
	require.NoError(t, run(t, s, s.SelectActiveSecret))
	require.NoError(t, run(t, s, s.SelectActiveVersion))

	s.ClearToSearch()
	assert.Equal(t, selection.Empty, s.SelectionState())
	assert.Empty(t, s.Versions())
	assert.Equal(t, "", s.Query())
	assert.Len(t, s.Visible(), 3)
	assert.Equal(t, events.PaneFilter, focus[len(focus)-1])
}

func TestEmptyPanesSelectNothing(t *testing.T) {
	s := New(store.NewMemory(), nil)
	t.Cleanup(s.Close)
	require.NoError(t, s.Apply(s.Load()(context.Background())))

	_, ok := s.SelectActiveSecret()
	assert.False(t, ok)
	_, ok = s.SelectActiveVersion()
	assert.False(t, ok)
	_, ok = s.SelectedVersion()
	assert.False(t, ok)
}

func TestResize(t *testing.T) {
	s := loaded(t, seeded())
	s.Resize(events.PaneSecrets, 2)
	assert.Equal(t, 2, s.SecretsPage().PageCount())

	s.Resize(events.PaneVersions, 7)
	assert.Equal(t, 7, s.VersionsPage().PageSize())
}

func TestSearchLimit(t *testing.T) {
	s := New(seeded(), nil, WithSearchLimit(1))
	t.Cleanup(s.Close)
	require.NoError(t, s.Apply(s.Load()(context.Background())))

	s.Filter().InsertString("db")
	assert.Len(t, s.Visible(), 1)
}
