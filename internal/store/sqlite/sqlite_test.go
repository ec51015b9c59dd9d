package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvb/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestPutAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v1, err := s.Put(ctx, "db-password", "first", PutOptions{})
	require.NoError(t, err)
	v2, err := s.Put(ctx, "db-password", "second", PutOptions{ContentType: "text/plain", Tags: map[string]string{"env": "prod"}})
	require.NoError(t, err)
	_, err = s.Put(ctx, "api-key", "k", PutOptions{Disabled: true})
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{32}$`, v1.ID)
	assert.NotEqual(t, v1.ID, v2.ID)

	secrets, err := s.ListSecrets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"api-key", "db-password"}, store.Names(secrets))
	assert.False(t, secrets[0].Enabled)
	assert.Equal(t, "text/plain", secrets[1].ContentType, "summary follows the newest version")

	versions, err := s.ListVersions(ctx, "db-password")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, v2.ID, versions[0].ID)
	assert.Equal(t, v1.ID, versions[1].ID)
	assert.True(t, versions[0].Created.After(versions[1].Created))
	assert.Equal(t, map[string]string{"env": "prod"}, versions[0].Tags)
	assert.Nil(t, versions[1].Tags)

	val, err := s.GetValue(ctx, "db-password", v1.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", val)
}

func TestPutOptionalTimes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	exp := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Put(ctx, "cert", "pem", PutOptions{Expires: exp})
	require.NoError(t, err)

	versions, err := s.ListVersions(ctx, "cert")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.True(t, versions[0].Expires.Equal(exp))
	assert.True(t, versions[0].NotBefore.IsZero())
	assert.True(t, versions[0].Enabled)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.ListVersions(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetValue(ctx, "missing", "v")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Put(ctx, "", "x", PutOptions{})
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Put(ctx, "persisted", "v", PutOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	secrets, err := s.ListSecrets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, store.Names(secrets))
}

func TestEmptyDatabase(t *testing.T) {
	s := openTestStore(t)
	secrets, err := s.ListSecrets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, secrets)
}
