package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvb/pkg/settings"
)

func TestLoadMissingFileIsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	in := Config{KeyVault: "team-vault", Backend: BackendSQLite, Database: "/tmp/v.db", Theme: "dark", Editor: "vim"}
	require.NoError(t, Save(path, in))
	assert.True(t, Exists(path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadFillsBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("keyvault = \"prod-kv\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendAzure, cfg.Backend)
	assert.Equal(t, "prod-kv", cfg.KeyVault)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("keyvault = ["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{name: "azure ok", cfg: Config{KeyVault: "my-vault-01", Backend: BackendAzure}},
		{name: "azure missing vault", cfg: Config{Backend: BackendAzure}, err: ErrMissingVault},
		{name: "azure short name", cfg: Config{KeyVault: "kv", Backend: BackendAzure}, err: ErrInvalidVault},
		{name: "azure bad chars", cfg: Config{KeyVault: "my_vault", Backend: BackendAzure}, err: ErrInvalidVault},
		{name: "azure too long", cfg: Config{KeyVault: "abcdefghijklmnopqrstuvwxy", Backend: BackendAzure}, err: ErrInvalidVault},
		{name: "sqlite needs no vault", cfg: Config{Backend: BackendSQLite}},
		{name: "demo", cfg: Config{Backend: BackendDemo}},
		{name: "unknown backend", cfg: Config{Backend: "s3"}, err: ErrInvalidBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBackendFlagValue(t *testing.T) {
	var b Backend
	require.NoError(t, b.Set(" SQLite "))
	assert.Equal(t, BackendSQLite, b)
	assert.Equal(t, "sqlite", b.String())
	assert.Equal(t, "backend", b.Type())

	err := b.Set("vault")
	require.ErrorIs(t, err, ErrInvalidBackend)
	assert.Contains(t, err.Error(), "azure|sqlite|demo")
	assert.Equal(t, BackendSQLite, b, "a rejected value leaves the flag unchanged")
}

func TestDefaultPaths(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(settings.EnvConfig, "")
	xdg.Reload()

	assert.Equal(t, filepath.Join(dir, "config", "kvb", "config.toml"), DefaultPath())
	assert.Equal(t, filepath.Join(dir, "data", "kvb", "vault.db"), Config{}.DatabasePath())
	assert.Equal(t, "/x/v.db", Config{Database: "/x/v.db"}.DatabasePath())

	t.Setenv(settings.EnvConfig, "/etc/kvb.toml")
	assert.Equal(t, "/etc/kvb.toml", DefaultPath())
}
