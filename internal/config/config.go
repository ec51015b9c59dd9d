// Package config reads and writes the user configuration file, a small TOML
// document under the XDG config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/kvb/pkg/settings"
)

const fileName = "config.toml"

// Backend selects where secrets are read from.
type Backend string

const (
	BackendAzure  Backend = "azure"
	BackendSQLite Backend = "sqlite"
	BackendDemo   Backend = "demo"
)

// Backends lists the accepted backend names.
var Backends = []Backend{BackendAzure, BackendSQLite, BackendDemo}

// ErrInvalidBackend is returned for an unknown backend name.
var ErrInvalidBackend = errors.New("invalid backend")

// ErrInvalidVault is returned when a vault name does not match VaultNamePattern.
var ErrInvalidVault = errors.New("invalid key vault name")

// ErrMissingVault is returned when the azure backend has no vault configured.
var ErrMissingVault = errors.New("no key vault configured")

// VaultNamePattern is the accepted shape of a key vault name.
var VaultNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]{3,24}$`)

var _ pflag.Value = (*Backend)(nil)

// String implements pflag.Value.
func (b *Backend) String() string { return string(*b) }

// Set implements pflag.Value.
func (b *Backend) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, known := range Backends {
		if string(known) == v {
			*b = known
			return nil
		}
	}
	return fmt.Errorf("%w %q: must be one of %s", ErrInvalidBackend, v, backendList())
}

// Type implements pflag.Value.
func (b *Backend) Type() string { return "backend" }

func backendList() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, "|")
}

// Config is the content of config.toml.
type Config struct {
	KeyVault string  `toml:"keyvault"`
	Backend  Backend `toml:"backend"`
	Database string  `toml:"database,omitempty"`
	Theme    string  `toml:"theme,omitempty"`
	Editor   string  `toml:"editor,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{Backend: BackendAzure}
}

// DefaultPath is the config file location, $KVB_CONFIG when set.
func DefaultPath() string {
	if p := os.Getenv(settings.EnvConfig); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, settings.CliBinaryName, fileName)
}

// DefaultDatabase is the sqlite vault location.
func DefaultDatabase() string {
	return filepath.Join(xdg.DataHome, settings.CliBinaryName, "vault.db")
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads path. A missing file yields Default and no error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendAzure
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// ValidateVaultName checks name against VaultNamePattern.
func ValidateVaultName(name string) error {
	if !VaultNamePattern.MatchString(name) {
		return fmt.Errorf("%w %q: use 3-24 letters, digits or dashes", ErrInvalidVault, name)
	}
	return nil
}

// Validate checks the backend and, for azure, the vault name.
func (c Config) Validate() error {
	b := c.Backend
	if err := b.Set(string(c.Backend)); err != nil {
		return err
	}
	if b != BackendAzure {
		return nil
	}
	if c.KeyVault == "" {
		return ErrMissingVault
	}
	return ValidateVaultName(c.KeyVault)
}

// DatabasePath returns Database or DefaultDatabase.
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return DefaultDatabase()
}
