package ui

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     DefaultsFile
	embeddedConfigErr  error
)

// AboutConfig holds the header and help text of the application.
type AboutConfig struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// ThemeSelectionConfig names the theme used when none is configured.
type ThemeSelectionConfig struct {
	Default string `yaml:"default"`
}

// FlashConfig controls the flash bar.
type FlashConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
}

// SearchConfig controls the filter queries.
type SearchConfig struct {
	Limit int `yaml:"limit"`
}

// DefaultsFile is the decoded embedded default configuration.
type DefaultsFile struct {
	About  AboutConfig
	Theme  ThemeSelectionConfig
	Flash  FlashConfig
	Search SearchConfig
	Themes map[string]ThemeConfig
}

// FlashTimeout is the flash bar timeout, three seconds when unset.
func (d DefaultsFile) FlashTimeout() time.Duration {
	if d.Flash.TimeoutMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(d.Flash.TimeoutMs) * time.Millisecond
}

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// EmbeddedDefaultConfig parses and returns the embedded default configuration.
func EmbeddedDefaultConfig() (DefaultsFile, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		var raw struct {
			App struct {
				About AboutConfig `yaml:"about"`
			} `yaml:"app"`
			UI struct {
				Theme  ThemeSelectionConfig   `yaml:"theme"`
				Flash  FlashConfig            `yaml:"flash"`
				Search SearchConfig           `yaml:"search"`
				Themes map[string]ThemeConfig `yaml:"themes"`
			} `yaml:"ui"`
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &raw); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		embeddedConfig = DefaultsFile{
			About:  raw.App.About,
			Theme:  raw.UI.Theme,
			Flash:  raw.UI.Flash,
			Search: raw.UI.Search,
			Themes: raw.UI.Themes,
		}
		if embeddedConfig.Themes == nil {
			embeddedConfig.Themes = map[string]ThemeConfig{}
		}
	})
	return embeddedConfig, embeddedConfigErr
}
