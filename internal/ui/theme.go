package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvb/internal/events"
)

// Theme defines the colors used across the UI.
type Theme struct {
	TitleFG       color.Color // Header title
	Border        color.Color // Pane border
	BorderFocused color.Color // Border of the focused pane
	BorderInvalid color.Color // Filter border while the query matches nothing
	LabelFG       color.Color // Property labels and table headers
	ValueFG       color.Color // Property values
	AccentFG      color.Color // Properties title
	SelectedFG    color.Color // Selected row foreground
	SelectedBG    color.Color // Selected row background
	KeyHintFG     color.Color // Key hints in the header
	InfoFG        color.Color
	SuccessFG     color.Color
	WarningFG     color.Color
	ErrorFG       color.Color
}

var (
	loadedThemes = map[string]Theme{}
	currentTheme Theme
)

// fallbackDefaultTheme is used when the embedded config cannot be read.
func fallbackDefaultTheme() Theme {
	return Theme{
		TitleFG:       lipgloss.Color("250"),
		Border:        lipgloss.Color("61"),
		BorderFocused: lipgloss.Color("141"),
		BorderInvalid: lipgloss.Color("203"),
		LabelFG:       lipgloss.Color("245"),
		ValueFG:       lipgloss.Color("215"),
		AccentFG:      lipgloss.Color("114"),
		SelectedFG:    lipgloss.Color("255"),
		SelectedBG:    lipgloss.Color("61"),
		KeyHintFG:     lipgloss.Color("242"),
		InfoFG:        lipgloss.Color("81"),
		SuccessFG:     lipgloss.Color("114"),
		WarningFG:     lipgloss.Color("221"),
		ErrorFG:       lipgloss.Color("203"),
	}
}

// ColorValue stores a color token; YAML ints and strings are both accepted.
type ColorValue string

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is the YAML form of a Theme.
type ThemeConfig struct {
	TitleFG       ColorValue `yaml:"title_fg"`
	Border        ColorValue `yaml:"border"`
	BorderFocused ColorValue `yaml:"border_focused"`
	BorderInvalid ColorValue `yaml:"border_invalid"`
	LabelFG       ColorValue `yaml:"label_fg"`
	ValueFG       ColorValue `yaml:"value_fg"`
	AccentFG      ColorValue `yaml:"accent_fg"`
	SelectedFG    ColorValue `yaml:"selected_fg"`
	SelectedBG    ColorValue `yaml:"selected_bg"`
	KeyHintFG     ColorValue `yaml:"key_hint_fg"`
	InfoFG        ColorValue `yaml:"info_fg"`
	SuccessFG     ColorValue `yaml:"success_fg"`
	WarningFG     ColorValue `yaml:"warning_fg"`
	ErrorFG       ColorValue `yaml:"error_fg"`
}

// ThemeFromConfig builds a Theme from cfg, keeping fallback colors for empty fields.
func ThemeFromConfig(cfg ThemeConfig) Theme {
	th := fallbackDefaultTheme()
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.TitleFG, &th.TitleFG)
	set(cfg.Border, &th.Border)
	set(cfg.BorderFocused, &th.BorderFocused)
	set(cfg.BorderInvalid, &th.BorderInvalid)
	set(cfg.LabelFG, &th.LabelFG)
	set(cfg.ValueFG, &th.ValueFG)
	set(cfg.AccentFG, &th.AccentFG)
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.KeyHintFG, &th.KeyHintFG)
	set(cfg.InfoFG, &th.InfoFG)
	set(cfg.SuccessFG, &th.SuccessFG)
	set(cfg.WarningFG, &th.WarningFG)
	set(cfg.ErrorFG, &th.ErrorFG)
	return th
}

// InitializeThemes loads the themes of the embedded default config and selects
// name, or the configured default when name is empty.
func InitializeThemes(name string) error {
	cfg, err := EmbeddedDefaultConfig()
	if err != nil {
		currentTheme = fallbackDefaultTheme()
		return err
	}
	loadedThemes = make(map[string]Theme, len(cfg.Themes))
	for n, tc := range cfg.Themes {
		loadedThemes[n] = ThemeFromConfig(tc)
	}
	if _, ok := loadedThemes["dark"]; !ok {
		loadedThemes["dark"] = fallbackDefaultTheme()
	}
	if name == "" {
		name = cfg.Theme.Default
	}
	return SetThemeByName(name)
}

// SetThemeByName selects a loaded theme.
func SetThemeByName(name string) error {
	th, ok := loadedThemes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	currentTheme = th
	return nil
}

// ThemeNames lists the loaded theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(loadedThemes))
	for n := range loadedThemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CurrentTheme returns the selected theme.
func CurrentTheme() Theme {
	if currentTheme == (Theme{}) {
		currentTheme = fallbackDefaultTheme()
	}
	return currentTheme
}

// Styles are the lipgloss styles derived from a Theme. With NoColor set every
// style is plain.
type Styles struct {
	NoColor bool
	th      Theme
}

// NewStyles returns the styles of the current theme.
func NewStyles(noColor bool) Styles {
	return Styles{NoColor: noColor, th: CurrentTheme()}
}

func (s Styles) fg(c color.Color) lipgloss.Style {
	st := lipgloss.NewStyle()
	if !s.NoColor && c != nil {
		st = st.Foreground(c)
	}
	return st
}

// Pane is the bordered box around a pane.
func (s Styles) Pane(focused, invalid bool) lipgloss.Style {
	st := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	if s.NoColor {
		if focused {
			st = st.Border(lipgloss.DoubleBorder())
		}
		return st
	}
	switch {
	case invalid:
		return st.BorderForeground(s.th.BorderInvalid)
	case focused:
		return st.BorderForeground(s.th.BorderFocused)
	default:
		return st.BorderForeground(s.th.Border)
	}
}

func (s Styles) Title() lipgloss.Style   { return s.fg(s.th.TitleFG).Bold(true) }
func (s Styles) Label() lipgloss.Style   { return s.fg(s.th.LabelFG) }
func (s Styles) Value() lipgloss.Style   { return s.fg(s.th.ValueFG).Bold(true) }
func (s Styles) Accent() lipgloss.Style  { return s.fg(s.th.AccentFG) }
func (s Styles) KeyHint() lipgloss.Style { return s.fg(s.th.KeyHintFG).Faint(true) }

// Notice is the flash bar style for kind.
func (s Styles) Notice(kind events.Kind) lipgloss.Style {
	switch kind {
	case events.Success:
		return s.fg(s.th.SuccessFG)
	case events.Warning:
		return s.fg(s.th.WarningFG)
	case events.Error:
		return s.fg(s.th.ErrorFG).Bold(true)
	default:
		return s.fg(s.th.InfoFG)
	}
}
