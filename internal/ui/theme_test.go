package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvb/internal/events"
)

func TestInitializeThemes(t *testing.T) {
	t.Cleanup(func() { _ = InitializeThemes("") })

	require.NoError(t, InitializeThemes(""))
	assert.Equal(t, []string{"dark", "light", "mono"}, ThemeNames())

	require.NoError(t, InitializeThemes("light"))
	light := CurrentTheme()
	require.NoError(t, SetThemeByName("dark"))
	assert.NotEqual(t, light, CurrentTheme())

	err := SetThemeByName("neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dark, light, mono")
}

func TestStylesNoColor(t *testing.T) {
	require.NoError(t, InitializeThemes(""))
	plain := NewStyles(true)
	assert.Equal(t, "x", plain.Label().Render("x"))
	assert.Equal(t, "x", plain.Notice(events.Info).Render("x"))

	colored := NewStyles(false)
	assert.NotNil(t, colored.Pane(true, false).GetBorderTopForeground())
}
