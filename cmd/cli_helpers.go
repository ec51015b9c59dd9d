package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvb/pkg/settings"
)

const defaultFallbackTermWidth = 80

// versionString builds the text of `kvb version` and --version.
func versionString() string {
	v := settings.VersionInformation
	version := v.BuildVersion
	if version == "" {
		version = "dev"
	}
	parts := []string{fmt.Sprintf("%s %s", settings.CliBinaryName, version)}
	if v.Commit != "" {
		parts = append(parts, "commit "+v.Commit)
	}
	if v.BuildTime != "" {
		parts = append(parts, "built "+v.BuildTime)
	}
	parts = append(parts, runtime.Version())
	return strings.Join(parts, ", ")
}

// terminalWidth is the width of stdout, or a fallback when it is not a
// terminal (pipes, CI).
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultFallbackTermWidth
}

// truncate shortens s to at most w display columns.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "...")
}
