package cmd

import (
	"os"
	"testing"

	"github.com/oakwood-commons/kvb/internal/ui"
)

// TestMain stubs platform actions (clipboard, editor) and treats stdin as a
// pipe so no test opens an editor or waits on a prompt.
func TestMain(m *testing.M) {
	restore := ui.StubPlatformActions()
	stdinIsTerminal = func() bool { return false }
	code := m.Run()
	restore()
	os.Exit(code)
}
