package ui

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
)

const editorFailedMessage = "Unable to open editor. Please check your editor settings."

// copyToClipboardFn and editorCommandFn are the active implementations for
// clipboard and editor operations. Tests replace them via
// StubPlatformActions() to prevent side effects.
var (
	copyToClipboardFn = clipboard.WriteAll
	editorCommandFn   = editorCommandImpl
)

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// StubPlatformActions replaces the clipboard and editor with no-ops and
// returns a restore function.
func StubPlatformActions() (restore func()) {
	origCopy := copyToClipboardFn
	origEditor := editorCommandFn
	copyToClipboardFn = func(string) error { return nil }
	editorCommandFn = func(string, string) (*exec.Cmd, error) { return exec.Command("true"), nil }
	return func() {
		copyToClipboardFn = origCopy
		editorCommandFn = origEditor
	}
}

// ResolveEditor picks the editor command: the configured one, then $VISUAL,
// then $EDITOR, then vi.
func ResolveEditor(configured string) string {
	for _, e := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(e) != "" {
			return e
		}
	}
	return "vi"
}

func editorCommandImpl(editor, path string) (*exec.Cmd, error) {
	fields := strings.Fields(ResolveEditor(editor))
	if len(fields) == 0 {
		return nil, errors.New("no editor configured")
	}
	bin, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("finding editor %q: %w", fields[0], err)
	}
	args := append(fields[1:], path)
	return exec.Command(bin, args...), nil //nolint:gosec // the editor is user configured
}

// openInEditor writes value to a temp file and hands the terminal to the
// editor. The file is removed when the editor exits.
func openInEditor(editor, name, value string) (tea.Cmd, error) {
	f, err := os.CreateTemp("", "kvb-"+sanitizeFileName(name)+"-*.txt")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	_, werr := f.WriteString(value)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	cmd, err := editorCommandFn(editor, path)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		_ = os.Remove(path)
		return editorClosedMsg{err: err}
	}), nil
}

func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
