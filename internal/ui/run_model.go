package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/kvb/internal/session"
)

// RunOptions configures Run.
type RunOptions struct {
	RootOptions
	// Width and Height force the window size; 0 auto-detects it.
	Width  int
	Height int
}

// Run starts the browser over sess and blocks until the user quits or ctx is
// cancelled. Extra ProgramOptions (e.g., custom IO) are passed to
// tea.NewProgram.
func Run(ctx context.Context, sess *session.Session, opts RunOptions, progOpts ...tea.ProgramOption) error {
	opts.Context = ctx
	m := NewRootModel(sess, opts.RootOptions)
	defer m.Close()

	if opts.Width > 0 || opts.Height > 0 {
		w, h := opts.Width, opts.Height
		if w <= 0 || h <= 0 {
			if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				if w <= 0 {
					w = tw
				}
				if h <= 0 {
					h = th
				}
			}
		}
		if w <= 0 {
			w = 80
		}
		if h <= 0 {
			h = 24
		}
		progOpts = append(progOpts, tea.WithWindowSize(w, h))
	}
	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)

	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
