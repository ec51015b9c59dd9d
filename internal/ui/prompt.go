package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/kvb/internal/config"
	"github.com/oakwood-commons/kvb/internal/events"
)

// ErrPromptCancelled is returned when the user leaves the prompt with esc or
// ctrl+c.
var ErrPromptCancelled = errors.New("prompt cancelled")

const firstRunMessage = "It looks like this is the first time you are using this app. " +
	"Enter the name of the key vault to browse; it is saved to your config file."

// VaultPrompt asks for a key vault name.
type VaultPrompt struct {
	input     textinput.Model
	styles    Styles
	message   string
	err       error
	done      bool
	cancelled bool
}

// NewVaultPrompt returns a prompt prefilled with initial.
func NewVaultPrompt(initial string, styles Styles) *VaultPrompt {
	in := textinput.New()
	in.Prompt = "key vault: "
	in.Placeholder = "my-vault"
	in.CharLimit = 24
	in.Validate = config.ValidateVaultName
	in.SetValue(initial)
	in.Err = nil
	return &VaultPrompt{input: in, styles: styles, message: firstRunMessage}
}

func (p *VaultPrompt) Init() tea.Cmd { return p.input.Focus() }

func (p *VaultPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyPressMsg); ok {
		switch km.String() {
		case "ctrl+c", "esc":
			p.cancelled = true
			return p, tea.Quit
		case "enter":
			p.err = config.ValidateVaultName(p.Value())
			if p.err != nil {
				return p, nil
			}
			p.done = true
			return p, tea.Quit
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.err = nil
	return p, cmd
}

func (p *VaultPrompt) View() tea.View {
	if p.done || p.cancelled {
		return tea.NewView("")
	}
	lines := []string{
		p.styles.Title().Render(p.message),
		"",
		p.input.View(),
	}
	if p.err != nil {
		lines = append(lines, p.styles.Notice(events.Error).Render(p.err.Error()))
	} else {
		lines = append(lines, p.styles.KeyHint().Render("enter to save, esc to cancel"))
	}
	return tea.NewView(lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n")
}

// Value is the trimmed input.
func (p *VaultPrompt) Value() string { return strings.TrimSpace(p.input.Value()) }

// Cancelled reports whether the user left without confirming.
func (p *VaultPrompt) Cancelled() bool { return p.cancelled }

// PromptVault runs the vault prompt on in/out and returns the accepted name.
func PromptVault(ctx context.Context, initial string, noColor bool, in io.Reader, out io.Writer) (string, error) {
	p := NewVaultPrompt(initial, NewStyles(noColor))
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	if _, err := tea.NewProgram(p, opts...).Run(); err != nil {
		return "", err
	}
	if p.Cancelled() {
		return "", ErrPromptCancelled
	}
	return p.Value(), nil
}
