package events

// Kind classifies a user-facing notice.
type Kind int

const (
	// Info is a neutral message.
	Info Kind = iota
	// Success confirms a completed action (e.g. value copied).
	Success
	// Warning flags input the user should correct.
	Warning
	// Error reports a failed operation.
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notice is a fire-and-forget message for the flash bar.
type Notice struct {
	Kind    Kind
	Message string
}

// Pane identifies a focusable region of the browser.
type Pane int

const (
	PaneFilter Pane = iota
	PaneSecrets
	PaneVersions
	PaneProperties
)

func (p Pane) String() string {
	switch p {
	case PaneSecrets:
		return "secrets"
	case PaneVersions:
		return "versions"
	case PaneProperties:
		return "properties"
	default:
		return "filter"
	}
}

// Focus asks the rendering layer to move focus to Pane.
type Focus struct {
	Pane Pane
}

// Notify publishes a Notice.
func Notify(b *Bus, kind Kind, msg string) {
	Publish(b, Notice{Kind: kind, Message: msg})
}

// RequestFocus publishes a Focus event.
func RequestFocus(b *Bus, p Pane) {
	Publish(b, Focus{Pane: p})
}
