// Package selection implements the item → version → value drill-down.
//
// Every selection that needs a fetch hands out a Ticket. Completing a ticket
// that is no longer current returns ErrStale and leaves the chain untouched,
// so a slow fetch for a previous selection can never overwrite a newer one.
package selection

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/kvb/internal/events"
)

var (
	// ErrStale is returned when a completion arrives for a superseded ticket.
	ErrStale = errors.New("selection: stale ticket")
	// ErrNoItem is returned by SelectVersion before an item is selected.
	ErrNoItem = errors.New("selection: no item selected")
	// ErrNoVersion is returned by ToggleReveal before a version is selected.
	ErrNoVersion = errors.New("selection: no version selected")
)

// State is the depth of the chain.
type State int

const (
	Empty State = iota
	ItemSelected
	VersionSelected
	ValueRevealed
)

func (s State) String() string {
	switch s {
	case ItemSelected:
		return "item-selected"
	case VersionSelected:
		return "version-selected"
	case ValueRevealed:
		return "value-revealed"
	default:
		return "empty"
	}
}

// Stage names the fetch a ticket stands for.
type Stage int

const (
	FetchVersions Stage = iota + 1
	FetchValue
)

// Ticket identifies one outstanding fetch.
type Ticket struct {
	Stage   Stage
	ID      uint64
	Item    string
	Version string
}

// Changed is published after every applied transition.
type Changed struct {
	State   State
	Item    string
	Version string
}

// Chain holds the selected item, the selected version and its value.
type Chain struct {
	bus *events.Bus

	item     string
	version  string
	value    string
	hasItem  bool
	hasValue bool
	revealed bool

	itemSeq        uint64
	versionSeq     uint64
	itemPending    bool
	versionPending bool
}

// New returns an empty chain publishing on bus, which may be nil.
func New(bus *events.Bus) *Chain {
	return &Chain{bus: bus}
}

// State reports how deep the chain is.
func (c *Chain) State() State {
	switch {
	case c.hasValue && c.revealed:
		return ValueRevealed
	case c.hasValue:
		return VersionSelected
	case c.hasItem:
		return ItemSelected
	default:
		return Empty
	}
}

func (c *Chain) Item() string    { return c.item }
func (c *Chain) Version() string { return c.version }

// Value returns the fetched value and whether one is held. The value is
// returned whether or not it is revealed; callers decide how to render it.
func (c *Chain) Value() (string, bool) { return c.value, c.hasValue }

// Revealed reports whether the value is currently visible.
func (c *Chain) Revealed() bool { return c.revealed }

// Pending reports whether a fetch is outstanding.
func (c *Chain) Pending() bool { return c.itemPending || c.versionPending }

// SelectItem starts a selection of name. Any fetch for a previous item or
// version is superseded.
func (c *Chain) SelectItem(name string) Ticket {
	c.itemSeq++
	c.versionSeq++
	c.itemPending = true
	c.versionPending = false
	return Ticket{Stage: FetchVersions, ID: c.itemSeq, Item: name}
}

// CompleteItem applies the outcome of a FetchVersions ticket. On success the
// chain moves to ItemSelected and drops any version and value. On failure
// the chain is left as it was and an error notice is published.
func (c *Chain) CompleteItem(t Ticket, fetchErr error) error {
	if t.Stage != FetchVersions || t.ID != c.itemSeq || !c.itemPending {
		return ErrStale
	}
	c.itemPending = false
	if fetchErr != nil {
		err := fmt.Errorf("loading versions of %q: %w", t.Item, fetchErr)
		events.Notify(c.bus, events.Error, err.Error())
		return err
	}
	c.item, c.hasItem = t.Item, true
	c.dropVersion()
	c.publish()
	events.RequestFocus(c.bus, events.PaneVersions)
	return nil
}

// SelectVersion starts a selection of version id under the current item.
func (c *Chain) SelectVersion(id string) (Ticket, error) {
	if !c.hasItem {
		return Ticket{}, ErrNoItem
	}
	c.versionSeq++
	c.versionPending = true
	return Ticket{Stage: FetchValue, ID: c.versionSeq, Item: c.item, Version: id}, nil
}

// CompleteVersion applies the outcome of a FetchValue ticket. The value is
// stored hidden.
func (c *Chain) CompleteVersion(t Ticket, value string, fetchErr error) error {
	if t.Stage != FetchValue || t.ID != c.versionSeq || !c.versionPending || t.Item != c.item {
		return ErrStale
	}
	c.versionPending = false
	if fetchErr != nil {
		err := fmt.Errorf("loading value of %s@%s: %w", t.Item, t.Version, fetchErr)
		events.Notify(c.bus, events.Error, err.Error())
		return err
	}
	c.version = t.Version
	c.value, c.hasValue = value, true
	c.revealed = false
	c.publish()
	events.RequestFocus(c.bus, events.PaneProperties)
	return nil
}

// ToggleReveal flips the visibility of the fetched value without refetching.
func (c *Chain) ToggleReveal() error {
	if !c.hasValue {
		return ErrNoVersion
	}
	c.revealed = !c.revealed
	c.publish()
	return nil
}

// Hide makes the value invisible again. It is a no-op when already hidden.
func (c *Chain) Hide() {
	if !c.revealed {
		return
	}
	c.revealed = false
	c.publish()
}

// ClearToSearch empties every slot, abandons pending fetches and asks for
// focus to return to the filter.
func (c *Chain) ClearToSearch() {
	c.itemSeq++
	c.versionSeq++
	c.itemPending = false
	c.versionPending = false
	c.item, c.hasItem = "", false
	c.dropVersion()
	c.publish()
	events.RequestFocus(c.bus, events.PaneFilter)
}

func (c *Chain) dropVersion() {
	c.version = ""
	c.value, c.hasValue = "", false
	c.revealed = false
}

func (c *Chain) publish() {
	events.Publish(c.bus, Changed{State: c.State(), Item: c.item, Version: c.version})
}
