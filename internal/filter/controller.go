// Package filter holds the editable query buffer behind the filter box and
// decides when an edit re-queries the search index.
//
// The thresholds are asymmetric: an insertion always searches, while a
// deletion only searches when more than one rune remains. Deleting down to a
// single rune clears the result instead, so the list is not flooded with
// near-universal single-character matches.
package filter

import (
	"fmt"

	"github.com/oakwood-commons/kvb/internal/events"
	"github.com/oakwood-commons/kvb/internal/search"
)

// MissingQueryMessage is the warning shown when an empty filter is submitted.
const MissingQueryMessage = "No search term specified. Please enter a search term."

// Searcher is the subset of the search index the controller needs.
type Searcher interface {
	Search(query string, limit int) (search.Result, error)
}

// Changed is published whenever the result of the filter changes.
type Changed struct {
	Query  string
	Result search.Result
}

// Outcome is what Submit decided.
type Outcome int

const (
	// MissingQuery means the buffer was empty.
	MissingQuery Outcome = iota
	// NoResults means the last search matched nothing.
	NoResults
	// Advance means focus moves to the results list.
	Advance
)

// Controller owns the query buffer, the cursor and the last search result.
type Controller struct {
	index  Searcher
	bus    *events.Bus
	limit  int
	buffer []rune
	cursor int
	result search.Result
	valid  bool
	err    error
}

// New returns an empty controller querying index and publishing on bus.
func New(index Searcher, bus *events.Bus) *Controller {
	return &Controller{index: index, bus: bus, valid: true}
}

// SetLimit caps the number of hits per search. Zero means unbounded.
func (c *Controller) SetLimit(limit int) { c.limit = limit }

// Value returns the buffer contents.
func (c *Controller) Value() string { return string(c.buffer) }

// Len is the buffer length in runes.
func (c *Controller) Len() int { return len(c.buffer) }

// Cursor is the insertion point, in runes.
func (c *Controller) Cursor() int { return c.cursor }

// Result is the outcome of the last search, NoFilter when none is active.
func (c *Controller) Result() search.Result { return c.result }

// Valid is false exactly when the last search matched nothing.
func (c *Controller) Valid() bool { return c.valid }

// Err returns the error from the last search attempt, if any. The result is
// left untouched when the index is unavailable.
func (c *Controller) Err() error { return c.err }

// Insert types r at the cursor and re-queries.
func (c *Controller) Insert(r rune) {
	c.buffer = append(c.buffer, 0)
	copy(c.buffer[c.cursor+1:], c.buffer[c.cursor:])
	c.buffer[c.cursor] = r
	if c.cursor < len(c.buffer) {
		c.cursor++
	}
	c.query()
}

// InsertString types every rune of s, one edit per rune.
func (c *Controller) InsertString(s string) {
	for _, r := range s {
		c.Insert(r)
	}
}

// Backspace removes the rune before the cursor.
func (c *Controller) Backspace() {
	if c.cursor == 0 {
		return
	}
	c.buffer = append(c.buffer[:c.cursor-1], c.buffer[c.cursor:]...)
	c.cursor--
	c.afterDelete()
}

// DeleteForward removes the rune under the cursor.
func (c *Controller) DeleteForward() {
	if c.cursor >= len(c.buffer) {
		return
	}
	c.buffer = append(c.buffer[:c.cursor], c.buffer[c.cursor+1:]...)
	c.afterDelete()
}

func (c *Controller) afterDelete() {
	if len(c.buffer) > 1 {
		c.query()
		return
	}
	c.setResult(search.NoFilterResult())
}

// MoveLeft moves the cursor one rune left.
func (c *Controller) MoveLeft() {
	if c.cursor > 0 {
		c.cursor--
	}
}

// MoveRight moves the cursor one rune right.
func (c *Controller) MoveRight() {
	if c.cursor < len(c.buffer) {
		c.cursor++
	}
}

// MoveHome moves the cursor to the start of the buffer.
func (c *Controller) MoveHome() { c.cursor = 0 }

// MoveEnd moves the cursor past the last rune.
func (c *Controller) MoveEnd() { c.cursor = len(c.buffer) }

// Clear empties the buffer and drops any active result.
func (c *Controller) Clear() {
	c.buffer = c.buffer[:0]
	c.cursor = 0
	c.setResult(search.NoFilterResult())
}

// Refresh re-runs the current buffer against the index, e.g. after a rebuild.
func (c *Controller) Refresh() {
	if len(c.buffer) == 0 {
		c.setResult(search.NoFilterResult())
		return
	}
	c.query()
}

// Submit validates the buffer and signals what should happen next.
func (c *Controller) Submit() Outcome {
	switch {
	case len(c.buffer) == 0:
		events.Notify(c.bus, events.Warning, MissingQueryMessage)
		return MissingQuery
	case c.result.IsNoMatch():
		events.Notify(c.bus, events.Error, NoResultsMessage(c.Value()))
		return NoResults
	default:
		events.RequestFocus(c.bus, events.PaneSecrets)
		return Advance
	}
}

// NoResultsMessage is the error shown when a query with no hits is submitted.
func NoResultsMessage(query string) string {
	return fmt.Sprintf("No results found for \"%s\".", query)
}

func (c *Controller) query() {
	if c.index == nil {
		return
	}
	res, err := c.index.Search(string(c.buffer), c.limit)
	c.err = err
	if err != nil {
		return
	}
	c.setResult(res)
}

func (c *Controller) setResult(res search.Result) {
	c.result = res
	c.valid = !res.IsNoMatch()
	events.Publish(c.bus, Changed{Query: c.Value(), Result: res})
}
