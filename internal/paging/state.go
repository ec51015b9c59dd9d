// Package paging tracks the page and row cursor of a list view.
//
// A State never holds an out-of-range position: every operation clamps
// page to [1, PageCount] and row to the items on the current page.
package paging

import "github.com/oakwood-commons/kvb/internal/events"

// DefaultPageSize is used until the view reports its height.
const DefaultPageSize = 10

// Changed is published after any operation that moves the cursor or changes
// the shape of the list.
type Changed struct {
	Name     string
	Page     int
	Row      int
	PageSize int
	Total    int
}

// State is the pagination cursor of one list.
type State struct {
	name     string
	bus      *events.Bus
	page     int
	row      int
	pageSize int
	total    int
}

// Option configures a State.
type Option func(*State)

// WithBus publishes Changed events tagged with name on b.
func WithBus(b *events.Bus, name string) Option {
	return func(s *State) {
		s.bus = b
		s.name = name
	}
}

// New returns a State over total items, pageSize per page.
func New(total, pageSize int, opts ...Option) *State {
	s := &State{page: 1}
	for _, o := range opts {
		o(s)
	}
	s.total, s.pageSize = sanitize(total, pageSize)
	s.clamp()
	return s
}

func sanitize(total, pageSize int) (int, int) {
	if total < 0 {
		total = 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return total, pageSize
}

// Page is the 1-based current page.
func (s *State) Page() int { return s.page }

// Row is the 0-based row on the current page.
func (s *State) Row() int { return s.row }

// PageSize is the number of rows per page.
func (s *State) PageSize() int { return s.pageSize }

// Total is the number of items being paged.
func (s *State) Total() int { return s.total }

// PageCount is max(1, ceil(total/pageSize)).
func (s *State) PageCount() int {
	n := (s.total + s.pageSize - 1) / s.pageSize
	if n < 1 {
		return 1
	}
	return n
}

// Bounds returns the half-open item range of the current page.
func (s *State) Bounds() (start, end int) {
	start = (s.page - 1) * s.pageSize
	end = start + s.pageSize
	if end > s.total {
		end = s.total
	}
	if start > end {
		start = end
	}
	return start, end
}

// OnPage is the number of items visible on the current page.
func (s *State) OnPage() int {
	start, end := s.Bounds()
	return end - start
}

// ActiveIndex is the absolute index of the selected item. It reports false
// when the current page is empty.
func (s *State) ActiveIndex() (int, bool) {
	if s.OnPage() == 0 {
		return 0, false
	}
	start, _ := s.Bounds()
	return start + s.row, true
}

func (s *State) NextPage() { s.moveTo(s.page+1, s.row) }
func (s *State) PrevPage() { s.moveTo(s.page-1, s.row) }

func (s *State) FirstPage() { s.moveTo(1, s.row) }
func (s *State) LastPage()  { s.moveTo(s.PageCount(), s.row) }

func (s *State) NextRow() { s.moveTo(s.page, s.row+1) }
func (s *State) PrevRow() { s.moveTo(s.page, s.row-1) }

// SetRow moves the cursor to row on the current page, clamped.
func (s *State) SetRow(row int) { s.moveTo(s.page, row) }

// Reset recomputes the shape for a list of total items and clamps the cursor.
// The page and row are kept when still valid.
func (s *State) Reset(total, pageSize int) {
	s.total, s.pageSize = sanitize(total, pageSize)
	s.clamp()
	s.publish()
}

// Resize changes the page size, keeping the selected item in view.
func (s *State) Resize(pageSize int) {
	idx, ok := s.ActiveIndex()
	_, s.pageSize = sanitize(s.total, pageSize)
	if ok {
		s.page = idx/s.pageSize + 1
		s.row = idx % s.pageSize
	}
	s.clamp()
	s.publish()
}

// Rewind resets to page 1 row 0 over total items. Use it when the item set
// changes identity, not only size.
func (s *State) Rewind(total int) {
	s.total, _ = sanitize(total, s.pageSize)
	s.page, s.row = 1, 0
	s.clamp()
	s.publish()
}

func (s *State) moveTo(page, row int) {
	oldPage, oldRow := s.page, s.row
	s.page, s.row = page, row
	s.clamp()
	if s.page != oldPage || s.row != oldRow {
		s.publish()
	}
}

func (s *State) clamp() {
	if pc := s.PageCount(); s.page > pc {
		s.page = pc
	}
	if s.page < 1 {
		s.page = 1
	}
	if n := s.OnPage(); s.row >= n {
		s.row = n - 1
	}
	if s.row < 0 {
		s.row = 0
	}
}

func (s *State) publish() {
	events.Publish(s.bus, Changed{
		Name:     s.name,
		Page:     s.page,
		Row:      s.row,
		PageSize: s.pageSize,
		Total:    s.total,
	})
}

// Slice returns the items on the current page.
func Slice[T any](s *State, items []T) []T {
	start, end := s.Bounds()
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		return nil
	}
	return items[start:end]
}

// Active returns the selected item, or false when the page is empty.
func Active[T any](s *State, items []T) (T, bool) {
	var zero T
	idx, ok := s.ActiveIndex()
	if !ok || idx >= len(items) {
		return zero, false
	}
	return items[idx], true
}
