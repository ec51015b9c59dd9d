// Package search implements the in-memory ngram index used to filter secret
// names as the user types.
//
// Every key is lower-cased and decomposed into all of its contiguous
// fragments between MinGram and MaxGram runes. A query up to MaxGram runes is
// a single map lookup; longer queries use their leading MaxGram fragment to
// find candidates and confirm containment on the normalized key.
package search

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/oakwood-commons/kvb/internal/events"
)

const (
	// MinGram is the shortest indexed fragment.
	MinGram = 2
	// MaxGram is the longest indexed fragment.
	MaxGram = 50
)

// ErrIndexNotBuilt is returned by Search before the first Build.
var ErrIndexNotBuilt = errors.New("search: index not built")

// Rebuilt is published after every Build.
type Rebuilt struct {
	Count int
}

// Index maps name fragments to the keys containing them.
type Index struct {
	keys  []string
	norm  []string
	grams map[string][]int
	built bool
	bus   *events.Bus
}

// Option configures an Index.
type Option func(*Index)

// WithBus publishes Rebuilt events on b.
func WithBus(b *events.Bus) Option {
	return func(ix *Index) { ix.bus = b }
}

// New returns an empty, unbuilt index.
func New(opts ...Option) *Index {
	ix := &Index{}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// Build replaces the index with one over items. Duplicate keys keep their
// first position. An empty slice yields an index that matches nothing.
func (ix *Index) Build(items []string) {
	keys := make([]string, 0, len(items))
	norm := make([]string, 0, len(items))
	grams := make(map[string][]int)
	seen := make(map[string]struct{}, len(items))

	for _, key := range items {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ord := len(keys)
		lower := strings.ToLower(key)
		keys = append(keys, key)
		norm = append(norm, lower)
		addFragments(grams, lower, ord)
	}

	ix.keys = keys
	ix.norm = norm
	ix.grams = grams
	ix.built = true

	events.Publish(ix.bus, Rebuilt{Count: len(keys)})
}

// addFragments indexes every MinGram..MaxGram rune window of s under ord.
// Postings stay sorted because ordinals are added in increasing order.
func addFragments(grams map[string][]int, s string, ord int) {
	offsets := runeOffsets(s)
	n := len(offsets) - 1
	for start := 0; start < n; start++ {
		for size := MinGram; size <= MaxGram && start+size <= n; size++ {
			frag := s[offsets[start]:offsets[start+size]]
			post := grams[frag]
			if len(post) > 0 && post[len(post)-1] == ord {
				continue
			}
			grams[frag] = append(post, ord)
		}
	}
}

// runeOffsets returns the byte offset of every rune in s plus len(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// Built reports whether Build has been called.
func (ix *Index) Built() bool { return ix.built }

// Len is the number of indexed keys.
func (ix *Index) Len() int { return len(ix.keys) }

// Keys returns the indexed keys in build order.
func (ix *Index) Keys() []string {
	out := make([]string, len(ix.keys))
	copy(out, ix.keys)
	return out
}

// Search returns the keys whose normalized form contains query.
// limit caps the number of hits; zero or negative means unbounded.
func (ix *Index) Search(query string, limit int) (Result, error) {
	if !ix.built {
		return Result{}, ErrIndexNotBuilt
	}
	q := strings.ToLower(query)
	if q == "" {
		return NoFilterResult(), nil
	}

	var ords []int
	switch n := utf8.RuneCountInString(q); {
	case n < MinGram:
		ords = ix.scan(q)
	case n <= MaxGram:
		ords = ix.grams[q]
	default:
		lead := q[:runeOffsets(q)[MaxGram]]
		for _, ord := range ix.grams[lead] {
			if strings.Contains(ix.norm[ord], q) {
				ords = append(ords, ord)
			}
		}
	}

	if len(ords) == 0 {
		return NoMatchResult(), nil
	}
	if limit > 0 && len(ords) > limit {
		ords = ords[:limit]
	}
	hits := make([]string, len(ords))
	for i, ord := range ords {
		hits[i] = ix.keys[ord]
	}
	return HitsResult(hits), nil
}

// scan handles queries shorter than MinGram, which have no fragment entry.
func (ix *Index) scan(q string) []int {
	var ords []int
	for ord, s := range ix.norm {
		if strings.Contains(s, q) {
			ords = append(ords, ord)
		}
	}
	return ords
}
