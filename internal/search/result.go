package search

// Kind tags a Result.
type Kind int

const (
	// NoFilter means no query is active; callers show every item.
	NoFilter Kind = iota
	// Hits means the query matched at least one key.
	Hits
	// NoMatch means a non-empty query matched nothing.
	NoMatch
)

func (k Kind) String() string {
	switch k {
	case Hits:
		return "hits"
	case NoMatch:
		return "no-match"
	default:
		return "no-filter"
	}
}

// Result is the outcome of a query: NoFilter, Hits(keys) or NoMatch.
// The zero value is NoFilter.
type Result struct {
	kind Kind
	keys []string
}

// NoFilterResult is the result of an empty query.
func NoFilterResult() Result { return Result{kind: NoFilter} }

// NoMatchResult is the result of a query with zero hits.
func NoMatchResult() Result { return Result{kind: NoMatch} }

// HitsResult wraps matched keys. An empty slice yields NoMatch.
func HitsResult(keys []string) Result {
	if len(keys) == 0 {
		return NoMatchResult()
	}
	return Result{kind: Hits, keys: keys}
}

// Kind returns the result tag.
func (r Result) Kind() Kind { return r.kind }

// Keys returns the matched keys in index order. It is nil unless Kind is Hits.
func (r Result) Keys() []string {
	if r.kind != Hits {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len is the number of hits.
func (r Result) Len() int {
	if r.kind != Hits {
		return 0
	}
	return len(r.keys)
}

// Contains reports whether key is among the hits.
func (r Result) Contains(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

// IsNoMatch reports whether the query ran and matched nothing.
func (r Result) IsNoMatch() bool { return r.kind == NoMatch }

// Active reports whether the result narrows the item set.
func (r Result) Active() bool { return r.kind == Hits }
