package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvb/internal/events"
)

func built(t *testing.T, items ...string) *Index {
	t.Helper()
	ix := New()
	ix.Build(items)
	return ix
}

func TestSearchBeforeBuild(t *testing.T) {
	ix := New()
	_, err := ix.Search("db", 0)
	require.ErrorIs(t, err, ErrIndexNotBuilt)
	assert.False(t, ix.Built())
}

func TestSearchScenario(t *testing.T) {
	ix := built(t, "db-password", "db-password-backup", "api-key")

	res, err := ix.Search("db", 0)
	require.NoError(t, err)
	assert.Equal(t, Hits, res.Kind())
	assert.ElementsMatch(t, []string{"db-password", "db-password-backup"}, res.Keys())

	res, err = ix.Search("zzz", 0)
	require.NoError(t, err)
	assert.Equal(t, NoMatch, res.Kind())
	assert.True(t, res.IsNoMatch())
	assert.Nil(t, res.Keys())

	res, err = ix.Search("", 0)
	require.NoError(t, err)
	assert.Equal(t, NoFilter, res.Kind())
	assert.False(t, res.Active())
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	ix := built(t, "Storage-Account-KEY", "other")

	res, err := ix.Search("account-k", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Storage-Account-KEY"}, res.Keys(), "hits keep the original casing")

	res, err = ix.Search("ACCOUNT", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Storage-Account-KEY"}, res.Keys())
}

func TestSearchAcrossHyphens(t *testing.T) {
	ix := built(t, "service-bus-conn", "servicebus")

	res, err := ix.Search("e-b", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"service-bus-conn"}, res.Keys())

	res, err = ix.Search("ebus", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"servicebus"}, res.Keys())
}

func TestSearchEverySubstringMatches(t *testing.T) {
	keys := []string{"db-password", "db-password-backup", "api-key", "storage-conn-string"}
	ix := built(t, keys...)

	for _, k := range keys {
		for i := 0; i < len(k); i++ {
			for j := i + MinGram; j <= len(k); j++ {
				q := k[i:j]
				res, err := ix.Search(q, 0)
				require.NoError(t, err)
				require.Truef(t, res.Contains(k), "query %q should match %q", q, k)
			}
		}
	}
}

func TestSearchNoFalsePositivesFromBigrams(t *testing.T) {
	// "abxbc" holds both "ab" and "bc" but not "abc".
	ix := built(t, "abxbc")

	res, err := ix.Search("abc", 0)
	require.NoError(t, err)
	assert.Equal(t, NoMatch, res.Kind())
}

func TestSearchSingleRune(t *testing.T) {
	ix := built(t, "alpha", "beta", "gamma")

	res, err := ix.Search("b", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, res.Keys())

	res, err = ix.Search("q", 0)
	require.NoError(t, err)
	assert.True(t, res.IsNoMatch())
}

func TestSearchLongQuery(t *testing.T) {
	long := strings.Repeat("abcdefghij", 7) // 70 runes
	ix := built(t, long+"-tail", long[:60], "short")

	res, err := ix.Search(long, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{long + "-tail"}, res.Keys())

	res, err = ix.Search(long[5:65], 0)
	require.NoError(t, err)
	assert.Equal(t, []string{long + "-tail"}, res.Keys())
}

func TestSearchUnicodeKeys(t *testing.T) {
	ix := built(t, "café-crème", "cafe")

	res, err := ix.Search("fé-c", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"café-crème"}, res.Keys())

	res, err = ix.Search("CAF", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"café-crème", "cafe"}, res.Keys())
}

func TestSearchLimit(t *testing.T) {
	var items []string
	for i := 0; i < 10; i++ {
		items = append(items, fmt.Sprintf("key-%02d", i))
	}
	ix := built(t, items...)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unbounded", 0, 10},
		{"negative is unbounded", -1, 10},
		{"capped", 3, 3},
		{"above count", 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ix.Search("key", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Len())
		})
	}
}

func TestSearchOrderIsBuildOrder(t *testing.T) {
	ix := built(t, "zeta-db", "alpha-db", "mid-db")

	for i := 0; i < 3; i++ {
		res, err := ix.Search("db", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta-db", "alpha-db", "mid-db"}, res.Keys())
	}
}

func TestBuildReplacesPreviousIndex(t *testing.T) {
	ix := built(t, "db-password", "api-key")
	ix.Build([]string{"cache-key"})

	res, err := ix.Search("db", 0)
	require.NoError(t, err)
	assert.True(t, res.IsNoMatch())

	res, err = ix.Search("key", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache-key"}, res.Keys())
	assert.Equal(t, 1, ix.Len())
}

func TestBuildEmpty(t *testing.T) {
	ix := built(t)
	assert.True(t, ix.Built())

	res, err := ix.Search("db", 0)
	require.NoError(t, err)
	assert.True(t, res.IsNoMatch())

	res, err = ix.Search("", 0)
	require.NoError(t, err)
	assert.Equal(t, NoFilter, res.Kind())
}

func TestBuildSkipsDuplicates(t *testing.T) {
	ix := built(t, "a-key", "b-key", "a-key")
	assert.Equal(t, []string{"a-key", "b-key"}, ix.Keys())
}

func TestBuildPublishesRebuilt(t *testing.T) {
	bus := events.New()
	var got []int
	events.Subscribe(bus, func(e Rebuilt) { got = append(got, e.Count) })

	ix := New(WithBus(bus))
	ix.Build([]string{"a1", "b2"})
	ix.Build(nil)

	assert.Equal(t, []int{2, 0}, got)
}

func TestResultHelpers(t *testing.T) {
	var zero Result
	assert.Equal(t, NoFilter, zero.Kind())
	assert.Equal(t, 0, zero.Len())

	assert.Equal(t, NoMatch, HitsResult(nil).Kind())

	hits := HitsResult([]string{"a", "b"})
	keys := hits.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, hits.Keys(), "Keys returns a copy")
	assert.True(t, hits.Contains("b"))
	assert.False(t, hits.Contains("c"))

	assert.Equal(t, "hits", Hits.String())
	assert.Equal(t, "no-match", NoMatch.String())
	assert.Equal(t, "no-filter", NoFilter.String())
}
