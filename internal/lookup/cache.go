package lookup

import (
	"github.com/rs/zerolog"

	"github.com/snarg/clipcast/internal/metrics"
)

// Result of a lookup: a resource reference or an explicit absence.
type Result struct {
	Ref   string
	Found bool
}

// Cache memoizes lookup outcomes keyed by the exact query string. One cache
// serves one provider instance handling one logical request at a time, so
// there is no locking. Entries are never evicted; the cache lives and dies
// with its instance.
type Cache struct {
	entries map[string]Result
	log     zerolog.Logger
}

func NewCache(log zerolog.Logger) *Cache {
	return &Cache{entries: make(map[string]Result), log: log}
}

// Seed stores an outcome directly, bypassing fn. Used by tests to pre-warm.
func (c *Cache) Seed(query string, res Result) {
	c.entries[query] = res
}

// Len reports the number of memoized queries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// GetOrLookup returns the memoized outcome for query, invoking fn at most
// once per distinct query for the cache lifetime. Found and not-found
// outcomes are both stored. An error from fn propagates unstored, so a later
// call with the same query tries again.
func (c *Cache) GetOrLookup(query string, fn func(string) (Result, error)) (Result, error) {
	if res, ok := c.entries[query]; ok {
		metrics.LookupsTotal.WithLabelValues("hit").Inc()
		c.log.Debug().Str("query", query).Bool("found", res.Found).Msg("lookup cache hit")
		return res, nil
	}

	metrics.LookupsTotal.WithLabelValues("miss").Inc()
	res, err := fn(query)
	if err != nil {
		return Result{}, err
	}
	c.entries[query] = res
	return res, nil
}

// First tries queries in order through the cache, stopping at the first
// found outcome. A clean miss moves on to the next query; an error aborts
// the walk. The zero Result means every query came up empty.
func (c *Cache) First(queries []string, fn func(string) (Result, error)) (Result, error) {
	for _, q := range queries {
		res, err := c.GetOrLookup(q, fn)
		if err != nil {
			return Result{}, err
		}
		if res.Found {
			return res, nil
		}
	}
	return Result{}, nil
}
