package suggest

import (
	"sort"

	"github.com/bastiangx/contextserve/pkg/automaton"
)

// DefaultLimit is the result cap used when callers pass limit <= 0.
const DefaultLimit = 10

// defaultCacheEntries bounds the per-searcher query cache.
const defaultCacheEntries = 256

// Searcher executes queries against an index. Repeated queries are
// served from an LRU cache that is invalidated by index mutations.
type Searcher struct {
	index     *Index
	workLimit int
	cache     *QueryCache
}

// NewSearcher wraps index. workLimit bounds automaton determinization
// per query; <= 0 selects automaton.DefaultWorkLimit.
func NewSearcher(index *Index, workLimit int) *Searcher {
	if workLimit <= 0 {
		workLimit = automaton.DefaultWorkLimit
	}
	return &Searcher{
		index:     index,
		workLimit: workLimit,
		cache:     NewQueryCache(defaultCacheEntries),
	}
}

// CacheStats reports query cache occupancy and hit counts.
func (s *Searcher) CacheStats() map[string]int {
	return s.cache.Stats()
}

// Suggest runs q and returns at most limit results, best first.
// Ordering is score descending with ties broken by text, then context,
// so identical searches return identical slices.
//
// Queries other than ContextQuery match suggestion text only; they are
// wrapped in an unrestricted ContextQuery here so their automaton
// speaks the full key encoding and their results still report each
// entry's context tag.
func (s *Searcher) Suggest(q Query, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if _, ok := q.(*ContextQuery); !ok {
		wrapped, err := NewContextQuery(q)
		if err != nil {
			return nil, err
		}
		q = wrapped
	}

	gen := s.index.generation()
	key := cacheKey(q, limit)
	if cached, ok := s.cache.Get(key, gen); ok {
		return cached, nil
	}

	w, err := q.CreateWeight(s.workLimit)
	if err != nil {
		return nil, err
	}
	dfa := w.Automaton()
	if automaton.IsEmpty(dfa) {
		s.cache.Put(key, gen, nil)
		return nil, nil
	}

	var results []Result
	err = s.index.walk(dfa.CommonPrefix(), func(key []byte, e Entry) error {
		st := dfa.Run(key)
		if !dfa.IsAccept(st) {
			return nil
		}
		w.SetNextMatch(key)
		ctx, _ := w.Context()
		results = append(results, Result{
			Text:    e.Text,
			Context: ctx,
			Weight:  e.Weight,
			Score:   score(e.Weight, w.Boost()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Text != results[j].Text {
			return results[i].Text < results[j].Text
		}
		return results[i].Context < results[j].Context
	})
	if len(results) > limit {
		results = results[:limit]
	}
	s.cache.Put(key, gen, results)
	return results, nil
}

// score combines an entry weight with a query boost. Zero boost means
// the raw weight stands.
func score(weight int64, boost float64) float64 {
	if boost == 0 {
		return float64(weight)
	}
	return float64(weight) * boost
}
