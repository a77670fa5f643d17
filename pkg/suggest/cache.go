package suggest

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// QueryCache keeps recent search results keyed by query rendering and
// limit. Editor clients re-send the same prefix many times while a user
// types; serving repeats from here skips recompiling and re-running the
// automaton. Entries are dropped least-recently-used, and the whole
// cache turns over when the index generation moves.
//
// Cached slices are shared with callers and must not be mutated.
type QueryCache struct {
	results     map[string][]Result
	accessTime  map[string]int64
	accessCount int64
	generation  uint64
	maxEntries  int
	hits        int64
	misses      int64
	mu          sync.Mutex
}

func NewQueryCache(maxEntries int) *QueryCache {
	return &QueryCache{
		results:    make(map[string][]Result, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// cacheKey renders a query and limit into a lookup key. Match-all mode
// does not show up in String(), so it is folded in here.
func cacheKey(q Query, limit int) string {
	key := q.String()
	if cq, ok := q.(*ContextQuery); ok && cq.matchAll {
		key += "|all"
	}
	return fmt.Sprintf("%s|%d", key, limit)
}

// Get returns the cached results for key computed at the given index
// generation. A generation ahead of the cache purges it; a stale caller
// generation is just a miss.
func (qc *QueryCache) Get(key string, generation uint64) ([]Result, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if generation != qc.generation {
		if generation > qc.generation {
			qc.purgeLocked(generation)
		}
		qc.misses++
		return nil, false
	}

	results, ok := qc.results[key]
	if !ok {
		qc.misses++
		return nil, false
	}

	qc.hits++
	qc.accessCount++
	qc.accessTime[key] = qc.accessCount
	return results, true
}

// Put stores results computed at the given index generation. Results
// from a generation the cache has already moved past are dropped.
func (qc *QueryCache) Put(key string, generation uint64, results []Result) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if generation != qc.generation {
		if generation < qc.generation {
			return
		}
		qc.purgeLocked(generation)
	}

	if _, ok := qc.results[key]; !ok && len(qc.results) >= qc.maxEntries {
		qc.evictLRULocked()
	}

	qc.results[key] = results
	qc.accessCount++
	qc.accessTime[key] = qc.accessCount
}

func (qc *QueryCache) Stats() map[string]int {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	return map[string]int{
		"cachedQueries": len(qc.results),
		"maxEntries":    qc.maxEntries,
		"cacheHits":     int(qc.hits),
		"cacheMisses":   int(qc.misses),
	}
}

func (qc *QueryCache) purgeLocked(generation uint64) {
	qc.results = make(map[string][]Result, qc.maxEntries)
	qc.accessTime = make(map[string]int64, qc.maxEntries)
	qc.generation = generation
	log.Debugf("Query cache purged at index generation %d", generation)
}

func (qc *QueryCache) evictLRULocked() {
	var oldestKey string
	var oldestTime int64 = 9223372036854775807

	for key, accessTime := range qc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(qc.results, oldestKey)
		delete(qc.accessTime, oldestKey)
		log.Debugf("Evicted query %q from cache", oldestKey)
	}
}
