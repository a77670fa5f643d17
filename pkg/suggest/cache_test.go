package suggest

import (
	"testing"
)

func TestQueryCacheServesRepeats(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	first, err := s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	second, err := s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, second, first)

	stats := s.CacheStats()
	if stats["cacheHits"] == 0 {
		t.Errorf("Expected at least one cache hit, stats %v", stats)
	}
	if stats["cachedQueries"] == 0 {
		t.Errorf("Expected cached queries, stats %v", stats)
	}
}

func TestQueryCacheInvalidatedByIndexChanges(t *testing.T) {
	ix := buildTestIndex(t)
	s := NewSearcher(ix, 0)

	got, err := s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 results before insert, got %d", len(got))
	}

	if err := ix.Add("nba trades", 95, "news"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err = s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Score: 100},
		{Text: "nba trades", Context: "news", Score: 95},
		{Text: "nba draft", Context: "sports", Score: 80},
		{Text: "nba finals schedule", Context: "news", Score: 60},
		{Text: "nba finals", Context: "archive", Score: 50},
	})
}

// Filter mode and match-all mode render the same String, so the cache
// key must fold the mode in or the second query would be served the
// first one's results.
func TestQueryCacheDistinguishesMatchAll(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	filtered := mustContextQuery(t, NewPrefixQuery("n"))
	addContext(t, filtered, "sports", 2, true)

	got, err := s.Suggest(filtered, 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Score: 200},
		{Text: "nba draft", Context: "sports", Score: 160},
	})

	matchAll := mustContextQuery(t, NewPrefixQuery("n"))
	addContext(t, matchAll, "sports", 2, true)
	matchAll.AddAllContexts()

	got, err = s.Suggest(matchAll, 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Score: 200},
		{Text: "nba draft", Context: "sports", Score: 160},
		{Text: "nobel prize", Context: "news", Score: 90},
		{Text: "nba finals schedule", Context: "news", Score: 60},
		{Text: "nba finals", Context: "archive", Score: 50},
	})
}

func TestQueryCacheCachesEmptyResults(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	for i := 0; i < 2; i++ {
		got, err := s.Suggest(NewPrefixQuery("zzz"), 10)
		if err != nil {
			t.Fatalf("Suggest failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("Expected no results, got %v", got)
		}
	}
	if stats := s.CacheStats(); stats["cacheHits"] == 0 {
		t.Errorf("Expected the repeat to hit the cache, stats %v", stats)
	}
}

func TestQueryCacheLRUEviction(t *testing.T) {
	qc := NewQueryCache(2)
	a := []Result{{Text: "a"}}
	b := []Result{{Text: "b"}}
	c := []Result{{Text: "c"}}

	qc.Put("qa", 0, a)
	qc.Put("qb", 0, b)

	// Freshen qa so qb is the eviction candidate
	if _, ok := qc.Get("qa", 0); !ok {
		t.Fatal("Expected qa cached")
	}

	qc.Put("qc", 0, c)

	if _, ok := qc.Get("qb", 0); ok {
		t.Error("Expected qb evicted")
	}
	if got, ok := qc.Get("qa", 0); !ok || got[0].Text != "a" {
		t.Errorf("Expected qa to survive, got %v ok=%t", got, ok)
	}
	if got, ok := qc.Get("qc", 0); !ok || got[0].Text != "c" {
		t.Errorf("Expected qc cached, got %v ok=%t", got, ok)
	}
}

func TestQueryCacheGenerationRules(t *testing.T) {
	qc := NewQueryCache(4)
	old := []Result{{Text: "old"}}
	fresh := []Result{{Text: "fresh"}}

	qc.Put("q", 1, old)
	if _, ok := qc.Get("q", 1); !ok {
		t.Fatal("Expected hit at generation 1")
	}

	// A reader ahead of the cache purges it forward
	if _, ok := qc.Get("q", 2); ok {
		t.Error("Expected miss after generation moved")
	}

	// Writes tagged with a generation the cache moved past are dropped
	qc.Put("q", 1, old)
	if _, ok := qc.Get("q", 2); ok {
		t.Error("Expected stale write to be dropped")
	}

	qc.Put("q", 2, fresh)
	got, ok := qc.Get("q", 2)
	if !ok || got[0].Text != "fresh" {
		t.Errorf("Expected fresh results at generation 2, got %v ok=%t", got, ok)
	}
}
