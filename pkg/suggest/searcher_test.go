package suggest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bastiangx/contextserve/pkg/automaton"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex()
	entries := []struct {
		text     string
		weight   int64
		contexts []string
	}{
		{"nba finals", 100, []string{"sports"}},
		{"nba draft", 80, []string{"sports"}},
		{"nba finals schedule", 60, []string{"news"}},
		{"nobel prize", 90, []string{"news"}},
		{"nba finals", 50, []string{"archive"}},
		{"weather today", 70, nil},
	}
	for _, e := range entries {
		if err := ix.Add(e.text, e.weight, e.contexts...); err != nil {
			t.Fatalf("Add(%q) failed: %v", e.text, err)
		}
	}
	return ix
}

func assertResults(t *testing.T, got []Result, want []Result) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d results, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Text != want[i].Text || got[i].Context != want[i].Context || got[i].Score != want[i].Score {
			t.Errorf("Result %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSuggestPlainPrefix(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	got, err := s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Weight: 100, Score: 100},
		{Text: "nba draft", Context: "sports", Weight: 80, Score: 80},
		{Text: "nba finals schedule", Context: "news", Weight: 60, Score: 60},
		{Text: "nba finals", Context: "archive", Weight: 50, Score: 50},
	})
}

func TestSuggestEmptyPrefixReturnsEverything(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	got, err := s.Suggest(NewPrefixQuery(""), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("Expected all 6 keys, got %d", len(got))
	}
	if got[0].Text != "nba finals" || got[0].Score != 100 {
		t.Errorf("Expected the heaviest entry first, got %+v", got[0])
	}
}

func TestSuggestContextFilter(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	q := mustContextQuery(t, NewPrefixQuery("nba"))
	addContext(t, q, "sports", 1, true)

	got, err := s.Suggest(q, 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Weight: 100, Score: 100},
		{Text: "nba draft", Context: "sports", Weight: 80, Score: 80},
	})
}

func TestSuggestContextBoostReorders(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	q := mustContextQuery(t, NewPrefixQuery("nba"))
	addContext(t, q, "sports", 1, true)
	addContext(t, q, "news", 2, true)

	got, err := s.Suggest(q, 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals schedule", Context: "news", Weight: 60, Score: 120},
		{Text: "nba finals", Context: "sports", Weight: 100, Score: 100},
		{Text: "nba draft", Context: "sports", Weight: 80, Score: 80},
	})
}

func TestSuggestMatchAllKeepsBoosting(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	q := mustContextQuery(t, NewPrefixQuery("nba"))
	addContext(t, q, "sports", 3, true)
	q.AddAllContexts()

	got, err := s.Suggest(q, 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Weight: 100, Score: 300},
		{Text: "nba draft", Context: "sports", Weight: 80, Score: 240},
		{Text: "nba finals schedule", Context: "news", Weight: 60, Score: 60},
		{Text: "nba finals", Context: "archive", Weight: 50, Score: 50},
	})
}

func TestSuggestNoContextEntry(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	got, err := s.Suggest(NewPrefixQuery("weather"), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "weather today", Context: "", Weight: 70, Score: 70},
	})
}

func TestSuggestLimit(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	got, err := s.Suggest(NewPrefixQuery("nba"), 2)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got))
	}
	if got[0].Score != 100 || got[1].Score != 80 {
		t.Errorf("Truncation should keep the best results, got %v", got)
	}

	got, err = s.Suggest(NewPrefixQuery("nba"), 0)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("Zero limit should fall back to the default, got %d results", len(got))
	}
}

func TestSuggestFuzzy(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	got, err := s.Suggest(NewFuzzyQuery("nbq", 1, 0), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Weight: 100, Score: 200},
		{Text: "nba draft", Context: "sports", Weight: 80, Score: 160},
		{Text: "nba finals schedule", Context: "news", Weight: 60, Score: 120},
		{Text: "nba finals", Context: "archive", Weight: 50, Score: 100},
	})
}

func TestSuggestGapEncodedEntry(t *testing.T) {
	ix := buildTestIndex(t)
	key, err := EncodeKey("sports", "playoffs", true)
	if err != nil {
		t.Fatalf("EncodeKey failed: %v", err)
	}
	ix.Put(key, "playoffs", 40)
	s := NewSearcher(ix, 0)

	q := mustContextQuery(t, NewPrefixQuery("play"))
	addContext(t, q, "sports", 1, true)

	got, err := s.Suggest(q, 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	assertResults(t, got, []Result{
		{Text: "playoffs", Context: "sports", Weight: 40, Score: 40},
	})
}

func TestSuggestEmptyInnerQuery(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 0)

	got, err := s.Suggest(newRecordingQuery(automaton.MakeEmpty()), 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if got != nil {
		t.Errorf("Empty inner automaton should short-circuit to no results, got %v", got)
	}
}

func TestSuggestWorkLimitSurfaces(t *testing.T) {
	s := NewSearcher(buildTestIndex(t), 5)

	q := mustContextQuery(t, NewPrefixQuery("nba"))
	for i := 0; i < 100; i++ {
		addContext(t, q, fmt.Sprintf("context%03d", i), 1, false)
	}

	_, err := s.Suggest(q, 10)
	if !errors.Is(err, automaton.ErrWorkLimitExceeded) {
		t.Fatalf("Expected ErrWorkLimitExceeded, got %v", err)
	}
}

func TestIndexAddValidation(t *testing.T) {
	ix := NewIndex()

	if err := ix.Add("hello", 10, "good", "ba\x1dd"); !errors.Is(err, ErrReservedByte) {
		t.Errorf("Expected ErrReservedByte, got %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("Failed Add should leave no partial keys, got %d", ix.Len())
	}
	if err := ix.Add("", 10); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
	if err := ix.Add("bad\x1ftext", 10); !errors.Is(err, ErrReservedByte) {
		t.Errorf("Expected ErrReservedByte, got %v", err)
	}
}

func TestIndexOverwriteAndClear(t *testing.T) {
	ix := NewIndex()
	if err := ix.Add("nba finals", 100, "sports"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Add("nba finals", 40, "sports"); err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 1 {
		t.Fatalf("Overwrite should not grow the index, got %d", ix.Len())
	}

	s := NewSearcher(ix, 0)
	got, err := s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatal(err)
	}
	assertResults(t, got, []Result{
		{Text: "nba finals", Context: "sports", Weight: 40, Score: 40},
	})

	ix.Clear()
	if ix.Len() != 0 {
		t.Errorf("Clear should empty the index, got %d", ix.Len())
	}
	got, err = s.Suggest(NewPrefixQuery("nba"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Cleared index should return nothing, got %v", got)
	}
}

func TestEncodeKey(t *testing.T) {
	testCases := []struct {
		context     string
		text        string
		leadingGap  bool
		want        string
		wantErr     error
		description string
	}{
		{"sports", "nba", false, "sports\x1dnba", nil, "Plain key"},
		{"", "nba", false, "\x1dnba", nil, "No context"},
		{"sports", "nba", true, "sports\x1d\x1fnba", nil, "Leading gap"},
		{"spo\x1drts", "nba", false, "", ErrReservedByte, "Reserved byte in context"},
		{"sports", "n\x1eba", false, "", ErrReservedByte, "Reserved byte in text"},
		{"sports", "", false, "", ErrEmptyText, "Empty text"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			key, err := EncodeKey(tc.context, tc.text, tc.leadingGap)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeKey failed: %v", err)
			}
			if string(key) != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, key)
			}
		})
	}
}

func BenchmarkSuggest(b *testing.B) {
	ix := NewIndex()
	contexts := []string{"sports", "news", "archive", "local", "tech"}
	for i := 0; i < 500; i++ {
		text := fmt.Sprintf("word%03d entry", i)
		if err := ix.Add(text, int64(i), contexts[i%len(contexts)]); err != nil {
			b.Fatal(err)
		}
	}
	s := NewSearcher(ix, 0)
	q, err := NewContextQuery(NewPrefixQuery("word1"))
	if err != nil {
		b.Fatal(err)
	}
	if err := q.AddContext("sports", 2, true); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Suggest(q, 10); err != nil {
			b.Fatal(err)
		}
	}
}
