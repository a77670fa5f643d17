package suggest

import (
	"fmt"

	"github.com/bastiangx/contextserve/pkg/automaton"
)

const (
	// MaxFuzzyEdits caps the edit radius. Radii past two explode the
	// determinized state space without finding better suggestions.
	MaxFuzzyEdits = 2

	// DefaultFuzzyMinLength is the shortest term that gets fuzzed at
	// all; shorter terms drown in false positives and fall back to
	// exact prefix matching.
	DefaultFuzzyMinLength = 3
)

// FuzzyQuery matches suggestions whose text starts with something
// within maxEdits byte edits (insert, delete, substitute) of the term.
// Closer matches get a higher boost: the boost is the length of the
// common prefix between the term and the matched text, so exact
// continuations outrank corrected ones.
type FuzzyQuery struct {
	term      string
	maxEdits  int
	minLength int
}

// NewFuzzyQuery builds a fuzzy query. maxEdits is clamped to
// [0, MaxFuzzyEdits]; minLength <= 0 selects DefaultFuzzyMinLength.
func NewFuzzyQuery(term string, maxEdits, minLength int) *FuzzyQuery {
	if maxEdits < 0 {
		maxEdits = 0
	}
	if maxEdits > MaxFuzzyEdits {
		maxEdits = MaxFuzzyEdits
	}
	if minLength <= 0 {
		minLength = DefaultFuzzyMinLength
	}
	return &FuzzyQuery{term: term, maxEdits: maxEdits, minLength: minLength}
}

func (q *FuzzyQuery) Term() string {
	return q.term
}

func (q *FuzzyQuery) String() string {
	return fmt.Sprintf("fuzzy(%s~%d)", q.term, q.maxEdits)
}

// CreateWeight compiles the edit-distance language followed by
// anything. Terms shorter than minLength compile exactly.
func (q *FuzzyQuery) CreateWeight(workLimit int) (Weight, error) {
	edits := q.maxEdits
	if len(q.term) < q.minLength {
		edits = 0
	}
	nfa := automaton.Concatenate(levenshteinAutomaton(q.term, edits), automaton.AnyString())
	dfa, err := automaton.Determinize(nfa, workLimit)
	if err != nil {
		return nil, err
	}
	return &fuzzyWeight{
		completionWeight: completionWeight{auto: dfa},
		term:             []byte(q.term),
	}, nil
}

// levenshteinAutomaton builds the classic NFA accepting every byte
// string within maxEdits edits of term. States are (position in term,
// edits spent); transpositions are not modeled separately, they cost
// two edits like any swap.
func levenshteinAutomaton(term string, maxEdits int) *automaton.Automaton {
	if maxEdits <= 0 {
		return automaton.MakeString(term)
	}
	n := len(term)
	width := maxEdits + 1
	a := automaton.New()
	for i := 0; i < (n+1)*width; i++ {
		a.AddState()
	}
	id := func(i, e int) int { return i*width + e }

	for i := 0; i <= n; i++ {
		for e := 0; e <= maxEdits; e++ {
			st := id(i, e)
			if i == n {
				a.SetAccept(st, true)
			}
			if i < n {
				a.AddTransition(st, term[i], term[i], id(i+1, e))
			}
			if e < maxEdits {
				if i < n {
					a.AddTransition(st, 0, 0xff, id(i+1, e+1)) // substitution
					a.AddEpsilon(st, id(i+1, e+1))             // deletion
				}
				a.AddTransition(st, 0, 0xff, id(i, e+1)) // insertion
			}
		}
	}
	return a
}

// fuzzyWeight scores each matched key by how much of the term survived
// verbatim at the front of the text.
type fuzzyWeight struct {
	completionWeight
	term  []byte
	boost float64
}

func (w *fuzzyWeight) SetNextMatch(path []byte) {
	n := 0
	for n < len(path) && n < len(w.term) && path[n] == w.term[n] {
		n++
	}
	w.boost = float64(n)
}

func (w *fuzzyWeight) Boost() float64 {
	return w.boost
}
