/*
Package suggest is the core completion engine: queries compile to byte
automata, an in-memory index stores encoded suggestion keys, and a
searcher intersects the two to produce scored, context-aware results.

Every indexed suggestion is stored as one key per context tag:

	context bytes · 0x1D · [0x1F] · suggestion text

0x1D is the context separator, 0x1F an optional structural gap marker
some upstream token encoders place right after the boundary. Suggestions
with no context get a bare leading separator. Queries that don't care
about contexts simply match any context value; ContextQuery restricts
and boosts by registered tokens.

Matching happens in two phases. CreateWeight compiles a query into a
Weight holding one determinized automaton for the whole execution; the
searcher then walks index keys, steps the automaton, and hands every
accepted key to the weight through SetNextMatch. Context and Boost
report the decoded context tag and boost for the key most recently
handed over. Weights hold per-traversal state and must not be shared
across goroutines; queries can be, and a fresh weight per traversal is
cheap.
*/
package suggest

import "github.com/bastiangx/contextserve/pkg/automaton"

// Query describes a completion query that can compile itself into a
// Weight for one search execution.
type Query interface {
	// CreateWeight compiles the query. workLimit bounds automaton
	// determinization; <= 0 selects automaton.DefaultWorkLimit.
	CreateWeight(workLimit int) (Weight, error)

	// Term returns the query's primary text, for diagnostics.
	Term() string

	// String renders the query for logs and error messages.
	String() string
}

// Weight is the per-execution form of a query, driven by the searcher.
type Weight interface {
	// Automaton returns the determinized automaton accepting every
	// index key this query matches.
	Automaton() *automaton.Automaton

	// SetNextMatch hands over one accepted index key. The weight keeps
	// whatever it decodes from the key until the next call.
	SetNextMatch(path []byte)

	// Context returns the context tag decoded from the last accepted
	// key, and whether there was one.
	Context() (string, bool)

	// Boost returns the boost for the last accepted key. Zero means
	// the entry weight stands on its own.
	Boost() float64
}

// Result is one scored suggestion returned by the searcher.
type Result struct {
	Text    string
	Context string
	Weight  int64
	Score   float64
}
