package suggest

import (
	"bytes"
	"fmt"
)

// contextMatcher decodes accepted index keys against the frozen
// registry snapshot taken at weight creation. It holds no mutable
// state, so one matcher can serve any number of concurrent decodings.
type contextMatcher struct {
	boosts  map[string]float64
	lengths []int // distinct token byte lengths, descending
}

// match splits one accepted key into its decoded context bytes (nil
// when the key carries none), the registered boost, and the suggestion
// text remainder.
//
// The registry probe is longest-match-wins: lengths are tried in
// descending order and the first map hit settles the boost, so a
// registered context always beats another registered context that is
// merely its prefix. The reported context is the full decoded
// substring up to the separator, which for prefix entries can be
// longer than the registered token that matched.
//
// Keys reach this method only after the composed automaton accepted
// them. A key with no separator past the matched token, or with no
// text left after the separator and gap, means the automaton and this
// decoder disagree on the encoding; that is a construction bug, so
// match panics instead of guessing.
func (m *contextMatcher) match(path []byte) (ctx []byte, boost float64, inner []byte) {
	offset := 0
	for _, l := range m.lengths {
		if l > len(path) {
			continue
		}
		if b, ok := m.boosts[string(path[:l])]; ok {
			offset = l
			boost = b
			break
		}
	}

	rel := bytes.IndexByte(path[offset:], ContextSeparator)
	if rel < 0 {
		panic(fmt.Sprintf("suggest: accepted key %q has no context separator at or after offset %d", path, offset))
	}
	sep := offset + rel
	if sep > 0 {
		ctx = path[:sep]
	}
	inner = path[sep+1:]
	if len(inner) > 0 && inner[0] == GapLabel {
		inner = inner[1:]
	}
	if len(inner) == 0 {
		panic(fmt.Sprintf("suggest: accepted key %q has no suggestion text after the separator", path))
	}
	return ctx, boost, inner
}

// contextWeight glues a context query execution together: it exposes
// the composed automaton, runs every accepted key through the matcher,
// keeps the decoded (context, boost) for the accessors, and hands the
// text remainder to the inner weight.
type contextWeight struct {
	completionWeight
	inner   Weight
	matcher *contextMatcher

	context    string
	hasContext bool
	boost      float64
}

func (w *contextWeight) SetNextMatch(path []byte) {
	ctx, boost, inner := w.matcher.match(path)
	w.hasContext = ctx != nil
	w.context = string(ctx)
	w.boost = boost
	w.inner.SetNextMatch(inner)
}

func (w *contextWeight) Context() (string, bool) {
	return w.context, w.hasContext
}

// Boost is the registered context boost plus whatever the inner weight
// contributed for the same key.
func (w *contextWeight) Boost() float64 {
	return w.boost + w.inner.Boost()
}
