package suggest

import "github.com/bastiangx/contextserve/pkg/automaton"

// completionWeight is the plain weight behind queries that do no
// per-key decoding: SetNextMatch is a no-op, there is no context and
// the boost is zero, so entry weights pass through untouched.
type completionWeight struct {
	auto *automaton.Automaton
}

func (w *completionWeight) Automaton() *automaton.Automaton {
	return w.auto
}

func (w *completionWeight) SetNextMatch(path []byte) {}

func (w *completionWeight) Context() (string, bool) {
	return "", false
}

func (w *completionWeight) Boost() float64 {
	return 0
}
