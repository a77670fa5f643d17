/*
Package automaton implements finite automata over byte labels.

Automata are built from small constructors (literal strings, single
labels, any-byte loops) and combined with the pure operations in this
package: Concatenate, Union, Optional and Repeat. Construction produces
nondeterministic automata with epsilon moves; Determinize compiles them
into a deterministic form under an explicit work limit so pathological
compositions fail instead of stalling the caller.

Deterministic automata expose a stepping runtime (Start, Step, IsAccept)
meant to be driven byte by byte while walking an index. Step returns -1
when no transition applies, which callers treat as a dead end.
*/
package automaton

// transition moves to Dest on any byte in [Min, Max].
type transition struct {
	Min, Max byte
	Dest     int
}

type state struct {
	trans  []transition // sorted by Min; non-overlapping when deterministic
	eps    []int
	accept bool
}

// Automaton is a finite automaton over bytes 0x00-0xFF.
// The zero value is not usable; use the Make* constructors.
type Automaton struct {
	states        []state
	start         int
	deterministic bool
}

// New returns an automaton with no states for manual construction via
// AddState, AddTransition, AddEpsilon and SetAccept. The first state
// added becomes the start state. Manually built automata are treated
// as nondeterministic until determinized.
func New() *Automaton {
	return &Automaton{}
}

// AddState appends a non-accepting state and returns its index.
func (a *Automaton) AddState() int {
	a.states = append(a.states, state{})
	a.deterministic = false
	return len(a.states) - 1
}

// SetAccept marks st accepting or not.
func (a *Automaton) SetAccept(st int, accept bool) {
	a.states[st].accept = accept
}

// AddTransition adds a transition from st to dest on bytes [min, max].
func (a *Automaton) AddTransition(st int, min, max byte, dest int) {
	a.states[st].trans = append(a.states[st].trans, transition{Min: min, Max: max, Dest: dest})
}

// AddEpsilon adds an epsilon move from st to dest.
func (a *Automaton) AddEpsilon(st, dest int) {
	a.states[st].eps = append(a.states[st].eps, dest)
}

// MakeEmpty returns an automaton that accepts no strings.
func MakeEmpty() *Automaton {
	return &Automaton{states: []state{{}}, deterministic: true}
}

// MakeEmptyString returns an automaton that accepts only the empty string.
func MakeEmptyString() *Automaton {
	return &Automaton{states: []state{{accept: true}}, deterministic: true}
}

// MakeLabel returns an automaton that accepts the single byte b.
func MakeLabel(b byte) *Automaton {
	return &Automaton{
		states: []state{
			{trans: []transition{{Min: b, Max: b, Dest: 1}}},
			{accept: true},
		},
		deterministic: true,
	}
}

// AnyByte returns an automaton that accepts any single byte.
func AnyByte() *Automaton {
	return &Automaton{
		states: []state{
			{trans: []transition{{Min: 0, Max: 0xff, Dest: 1}}},
			{accept: true},
		},
		deterministic: true,
	}
}

// AnyString returns an automaton that accepts every string, including
// the empty one.
func AnyString() *Automaton {
	return &Automaton{
		states:        []state{{trans: []transition{{Min: 0, Max: 0xff, Dest: 0}}, accept: true}},
		deterministic: true,
	}
}

// MakeString returns an automaton that accepts exactly s, byte for byte.
func MakeString(s string) *Automaton {
	if s == "" {
		return MakeEmptyString()
	}
	states := make([]state, len(s)+1)
	for i := 0; i < len(s); i++ {
		states[i].trans = []transition{{Min: s[i], Max: s[i], Dest: i + 1}}
	}
	states[len(s)].accept = true
	return &Automaton{states: states, deterministic: true}
}

// Start returns the start state.
func (a *Automaton) Start() int {
	return a.start
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int {
	return len(a.states)
}

// IsDeterministic reports whether the automaton is deterministic and
// therefore steppable.
func (a *Automaton) IsDeterministic() bool {
	return a.deterministic
}

// IsAccept reports whether st is an accepting state.
func (a *Automaton) IsAccept(st int) bool {
	return st >= 0 && a.states[st].accept
}

// Step advances from st on byte b and returns the destination state,
// or -1 when no transition applies. The automaton must be deterministic.
func (a *Automaton) Step(st int, b byte) int {
	if !a.deterministic {
		panic("automaton: Step on a nondeterministic automaton")
	}
	if st < 0 {
		return -1
	}
	for _, t := range a.states[st].trans {
		if b < t.Min {
			return -1
		}
		if b <= t.Max {
			return t.Dest
		}
	}
	return -1
}

// Run steps through input from the start state and returns the final
// state, or -1 once the automaton dies. The automaton must be
// deterministic.
func (a *Automaton) Run(input []byte) int {
	st := a.start
	for _, b := range input {
		st = a.Step(st, b)
		if st < 0 {
			return -1
		}
	}
	return st
}

// Accepts reports whether the automaton accepts input exactly. Unlike
// Step it works on nondeterministic automata too, simulating epsilon
// closures, so tests can check languages before determinizing.
func (a *Automaton) Accepts(input []byte) bool {
	cur := a.closure([]int{a.start})
	for _, b := range input {
		seen := make([]bool, len(a.states))
		var next []int
		for _, s := range cur {
			for _, t := range a.states[s].trans {
				if b >= t.Min && b <= t.Max && !seen[t.Dest] {
					seen[t.Dest] = true
					next = append(next, t.Dest)
				}
			}
		}
		if len(next) == 0 {
			return false
		}
		cur = a.closure(next)
	}
	for _, s := range cur {
		if a.states[s].accept {
			return true
		}
	}
	return false
}

// CommonPrefix returns the longest byte prefix shared by every string
// the automaton accepts. The automaton must be deterministic; the
// result is empty whenever the start state branches, loops or accepts.
func (a *Automaton) CommonPrefix() []byte {
	if !a.deterministic {
		return nil
	}
	var prefix []byte
	visited := make([]bool, len(a.states))
	st := a.start
	for !a.states[st].accept && !visited[st] && len(a.states[st].trans) == 1 {
		visited[st] = true
		t := a.states[st].trans[0]
		if t.Min != t.Max || t.Dest == st {
			break
		}
		prefix = append(prefix, t.Min)
		st = t.Dest
	}
	return prefix
}

// closure returns the epsilon closure of seed, sorted ascending.
func (a *Automaton) closure(seed []int) []int {
	seen := make([]bool, len(a.states))
	stack := make([]int, 0, len(seed))
	for _, s := range seed {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range a.states[s].eps {
			if !seen[e] {
				seen[e] = true
				stack = append(stack, e)
			}
		}
	}
	out := make([]int, 0, len(seed))
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
