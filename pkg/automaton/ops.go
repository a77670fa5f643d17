package automaton

// Composition operations. All of them copy their inputs, so source
// automata stay valid and reusable after being combined.

// copyInto appends src's states to dst and returns the index offset
// applied to them.
func copyInto(dst, src *Automaton) int {
	off := len(dst.states)
	for _, s := range src.states {
		ns := state{accept: s.accept}
		if len(s.trans) > 0 {
			ns.trans = make([]transition, len(s.trans))
			for i, t := range s.trans {
				ns.trans[i] = transition{Min: t.Min, Max: t.Max, Dest: t.Dest + off}
			}
		}
		if len(s.eps) > 0 {
			ns.eps = make([]int, len(s.eps))
			for i, e := range s.eps {
				ns.eps[i] = e + off
			}
		}
		dst.states = append(dst.states, ns)
	}
	return off
}

// Concatenate returns an automaton accepting any concatenation
// s1+s2+...+sn where si is accepted by as[i]. With no arguments it
// accepts the empty string.
func Concatenate(as ...*Automaton) *Automaton {
	if len(as) == 0 {
		return MakeEmptyString()
	}
	r := &Automaton{}
	offs := make([]int, len(as))
	for i, a := range as {
		offs[i] = copyInto(r, a)
	}
	r.start = offs[0] + as[0].start
	for i := 0; i < len(as)-1; i++ {
		next := offs[i+1] + as[i+1].start
		for j := 0; j < as[i].NumStates(); j++ {
			idx := offs[i] + j
			if r.states[idx].accept {
				r.states[idx].accept = false
				r.states[idx].eps = append(r.states[idx].eps, next)
			}
		}
	}
	return r
}

// Union returns an automaton accepting any string accepted by at least
// one of as. With no arguments it accepts nothing.
func Union(as ...*Automaton) *Automaton {
	r := &Automaton{states: []state{{}}}
	for _, a := range as {
		off := copyInto(r, a)
		r.states[0].eps = append(r.states[0].eps, off+a.start)
	}
	return r
}

// Optional returns an automaton accepting everything a accepts plus the
// empty string.
func Optional(a *Automaton) *Automaton {
	r := &Automaton{states: []state{{accept: true}}}
	off := copyInto(r, a)
	r.states[0].eps = append(r.states[0].eps, off+a.start)
	return r
}

// Repeat returns the Kleene closure of a: zero or more concatenated
// occurrences of strings a accepts.
func Repeat(a *Automaton) *Automaton {
	r := &Automaton{states: []state{{accept: true}}}
	off := copyInto(r, a)
	inner := off + a.start
	r.states[0].eps = append(r.states[0].eps, inner)
	for j := 0; j < a.NumStates(); j++ {
		idx := off + j
		if r.states[idx].accept {
			r.states[idx].eps = append(r.states[idx].eps, inner)
		}
	}
	return r
}

// IsEmpty reports whether a accepts no strings at all.
func IsEmpty(a *Automaton) bool {
	seen := make([]bool, len(a.states))
	stack := []int{a.start}
	seen[a.start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.states[s].accept {
			return false
		}
		for _, t := range a.states[s].trans {
			if !seen[t.Dest] {
				seen[t.Dest] = true
				stack = append(stack, t.Dest)
			}
		}
		for _, e := range a.states[s].eps {
			if !seen[e] {
				seen[e] = true
				stack = append(stack, e)
			}
		}
	}
	return true
}
