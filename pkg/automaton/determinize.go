package automaton

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultWorkLimit bounds determinization effort when callers have no
// better number. Effort counts source transitions examined plus subset
// states created.
const DefaultWorkLimit = 10000

// ErrWorkLimitExceeded is returned by Determinize when the subset
// construction runs past its work limit. Callers can match it with
// errors.Is.
var ErrWorkLimitExceeded = errors.New("automaton: determinize work limit exceeded")

// Determinize compiles a into an equivalent deterministic automaton
// using subset construction, spending at most workLimit units of work
// (workLimit <= 0 selects DefaultWorkLimit). Dead states are pruned
// from the result, so every live state can still reach acceptance and
// Step hitting -1 means the whole remainder is hopeless.
//
// Already deterministic automata are returned as-is.
func Determinize(a *Automaton, workLimit int) (*Automaton, error) {
	if a.deterministic {
		return a, nil
	}
	if workLimit <= 0 {
		workLimit = DefaultWorkLimit
	}

	r := &Automaton{deterministic: true}
	startSet := a.closure([]int{a.start})
	index := map[string]int{subsetKey(startSet): 0}
	r.states = append(r.states, state{accept: anyAccept(a, startSet)})
	queue := [][]int{startSet}

	work := 0
	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]

		// Cut the byte range at every transition boundary so each
		// atomic interval maps to one stable subset.
		var cuts []int
		for _, s := range cur {
			for _, t := range a.states[s].trans {
				work++
				cuts = append(cuts, int(t.Min), int(t.Max)+1)
			}
		}
		if work > workLimit {
			return nil, fmt.Errorf("%w (limit %d)", ErrWorkLimitExceeded, workLimit)
		}
		if len(cuts) == 0 {
			continue
		}
		sort.Ints(cuts)
		cuts = dedupeInts(cuts)

		for ci := 0; ci < len(cuts); ci++ {
			lo := cuts[ci]
			if lo > 0xff {
				break
			}
			hi := 0xff
			if ci+1 < len(cuts) {
				hi = cuts[ci+1] - 1
			}

			var dests []int
			seen := make(map[int]bool)
			for _, s := range cur {
				for _, t := range a.states[s].trans {
					if int(t.Min) <= lo && lo <= int(t.Max) && !seen[t.Dest] {
						seen[t.Dest] = true
						dests = append(dests, t.Dest)
					}
				}
			}
			if len(dests) == 0 {
				continue
			}
			destSet := a.closure(dests)
			key := subsetKey(destSet)
			di, ok := index[key]
			if !ok {
				work++
				if work > workLimit {
					return nil, fmt.Errorf("%w (limit %d)", ErrWorkLimitExceeded, workLimit)
				}
				di = len(r.states)
				index[key] = di
				r.states = append(r.states, state{accept: anyAccept(a, destSet)})
				queue = append(queue, destSet)
			}
			r.states[qi].trans = append(r.states[qi].trans, transition{
				Min:  byte(lo),
				Max:  byte(hi),
				Dest: di,
			})
		}
	}
	removeDeadStates(r)
	return r, nil
}

func anyAccept(a *Automaton, set []int) bool {
	for _, s := range set {
		if a.states[s].accept {
			return true
		}
	}
	return false
}

// subsetKey encodes a sorted state set as a map key.
func subsetKey(set []int) string {
	b := make([]byte, 0, len(set)*4)
	for _, s := range set {
		b = append(b, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
	}
	return string(b)
}

func dedupeInts(xs []int) []int {
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// removeDeadStates drops states that cannot reach acceptance and the
// transitions leading into them. The start state is always kept, even
// when the language is empty.
func removeDeadStates(a *Automaton) {
	n := len(a.states)
	rev := make([][]int, n)
	live := make([]bool, n)
	var stack []int
	for i := range a.states {
		for _, t := range a.states[i].trans {
			rev[t.Dest] = append(rev[t.Dest], i)
		}
		if a.states[i].accept {
			live[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range rev[s] {
			if !live[p] {
				live[p] = true
				stack = append(stack, p)
			}
		}
	}

	remap := make([]int, n)
	kept := 0
	for i := range a.states {
		if live[i] || i == a.start {
			remap[i] = kept
			kept++
		} else {
			remap[i] = -1
		}
	}
	if kept == n {
		return
	}
	newStates := make([]state, 0, kept)
	for i := range a.states {
		if remap[i] < 0 {
			continue
		}
		s := a.states[i]
		trans := s.trans[:0]
		for _, t := range s.trans {
			if remap[t.Dest] >= 0 {
				trans = append(trans, transition{Min: t.Min, Max: t.Max, Dest: remap[t.Dest]})
			}
		}
		s.trans = trans
		newStates = append(newStates, s)
	}
	a.states = newStates
	a.start = remap[a.start]
}
