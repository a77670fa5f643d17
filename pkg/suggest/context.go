package suggest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/contextserve/pkg/automaton"
)

// contextMeta is one registered context entry.
type contextMeta struct {
	boost float64
	exact bool
}

// ContextQuery wraps a completion query and restricts or boosts its
// matches by context tag. Tokens registered with AddContext are the
// only contexts allowed through; none registered (or AddAllContexts
// called) means every context is allowed. Registered entries keep
// working as boost lookups even in match-all mode.
//
// The registry is mutable until CreateWeight, which freezes it into an
// immutable snapshot; mutations after that point only affect weights
// created later.
//
// ContextQuery values are identity-only: comparing them with == is a
// compile error on purpose, since two queries with equal registries are
// still distinct executions.
type ContextQuery struct {
	noCompare [0]func()

	inner    Query
	contexts map[string]contextMeta
	matchAll bool
}

// NewContextQuery wraps inner. Wrapping another ContextQuery fails:
// contexts do not nest.
func NewContextQuery(inner Query) (*ContextQuery, error) {
	if inner == nil {
		return nil, ErrNilQuery
	}
	if _, ok := inner.(*ContextQuery); ok {
		return nil, ErrNestedContextQuery
	}
	return &ContextQuery{
		inner:    inner,
		contexts: make(map[string]contextMeta),
	}, nil
}

// AddContext registers a context token. boost scales matching entries
// and must be finite and >= 0; exact=false treats token as a prefix of
// the indexed context instead of the whole tag. The usual registration
// is AddContext(token, 1, true). Registering the same token again
// overwrites its entry.
func (q *ContextQuery) AddContext(token string, boost float64, exact bool) error {
	if math.IsNaN(boost) || math.IsInf(boost, 0) {
		return fmt.Errorf("%w: got %v for %q", ErrNonFiniteBoost, boost, token)
	}
	if boost < 0 {
		return fmt.Errorf("%w: got %v for %q", ErrNegativeBoost, boost, token)
	}
	if err := checkReserved("context token", token); err != nil {
		return err
	}
	q.contexts[token] = contextMeta{boost: boost, exact: exact}
	return nil
}

// AddAllContexts switches the query to match-all mode: the automaton
// stops restricting by context, while registered entries keep feeding
// boost lookups. Match-all is never cleared.
func (q *ContextQuery) AddAllContexts() {
	q.matchAll = true
}

// Term returns the wrapped query's term.
func (q *ContextQuery) Term() string {
	return q.inner.Term()
}

// String renders the registered contexts and the inner query:
// contexts:[c1,c2*^1.5],inner. Non-exact tokens carry a trailing *,
// nonzero boosts a ^boost. With no registered entries only the inner
// text is rendered, match-all or not.
func (q *ContextQuery) String() string {
	if len(q.contexts) == 0 {
		return q.inner.String()
	}
	tokens := make([]string, 0, len(q.contexts))
	for tok := range q.contexts {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	var sb strings.Builder
	sb.WriteString("contexts:[")
	for i, tok := range tokens {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(tok)
		meta := q.contexts[tok]
		if !meta.exact {
			sb.WriteByte('*')
		}
		if meta.boost != 0 {
			sb.WriteByte('^')
			sb.WriteString(strconv.FormatFloat(meta.boost, 'g', -1, 64))
		}
	}
	sb.WriteString("],")
	sb.WriteString(q.inner.String())
	return sb.String()
}

// CreateWeight compiles the query: inner weight first, then the
// composed automaton (context acceptance · optional gap · inner) under
// the determinization work limit, then the frozen registry snapshot
// the matcher reads. A determinization blowup surfaces as
// automaton.ErrWorkLimitExceeded.
func (q *ContextQuery) CreateWeight(workLimit int) (Weight, error) {
	innerWeight, err := q.inner.CreateWeight(workLimit)
	if err != nil {
		return nil, err
	}
	innerAuto := innerWeight.Automaton()
	if automaton.IsEmpty(innerAuto) {
		// nothing can match; skip composition so the matcher never
		// sees a key from this weight
		return &completionWeight{auto: automaton.MakeEmpty()}, nil
	}

	composed := automaton.Concatenate(
		q.contextAutomaton(),
		automaton.Optional(automaton.MakeLabel(GapLabel)),
		innerAuto,
	)
	dfa, err := automaton.Determinize(composed, workLimit)
	if err != nil {
		return nil, err
	}

	boosts := make(map[string]float64, len(q.contexts))
	lengthSet := make(map[int]struct{}, len(q.contexts))
	for tok, meta := range q.contexts {
		boosts[tok] = meta.boost
		lengthSet[len(tok)] = struct{}{}
	}
	lengths := make([]int, 0, len(lengthSet))
	for l := range lengthSet {
		lengths = append(lengths, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))

	return &contextWeight{
		completionWeight: completionWeight{auto: dfa},
		inner:            innerWeight,
		matcher:          &contextMatcher{boosts: boosts, lengths: lengths},
	}, nil
}

// contextAutomaton accepts every allowed context followed by the
// separator. Match-all mode and an empty registry both accept any
// context value.
func (q *ContextQuery) contextAutomaton() *automaton.Automaton {
	sep := automaton.MakeLabel(ContextSeparator)
	if q.matchAll || len(q.contexts) == 0 {
		return automaton.Concatenate(automaton.AnyString(), sep)
	}
	alts := make([]*automaton.Automaton, 0, len(q.contexts))
	for tok, meta := range q.contexts {
		branch := automaton.MakeString(tok)
		if !meta.exact {
			branch = automaton.Concatenate(branch, automaton.AnyString())
		}
		alts = append(alts, automaton.Concatenate(branch, sep))
	}
	return automaton.Union(alts...)
}
