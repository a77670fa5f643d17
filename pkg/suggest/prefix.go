package suggest

import (
	"fmt"

	"github.com/bastiangx/contextserve/pkg/automaton"
)

// PrefixQuery matches every suggestion whose text starts with the given
// prefix. An empty prefix matches everything.
type PrefixQuery struct {
	prefix string
}

func NewPrefixQuery(prefix string) *PrefixQuery {
	return &PrefixQuery{prefix: prefix}
}

func (q *PrefixQuery) Term() string {
	return q.prefix
}

func (q *PrefixQuery) String() string {
	return fmt.Sprintf("prefix(%s)", q.prefix)
}

// CreateWeight compiles the prefix language: the literal prefix
// followed by anything.
func (q *PrefixQuery) CreateWeight(workLimit int) (Weight, error) {
	nfa := automaton.Concatenate(automaton.MakeString(q.prefix), automaton.AnyString())
	dfa, err := automaton.Determinize(nfa, workLimit)
	if err != nil {
		return nil, err
	}
	return &completionWeight{auto: dfa}, nil
}
