package suggest

import "errors"

var (
	// ErrNilQuery is returned when a query wrapper is constructed
	// around a nil inner query.
	ErrNilQuery = errors.New("suggest: inner query is nil")

	// ErrNestedContextQuery is returned when a context query is
	// constructed around another context query. Contexts do not nest.
	ErrNestedContextQuery = errors.New("suggest: context query cannot wrap another context query")

	// ErrNegativeBoost is returned when a context is registered with a
	// boost below zero.
	ErrNegativeBoost = errors.New("suggest: context boost must be >= 0")

	// ErrNonFiniteBoost is returned when a context is registered with a
	// NaN or infinite boost.
	ErrNonFiniteBoost = errors.New("suggest: context boost must be finite")

	// ErrReservedByte is returned when a context token or suggestion
	// text contains a byte from the reserved control range.
	ErrReservedByte = errors.New("suggest: reserved byte in input")

	// ErrEmptyText is returned when an empty suggestion text is added
	// to the index.
	ErrEmptyText = errors.New("suggest: suggestion text is empty")
)
