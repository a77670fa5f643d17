package utils

import (
	"strings"
)

// SuggestionFilter collapses completion texts that repeat across contexts.
// The same suggestion can be indexed under several context tags; when the
// client did not ask for a particular context, only the best-scored copy
// is worth showing.
type SuggestionFilter struct {
	seenTexts map[string]bool
	inputText string
}

// NewSuggestionFilter creates a new filter instance that will also exclude
// the typed input itself
func NewSuggestionFilter(input string) *SuggestionFilter {
	seenTexts := make(map[string]bool)
	lowerInput := strings.ToLower(input)
	seenTexts[lowerInput] = true

	return &SuggestionFilter{
		seenTexts: seenTexts,
		inputText: lowerInput,
	}
}

// ShouldInclude reports whether a suggestion text has not been seen yet.
// Returns true on first sight and false for every repeat; results arrive
// sorted by score, so the first copy is always the highest-scored one.
func (f *SuggestionFilter) ShouldInclude(text string) bool {
	lowerText := strings.ToLower(text)
	if f.seenTexts[lowerText] {
		return false
	}
	f.seenTexts[lowerText] = true
	return true
}
