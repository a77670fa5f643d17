package utils

import (
	"fmt"
	"strings"
	"sync"
)

// Capital letter processing uses a pool to reduce allocations
var capitalInfoPool = sync.Pool{
	New: func() any {
		return &CapitalInfo{
			positions: make([]int, 0, 4), // Pre-allocate for typical cases
			chars:     make([]rune, 0, 4),
		}
	},
}

// CapitalInfo holds information about capitalization in a string
type CapitalInfo struct {
	positions []int
	chars     []rune
}

// Reset resets the CapitalInfo for reuse
func (ci *CapitalInfo) Reset() {
	ci.positions = ci.positions[:0]
	ci.chars = ci.chars[:0]
}

// ProcessCapitals extracts capital letter information from a typed prefix
// and returns both the lowercase version used for matching and a channel
// that will receive the capital info
func ProcessCapitals(s string) (string, chan *CapitalInfo) {
	resultChan := make(chan *CapitalInfo, 1) // Buffered to prevent blocking

	// Start processing in background
	go func() {
		info := capitalInfoPool.Get().(*CapitalInfo)
		info.Reset()

		for i, r := range s {
			if r >= 'A' && r <= 'Z' {
				info.positions = append(info.positions, i)
				info.chars = append(info.chars, r)
			}
		}

		// If no capitals found, return the info to pool and send nil
		if len(info.positions) == 0 {
			capitalInfoPool.Put(info)
			resultChan <- nil
			close(resultChan)
			return
		}

		resultChan <- info
		close(resultChan)
	}()

	// Return immediately with lowercase string and channel
	return strings.ToLower(s), resultChan
}

// ApplyCapitals re-applies typed capitalization to a batch of suggestion
// texts asynchronously. Returns a channel that will receive the processed
// batch. The info is consumed: it goes back to the pool once the batch is
// done and must not be reused by the caller.
func ApplyCapitals(words []string, info *CapitalInfo) chan []string {
	resultChan := make(chan []string, 1) // Buffered to prevent blocking

	// If no info or no capitals, return the originals immediately
	if info == nil {
		resultChan <- words
		close(resultChan)
		return resultChan
	}

	// Process in background
	go func() {
		result := make([]string, len(words))
		for w, word := range words {
			runes := []rune(word)
			for i, pos := range info.positions {
				if pos < len(runes) {
					runes[pos] = info.chars[i]
				}
			}
			result[w] = string(runes)
		}

		// Return info to pool after the whole batch
		capitalInfoPool.Put(info)

		resultChan <- result
		close(resultChan)
	}()

	return resultChan
}

// FormatWithCommas formats an integer with comma separators for display
func FormatWithCommas(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}
