package suggest

import (
	"fmt"
)

// Reserved control bytes. They delimit the key encoding and may never
// appear in context tokens or suggestion text.
const (
	// ContextSeparator terminates the context portion of an index key.
	ContextSeparator byte = 0x1d

	// GapLabel marks a structural gap. Token encoders that collapse
	// analyzed token streams can emit it directly after the separator;
	// it is matched optionally and stripped during decoding.
	GapLabel byte = 0x1f

	// reservedLo..reservedHi is the full range rejected in user input,
	// keeping 0x1e free for future encoding use.
	reservedLo byte = 0x1d
	reservedHi byte = 0x1f
)

// checkReserved returns an error naming the first reserved byte in s
// and its position. what names the field for the error message.
func checkReserved(what, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] >= reservedLo && s[i] <= reservedHi {
			return fmt.Errorf("%w: %s contains 0x%02x at position %d", ErrReservedByte, what, s[i], i)
		}
	}
	return nil
}

// EncodeKey builds the index key for one (context, text) pair:
// context · separator · [gap] · text. An empty context produces a key
// with a bare leading separator. leadingGap inserts the gap marker the
// way analyzed token streams do; plain callers leave it false.
func EncodeKey(context, text string, leadingGap bool) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := checkReserved("context", context); err != nil {
		return nil, err
	}
	if err := checkReserved("text", text); err != nil {
		return nil, err
	}
	key := make([]byte, 0, len(context)+2+len(text))
	key = append(key, context...)
	key = append(key, ContextSeparator)
	if leadingGap {
		key = append(key, GapLabel)
	}
	key = append(key, text...)
	return key, nil
}
