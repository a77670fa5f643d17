package dictionary

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/contextserve/pkg/suggest"
)

const (
	// Magic opens every binary dictionary file.
	Magic = "CSRV"

	// FormatVersion is the current binary layout version.
	FormatVersion = 1

	// maxEntryCount rejects headers that claim absurd sizes before any
	// allocation happens.
	maxEntryCount = 1_000_000
)

// Format identifies a dictionary file layout.
type Format int

const (
	FormatUnknown Format = iota
	FormatBinary         // msgpack stream opened by a CSRV header
	FormatText           // tab-separated lines
)

// DetectFormat picks the layout from the file extension. Everything
// that is not .bin is treated as text.
func DetectFormat(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".bin" {
		return FormatBinary
	}
	return FormatText
}

// header is the msgpack object that opens every binary dictionary.
type header struct {
	Magic   string `msgpack:"m"`
	Version int    `msgpack:"v"`
	Count   int    `msgpack:"n"`
}

// EntryRecord is one persisted suggestion: its text, static weight,
// the context tags it is indexed under (none means a context-free
// entry), and whether its keys carry the analyzed-stream gap marker.
type EntryRecord struct {
	Text       string   `msgpack:"t"`
	Weight     int64    `msgpack:"w"`
	Contexts   []string `msgpack:"cx,omitempty"`
	LeadingGap bool     `msgpack:"g,omitempty"`
}

// Save writes entries as a binary dictionary: the header first, then
// one msgpack object per entry. Entries are validated before they are
// written so a bad record never produces a half-usable file.
func Save(w io.Writer, entries []EntryRecord) error {
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(header{Magic: Magic, Version: FormatVersion, Count: len(entries)}); err != nil {
		return fmt.Errorf("failed to write dictionary header: %w", err)
	}
	for i := range entries {
		if err := enc.Encode(&entries[i]); err != nil {
			return fmt.Errorf("failed to write entry %d: %w", i, err)
		}
	}
	return nil
}

// Load reads a binary dictionary stream produced by Save.
func Load(r io.Reader) ([]EntryRecord, error) {
	dec := msgpack.NewDecoder(r)
	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to read dictionary header: %w", err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("not a dictionary file: bad magic %q", h.Magic)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported dictionary version %d (this build reads %d)", h.Version, FormatVersion)
	}
	if h.Count < 0 || h.Count > maxEntryCount {
		return nil, fmt.Errorf("invalid entry count %d in header", h.Count)
	}

	entries := make([]EntryRecord, 0, h.Count)
	for i := 0; i < h.Count; i++ {
		var e EntryRecord
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to read entry %d of %d: %w", i, h.Count, err)
		}
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// validateEntry rejects records the index would refuse anyway, so
// errors point at the file instead of surfacing later at insert time.
func validateEntry(e EntryRecord) error {
	if _, err := suggest.EncodeKey("", e.Text, false); err != nil {
		return err
	}
	for _, ctx := range e.Contexts {
		if _, err := suggest.EncodeKey(ctx, e.Text, false); err != nil {
			return err
		}
	}
	return nil
}
