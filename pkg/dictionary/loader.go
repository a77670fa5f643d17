package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/contextserve/pkg/suggest"
)

// LoadText reads the development text format: one entry per line as
// weight<TAB>text[<TAB>ctx1,ctx2,...], with blank lines and #-comments
// skipped.
func LoadText(r io.Reader) ([]EntryRecord, error) {
	var entries []EntryRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected weight<TAB>text, got %q", lineNo, line)
		}
		weight, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid weight %q: %w", lineNo, fields[0], err)
		}

		e := EntryRecord{Text: fields[1], Weight: weight}
		if len(fields) >= 3 && fields[2] != "" {
			e.Contexts = strings.Split(fields[2], ",")
		}
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary text: %w", err)
	}
	return entries, nil
}

// LoadFile reads path in whichever format its extension selects.
func LoadFile(path string) ([]EntryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if DetectFormat(path) == FormatBinary {
		entries, err := Load(r)
		if err != nil {
			return nil, fmt.Errorf("dictionary %s: %w", path, err)
		}
		return entries, nil
	}
	entries, err := LoadText(r)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	return entries, nil
}

// SaveFile writes entries to path as a binary dictionary.
func SaveFile(path string, entries []EntryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dictionary %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Save(w, entries); err != nil {
		f.Close()
		return fmt.Errorf("dictionary %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush dictionary %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close dictionary %s: %w", path, err)
	}
	log.Debugf("Saved %d entries to %s", len(entries), path)
	return nil
}

// LoadIntoIndex loads path and indexes every entry, returning the
// number of entries indexed.
func LoadIntoIndex(path string, ix *suggest.Index) (int, error) {
	entries, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	added := 0
	for i, e := range entries {
		if e.LeadingGap {
			if err := putGapEntry(ix, e); err != nil {
				return added, fmt.Errorf("entry %d (%q): %w", i, e.Text, err)
			}
		} else if err := ix.Add(e.Text, e.Weight, e.Contexts...); err != nil {
			return added, fmt.Errorf("entry %d (%q): %w", i, e.Text, err)
		}
		added++
	}
	log.Debugf("Indexed %d entries from %s (%d keys total)", added, path, ix.Len())
	return added, nil
}

// putGapEntry stores one entry with the gap marker in each of its keys.
func putGapEntry(ix *suggest.Index, e EntryRecord) error {
	contexts := e.Contexts
	if len(contexts) == 0 {
		contexts = []string{""}
	}
	for _, ctx := range contexts {
		key, err := suggest.EncodeKey(ctx, e.Text, true)
		if err != nil {
			return err
		}
		ix.Put(key, e.Text, e.Weight)
	}
	return nil
}
