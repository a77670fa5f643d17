package suggest

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is the payload stored under one index key: the original
// suggestion text plus its static weight.
type Entry struct {
	Text   string
	Weight int64
}

// Index holds encoded suggestion keys in a radix trie. A suggestion
// tagged with several contexts is stored once per context, so context
// subtrees stay contiguous and a search restricted to one context
// walks only that subtree. Safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	trie *patricia.Trie
	size int
	gen  uint64
}

func NewIndex() *Index {
	return &Index{trie: patricia.NewTrie()}
}

// Add indexes text under every given context, or under no context when
// none are given. Validation covers all keys before any is inserted,
// so a bad context never leaves a partial entry behind.
func (ix *Index) Add(text string, weight int64, contexts ...string) error {
	keys := make([][]byte, 0, len(contexts)+1)
	if len(contexts) == 0 {
		key, err := EncodeKey("", text, false)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}
	for _, ctx := range contexts {
		key, err := EncodeKey(ctx, text, false)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, key := range keys {
		ix.put(key, Entry{Text: text, Weight: weight})
	}
	return nil
}

// Put stores an externally encoded key, typically one produced by
// EncodeKey with a leading gap. The caller owns the encoding.
func (ix *Index) Put(key []byte, text string, weight int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.put(key, Entry{Text: text, Weight: weight})
}

func (ix *Index) put(key []byte, e Entry) {
	ix.gen++
	if ix.trie.Insert(patricia.Prefix(key), e) {
		ix.size++
		return
	}
	ix.trie.Set(patricia.Prefix(key), e)
}

// Len returns the number of stored keys.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

// Clear drops every key.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.trie = patricia.NewTrie()
	ix.size = 0
	ix.gen++
}

// generation increases with every mutation. Cached search results are
// tagged with it so stale ones never outlive an index change.
func (ix *Index) generation() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.gen
}

// walk visits every key under prefix (the whole trie when prefix is
// empty) while holding the read lock.
func (ix *Index) walk(prefix []byte, fn func(key []byte, e Entry) error) error {
	visitor := func(p patricia.Prefix, item patricia.Item) error {
		e, ok := item.(Entry)
		if !ok {
			log.Errorf("Unknown item type: %T for key %q", item, p)
			return nil
		}
		return fn([]byte(p), e)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(prefix) == 0 {
		return ix.trie.Visit(visitor)
	}
	return ix.trie.VisitSubtree(patricia.Prefix(prefix), visitor)
}
