// Package index implements the checksum index: a mapping from content
// checksum to the size and path of the first file seen with that
// checksum, plus a Badger-backed store for persisting it between the
// scan and prune phases.
package index

import (
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// Index maps a checksum to its representative entry.
//
// The representative for a checksum is the first file inserted under
// it; Add never replaces an existing entry. The index is written only
// during a scan and is read-only during a prune, so the zero-locking
// design is safe as long as a single goroutine owns insertion.
type Index struct {
	entries map[uint64]types.IndexEntry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[uint64]types.IndexEntry)}
}

// FromEntries builds an index from an existing mapping, e.g. one loaded
// from a store.
func FromEntries(entries map[uint64]types.IndexEntry) *Index {
	if entries == nil {
		entries = make(map[uint64]types.IndexEntry)
	}
	return &Index{entries: entries}
}

// Add inserts entry under sum if no representative exists yet.
// It reports whether the entry was inserted; false means sum already
// had a representative, which is never replaced.
func (x *Index) Add(sum uint64, entry types.IndexEntry) bool {
	if _, ok := x.entries[sum]; ok {
		return false
	}
	x.entries[sum] = entry
	return true
}

// Lookup returns the representative entry for sum, if any.
func (x *Index) Lookup(sum uint64) (types.IndexEntry, bool) {
	entry, ok := x.entries[sum]
	return entry, ok
}

// Len returns the number of representatives in the index.
func (x *Index) Len() int {
	return len(x.entries)
}

// Entries returns a copy of the underlying mapping.
func (x *Index) Entries() map[uint64]types.IndexEntry {
	out := make(map[uint64]types.IndexEntry, len(x.entries))
	for sum, entry := range x.entries {
		out[sum] = entry
	}
	return out
}

// TotalBytes returns the combined size of all representatives.
func (x *Index) TotalBytes() int64 {
	var total int64
	for _, entry := range x.entries {
		total += entry.Size
	}
	return total
}
