package index

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// ErrNotFound is returned when a checksum has no entry in the store.
var ErrNotFound = errors.New("index entry not found")

// Store persists a checksum index in a Badger database.
//
// Keys are the big-endian checksum; values are gob-encoded IndexEntry.
// The byte layout is an implementation detail, not a compatibility
// contract: the only guarantee is that WriteAll followed by LoadAll
// reproduces an equivalent mapping.
type Store struct {
	db *badger.DB
}

// Exists reports whether an index store is already present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// OpenStore opens or creates an index store at the given path.
func OpenStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves the entry for a checksum.
func (s *Store) Get(sum uint64) (*types.IndexEntry, error) {
	var entry types.IndexEntry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(sum))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return decodeEntry(val, &entry)
		})
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores the entry for a checksum, replacing any existing one.
func (s *Store) Put(sum uint64, entry types.IndexEntry) error {
	value, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(sum), value)
	})
}

// WriteAll replaces the store contents with the given index.
func (s *Store) WriteAll(idx *Index) error {
	if err := s.db.DropAll(); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for sum, entry := range idx.Entries() {
		value, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		if err := wb.Set(makeKey(sum), value); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// LoadAll reads the full mapping back into an in-memory index.
func (s *Store) LoadAll() (*Index, error) {
	entries := make(map[uint64]types.IndexEntry)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			sum, ok := parseKey(item.Key())
			if !ok {
				continue
			}

			var entry types.IndexEntry
			if err := item.Value(func(val []byte) error {
				return decodeEntry(val, &entry)
			}); err != nil {
				return err
			}
			entries[sum] = entry
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return FromEntries(entries), nil
}

// makeKey encodes a checksum as a fixed-width big-endian key.
func makeKey(sum uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, sum)
	return key
}

// parseKey decodes a store key back into a checksum.
func parseKey(key []byte) (uint64, bool) {
	if len(key) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key), true
}

func encodeEntry(entry types.IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntry(data []byte, entry *types.IndexEntry) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(entry)
}
