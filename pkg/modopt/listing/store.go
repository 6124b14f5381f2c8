package listing

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no listing is cached for an archive.
var ErrNotFound = errors.New("listing not cached")

// Store persists archive listings in badger.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates the store at dir.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating listing cache directory: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening listing cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached listing for absPath.
func (s *Store) Get(absPath string) (*Entry, error) {
	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(absPath))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(e.Decode)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Put stores the listing for absPath.
func (s *Store) Put(absPath string, e *Entry) error {
	value, err := e.Encode()
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(Key(absPath), value)
	})
}

// Delete drops the listing for absPath.
func (s *Store) Delete(absPath string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(Key(absPath))
	})
}

// Prune removes listings whose archive no longer exists and returns how
// many were dropped.
func (s *Store) Prune() (int, error) {
	var stale [][]byte
	prefix := []byte(keyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, err := os.Stat(string(key[len(prefix):])); errors.Is(err, os.ErrNotExist) {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(stale), nil
}
