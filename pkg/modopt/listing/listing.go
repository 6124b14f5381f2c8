// Package listing reads the member names of zip archives, remembering them
// in an optional badger cache keyed by archive path.
package listing

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jamesainslie/modopt/pkg/modopt/logging"
)

var log = logging.Get("listing")

// Lister lists archive members. A nil store, or a store that fails,
// means reading the archive every time.
type Lister struct {
	store *Store

	mu     sync.Mutex
	hits   int
	misses int
}

// New returns a Lister backed by store, which may be nil.
func New(store *Store) *Lister {
	return &Lister{store: store}
}

// Open opens the cache at dir. When the cache cannot be opened (another
// process holds it, for example) the Lister works uncached.
func Open(dir string) *Lister {
	store, err := OpenStore(dir)
	if err != nil {
		log.Warn("archive listing cache unavailable", "dir", dir, "error", err)
		return New(nil)
	}
	return New(store)
}

// Close closes the cache, if any.
func (l *Lister) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// Stats returns cache hits and misses since creation.
func (l *Lister) Stats() (hits, misses int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits, l.misses
}

// Files returns the regular-file members of the archive at path, in
// archive order. Directory members are left out.
func (l *Lister) Files(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	if l.store != nil {
		if e, err := l.store.Get(abs); err == nil && fresh(e, info) {
			l.count(true)
			return append([]string(nil), e.Names...), nil
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			log.Debug("listing cache read failed", "path", abs, "error", err)
		}
	}
	l.count(false)

	names, err := ReadNames(abs)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		e := &Entry{Version: FormatVersion, Size: info.Size(), Mtime: info.ModTime().UnixNano(), Names: names}
		if err := l.store.Put(abs, e); err != nil {
			log.Debug("listing cache write failed", "path", abs, "error", err)
		}
	}
	return names, nil
}

func (l *Lister) count(hit bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hit {
		l.hits++
	} else {
		l.misses++
	}
}

func fresh(e *Entry, info os.FileInfo) bool {
	return e.Version == FormatVersion &&
		e.Size == info.Size() &&
		e.Mtime == info.ModTime().UnixNano()
}

// ReadNames lists the regular-file members of a zip archive without caching.
func ReadNames(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}
