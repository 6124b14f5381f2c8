package listing

import (
	"bytes"
	"encoding/gob"
)

// FormatVersion is bumped when the stored value layout changes; older
// values are then treated as misses.
const FormatVersion = 1

// keyPrefix namespaces listing keys in the store.
const keyPrefix = "zip\x00"

// Entry is the cached member list of one archive, valid while the archive
// keeps the same size and modification time.
type Entry struct {
	Version int
	Size    int64
	Mtime   int64 // UnixNano
	Names   []string
}

// Encode serializes the entry with gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes an entry produced by Encode.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Key returns the store key for an absolute archive path.
func Key(absPath string) []byte {
	return []byte(keyPrefix + absPath)
}
