// Package manifest reads and writes the mod options manifest shared by the
// builder and the selector.
package manifest

import (
	"encoding/json"
	"strings"
)

// Fallback names for a manifest without a mod_name.
const (
	DefaultSelectorModName = "Unknown Mod"
	DefaultBuilderModName  = "UnnamedMod"
	DefaultTitle           = "Untitled"
)

// NoPreview is the literal some manifests carry for "no preview selected".
const NoPreview = "None"

// Manifest is the document stored in mod_options.json.
type Manifest struct {
	ModName string  `json:"mod_name"`
	Entries []Entry `json:"entries"`
}

// Entry is one installable mod option.
type Entry struct {
	Title       string   `json:"title"`
	ZipPath     string   `json:"zip_path"`
	Preview     string   `json:"preview"`
	Files       []string `json:"files"`
	ChunkID     string   `json:"chunk_id"`
	Replaces    string   `json:"replaces"`
	Description string   `json:"description"`
}

// Name returns the mod name, or fallback when none is set.
func (m *Manifest) Name(fallback string) string {
	if strings.TrimSpace(m.ModName) == "" {
		return fallback
	}
	return m.ModName
}

// HasPreview reports whether the entry names a preview image.
func (e Entry) HasPreview() bool {
	p := strings.TrimSpace(e.Preview)
	return p != "" && p != NoPreview
}

// HasFiles reports whether the entry lists any files. Entries without files
// can never be installed.
func (e Entry) HasFiles() bool {
	return len(e.Files) > 0
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := e
	if e.Files != nil {
		c.Files = append([]string(nil), e.Files...)
	}
	return c
}

// UnmarshalJSON applies the read-side defaults: a missing title reads as
// DefaultTitle and every other field reads as its zero value.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var raw struct {
		plain
		Title *string `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry(raw.plain)
	e.Title = DefaultTitle
	if raw.Title != nil {
		e.Title = *raw.Title
	}
	return nil
}

// MarshalJSON always writes every field, with files as an array.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	p := plain(e)
	if p.Files == nil {
		p.Files = []string{}
	}
	return json.Marshal(p)
}
