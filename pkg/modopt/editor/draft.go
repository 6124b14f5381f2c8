package editor

import (
	"path"
	"slices"
	"strings"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

// Draft is the editable copy of the selected entry. Changes reach the
// document only through Commit, which Select and Save call implicitly.
type Draft struct {
	Title       string
	ZipPath     string
	Preview     string
	Files       []string
	ChunkID     string
	Replaces    string
	Description string

	// External files picked with ImportZip/ImportPreview, copied into the
	// data folder on commit.
	zipSource     string
	previewSource string
}

func newDraft(e manifest.Entry) *Draft {
	d := &Draft{
		Title:       e.Title,
		ZipPath:     e.ZipPath,
		Preview:     e.Preview,
		ChunkID:     e.ChunkID,
		Replaces:    e.Replaces,
		Description: e.Description,
		Files:       slices.Clone(e.Files),
	}
	if d.Preview == manifest.NoPreview {
		d.Preview = ""
	}
	return d
}

func (d *Draft) entry() manifest.Entry {
	files := slices.Clone(d.Files)
	if files == nil {
		files = []string{}
	}
	return manifest.Entry{
		Title:       d.Title,
		ZipPath:     d.ZipPath,
		Preview:     d.Preview,
		Files:       files,
		ChunkID:     d.ChunkID,
		Replaces:    d.Replaces,
		Description: strings.TrimSpace(d.Description),
	}
}

// ZipName returns the archive's file name, or "" when none is set.
func (d *Draft) ZipName() string {
	if d.ZipPath == "" {
		return ""
	}
	return path.Base(d.ZipPath)
}

// PreviewName returns the preview's file name, or "" when none is set.
func (d *Draft) PreviewName() string {
	if d.Preview == "" {
		return ""
	}
	return path.Base(d.Preview)
}

// HasPendingImports reports whether Commit will copy files.
func (d *Draft) HasPendingImports() bool {
	return d.zipSource != "" || d.previewSource != ""
}

// AddFile appends a file path, ignoring blanks and duplicates.
func (d *Draft) AddFile(name string) bool {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || slices.Contains(d.Files, name) {
		return false
	}
	d.Files = append(d.Files, name)
	return true
}

// RemoveFile removes the file at index i.
func (d *Draft) RemoveFile(i int) bool {
	if i < 0 || i >= len(d.Files) {
		return false
	}
	d.Files = slices.Delete(d.Files, i, i+1)
	return true
}
