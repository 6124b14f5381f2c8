// Package editor holds the builder's in-memory manifest: entry CRUD,
// ordering, the per-entry draft, and asset import.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/listing"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/preview"
	"github.com/jamesainslie/modopt/pkg/modopt/trash"
)

var log = logging.Get("editor")

// NewEntryTitle is the title given to added entries.
const NewEntryTitle = "New Entry"

// Errors returned by the editor.
var (
	ErrNoSelection = errors.New("no entry selected")
	ErrNoArchive   = errors.New("no zip archive selected")
	ErrNotZip      = errors.New("not a .zip file")
	ErrNotImage    = errors.New("not a preview image")
)

// DeleteOptions controls what Delete removes besides the entry.
type DeleteOptions struct {
	// RemoveAssets also removes the entry's zip and preview files.
	RemoveAssets bool
	// Trash sends removed assets to the desktop trash.
	Trash bool
}

// Document is the builder's working copy of mod_options.json.
type Document struct {
	layout config.Layout
	lister *listing.Lister

	modName  string
	entries  []manifest.Entry
	dirty    bool
	selected int
	draft    *Draft
}

// Open loads the manifest of layout. A missing file gives an empty
// document named "UnnamedMod". lister may be nil.
func Open(layout config.Layout, lister *listing.Lister) (*Document, error) {
	if lister == nil {
		lister = listing.New(nil)
	}
	d := &Document{
		layout:   layout,
		lister:   lister,
		modName:  manifest.DefaultBuilderModName,
		entries:  []manifest.Entry{},
		selected: -1,
	}

	m, err := manifest.Load(layout.ManifestPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return d, nil
	case err != nil:
		return d, err
	}
	d.modName = m.Name(manifest.DefaultBuilderModName)
	d.entries = m.Entries
	if len(d.entries) > 0 {
		_, _ = d.Select(0)
	}
	return d, nil
}

// Layout returns the data folder layout.
func (d *Document) Layout() config.Layout { return d.layout }

// ModName returns the mod name.
func (d *Document) ModName() string { return d.modName }

// SetModName renames the mod.
func (d *Document) SetModName(name string) {
	if name != d.modName {
		d.modName = name
		d.dirty = true
	}
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.entries) }

// Dirty reports whether there are unsaved changes, including uncommitted
// draft edits.
func (d *Document) Dirty() bool {
	if d.dirty {
		return true
	}
	if d.draft == nil || d.selected < 0 {
		return false
	}
	return d.draft.HasPendingImports() || !reflect.DeepEqual(d.draft.entry(), normalize(d.entries[d.selected]))
}

// Entries returns a copy of the entries with the current draft applied.
func (d *Document) Entries() []manifest.Entry {
	out := make([]manifest.Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Clone()
	}
	if d.draft != nil && d.selected >= 0 {
		out[d.selected] = d.draft.entry()
	}
	return out
}

// Titles returns the entry titles for the list view.
func (d *Document) Titles() []string {
	entries := d.Entries()
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}

// Selected returns the selected index, or -1.
func (d *Document) Selected() int { return d.selected }

// Draft returns the draft of the selected entry, or nil.
func (d *Document) Draft() *Draft { return d.draft }

// Select commits the current draft and opens entry i.
func (d *Document) Select(i int) (*Draft, error) {
	if i < 0 || i >= len(d.entries) {
		return nil, fmt.Errorf("%w: %d", manifest.ErrIndexOutOfRange, i)
	}
	if err := d.Commit(); err != nil {
		return nil, err
	}
	d.selected = i
	d.draft = newDraft(d.entries[i])
	return d.draft, nil
}

// Commit copies the draft back into its entry, first copying any imported
// files into the data folder.
func (d *Document) Commit() error {
	if d.draft == nil || d.selected < 0 {
		return nil
	}
	if err := d.importPending(d.draft); err != nil {
		return err
	}
	e := d.draft.entry()
	if !reflect.DeepEqual(e, normalize(d.entries[d.selected])) {
		d.entries[d.selected] = e
		d.dirty = true
	}
	return nil
}

func normalize(e manifest.Entry) manifest.Entry {
	e = e.Clone()
	if e.Files == nil {
		e.Files = []string{}
	}
	if e.Preview == manifest.NoPreview {
		e.Preview = ""
	}
	e.Description = strings.TrimSpace(e.Description)
	return e
}

// Add appends a blank entry and selects it.
func (d *Document) Add() (int, error) {
	if err := d.Commit(); err != nil {
		return -1, err
	}
	d.entries = append(d.entries, manifest.Entry{Title: NewEntryTitle, Files: []string{}})
	d.dirty = true
	i := len(d.entries) - 1
	d.selected = i
	d.draft = newDraft(d.entries[i])
	return i, nil
}

// AssetPaths returns the entry's zip and preview files that exist on disk.
func (d *Document) AssetPaths(i int) []string {
	if i < 0 || i >= len(d.entries) {
		return nil
	}
	e := d.entries[i]
	if i == d.selected && d.draft != nil {
		e = d.draft.entry()
	}
	var paths []string
	for _, p := range []string{e.ZipPath, e.Preview} {
		if p == "" || p == manifest.NoPreview {
			continue
		}
		full := d.layout.Resolve(p)
		if trash.Exists(full) {
			paths = append(paths, full)
		}
	}
	return paths
}

// Delete removes entry i and saves the manifest. Asset removal failures are
// returned joined but do not stop the entry from being deleted. The
// selection moves to the previous entry.
func (d *Document) Delete(ctx context.Context, i int, opts DeleteOptions) error {
	if i < 0 || i >= len(d.entries) {
		return fmt.Errorf("%w: %d", manifest.ErrIndexOutOfRange, i)
	}

	var errs []error
	if opts.RemoveAssets {
		mode := trash.Delete
		if opts.Trash {
			mode = trash.Trash
		}
		for _, p := range d.AssetPaths(i) {
			if err := trash.Discard(ctx, p, mode); err != nil {
				errs = append(errs, err)
				continue
			}
			log.Info("removed asset", "path", p)
		}
	}

	if i != d.selected {
		if err := d.Commit(); err != nil {
			errs = append(errs, err)
		}
	}
	d.entries = slices.Delete(d.entries, i, i+1)
	d.dirty = true
	d.draft = nil

	next := -1
	switch {
	case len(d.entries) == 0:
	case d.selected > i || (d.selected == i && i > 0):
		next = d.selected - 1
	case d.selected == i:
		next = 0
	default:
		next = d.selected
	}
	d.selected = -1
	if next >= 0 {
		_, _ = d.Select(next)
	}

	if err := d.Save(true); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MoveUp swaps entry i with the one above and returns its new index.
func (d *Document) MoveUp(i int) (int, error) {
	return d.swap(i, i-1)
}

// MoveDown swaps entry i with the one below and returns its new index.
func (d *Document) MoveDown(i int) (int, error) {
	return d.swap(i, i+1)
}

func (d *Document) swap(i, j int) (int, error) {
	if i < 0 || i >= len(d.entries) {
		return i, fmt.Errorf("%w: %d", manifest.ErrIndexOutOfRange, i)
	}
	if j < 0 || j >= len(d.entries) {
		return i, nil
	}
	if err := d.Commit(); err != nil {
		return i, err
	}
	d.entries[i], d.entries[j] = d.entries[j], d.entries[i]
	d.dirty = true

	switch d.selected {
	case i:
		d.selected = j
	case j:
		d.selected = i
	}
	return j, nil
}

// Save commits the draft and writes the manifest. A clean document is not
// written unless force is set.
func (d *Document) Save(force bool) error {
	if err := d.Commit(); err != nil {
		return err
	}
	if !d.dirty && !force {
		return nil
	}

	name := strings.TrimSpace(d.modName)
	if name == "" {
		name = manifest.DefaultBuilderModName
	}
	m := &manifest.Manifest{ModName: name, Entries: d.entries}
	if err := manifest.Save(d.layout.ManifestPath(), m); err != nil {
		return err
	}
	d.modName = name
	d.dirty = false
	log.Info("saved manifest", "path", d.layout.ManifestPath(), "entries", len(d.entries))
	return nil
}

// ImportZip points the draft at an external archive. The file is copied
// into data/zips on commit.
func (d *Document) ImportZip(draft *Draft, src string) error {
	if !strings.EqualFold(filepath.Ext(src), ".zip") {
		return fmt.Errorf("%s: %w", src, ErrNotZip)
	}
	if _, err := os.Stat(src); err != nil {
		return err
	}
	rel, err := d.layout.Rel(filepath.Join(d.layout.ZipsDir(), filepath.Base(src)))
	if err != nil {
		return err
	}
	draft.ZipPath = rel
	draft.zipSource = src
	return nil
}

// ImportPreview points the draft at an external image. The file is copied
// into data/zips/previews on commit.
func (d *Document) ImportPreview(draft *Draft, src string) error {
	if !preview.IsImage(src) {
		return fmt.Errorf("%s: %w", src, ErrNotImage)
	}
	if _, err := os.Stat(src); err != nil {
		return err
	}
	rel, err := d.layout.Rel(filepath.Join(d.layout.PreviewsDir(), filepath.Base(src)))
	if err != nil {
		return err
	}
	draft.Preview = rel
	draft.previewSource = src
	return nil
}

// UseZip points the draft at an archive already in data/zips. An empty
// name clears it.
func (d *Document) UseZip(draft *Draft, name string) error {
	draft.zipSource = ""
	if name == "" {
		draft.ZipPath = ""
		return nil
	}
	rel, err := d.layout.Rel(filepath.Join(d.layout.ZipsDir(), filepath.Base(name)))
	if err != nil {
		return err
	}
	draft.ZipPath = rel
	return nil
}

// UsePreview points the draft at an image already in data/zips/previews.
// An empty name or "None" clears it.
func (d *Document) UsePreview(draft *Draft, name string) error {
	draft.previewSource = ""
	if name == "" || name == manifest.NoPreview {
		draft.Preview = ""
		return nil
	}
	rel, err := d.layout.Rel(filepath.Join(d.layout.PreviewsDir(), filepath.Base(name)))
	if err != nil {
		return err
	}
	draft.Preview = rel
	return nil
}

func (d *Document) importPending(draft *Draft) error {
	if draft.zipSource != "" {
		if err := copyInto(draft.zipSource, d.layout.Resolve(draft.ZipPath)); err != nil {
			return fmt.Errorf("copying zip: %w", err)
		}
		draft.zipSource = ""
	}
	if draft.previewSource != "" {
		if err := copyInto(draft.previewSource, d.layout.Resolve(draft.Preview)); err != nil {
			return fmt.Errorf("copying preview: %w", err)
		}
		draft.previewSource = ""
	}
	return nil
}

func copyInto(src, dst string) error {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if srcAbs == dstAbs {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// FilesFromZip lists the regular files of the draft's archive, reading an
// imported file from where it was picked.
func (d *Document) FilesFromZip(draft *Draft) ([]string, error) {
	src := draft.zipSource
	if src == "" {
		if draft.ZipPath == "" {
			return nil, ErrNoArchive
		}
		src = d.layout.Resolve(draft.ZipPath)
	}
	return d.lister.Files(src)
}

// ZipChoices lists the .zip files in data/zips.
func (d *Document) ZipChoices() []string {
	return listDir(d.layout.ZipsDir(), func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".zip")
	})
}

// PreviewChoices lists the images in data/zips/previews.
func (d *Document) PreviewChoices() []string {
	return listDir(d.layout.PreviewsDir(), preview.IsImage)
}

func listDir(dir string, keep func(string) bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && keep(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
