// Package output renders option lists for the list subcommands in the
// formats selected with --output (pretty, plain, tsv, json, yaml, template).
package output

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/install"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

// Option is one manifest entry prepared for display.
type Option struct {
	Index       int      `json:"index" yaml:"index"`
	Title       string   `json:"title" yaml:"title"`
	State       string   `json:"state" yaml:"state"`
	Installed   bool     `json:"installed" yaml:"installed"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Archive     string   `json:"archive" yaml:"archive"`
	ArchiveSize int64    `json:"archive_size" yaml:"archive_size"`
	SizeHuman   string   `json:"size_human" yaml:"size_human"`
	Files       []string `json:"files" yaml:"files"`
	ChunkID     string   `json:"chunk_id" yaml:"chunk_id"`
	Replaces    string   `json:"replaces" yaml:"replaces"`
	Description string   `json:"description" yaml:"description"`
}

// Result is everything a formatter prints.
type Result struct {
	ModName    string   `json:"mod_name" yaml:"mod_name"`
	InstallDir string   `json:"install_dir" yaml:"install_dir"`
	Options    []Option `json:"options" yaml:"options"`
	Warnings   []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// InstalledCount returns how many options are installed.
func (r *Result) InstalledCount() int {
	n := 0
	for _, o := range r.Options {
		if o.Installed {
			n++
		}
	}
	return n
}

// TotalSize returns the combined size of every option archive found on disk.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, o := range r.Options {
		total += o.ArchiveSize
	}
	return total
}

// FromManifest evaluates every entry of m against installDir.
// An empty installDir shows every option as not installed.
func FromManifest(m *manifest.Manifest, modFallback, installDir string, layout config.Layout) *Result {
	r := &Result{
		ModName:    m.Name(modFallback),
		InstallDir: installDir,
		Options:    make([]Option, 0, len(m.Entries)),
	}
	if installDir == "" {
		r.Warnings = append(r.Warnings, "install_dir is not set")
	}

	for i, e := range m.Entries {
		st := install.Evaluate(e, installDir, layout)
		o := Option{
			Index:       i,
			Title:       e.Title,
			State:       st.State.String(),
			Installed:   st.Installed,
			Archive:     e.ZipPath,
			Files:       append([]string{}, e.Files...),
			ChunkID:     e.ChunkID,
			Replaces:    e.Replaces,
			Description: e.Description,
		}
		for _, w := range st.Warnings {
			o.Warnings = append(o.Warnings, string(w))
		}
		if e.ZipPath != "" {
			if info, err := os.Stat(layout.Resolve(e.ZipPath)); err == nil {
				o.ArchiveSize = info.Size()
				o.SizeHuman = humanize.IBytes(uint64(info.Size()))
			} else {
				r.Warnings = append(r.Warnings, fmt.Sprintf("%s: archive %s not found", e.Title, e.ZipPath))
			}
		}
		r.Options = append(r.Options, o)
	}
	return r
}

// Formatter writes a Result to a buffer.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps format names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a formatter.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formatters.
func Available() []string {
	return DefaultRegistry.Available()
}
