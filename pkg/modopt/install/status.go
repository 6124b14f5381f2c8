// Package install reconciles manifest entries against the install directory
// and installs or uninstalls them.
package install

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

// State is the status shown next to an entry.
type State int

// Entry states, from least to most noteworthy.
const (
	StateNone State = iota
	StateCaution
	StateInstalled
	StateInstalledWithCaution
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateCaution:
		return "caution"
	case StateInstalled:
		return "installed"
	case StateInstalledWithCaution:
		return "installed_caution"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Warning is advisory; it never blocks install or uninstall.
type Warning string

// Entry warnings.
const (
	WarnMissingPreview     Warning = "Missing preview image"
	WarnMissingChunkID     Warning = "Missing chunk ID"
	WarnMissingReplaces    Warning = "Missing 'replaces' field"
	WarnMissingDescription Warning = "Missing description"
)

// ErrorTooltip is shown for entries without files.
const ErrorTooltip = "Error: No files were listed..."

// Status is the evaluated state of one entry.
type Status struct {
	State     State
	Installed bool
	Warnings  []Warning
}

// Tooltip returns the hover text for the entry.
func (s Status) Tooltip() string {
	if s.State == StateError {
		return ErrorTooltip
	}
	var lines []string
	if s.Installed {
		lines = append(lines, "Installed")
	}
	if len(s.Warnings) > 0 {
		lines = append(lines, "Caution:")
		for _, w := range s.Warnings {
			lines = append(lines, string(w))
		}
	}
	return strings.Join(lines, "\n")
}

// ActionLabel is the label of the install button for this entry.
func (s Status) ActionLabel() string {
	if s.Installed {
		return "Uninstall"
	}
	return "Install"
}

// IsInstalled reports whether every listed file exists under installDir.
// An entry without files, or an empty installDir, is never installed.
func IsInstalled(e manifest.Entry, installDir string) bool {
	if installDir == "" || !e.HasFiles() {
		return false
	}
	for _, f := range e.Files {
		path, err := target(installDir, f)
		if err != nil {
			return false
		}
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// PresentFiles returns the listed files of e that exist under installDir.
func PresentFiles(e manifest.Entry, installDir string) []string {
	if installDir == "" {
		return nil
	}
	var out []string
	for _, f := range e.Files {
		path, err := target(installDir, f)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Warnings lists the metadata an entry is missing. Preview paths are
// resolved against layout.
func Warnings(e manifest.Entry, layout config.Layout) []Warning {
	var ws []Warning
	if !previewExists(e, layout) {
		ws = append(ws, WarnMissingPreview)
	}
	if e.ChunkID == "" {
		ws = append(ws, WarnMissingChunkID)
	}
	if e.Replaces == "" {
		ws = append(ws, WarnMissingReplaces)
	}
	if e.Description == "" {
		ws = append(ws, WarnMissingDescription)
	}
	return ws
}

func previewExists(e manifest.Entry, layout config.Layout) bool {
	if !e.HasPreview() {
		return false
	}
	_, err := os.Stat(layout.Resolve(e.Preview))
	return err == nil
}

// Evaluate combines install status and warnings into one State.
func Evaluate(e manifest.Entry, installDir string, layout config.Layout) Status {
	if !e.HasFiles() {
		return Status{State: StateError}
	}

	st := Status{
		Installed: IsInstalled(e, installDir),
		Warnings:  Warnings(e, layout),
	}
	caution := len(st.Warnings) > 0
	switch {
	case st.Installed && caution:
		st.State = StateInstalledWithCaution
	case st.Installed:
		st.State = StateInstalled
	case caution:
		st.State = StateCaution
	default:
		st.State = StateNone
	}
	return st
}

// target joins a manifest file path onto installDir. Absolute paths and
// paths with a ".." segment are rejected even when they would clean back
// inside installDir.
func target(installDir, rel string) (string, error) {
	root := filepath.Clean(installDir)
	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) || hasParentSegment(rel) {
		return "", &PathError{Path: rel, Err: ErrUnsafePath}
	}
	path := filepath.Join(root, native)
	if path == root || !within(root, path) {
		return "", &PathError{Path: rel, Err: ErrUnsafePath}
	}
	return path, nil
}

func hasParentSegment(rel string) bool {
	for _, seg := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
