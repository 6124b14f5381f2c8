// Package packager builds the distributable archive of a mod: the data
// folder without the builder-only assets plus the selector program, all
// under one top-level folder named after the mod.
package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

var log = logging.Get("packager")

var (
	// ErrExecutableMissing is reported as a warning when the selector
	// program is not found; the package is still built.
	ErrExecutableMissing = errors.New("selector executable not found")

	// ErrUnknownFormat is returned for an unsupported archive format.
	ErrUnknownFormat = errors.New("unknown package format")
)

// BuilderOnlyDir is the part of the data folder left out of packages,
// relative to the data folder.
var BuilderOnlyDir = filepath.Join("assets", "options_builder")

// Options configures Pack.
type Options struct {
	// ModName names the top-level folder and the default output file.
	ModName string

	// DataDir is copied into the package as data/.
	DataDir string

	// Executable is copied beside data/ when it exists.
	Executable string

	// Output is the archive path. Empty means <sanitized name><ext> in the
	// current directory.
	Output string

	// Format is "zip" (default) or "tar.xz".
	Format string

	// StagingRoot holds the temporary copy. Empty uses os.TempDir().
	StagingRoot string
}

// Result describes a built package.
type Result struct {
	Output   string
	Folder   string
	Files    int
	Bytes    int64
	Warnings []error
}

// SanitizeName turns a mod name into a folder name: surrounding space is
// trimmed and inner spaces become underscores. An empty name is "UnnamedMod".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return manifest.DefaultBuilderModName
	}
	return strings.ReplaceAll(name, " ", "_")
}

// DefaultOutput returns the file name Pack writes when Options.Output is empty.
func DefaultOutput(modName, format string) (string, error) {
	f, err := lookupFormat(format)
	if err != nil {
		return "", err
	}
	return SanitizeName(modName) + f.ext, nil
}

// Pack stages the package contents and writes the archive. The staging
// directory is removed whether or not packing succeeds.
func Pack(ctx context.Context, opts Options) (*Result, error) {
	format, err := lookupFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	folder := SanitizeName(opts.ModName)
	output := opts.Output
	if output == "" {
		output = folder + format.ext
	}

	info, err := os.Stat(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data folder %s: not a directory", opts.DataDir)
	}

	stagingRoot := opts.StagingRoot
	if stagingRoot == "" {
		stagingRoot = os.TempDir()
	}
	work := filepath.Join(stagingRoot, folder+"-"+uuid.NewString())
	if err := os.RemoveAll(work); err != nil {
		return nil, fmt.Errorf("clearing staging folder: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			log.Warn("could not remove staging folder", "path", work, "error", err)
		}
	}()

	stage := filepath.Join(work, folder)
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging folder: %w", err)
	}

	res := &Result{Output: output, Folder: folder}

	if err := copyTree(ctx, opts.DataDir, filepath.Join(stage, "data"), BuilderOnlyDir); err != nil {
		return nil, fmt.Errorf("staging data folder: %w", err)
	}

	if err := stageExecutable(opts.Executable, stage); err != nil {
		if !errors.Is(err, ErrExecutableMissing) {
			return nil, err
		}
		log.Warn("packaging without selector executable", "path", opts.Executable)
		res.Warnings = append(res.Warnings, err)
	}

	files, err := collect(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output folder: %w", err)
		}
	}
	n, size, err := writeArchive(ctx, format, output, work, files)
	if err != nil {
		_ = os.Remove(output)
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	res.Files, res.Bytes = n, size

	log.Info("packaged mod", "output", output, "files", n, "bytes", size)
	return res, nil
}

func stageExecutable(exe, stage string) error {
	if exe == "" {
		return ErrExecutableMissing
	}
	info, err := os.Stat(exe)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrExecutableMissing, exe)
	}
	if err := copyFile(exe, filepath.Join(stage, filepath.Base(exe)), info.Mode()); err != nil {
		return fmt.Errorf("staging executable: %w", err)
	}
	return nil
}
