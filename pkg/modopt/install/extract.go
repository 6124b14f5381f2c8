package install

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks the zip at archivePath into destDir, overwriting files
// that already exist. Members that would land outside destDir abort the
// extraction with ErrUnsafePath. It returns the number of files written.
func Extract(ctx context.Context, archivePath, destDir string) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, &PathError{Op: "open", Path: archivePath, Err: err}
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return 0, fmt.Errorf("resolving install directory: %w", err)
	}

	written := 0
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		name := strings.TrimLeft(f.Name, "/")
		if name == "" {
			continue
		}
		path, err := target(root, name)
		if err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return written, &PathError{Op: "mkdir", Path: path, Err: err}
			}
			continue
		}

		if err := extractFile(f, path); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func extractFile(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &PathError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	rc, err := f.Open()
	if err != nil {
		return &PathError{Op: "open", Path: f.Name, Err: err}
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return &PathError{Op: "create", Path: path, Err: err}
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return &PathError{Op: "write", Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &PathError{Op: "close", Path: path, Err: err}
	}
	return nil
}
