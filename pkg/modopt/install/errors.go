package install

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrNoInstallDir = errors.New("no install directory set")
	ErrNoArchive    = errors.New("entry has no zip archive")
	ErrUnsafePath   = errors.New("path escapes install directory")
	ErrBusy         = errors.New("another install or uninstall is running")
)

// PathError records the path an operation failed on.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }
