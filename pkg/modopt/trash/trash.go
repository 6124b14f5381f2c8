// Package trash discards files either permanently or by moving them to the
// desktop trash, when the platform offers one.
package trash

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// commandTimeout bounds each external trash command.
const commandTimeout = 30 * time.Second

// Mode selects how Discard gets rid of a file.
type Mode int

const (
	// Delete removes the file permanently.
	Delete Mode = iota
	// Trash moves the file to the desktop trash, deleting it when no
	// trash is available.
	Trash
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Discard removes path according to mode. A missing path is an error
// wrapping fs.ErrNotExist.
func Discard(ctx context.Context, path string, mode Mode) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("cannot discard %q: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve %q: %w", path, err)
	}

	if mode == Trash {
		if err := toTrash(ctx, abs); err == nil {
			return nil
		}
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("failed to delete %q: %w", abs, err)
	}
	return nil
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

func toTrash(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	for _, argv := range trashCommands(path) {
		bin, err := lookPath(argv[0])
		if err != nil {
			continue
		}
		if err := exec.CommandContext(ctx, bin, argv[1:]...).Run(); err == nil {
			return nil
		}
	}
	return errors.New("no trash available")
}

func trashCommands(path string) [][]string {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
		return [][]string{{"osascript", "-e", script}}
	case "windows":
		method := "DeleteFile"
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			method = "DeleteDirectory"
		}
		script := fmt.Sprintf(
			"Add-Type -AssemblyName Microsoft.VisualBasic; [Microsoft.VisualBasic.FileIO.FileSystem]::%s('%s', 'OnlyErrorDialogs', 'SendToRecycleBin')",
			method, path)
		return [][]string{{"powershell", "-NoProfile", "-NonInteractive", "-Command", script}}
	default:
		return [][]string{
			{"gio", "trash", path},
			{"trash-put", path},
		}
	}
}
