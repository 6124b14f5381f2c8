// Package cli holds the start-up and prompt helpers shared by the
// modopt-builder and modopt-selector commands.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/listing"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

// ErrNoMatch is returned when an index or title selects no entry.
var ErrNoMatch = errors.New("no matching entry")

// ErrAmbiguous is returned when a title matches more than one entry.
var ErrAmbiguous = errors.New("title matches more than one entry")

// Env is the loaded configuration of one command invocation.
type Env struct {
	App    string
	Config *config.Config
	Layout config.Layout
}

// Options adjusts Load.
type Options struct {
	// DataDir overrides the configured data folder when set.
	DataDir string

	// Verbose logs debug records to stderr as well as the log file.
	Verbose bool
}

// Load reads the configuration and applies command-line overrides.
func Load(app string, opts Options) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		dir, err := config.ExpandPath(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("expanding --data-dir: %w", err)
		}
		cfg.DataDir = dir
	}
	env := &Env{App: app, Config: cfg, Layout: cfg.Layout()}
	if err := env.InitLogging(false, opts.Verbose); err != nil {
		return nil, err
	}
	return env, nil
}

// InitLogging (re)initializes logging. In TUI mode console output is off and
// recent records are kept for the log panel.
func (e *Env) InitLogging(tui, verbose bool) error {
	rotation, err := ParseRotation(e.Config.Logging.Rotation)
	if err != nil {
		return err
	}
	level := e.Config.Logging.Level
	if level == "" {
		level = "info"
	}
	console := "warn"
	if verbose {
		console = "debug"
	}
	return logging.Init(logging.Config{
		App:          e.App,
		Level:        level,
		Path:         e.Config.Logging.Path,
		Rotation:     rotation,
		Components:   e.Config.Logging.Components,
		ConsoleLevel: console,
		TUIMode:      tui,
	})
}

// ParseRotation converts the configured rotation into the logging form.
// Unset fields take the logging defaults.
func ParseRotation(rc config.RotationConfig) (logging.RotationConfig, error) {
	out := logging.DefaultRotationConfig()
	size, err := rc.MaxSizeBytes()
	if err != nil {
		return out, err
	}
	if size > 0 {
		out.MaxSize = size
	}
	if rc.MaxAge > 0 {
		out.MaxAge = rc.MaxAge
	}
	if rc.MaxBackups > 0 {
		out.MaxBackups = rc.MaxBackups
	}
	return out, nil
}

// Lister opens the archive listing cache when enabled. It always returns a
// usable Lister.
func (e *Env) Lister() *listing.Lister {
	if !e.Config.Cache.Enabled {
		return listing.New(nil)
	}
	return listing.Open(e.Config.ListingCachePath())
}

// ResolveEntry picks an entry by zero-based index or by exact title.
func ResolveEntry(m *manifest.Manifest, arg string) (int, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		if i < 0 || i >= len(m.Entries) {
			return -1, fmt.Errorf("%w: %d (have %d)", manifest.ErrIndexOutOfRange, i, len(m.Entries))
		}
		return i, nil
	}

	found := -1
	for i, e := range m.Entries {
		if e.Title != arg {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("%w: %q", ErrAmbiguous, arg)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNoMatch, arg)
	}
	return found, nil
}

// Confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes is a no. assumeYes skips the question.
func Confirm(in io.Reader, out io.Writer, question string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
