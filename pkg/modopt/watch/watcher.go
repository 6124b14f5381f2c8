// Package watch detects changes to the manifest file made by another process.
//
// The modification time is polled on a fixed interval; a change seen at a
// tick is reported once, and a change reverted between two ticks is never
// seen. Filesystem notifications, when enabled, only trigger an early check.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/modopt/pkg/modopt/logging"
)

// DefaultInterval is the poll period when none is given.
const DefaultInterval = 2 * time.Second

// Event reports that the watched file changed.
type Event struct {
	Path    string
	Exists  bool
	ModTime time.Time
}

// Options configures a Watcher.
type Options struct {
	// Interval between modification time checks. Zero uses DefaultInterval.
	Interval time.Duration

	// FSNotify also watches the file's directory and checks as soon as
	// something in it changes.
	FSNotify bool
}

type stamp struct {
	exists  bool
	modTime time.Time
}

// Watcher polls one file for modification time changes.
type Watcher struct {
	path     string
	interval time.Duration
	notify   bool
	b        *Broadcaster

	mu   sync.Mutex
	last stamp
}

// New returns a Watcher for path. The file's current state is the baseline,
// so Run reports only later changes.
func New(path string, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	w := &Watcher{
		path:     path,
		interval: opts.Interval,
		notify:   opts.FSNotify,
		b:        NewBroadcaster(),
	}
	w.last = w.stat()
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Interval returns the poll period.
func (w *Watcher) Interval() time.Duration { return w.interval }

// Broadcaster returns the broadcaster every change is published to.
func (w *Watcher) Broadcaster() *Broadcaster { return w.b }

func (w *Watcher) stat() stamp {
	info, err := os.Stat(w.path)
	if err != nil {
		return stamp{}
	}
	return stamp{exists: true, modTime: info.ModTime()}
}

// Check compares the file against the last seen state. When it differs it
// records the new state, publishes an event and returns it.
func (w *Watcher) Check() (Event, bool) {
	cur := w.stat()

	w.mu.Lock()
	changed := cur.exists != w.last.exists || !cur.modTime.Equal(w.last.modTime)
	if changed {
		w.last = cur
	}
	w.mu.Unlock()

	if !changed {
		return Event{}, false
	}
	ev := Event{Path: w.path, Exists: cur.exists, ModTime: cur.modTime}
	w.b.Notify(ev)
	return ev, true
}

// Run checks the file until ctx is done, calling onChange (if non-nil) for
// every change. It closes the broadcaster on return.
func (w *Watcher) Run(ctx context.Context, onChange func(Event)) error {
	defer w.b.Close()

	log := logging.Get("watch")

	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	if w.notify {
		fsw, err := w.startNotify()
		if err != nil {
			log.Warn("filesystem notifications unavailable, polling only", "error", err)
		} else {
			defer fsw.Close()
			fsEvents, fsErrors = fsw.Events, fsw.Errors
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	check := func() {
		if ev, ok := w.Check(); ok {
			log.Debug("manifest changed", "path", ev.Path, "exists", ev.Exists)
			if onChange != nil {
				onChange(ev)
			}
		}
	}

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			check()
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if filepath.Base(ev.Name) == base {
				check()
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			log.Warn("filesystem notification error", "error", err)
		}
	}
}

func (w *Watcher) startNotify() (*fsnotify.Watcher, error) {
	dir := filepath.Dir(w.path)
	if info, err := os.Stat(dir); err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: dir, Err: errors.New("not a directory")}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return fsw, nil
}
