package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchAt(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestWatcher_Check(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod_options.json")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	touchAt(t, path, base)

	w := New(path, Options{})
	assert.Equal(t, DefaultInterval, w.Interval())

	_, changed := w.Check()
	assert.False(t, changed, "baseline is not a change")

	touchAt(t, path, base.Add(time.Minute))
	ev, changed := w.Check()
	require.True(t, changed)
	assert.True(t, ev.Exists)
	assert.Equal(t, path, ev.Path)

	_, changed = w.Check()
	assert.False(t, changed, "a change is reported once")

	require.NoError(t, os.Remove(path))
	ev, changed = w.Check()
	require.True(t, changed)
	assert.False(t, ev.Exists)

	touchAt(t, path, base)
	ev, changed = w.Check()
	require.True(t, changed, "reappearing counts")
	assert.True(t, ev.Exists)
}

func TestWatcher_RevertBetweenChecksIsInvisible(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "m.json")
	mod := time.Now().Add(-time.Hour).Truncate(time.Second)
	touchAt(t, path, mod)

	w := New(path, Options{})
	touchAt(t, path, mod.Add(time.Minute))
	touchAt(t, path, mod)

	_, changed := w.Check()
	assert.False(t, changed)
}

func TestWatcher_ComparesModTimeOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "m.json")
	mod := time.Now().Add(-time.Hour).Truncate(time.Second)
	touchAt(t, path, mod)

	w := New(path, Options{})
	require.NoError(t, os.WriteFile(path, []byte(`{"mod_name": "longer"}`), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))

	_, changed := w.Check()
	assert.False(t, changed, "a size change under the same timestamp is not seen")
}

func TestWatcher_Run(t *testing.T) {
	t.Parallel()

	for _, notify := range []bool{false, true} {
		notify := notify
		name := "poll"
		if notify {
			name = "fsnotify"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "m.json")
			mod := time.Now().Add(-time.Hour).Truncate(time.Second)
			touchAt(t, path, mod)

			w := New(path, Options{Interval: 20 * time.Millisecond, FSNotify: notify})
			sub := w.Broadcaster().Subscribe()
			require.NotNil(t, sub)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var mu sync.Mutex
			var seen []Event
			done := make(chan error, 1)
			go func() {
				done <- w.Run(ctx, func(ev Event) {
					mu.Lock()
					seen = append(seen, ev)
					mu.Unlock()
				})
			}()

			touchAt(t, path, mod.Add(time.Minute))

			select {
			case ev := <-sub.Events:
				assert.True(t, ev.Exists)
			case <-time.After(2 * time.Second):
				t.Fatal("no change event received")
			}

			cancel()
			assert.ErrorIs(t, <-done, context.Canceled)

			mu.Lock()
			assert.NotEmpty(t, seen)
			mu.Unlock()

			_, open := <-sub.Events
			assert.False(t, open, "Run closes subscriptions on exit")
		})
	}
}

func TestWatcher_RunMissingDirFallsBackToPolling(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent", "m.json")
	w := New(path, Options{Interval: 10 * time.Millisecond, FSNotify: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Run(ctx, nil), context.DeadlineExceeded)
}
