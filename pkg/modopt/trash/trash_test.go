package trash

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscard_Delete(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "red.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o644))

	require.NoError(t, Discard(context.Background(), path, Delete))
	assert.False(t, Exists(path))
}

func TestDiscard_Directory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "previews")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))

	require.NoError(t, Discard(context.Background(), dir, Delete))
	assert.False(t, Exists(dir))
}

func TestDiscard_Missing(t *testing.T) {
	t.Parallel()

	err := Discard(context.Background(), filepath.Join(t.TempDir(), "nope"), Delete)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

// Not parallel: swaps lookPath.
func TestDiscard_TrashFallsBackToDelete(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = orig })

	path := filepath.Join(t.TempDir(), "p.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	require.NoError(t, Discard(context.Background(), path, Trash))
	assert.False(t, Exists(path))
}

func TestTrashCommands(t *testing.T) {
	t.Parallel()

	cmds := trashCommands("/tmp/x")
	require.NotEmpty(t, cmds)
	for _, argv := range cmds {
		assert.NotEmpty(t, argv[0])
	}
}
