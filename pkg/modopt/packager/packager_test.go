package packager

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func setupDataDir(t *testing.T) (root, data string) {
	t.Helper()
	root = t.TempDir()
	data = filepath.Join(root, "data")
	files := map[string]string{
		"mod_options.json":                       `{"mod_name":"Cool Mod","entries":[]}`,
		"settings.json":                          `{}`,
		"zips/red.zip":                           "zipbytes",
		"zips/previews/red.png":                  "png",
		"assets/check.png":                       "icon",
		"assets/options_builder/default.png":     "placeholder",
		"assets/options_builder/nested/more.txt": "x",
	}
	for rel, content := range files {
		path := filepath.Join(data, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root, data
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"Cool Mod", "Cool_Mod"},
		{"  padded name  ", "padded_name"},
		{"", "UnnamedMod"},
		{"   ", "UnnamedMod"},
		{"NoSpaces", "NoSpaces"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), "SanitizeName(%q)", tt.in)
	}
}

func TestPack_Zip(t *testing.T) {
	t.Parallel()

	root, data := setupDataDir(t)
	exe := filepath.Join(root, "modopt-selector")
	require.NoError(t, os.WriteFile(exe, []byte("#!bin"), 0o755))

	staging := filepath.Join(root, "staging")
	out := filepath.Join(root, "dist", "Cool_Mod.zip")

	res, err := Pack(context.Background(), Options{
		ModName:     "Cool Mod",
		DataDir:     data,
		Executable:  exe,
		Output:      out,
		StagingRoot: staging,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "Cool_Mod", res.Folder)
	assert.Equal(t, 6, res.Files)
	assert.Positive(t, res.Bytes)

	assert.Equal(t, []string{
		"Cool_Mod/data/assets/check.png",
		"Cool_Mod/data/mod_options.json",
		"Cool_Mod/data/settings.json",
		"Cool_Mod/data/zips/previews/red.png",
		"Cool_Mod/data/zips/red.zip",
		"Cool_Mod/modopt-selector",
	}, zipNames(t, out))

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging folder removed")
}

func TestPack_MissingExecutableWarns(t *testing.T) {
	t.Parallel()

	root, data := setupDataDir(t)
	out := filepath.Join(root, "out.zip")

	res, err := Pack(context.Background(), Options{
		ModName:     "",
		DataDir:     data,
		Executable:  filepath.Join(root, "missing.exe"),
		Output:      out,
		StagingRoot: root,
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.Is(res.Warnings[0], ErrExecutableMissing))

	names := zipNames(t, out)
	require.NotEmpty(t, names)
	for _, n := range names {
		assert.Regexp(t, `^UnnamedMod/data/`, n)
	}
}

func TestPack_TarXZ(t *testing.T) {
	t.Parallel()

	root, data := setupDataDir(t)
	out := filepath.Join(root, "pkg.tar.xz")

	res, err := Pack(context.Background(), Options{
		ModName:     "Cool Mod",
		DataDir:     data,
		Output:      out,
		Format:      "tar.xz",
		StagingRoot: root,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Files)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	xr, err := xz.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(xr)

	var names []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
		if hdr.Name == "Cool_Mod/data/settings.json" {
			body, err := io.ReadAll(tr)
			require.NoError(t, err)
			assert.Equal(t, "{}", string(body))
		}
	}
	assert.Contains(t, names, "Cool_Mod/data/zips/red.zip")
	assert.NotContains(t, names, "Cool_Mod/data/assets/options_builder/default.png")
}

func TestPack_Errors(t *testing.T) {
	t.Parallel()

	root, data := setupDataDir(t)

	_, err := Pack(context.Background(), Options{DataDir: data, Format: "rar", StagingRoot: root})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Pack(context.Background(), Options{DataDir: filepath.Join(root, "nope"), StagingRoot: root})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Pack(ctx, Options{DataDir: data, Output: filepath.Join(root, "c.zip"), StagingRoot: filepath.Join(root, "st")})
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(filepath.Join(root, "st"))
	require.NoError(t, err)
	assert.Empty(t, entries, "staging removed after failure")
}

func TestDefaultOutput(t *testing.T) {
	t.Parallel()

	name, err := DefaultOutput("My Mod", "")
	require.NoError(t, err)
	assert.Equal(t, "My_Mod.zip", name)

	name, err = DefaultOutput("My Mod", "TAR.XZ")
	require.NoError(t, err)
	assert.Equal(t, "My_Mod.tar.xz", name)

	assert.Equal(t, []string{"zip", "tar.xz"}, Formats())
}
