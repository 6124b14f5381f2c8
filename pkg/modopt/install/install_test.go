package install

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
)

type fixture struct {
	layout     config.Layout
	installDir string
	settings   *settings.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		layout:     config.NewLayout(filepath.Join(root, "data")),
		installDir: filepath.Join(root, "game"),
	}
	require.NoError(t, os.MkdirAll(f.installDir, 0o755))

	s, err := settings.Load(f.layout.SettingsPath())
	require.NoError(t, err)
	s.SetInstallDir(f.installDir)
	f.settings = s
	return f
}

// writeZip creates data/zips/<name> holding the given members and returns
// the manifest path for it.
func (f *fixture) writeZip(t *testing.T, name string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(f.layout.ZipsDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for member, content := range members {
		w, err := zw.Create(member)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return "data/zips/" + name
}

func (f *fixture) touch(t *testing.T, rel string) {
	t.Helper()
	path := filepath.Join(f.installDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func (f *fixture) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(f.installDir, filepath.FromSlash(rel)))
	return err == nil
}

func TestIsInstalled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	e := manifest.Entry{Files: []string{"a.txt", "sub/b.txt"}}

	assert.False(t, IsInstalled(e, f.installDir))

	f.touch(t, "a.txt")
	assert.False(t, IsInstalled(e, f.installDir), "partially present")

	f.touch(t, "sub/b.txt")
	assert.True(t, IsInstalled(e, f.installDir))

	for _, rel := range e.Files {
		require.NoError(t, os.Remove(filepath.Join(f.installDir, filepath.FromSlash(rel))))
		assert.False(t, IsInstalled(e, f.installDir), "removing %s must flip status", rel)
		f.touch(t, rel)
	}

	assert.False(t, IsInstalled(e, ""), "no install dir")
	assert.False(t, IsInstalled(manifest.Entry{}, f.installDir), "no files")
	assert.False(t, IsInstalled(manifest.Entry{Files: []string{}}, f.installDir), "empty files")
	assert.False(t, IsInstalled(manifest.Entry{Files: []string{"../game/a.txt"}}, f.installDir), "climbs out and back in")
	assert.False(t, IsInstalled(manifest.Entry{Files: []string{"sub/../a.txt"}}, f.installDir))
	assert.False(t, IsInstalled(manifest.Entry{Files: []string{"../outside.txt"}}, f.installDir))
}

func TestTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := target(dir, "skins/red.pak")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "skins", "red.pak"), got)

	for _, rel := range []string{"../x", "a/../../x", "a/../b", "..", "", "/etc/passwd", `a\..\b`} {
		_, err := target(dir, rel)
		assert.ErrorIs(t, err, ErrUnsafePath, rel)
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	preview := filepath.Join(f.layout.PreviewsDir(), "p.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(preview), 0o755))
	require.NoError(t, os.WriteFile(preview, []byte("png"), 0o644))
	f.touch(t, "here.txt")

	complete := manifest.Entry{
		Preview:     "data/zips/previews/p.png",
		ChunkID:     "c1",
		Replaces:    "r1",
		Description: "d",
	}

	tests := []struct {
		name  string
		entry func() manifest.Entry
		want  State
		warns int
	}{
		{"no files is error", func() manifest.Entry { e := complete; return e }, StateError, 0},
		{"installed", func() manifest.Entry { e := complete; e.Files = []string{"here.txt"}; return e }, StateInstalled, 0},
		{"installed with caution", func() manifest.Entry {
			e := complete
			e.Files = []string{"here.txt"}
			e.ChunkID = ""
			return e
		}, StateInstalledWithCaution, 1},
		{"caution", func() manifest.Entry {
			e := complete
			e.Files = []string{"gone.txt"}
			e.Preview = "None"
			e.Description = ""
			return e
		}, StateCaution, 2},
		{"none", func() manifest.Entry { e := complete; e.Files = []string{"gone.txt"}; return e }, StateNone, 0},
		{"blank metadata is present", func() manifest.Entry {
			e := complete
			e.Files = []string{"gone.txt"}
			e.ChunkID, e.Replaces, e.Description = " ", " ", " "
			return e
		}, StateNone, 0},
		{"missing preview file", func() manifest.Entry {
			e := complete
			e.Files = []string{"gone.txt"}
			e.Preview = "data/zips/previews/missing.png"
			return e
		}, StateCaution, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(tt.entry(), f.installDir, f.layout)
			assert.Equal(t, tt.want, st.State)
			assert.Len(t, st.Warnings, tt.warns)
		})
	}
}

func TestEvaluate_ErrorIgnoresOtherFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	st := Evaluate(manifest.Entry{Title: "x", ChunkID: "c", Replaces: "r", Description: "d"}, f.installDir, f.layout)
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, ErrorTooltip, st.Tooltip())
	assert.Equal(t, "Install", st.ActionLabel())
}

func TestStatus_Tooltip(t *testing.T) {
	t.Parallel()

	st := Status{State: StateInstalledWithCaution, Installed: true, Warnings: []Warning{WarnMissingChunkID, WarnMissingDescription}}
	assert.Equal(t, "Installed\nCaution:\nMissing chunk ID\nMissing description", st.Tooltip())
	assert.Equal(t, "Uninstall", st.ActionLabel())
	assert.Empty(t, Status{State: StateNone}.Tooltip())
}

// Red Skin walkthrough: caution before install, Uninstall label after.
func TestRedSkinScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	zipPath := f.writeZip(t, "red.zip", map[string]string{"skin.png": "red"})
	m := &manifest.Manifest{Entries: []manifest.Entry{{Title: "Red Skin", ZipPath: zipPath, Files: []string{"skin.png"}}}}
	in := New(f.layout, m, f.settings)

	st := in.Status()[0]
	assert.False(t, st.Installed)
	assert.Equal(t, StateCaution, st.State)
	assert.Equal(t, "Install", st.ActionLabel())

	action, err := in.Toggle(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, ActionInstall, action)
	assert.True(t, f.exists("skin.png"))

	st = in.Status()[0]
	assert.Equal(t, StateInstalledWithCaution, st.State)
	assert.Equal(t, "Uninstall", st.ActionLabel())

	action, err = in.Toggle(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, ActionUninstall, action)
	assert.False(t, f.exists("skin.png"))
}

func TestInstall_ReplacesOtherOption(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.writeZip(t, "a.zip", map[string]string{"shared.dat": "A", "a_only.dat": "A"})
	m := &manifest.Manifest{Entries: []manifest.Entry{
		{Title: "A", ZipPath: a, Files: []string{"shared.dat", "a_only.dat"}},
		{Title: "B", Files: []string{"shared.dat", "b_only.dat"}},
		{Title: "Broken"},
	}}
	f.touch(t, "shared.dat")
	f.touch(t, "b_only.dat")

	in := New(f.layout, m, f.settings)
	plan, err := in.Plan(0)
	require.NoError(t, err)
	assert.Equal(t, ActionInstall, plan.Action)
	assert.Equal(t, []int{1}, plan.Conflicts)
	assert.False(t, plan.NeedsConfirm)

	require.NoError(t, in.Install(context.Background(), 0))

	assert.False(t, f.exists("b_only.dat"))
	assert.True(t, f.exists("shared.dat"))
	assert.True(t, f.exists("a_only.dat"))

	data, err := os.ReadFile(filepath.Join(f.installDir, "shared.dat"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))
	assert.False(t, IsInstalled(m.Entries[1], f.installDir))
}

func TestInstall_MultipleAllowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.settings.SetCanInstallMultiple(true)
	a := f.writeZip(t, "a.zip", map[string]string{"a.dat": "A"})
	m := &manifest.Manifest{Entries: []manifest.Entry{
		{Title: "A", ZipPath: a, Files: []string{"a.dat"}},
		{Title: "B", Files: []string{"b.dat"}},
	}}
	f.touch(t, "b.dat")

	in := New(f.layout, m, f.settings)
	plan, err := in.Plan(0)
	require.NoError(t, err)
	assert.Empty(t, plan.Conflicts)

	require.NoError(t, in.Install(context.Background(), 0))
	assert.True(t, f.exists("b.dat"))
	assert.True(t, f.exists("a.dat"))
}

func TestPlan_NeedsConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.settings.SetPromptUser(true)
	m := &manifest.Manifest{Entries: []manifest.Entry{
		{Title: "A", Files: []string{"a.dat"}},
		{Title: "B", Files: []string{"b.dat"}},
		{Title: "C", Files: []string{"c.dat"}},
	}}
	in := New(f.layout, m, f.settings)

	plan, err := in.Plan(0)
	require.NoError(t, err)
	assert.False(t, plan.NeedsConfirm, "nothing to replace")

	f.touch(t, "b.dat")
	plan, err = in.Plan(0)
	require.NoError(t, err)
	assert.True(t, plan.NeedsConfirm)
	assert.Contains(t, plan.Prompt(), "Another option is already installed.")
	assert.Contains(t, plan.Prompt(), "'A'")

	plan, err = in.Plan(1)
	require.NoError(t, err)
	assert.Equal(t, ActionUninstall, plan.Action)
	assert.True(t, plan.NeedsConfirm)
	assert.Equal(t, "Do you want to uninstall 'B'?", plan.Prompt())

	_, err = in.Plan(7)
	assert.ErrorIs(t, err, manifest.ErrIndexOutOfRange)
}

func TestPlanUninstall_PartlyInstalled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := &manifest.Manifest{Entries: []manifest.Entry{{Title: "A", Files: []string{"one", "two"}}}}
	in := New(f.layout, m, f.settings)

	_, ok, err := in.PlanUninstall(0)
	require.NoError(t, err)
	assert.False(t, ok)

	f.touch(t, "two")
	assert.Equal(t, []string{"two"}, PresentFiles(m.Entries[0], f.installDir))
	plan, ok, err := in.PlanUninstall(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ActionUninstall, plan.Action)
	assert.Empty(t, plan.Conflicts)

	require.NoError(t, in.Uninstall(context.Background(), 0))
	assert.False(t, f.exists("two"))

	_, _, err = in.PlanUninstall(3)
	assert.ErrorIs(t, err, manifest.ErrIndexOutOfRange)
}

func TestUninstall_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := &manifest.Manifest{Entries: []manifest.Entry{{Title: "A", Files: []string{"one", "two", "three"}}}}
	f.touch(t, "two")
	f.touch(t, "unrelated")

	in := New(f.layout, m, f.settings)
	require.NoError(t, in.Uninstall(context.Background(), 0))
	require.NoError(t, in.Uninstall(context.Background(), 0))

	assert.False(t, f.exists("two"))
	assert.True(t, f.exists("unrelated"))
}

func TestUninstall_CollectsErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := &manifest.Manifest{Entries: []manifest.Entry{{Title: "A", Files: []string{"../escape", "nonempty", "plain"}}}}
	f.touch(t, "nonempty/child")
	f.touch(t, "plain")

	in := New(f.layout, m, f.settings)
	err := in.Uninstall(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsafePath)

	var pe *PathError
	assert.True(t, errors.As(err, &pe))
	assert.False(t, f.exists("plain"), "batch continues past failures")
}

func TestInstall_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := &manifest.Manifest{Entries: []manifest.Entry{
		{Title: "NoZip", Files: []string{"a"}},
		{Title: "BadZip", ZipPath: "data/zips/missing.zip", Files: []string{"a"}},
	}}
	in := New(f.layout, m, f.settings)

	assert.ErrorIs(t, in.Install(context.Background(), 0), ErrNoArchive)
	assert.Error(t, in.Install(context.Background(), 1))

	f.settings.SetInstallDir("")
	assert.ErrorIs(t, in.Install(context.Background(), 1), ErrNoInstallDir)
	assert.ErrorIs(t, in.Uninstall(context.Background(), 1), ErrNoInstallDir)
}

func TestExtract_RejectsTraversal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rel := f.writeZip(t, "evil.zip", map[string]string{"../../evil.txt": "x"})

	_, err := Extract(context.Background(), f.layout.Resolve(rel), f.installDir)
	assert.ErrorIs(t, err, ErrUnsafePath)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(f.installDir), "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtract_DirectoriesAndOverwrite(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rel := f.writeZip(t, "d.zip", map[string]string{"dir/": "", "dir/file.txt": "new"})
	f.touch(t, "dir/file.txt")

	n, err := Extract(context.Background(), f.layout.Resolve(rel), f.installDir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(f.installDir, "dir", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExtract_Canceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rel := f.writeZip(t, "c.zip", map[string]string{"a": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, f.layout.Resolve(rel), f.installDir)
	assert.ErrorIs(t, err, context.Canceled)
}
