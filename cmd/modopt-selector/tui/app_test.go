package tui

import (
	"archive/zip"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/install"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

type fixture struct {
	layout     config.Layout
	installDir string
	settings   *settings.Settings
	manifest   *manifest.Manifest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		layout:     config.NewLayout(filepath.Join(root, "data")),
		installDir: filepath.Join(root, "game"),
	}
	require.NoError(t, os.MkdirAll(f.installDir, 0o755))
	require.NoError(t, os.MkdirAll(f.layout.ZipsDir(), 0o755))

	for _, name := range []string{"red", "blue"} {
		path := filepath.Join(f.layout.ZipsDir(), name+".zip")
		out, err := os.Create(path)
		require.NoError(t, err)
		zw := zip.NewWriter(out)
		w, err := zw.Create("skins/" + name + ".pak")
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, out.Close())
	}

	f.manifest = &manifest.Manifest{
		ModName: "Skins",
		Entries: []manifest.Entry{
			{Title: "Red", ZipPath: "data/zips/red.zip", Files: []string{"skins/red.pak"}},
			{Title: "Blue", ZipPath: "data/zips/blue.zip", Files: []string{"skins/blue.pak"}},
		},
	}
	require.NoError(t, manifest.Save(f.layout.ManifestPath(), f.manifest))

	s, err := settings.Load(f.layout.SettingsPath())
	require.NoError(t, err)
	f.settings = s
	return f
}

func (f *fixture) model() Model {
	return NewModel(Options{
		Layout:    f.layout,
		Installer: install.New(f.layout, f.manifest, f.settings),
	})
}

func (f *fixture) installed(name string) bool {
	_, err := os.Stat(filepath.Join(f.installDir, "skins", name+".pak"))
	return err == nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and runs the returned commands until the
// model settles. Only install, dialog and reload results are fed back.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		cmd, queue = queue[0], queue[1:]
		if cmd == nil {
			continue
		}
		switch out := cmd().(type) {
		case tea.BatchMsg:
			queue = append(queue, out...)
		case opDoneMsg, ui.DialogClosedMsg, reloadedMsg:
			next, c := m.Update(out)
			m = next.(Model)
			queue = append(queue, c)
		}
	}
	return m
}

func TestModel_ToggleInstallsAndReplaces(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.settings.SetInstallDir(f.installDir)

	m := f.model()
	m = send(t, m, key("enter"))
	require.Nil(t, m.dialog)
	assert.True(t, f.installed("red"))
	assert.Equal(t, install.StateInstalledWithCaution, m.statuses[0].State)
	assert.Equal(t, "Installed 'Red'", m.status)

	m = send(t, m, key("down"))
	m = send(t, m, key("enter"))
	assert.True(t, f.installed("blue"))
	assert.False(t, f.installed("red"))

	m = send(t, m, key("enter"))
	assert.False(t, f.installed("blue"))
	assert.Equal(t, "Uninstalled 'Blue'", m.status)
}

func TestModel_PromptsForInstallDir(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.model()
	m = send(t, m, key("enter"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, tagInstallDir, m.dialog.Tag)

	m = send(t, m, ui.DialogClosedMsg{Tag: tagInstallDir, Accepted: true, Value: f.installDir})

	assert.Nil(t, m.dialog)
	assert.Equal(t, f.installDir, f.settings.InstallDir())
	assert.True(t, f.installed("red"), "the pending toggle runs once a folder is chosen")

	reloaded, err := settings.Load(f.layout.SettingsPath())
	require.NoError(t, err)
	assert.Equal(t, f.installDir, reloaded.InstallDir())
}

func TestModel_InvalidInstallDir(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.model()
	m = send(t, m, key("d"))
	require.NotNil(t, m.dialog)
	m = send(t, m, ui.DialogClosedMsg{Tag: tagInstallDir, Accepted: true, Value: filepath.Join(f.installDir, "missing")})
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Error", m.dialog.Title)
	assert.Empty(t, f.settings.InstallDir())
}

func TestModel_ConfirmBeforeUninstall(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.settings.SetInstallDir(f.installDir)
	f.settings.SetPromptUser(true)

	m := f.model()
	m = send(t, m, key("enter"))
	require.True(t, f.installed("red"))

	m = send(t, m, key("enter"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Do you want to uninstall 'Red'?", m.dialog.Body)

	m = send(t, m, key("n"))
	assert.Nil(t, m.dialog)
	assert.True(t, f.installed("red"))

	m = send(t, m, key("enter"))
	m = send(t, m, key("y"))
	assert.False(t, f.installed("red"))
}

func TestModel_ExitPrompt(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.settings.SetPromptBeforeExit(true)

	m := f.model()
	next, _ := m.Update(key("q"))
	m = next.(Model)
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Are you sure you want to exit?", m.dialog.Body)

	next, cmd := m.Update(ui.DialogClosedMsg{Tag: tagExit, Accepted: true})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_SettingsScreen(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.model()
	m = send(t, m, key("s"))
	require.NotNil(t, m.settings)

	m = send(t, m, key("down")) // Allow Multiple Installs
	m = send(t, m, key(" "))
	m = send(t, m, key("o"))
	assert.Nil(t, m.settings)
	assert.True(t, f.settings.CanInstallMultiple())

	reloaded, err := settings.Load(f.layout.SettingsPath())
	require.NoError(t, err)
	assert.True(t, reloaded.CanInstallMultiple())
}

func TestModel_Reload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.model()
	m = send(t, m, key("down"))
	assert.Equal(t, 1, m.cursor)

	f.manifest = &manifest.Manifest{ModName: "Other", Entries: []manifest.Entry{{Title: "Only"}}}
	require.NoError(t, manifest.Save(f.layout.ManifestPath(), f.manifest))

	m = send(t, m, manifestChangedMsg{})
	assert.Equal(t, 0, m.cursor)
	require.Len(t, m.statuses, 1)
	assert.Equal(t, install.StateError, m.statuses[0].State)
	assert.Contains(t, m.View(), "Other")
}

func TestModel_OpenBuilderPassesDataDir(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell script")
	}
	f := newFixture(t)

	record := filepath.Join(t.TempDir(), "args")
	builder := filepath.Join(t.TempDir(), "modopt-builder")
	script := "#!/bin/sh\necho \"$@\" > " + record + "\n"
	require.NoError(t, os.WriteFile(builder, []byte(script), 0o755))

	m := NewModel(Options{
		Layout:    f.layout,
		Installer: install.New(f.layout, f.manifest, f.settings),
		Builder:   builder,
	})
	m = send(t, m, key("b"))
	require.Nil(t, m.dialog)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(record)
		return err == nil && strings.TrimSpace(string(data)) == "--data-dir "+f.layout.DataDir
	}, 5*time.Second, 10*time.Millisecond)
}

func TestModel_BuilderArgsAbsolute(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	m := NewModel(Options{
		Layout:    config.NewLayout("data"),
		Installer: install.New(f.layout, f.manifest, f.settings),
	})
	args := m.builderArgs()
	require.Len(t, args, 2)
	assert.Equal(t, "--data-dir", args[0])
	assert.True(t, filepath.IsAbs(args[1]))
	assert.Equal(t, "data", filepath.Base(args[1]))
}

func TestModel_View(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.model()
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "Skins")
	assert.Contains(t, view, "Red")
	assert.Contains(t, view, "Chunk ID: N/A")
	assert.Contains(t, view, "not set")
	assert.NotContains(t, view, "Open Mod Option Builder")
}
