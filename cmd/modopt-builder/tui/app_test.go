package tui

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/editor"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

func writeZip(t *testing.T, path string, names ...string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
}

// newLayout writes a manifest with a Red entry backed by red.zip and an
// empty Blue entry; blue.zip sits unused in data/zips.
func newLayout(t *testing.T) config.Layout {
	t.Helper()
	layout := config.NewLayout(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, os.MkdirAll(layout.ZipsDir(), 0o755))
	writeZip(t, filepath.Join(layout.ZipsDir(), "red.zip"), "skins/red.pak")
	writeZip(t, filepath.Join(layout.ZipsDir(), "blue.zip"), "skins/blue.pak", "skins/blue.txt")

	require.NoError(t, manifest.Save(layout.ManifestPath(), &manifest.Manifest{
		ModName: "Skins",
		Entries: []manifest.Entry{
			{Title: "Red", ZipPath: "data/zips/red.zip", Files: []string{"skins/red.pak"}},
			{Title: "Blue", Files: []string{}},
		},
	}))
	return layout
}

func newModel(t *testing.T, layout config.Layout) Model {
	t.Helper()
	doc, err := editor.Open(layout, nil)
	require.NoError(t, err)
	return NewModel(Options{Document: doc})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and runs the returned commands until the
// model settles.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
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
			case packDoneMsg, previewMsg, errMsg, ui.DialogClosedMsg:
				next, c := m.Update(out)
				m = next.(Model)
				queue = append(queue, c)
			}
		}
	}
	return m
}

func closed(tag string, accepted bool, value string) ui.DialogClosedMsg {
	return ui.DialogClosedMsg{Tag: tag, Accepted: accepted, Value: value}
}

func loadManifest(t *testing.T, layout config.Layout) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load(layout.ManifestPath())
	require.NoError(t, err)
	return m
}

func TestModel_AddEditSave(t *testing.T) {
	t.Parallel()
	layout := newLayout(t)
	m := newModel(t, layout)

	m = send(t, m, key("a"))
	assert.Equal(t, paneForm, m.focus)
	assert.Equal(t, fieldTitle, m.form.field)
	assert.Equal(t, 2, m.doc.Selected())
	assert.Equal(t, "Save*", m.saveLabel())

	m = send(t, m, key("enter"))
	require.Equal(t, editLine, m.form.mode)
	assert.Equal(t, editor.NewEntryTitle, m.form.input.Value())
	m.form.input.SetValue("Green")
	m = send(t, m, key("enter"))
	assert.Equal(t, editNone, m.form.mode)
	assert.Equal(t, "Green", m.doc.Titles()[2])

	m = send(t, m, key("ctrl+s"))
	assert.Equal(t, "Saved", m.saveLabel())

	disk := loadManifest(t, layout)
	require.Len(t, disk.Entries, 3)
	assert.Equal(t, "Green", disk.Entries[2].Title)
	assert.Equal(t, []string{}, disk.Entries[2].Files)
}

func TestModel_EscCancelsEdit(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	m = send(t, m, key("tab"), key("down"), key("enter"))
	m.form.input.SetValue("changed")
	m = send(t, m, key("esc"))

	assert.Equal(t, "Red", m.doc.Titles()[0])
	assert.False(t, m.doc.Dirty())
}

func TestModel_DraftSurvivesNavigation(t *testing.T) {
	t.Parallel()
	layout := newLayout(t)
	m := newModel(t, layout)

	// Chunk ID is the sixth field.
	m = send(t, m, key("tab"))
	for range fieldChunkID {
		m = send(t, m, key("down"))
	}
	require.Equal(t, fieldChunkID, m.form.field)
	m = send(t, m, key("enter"), key("c42"), key("enter"))

	m = send(t, m, key("tab"), key("down"))
	assert.Equal(t, 1, m.doc.Selected())
	m = send(t, m, key("up"))

	assert.Equal(t, "c42", m.doc.Draft().ChunkID)
	assert.True(t, m.doc.Dirty())
	assert.Empty(t, loadManifest(t, layout).Entries[0].ChunkID)
}

func TestModel_DescriptionTextArea(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	m = send(t, m, key("tab"))
	for range fieldDescription {
		m = send(t, m, key("down"))
	}
	m = send(t, m, key("enter"))
	require.Equal(t, editText, m.form.mode)
	m.form.area.SetValue("line one\nline two")
	m = send(t, m, key("esc"))

	assert.Equal(t, editNone, m.form.mode)
	assert.Equal(t, "line one\nline two", m.doc.Draft().Description)
}

func TestModel_ZipChoiceFillsFiles(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	m = send(t, m, key("down"), key("tab"))
	m.form.field = fieldZip
	m = send(t, m, key("right"))

	d := m.doc.Draft()
	assert.Equal(t, "data/zips/blue.zip", d.ZipPath)
	assert.Equal(t, []string{"skins/blue.pak", "skins/blue.txt"}, d.Files)

	m = send(t, m, key("right"))
	assert.Equal(t, "data/zips/red.zip", m.doc.Draft().ZipPath)
	assert.Equal(t, []string{"skins/red.pak"}, m.doc.Draft().Files)
}

func TestModel_GetFilesWithoutZip(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	m = send(t, m, key("down"), key("tab"), key("g"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "No ZIP Selected", m.dialog.Title)
}

func TestModel_FilesEditing(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	m = send(t, m, key("tab"))
	m.form.field = fieldFiles
	m = send(t, m, key("enter"))
	require.True(t, m.form.filesMode)

	m = send(t, m, key("a"))
	require.NotNil(t, m.dialog)
	m = send(t, m, closed(tagAddFile, true, "skins/red.txt"))
	assert.Equal(t, []string{"skins/red.pak", "skins/red.txt"}, m.doc.Draft().Files)
	assert.Equal(t, 1, m.form.fileCursor)

	m = send(t, m, key("x"))
	assert.Equal(t, []string{"skins/red.pak"}, m.doc.Draft().Files)
	assert.Equal(t, 0, m.form.fileCursor)

	m = send(t, m, key("esc"))
	assert.False(t, m.form.filesMode)
}

func TestModel_DeleteWithAssets(t *testing.T) {
	t.Parallel()
	layout := newLayout(t)
	m := newModel(t, layout)

	m = send(t, m, key("x"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Delete the selected entry?", m.dialog.Body)

	m = send(t, m, closed(tagDelete, true, ""))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Delete associated files from disk?", m.dialog.Body)

	m = send(t, m, closed(tagDeleteFiles, true, ""))
	assert.Nil(t, m.dialog)
	assert.NoFileExists(t, filepath.Join(layout.ZipsDir(), "red.zip"))
	assert.Equal(t, []string{"Blue"}, m.doc.Titles())

	disk := loadManifest(t, layout)
	require.Len(t, disk.Entries, 1)
	assert.Equal(t, "Blue", disk.Entries[0].Title)
}

func TestModel_DeleteCancelled(t *testing.T) {
	t.Parallel()
	layout := newLayout(t)
	m := newModel(t, layout)

	m = send(t, m, key("x"), closed(tagDelete, false, ""))
	assert.Equal(t, 2, m.doc.Len())
	assert.Equal(t, -1, m.pendingDelete)
}

func TestModel_MoveEntry(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	m = send(t, m, key("J"))
	assert.Equal(t, []string{"Blue", "Red"}, m.doc.Titles())
	assert.Equal(t, 1, m.doc.Selected())

	m = send(t, m, key("J"))
	assert.Equal(t, []string{"Blue", "Red"}, m.doc.Titles())

	m = send(t, m, key("K"))
	assert.Equal(t, []string{"Red", "Blue"}, m.doc.Titles())
}

func TestModel_QuitPromptsWhenDirty(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	m = send(t, m, key("a"), key("esc"), key("q"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, tagQuit, m.dialog.Tag)

	m = send(t, m, closed(tagQuit, false, ""))
	assert.Nil(t, m.dialog)
}

func TestModel_Pack(t *testing.T) {
	t.Parallel()
	layout := newLayout(t)
	m := newModel(t, layout)
	out := filepath.Join(t.TempDir(), "Skins.zip")

	m = send(t, m, key("p"))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "Skins.zip", m.dialog.Value())

	m = send(t, m, closed(tagPackPath, true, out))
	require.NotNil(t, m.dialog)
	assert.Equal(t, "modopt-selector not found. Only 'data/' will be packaged.", m.dialog.Body)

	m = send(t, m, closed(tagPackWarn, true, ""))
	require.NotNil(t, m.dialog)
	assert.Equal(t, tagPackDone, m.dialog.Tag)
	assert.Contains(t, m.dialog.Body, "Mod packaged successfully:\n"+out)
	assert.False(t, m.packing)

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Skins/data/mod_options.json")
	assert.Contains(t, names, "Skins/data/zips/red.zip")

	m = send(t, m, closed(tagPackDone, false, ""))
	assert.Nil(t, m.dialog)
}

func TestModel_View(t *testing.T) {
	t.Parallel()
	m := newModel(t, newLayout(t))
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Mod Option Builder")
	assert.Contains(t, view, "Entries")
	assert.Contains(t, view, "Red")
	assert.Contains(t, view, "red.zip")
	assert.Contains(t, view, "Saved")

	m = send(t, m, key("x"))
	assert.Contains(t, m.View(), "Delete the selected entry?")
}
