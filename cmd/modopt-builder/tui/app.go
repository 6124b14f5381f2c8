// Package tui implements the interactive manifest editor of modopt-builder.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/modopt/pkg/modopt/editor"
	"github.com/jamesainslie/modopt/pkg/modopt/launch"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/packager"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

var log = logging.Get("builder")

// Dialog tags.
const (
	tagInfo        = "info"
	tagQuit        = "quit"
	tagDelete      = "delete"
	tagDeleteFiles = "delete-files"
	tagAddFile     = "add-file"
	tagImportZip   = "import-zip"
	tagImportImage = "import-preview"
	tagPackPath    = "pack-path"
	tagPackWarn    = "pack-warn"
	tagPackDone    = "pack-done"
)

// Options configures the builder TUI.
type Options struct {
	AppName  string
	Version  string
	Document *editor.Document
	Theme    settings.Theme

	// SelectorExecutable is packed beside data/. Empty packs data/ only,
	// after a warning.
	SelectorExecutable string

	// PackageFormat is the packager format; empty means zip.
	PackageFormat string
}

type pane int

const (
	paneList pane = iota
	paneForm
)

// Model is the Bubble Tea model of the builder.
type Model struct {
	opts   Options
	doc    *editor.Document
	styles ui.Styles
	ctx    context.Context
	cancel context.CancelFunc

	focus pane
	form  form

	// pendingDelete is the entry a delete dialog is asking about.
	pendingDelete int
	packPath      string
	packing       bool

	preview previewState

	status string
	dialog *ui.Dialog
	logs   *ui.LogPanel

	width  int
	height int
}

// packDoneMsg reports a finished package build.
type packDoneMsg struct {
	result *packager.Result
	err    error
}

// errMsg carries a failure from a command.
type errMsg struct{ err error }

// NewModel creates the builder model.
func NewModel(opts Options) Model {
	if opts.AppName == "" {
		opts.AppName = "Mod Option Builder"
	}
	if opts.PackageFormat == "" {
		opts.PackageFormat = "zip"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		opts:          opts,
		doc:           opts.Document,
		styles:        ui.NewStyles(opts.Theme),
		ctx:           ctx,
		cancel:        cancel,
		pendingDelete: -1,
		logs:          ui.NewLogPanel(),
		width:         100,
		height:        30,
	}
}

// Init loads the preview of the first entry.
func (m Model) Init() tea.Cmd {
	return m.loadPreview()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.preview = previewState{}
		return m, m.loadPreview()

	case ui.DialogClosedMsg:
		m.dialog = nil
		return m.dialogClosed(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		if m.dialog != nil {
			return m, m.dialog.Update(msg)
		}
		if m.form.editing() {
			return m.updateEditing(msg)
		}
		if m.logs.Open && m.logs.HandleKey(msg.String(), m.logRows()) {
			return m, nil
		}
		if msg.String() == "ctrl+s" {
			return m.save()
		}
		if m.focus == paneForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)

	case previewMsg:
		if msg.key == m.previewKey() {
			m.preview = previewState(msg)
		}
		return m, nil

	case packDoneMsg:
		m.packing = false
		if msg.err != nil {
			log.Error("packaging failed", "error", msg.err)
			m.dialog = ui.NewMessage(tagInfo, "Error", "Failed to create package:\n"+msg.err.Error())
			return m, nil
		}
		m.packPath = msg.result.Output
		m.status = "Packaged " + msg.result.Output
		m.dialog = ui.NewConfirm(tagPackDone, "Success",
			fmt.Sprintf("Mod packaged successfully:\n%s\n\nOpen Location?", msg.result.Output))
		return m, nil

	case errMsg:
		m.dialog = ui.NewMessage(tagInfo, "Error", msg.err.Error())
		return m, nil
	}

	if m.dialog != nil {
		return m, m.dialog.Update(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.requestQuit()
	case "up", "k":
		return m.selectEntry(m.doc.Selected() - 1)
	case "down", "j":
		return m.selectEntry(m.doc.Selected() + 1)
	case "home", "g":
		return m.selectEntry(0)
	case "end", "G":
		return m.selectEntry(m.doc.Len() - 1)
	case "a":
		return m.addEntry()
	case "x", "delete":
		return m.requestDelete()
	case "K", "shift+up":
		return m.moveEntry(-1)
	case "J", "shift+down":
		return m.moveEntry(1)
	case "enter", "tab", "right", "l":
		m.focus = paneForm
		if m.doc.Draft() == nil {
			m.form.field = fieldModName
		}
	case "s":
		return m.save()
	case "p":
		return m.requestPack()
	case "?":
		m.dialog = ui.NewMessage(tagInfo, "About", m.aboutText())
	case "L":
		m.logs.Toggle()
	}
	return m, nil
}

func (m Model) selectEntry(i int) (tea.Model, tea.Cmd) {
	if m.doc.Len() == 0 {
		return m, nil
	}
	i = min(max(i, 0), m.doc.Len()-1)
	if i == m.doc.Selected() {
		return m, nil
	}
	if _, err := m.doc.Select(i); err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
		return m, nil
	}
	m.form.fileCursor = 0
	return m, m.loadPreview()
}

func (m Model) addEntry() (tea.Model, tea.Cmd) {
	i, err := m.doc.Add()
	if err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
		return m, nil
	}
	log.Debug("entry added", "index", i)
	m.focus = paneForm
	m.form.field = fieldTitle
	m.form.fileCursor = 0
	m.status = "Added entry"
	return m, m.loadPreview()
}

func (m Model) moveEntry(delta int) (tea.Model, tea.Cmd) {
	i := m.doc.Selected()
	if i < 0 {
		return m, nil
	}
	var err error
	if delta < 0 {
		_, err = m.doc.MoveUp(i)
	} else {
		_, err = m.doc.MoveDown(i)
	}
	if err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
	}
	return m, nil
}

func (m Model) requestDelete() (tea.Model, tea.Cmd) {
	i := m.doc.Selected()
	if i < 0 {
		return m, nil
	}
	m.pendingDelete = i
	m.dialog = ui.NewConfirm(tagDelete, "Confirm Delete", "Delete the selected entry?")
	return m, nil
}

func (m Model) deleteEntry(removeAssets bool) (tea.Model, tea.Cmd) {
	i := m.pendingDelete
	m.pendingDelete = -1
	if i < 0 {
		return m, nil
	}
	title := m.doc.Titles()[i]
	err := m.doc.Delete(m.ctx, i, editor.DeleteOptions{RemoveAssets: removeAssets})
	m.form.fileCursor = 0
	if err != nil {
		log.Error("delete incomplete", "title", title, "error", err)
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
	} else {
		m.status = fmt.Sprintf("Deleted '%s'", title)
	}
	if m.doc.Len() == 0 {
		m.focus = paneList
	}
	return m, m.loadPreview()
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if err := m.doc.Save(false); err != nil {
		log.Error("save failed", "error", err)
		m.dialog = ui.NewMessage(tagInfo, "Error", "Failed to save JSON:\n"+err.Error())
		return m, nil
	}
	m.status = "Saved"
	return m, m.loadPreview()
}

func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.doc.Dirty() {
		m.dialog = ui.NewConfirm(tagQuit, m.opts.AppName, "You have unsaved changes.\nQuit without saving?")
		return m, nil
	}
	m.cancel()
	return m, tea.Quit
}

func (m Model) requestPack() (tea.Model, tea.Cmd) {
	if m.packing {
		return m, nil
	}
	name, err := packager.DefaultOutput(m.doc.ModName(), m.opts.PackageFormat)
	if err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
		return m, nil
	}
	m.dialog = ui.NewInput(tagPackPath, "Save Mod Package As", "Archive path:", name)
	return m, nil
}

// startPack saves pending edits and builds the package off the UI
// goroutine.
func (m Model) startPack() (tea.Model, tea.Cmd) {
	if err := m.doc.Save(false); err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", "Failed to save JSON:\n"+err.Error())
		return m, nil
	}
	m.packing = true
	m.status = "Packaging..."
	opts := packager.Options{
		ModName:    m.doc.ModName(),
		DataDir:    m.doc.Layout().DataDir,
		Executable: m.opts.SelectorExecutable,
		Output:     m.packPath,
		Format:     m.opts.PackageFormat,
	}
	ctx := m.ctx
	return m, func() tea.Msg {
		res, err := packager.Pack(ctx, opts)
		return packDoneMsg{result: res, err: err}
	}
}

func (m Model) dialogClosed(msg ui.DialogClosedMsg) (tea.Model, tea.Cmd) {
	switch msg.Tag {
	case tagQuit:
		if msg.Accepted {
			m.cancel()
			return m, tea.Quit
		}

	case tagDelete:
		if !msg.Accepted {
			m.pendingDelete = -1
			return m, nil
		}
		if len(m.doc.AssetPaths(m.pendingDelete)) > 0 {
			m.dialog = ui.NewConfirm(tagDeleteFiles, "Delete Files", "Delete associated files from disk?")
			return m, nil
		}
		return m.deleteEntry(false)

	case tagDeleteFiles:
		return m.deleteEntry(msg.Accepted)

	case tagAddFile:
		if d := m.doc.Draft(); msg.Accepted && d != nil {
			if d.AddFile(msg.Value) {
				m.form.fileCursor = len(d.Files) - 1
			}
		}

	case tagImportZip:
		if msg.Accepted && msg.Value != "" {
			return m.importZip(msg.Value)
		}

	case tagImportImage:
		if msg.Accepted && msg.Value != "" {
			return m.importPreview(msg.Value)
		}

	case tagPackPath:
		if !msg.Accepted || msg.Value == "" {
			return m, nil
		}
		m.packPath = msg.Value
		if m.opts.SelectorExecutable == "" {
			m.dialog = ui.NewMessage(tagPackWarn, "Missing File",
				"modopt-selector not found. Only 'data/' will be packaged.")
			return m, nil
		}
		return m.startPack()

	case tagPackWarn:
		return m.startPack()

	case tagPackDone:
		if msg.Accepted {
			return m, openLocation(m.ctx, m.packPath)
		}
	}
	return m, nil
}

func openLocation(ctx context.Context, path string) tea.Cmd {
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func() tea.Msg {
		if err := launch.Open(ctx, dir); err != nil {
			return errMsg{err: fmt.Errorf("opening %s: %w", dir, err)}
		}
		return nil
	}
}

func (m Model) importZip(path string) (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if d == nil {
		return m, nil
	}
	if err := m.doc.ImportZip(d, path); err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
		return m, nil
	}
	return m.fillFiles()
}

func (m Model) importPreview(path string) (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if d == nil {
		return m, nil
	}
	if err := m.doc.ImportPreview(d, path); err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
		return m, nil
	}
	return m, m.loadPreview()
}

// fillFiles replaces the draft's file list with the archive's files.
func (m Model) fillFiles() (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if d == nil {
		return m, nil
	}
	files, err := m.doc.FilesFromZip(d)
	switch {
	case errors.Is(err, editor.ErrNoArchive):
		m.dialog = ui.NewMessage(tagInfo, "No ZIP Selected", "Please select a ZIP file first.")
		return m, nil
	case err != nil:
		m.dialog = ui.NewMessage(tagInfo, "Error", "Failed to read ZIP file:\n"+err.Error())
		return m, nil
	}
	d.Files = files
	m.form.fileCursor = 0
	m.status = fmt.Sprintf("%d files from %s", len(files), d.ZipName())
	return m, nil
}

func (m Model) saveLabel() string {
	if m.doc.Dirty() {
		return "Save*"
	}
	return "Saved"
}

func (m Model) aboutText() string {
	return fmt.Sprintf("%s\nVersion: %s\nData: %s", m.opts.AppName, m.opts.Version, m.doc.Layout().DataDir)
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.cancel()
		if fm.doc.Dirty() {
			log.Warn("exited with unsaved changes")
		}
	}
	return err
}
