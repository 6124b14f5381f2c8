package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

type field int

const (
	fieldModName field = iota
	fieldTitle
	fieldZip
	fieldPreview
	fieldFiles
	fieldChunkID
	fieldReplaces
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Mod Name:",
	"Title:",
	"ZIP File:",
	"Preview Image:",
	"Files:",
	"Chunk ID:",
	"Replaces:",
	"Description:",
}

type editMode int

const (
	editNone editMode = iota
	editLine
	editText
)

// form is the detail pane: which field has focus and the widget editing it.
// Edits go to the document's draft only when a field edit is accepted.
type form struct {
	field      field
	filesMode  bool
	fileCursor int

	mode  editMode
	input textinput.Model
	area  textarea.Model
}

func (f form) editing() bool { return f.mode != editNone }

func newLineInput(value string, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1024
	ti.Width = width
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	ti.Focus()
	return ti
}

func newTextArea(value string, width int) textarea.Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.SetWidth(width)
	ta.SetHeight(5)
	ta.SetValue(value)
	ta.Focus()
	return ta
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if m.form.filesMode {
		return m.updateFiles(msg)
	}

	switch msg.String() {
	case "esc", "tab", "shift+tab":
		m.focus = paneList
	case "q":
		return m.requestQuit()
	case "up", "k":
		if m.form.field > 0 {
			m.form.field--
		}
	case "down", "j":
		if d != nil && m.form.field < fieldCount-1 {
			m.form.field++
		}
	case "left", "h":
		return m.cycle(-1)
	case "right", "l":
		return m.cycle(1)
	case "enter", "e":
		return m.beginEdit()
	case "o":
		return m.beginImport()
	case "g":
		return m.fillFiles()
	case "a":
		if d != nil && m.form.field == fieldFiles {
			m.dialog = ui.NewInput(tagAddFile, "Add File", "File name:", "")
		}
	case "s":
		return m.save()
	case "p":
		return m.requestPack()
	case "L":
		m.logs.Toggle()
	}
	return m, nil
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if d == nil {
		m.form.filesMode = false
		return m, nil
	}
	switch msg.String() {
	case "esc", "enter":
		m.form.filesMode = false
	case "up", "k":
		if m.form.fileCursor > 0 {
			m.form.fileCursor--
		}
	case "down", "j":
		if m.form.fileCursor < len(d.Files)-1 {
			m.form.fileCursor++
		}
	case "a":
		m.dialog = ui.NewInput(tagAddFile, "Add File", "File name:", "")
	case "x", "delete":
		if d.RemoveFile(m.form.fileCursor) && m.form.fileCursor >= len(d.Files) {
			m.form.fileCursor = max(len(d.Files)-1, 0)
		}
	case "g":
		return m.fillFiles()
	}
	return m, nil
}

// beginEdit opens the widget for the focused field.
func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	width := max(m.formWidth()-18, 10)

	switch m.form.field {
	case fieldModName:
		m.form.input = newLineInput(m.doc.ModName(), width)
		m.form.mode = editLine
		return m, nil
	case fieldZip, fieldPreview:
		return m.beginImport()
	}
	if d == nil {
		return m, nil
	}

	switch m.form.field {
	case fieldTitle:
		m.form.input = newLineInput(d.Title, width)
	case fieldChunkID:
		m.form.input = newLineInput(d.ChunkID, width)
	case fieldReplaces:
		m.form.input = newLineInput(d.Replaces, width)
	case fieldFiles:
		m.form.filesMode = true
		m.form.fileCursor = min(m.form.fileCursor, max(len(d.Files)-1, 0))
		return m, nil
	case fieldDescription:
		m.form.area = newTextArea(d.Description, width)
		m.form.mode = editText
		return m, nil
	}
	m.form.mode = editLine
	return m, nil
}

func (m Model) beginImport() (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if d == nil {
		return m, nil
	}
	switch m.form.field {
	case fieldZip:
		m.dialog = ui.NewInput(tagImportZip, "Browse ZIP", "Path to a .zip file to copy into data/zips:", "")
	case fieldPreview:
		m.dialog = ui.NewInput(tagImportImage, "Browse Preview", "Path to an image to copy into data/zips/previews:", "")
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.form.mode {
	case editLine:
		switch msg.String() {
		case "enter":
			return m.applyEdit(m.form.input.Value())
		case "esc":
			m.form.mode = editNone
			return m, nil
		}
		m.form.input, cmd = m.form.input.Update(msg)
	case editText:
		switch msg.String() {
		case "esc":
			return m.applyEdit(m.form.area.Value())
		case "ctrl+s":
			next, _ := m.applyEdit(m.form.area.Value())
			return next.(Model).save()
		}
		m.form.area, cmd = m.form.area.Update(msg)
	}
	return m, cmd
}

// applyEdit writes value to the focused field and closes the widget.
func (m Model) applyEdit(value string) (tea.Model, tea.Cmd) {
	m.form.mode = editNone
	if m.form.field == fieldModName {
		m.doc.SetModName(value)
		return m, nil
	}
	d := m.doc.Draft()
	if d == nil {
		return m, nil
	}
	switch m.form.field {
	case fieldTitle:
		d.Title = value
	case fieldChunkID:
		d.ChunkID = value
	case fieldReplaces:
		d.Replaces = value
	case fieldDescription:
		d.Description = value
	}
	return m, nil
}

// cycle steps the zip or preview choice through the files already in the
// data folder. Choosing an archive refills the file list from it.
func (m Model) cycle(delta int) (tea.Model, tea.Cmd) {
	d := m.doc.Draft()
	if d == nil {
		return m, nil
	}
	switch m.form.field {
	case fieldZip:
		choices := append([]string{""}, m.doc.ZipChoices()...)
		next := step(choices, d.ZipName(), delta)
		if err := m.doc.UseZip(d, next); err != nil {
			m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
			return m, nil
		}
		if next == "" {
			return m, nil
		}
		return m.fillFiles()
	case fieldPreview:
		choices := append([]string{manifest.NoPreview}, m.doc.PreviewChoices()...)
		current := d.PreviewName()
		if current == "" {
			current = manifest.NoPreview
		}
		if err := m.doc.UsePreview(d, step(choices, current, delta)); err != nil {
			m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
			return m, nil
		}
		return m, m.loadPreview()
	}
	return m, nil
}

func step(choices []string, current string, delta int) string {
	i := slices.Index(choices, current)
	if i < 0 {
		return choices[0]
	}
	n := len(choices)
	return choices[((i+delta)%n+n)%n]
}
