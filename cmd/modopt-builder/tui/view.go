package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

const labelWidth = 16

func (m Model) listWidth() int {
	return min(max(m.width/4, 22), 36)
}

// previewCols is zero when the terminal is too narrow for the image pane.
func (m Model) previewCols() int {
	if m.width < 100 {
		return 0
	}
	return 24
}

func (m Model) previewRows() int {
	return 12
}

func (m Model) formWidth() int {
	w := m.width - m.listWidth() - 4
	if c := m.previewCols(); c > 0 {
		w -= c + 4
	}
	return max(w, 30)
}

func (m Model) logRows() int {
	return max(m.height/3, 5)
}

func (m Model) bodyRows() int {
	rows := m.height - 6
	if m.logs.Open {
		rows -= m.logRows()
	}
	return max(rows, 8)
}

// View renders the builder.
func (m Model) View() string {
	if m.dialog != nil {
		return ui.Overlay(m.dialog.View(m.styles), m.width, m.height)
	}
	s := m.styles

	header := s.Title.Render(m.opts.AppName) + "  " + s.Muted.Render(m.doc.ModName())

	listStyle, formStyle := s.Pane, s.Pane
	if m.focus == paneList {
		listStyle = listStyle.BorderForeground(s.Key.GetForeground())
	} else {
		formStyle = formStyle.BorderForeground(s.Key.GetForeground())
	}
	panes := []string{
		listStyle.Width(m.listWidth()).Height(m.bodyRows()).Render(m.renderList()),
		formStyle.Width(m.formWidth()).Height(m.bodyRows()).Render(m.renderForm()),
	}
	if m.previewCols() > 0 {
		panes = append(panes, s.Pane.Width(m.previewCols()+2).Height(m.bodyRows()).Render(m.renderPreview()))
	}

	parts := []string{
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, panes...),
		m.renderStatus(),
		m.renderHints(),
	}
	if m.logs.Open {
		parts = append(parts, m.logs.View(s, m.width-2, m.logRows()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderList() string {
	s := m.styles
	titles := m.doc.Titles()
	var b strings.Builder
	b.WriteString(s.DialogTitle.Render("Entries"))
	b.WriteString("\n")
	if len(titles) == 0 {
		b.WriteString(s.Muted.Render("No entries. Press a to add one."))
		return b.String()
	}

	rows := m.bodyRows() - 2
	sel := m.doc.Selected()
	start := 0
	if sel >= rows {
		start = sel - rows + 1
	}
	end := min(start+rows, len(titles))
	inner := m.listWidth() - 2
	for i := start; i < end; i++ {
		title := ui.Clip(titles[i], inner)
		if i == sel {
			b.WriteString(s.Selected.Render(title))
		} else {
			b.WriteString(s.Text.Render(title))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderForm() string {
	s := m.styles
	d := m.doc.Draft()
	inner := m.formWidth() - labelWidth - 2

	var rows []string
	for f := fieldModName; f < fieldCount; f++ {
		if d == nil && f > fieldModName {
			break
		}
		label := fmt.Sprintf("%-*s", labelWidth, fieldLabels[f])
		focused := m.focus == paneForm && m.form.field == f
		if focused {
			label = s.Key.Render(label)
		} else {
			label = s.Muted.Render(label)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, m.renderValue(f, inner, focused)))
	}
	if d == nil {
		rows = append(rows, "", s.Muted.Render("Select or add an entry to edit it."))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderValue(f field, width int, focused bool) string {
	s := m.styles
	if focused && m.form.editing() {
		if m.form.mode == editText {
			return m.form.area.View()
		}
		return m.form.input.View()
	}

	d := m.doc.Draft()
	text := func(v string) string {
		if v == "" {
			return s.Muted.Render("-")
		}
		return s.Text.Render(ui.Clip(v, width))
	}
	switch f {
	case fieldModName:
		return text(m.doc.ModName())
	case fieldTitle:
		return text(d.Title)
	case fieldZip:
		name := d.ZipName()
		if name == "" {
			name = "(none)"
		}
		return s.Text.Render("‹ " + ui.Clip(name, width-4) + " ›")
	case fieldPreview:
		name := d.PreviewName()
		if name == "" {
			name = manifest.NoPreview
		}
		return s.Text.Render("‹ " + ui.Clip(name, width-4) + " ›")
	case fieldFiles:
		return m.renderFiles(width)
	case fieldChunkID:
		return text(d.ChunkID)
	case fieldReplaces:
		return text(d.Replaces)
	case fieldDescription:
		if strings.TrimSpace(d.Description) == "" {
			return s.Muted.Render("-")
		}
		return s.Text.Width(width).Render(d.Description)
	}
	return ""
}

func (m Model) renderFiles(width int) string {
	s := m.styles
	d := m.doc.Draft()
	if len(d.Files) == 0 {
		return s.Muted.Render("(no files)")
	}
	const shown = 6
	start := 0
	if m.form.fileCursor >= shown {
		start = m.form.fileCursor - shown + 1
	}
	end := min(start+shown, len(d.Files))
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		name := ui.Truncate(d.Files[i], width)
		if m.form.filesMode && i == m.form.fileCursor {
			lines = append(lines, s.Selected.Render(name))
		} else {
			lines = append(lines, s.Text.Render(name))
		}
	}
	if len(d.Files) > shown {
		lines = append(lines, s.Muted.Render(fmt.Sprintf("%d files", len(d.Files))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPreview() string {
	s := m.styles
	switch {
	case m.doc.Draft() == nil:
		return ""
	case m.preview.key != m.previewKey():
		return s.Muted.Render("Loading preview...")
	case m.preview.err != nil:
		return s.Muted.Render("No preview image")
	}
	return m.preview.rendered
}

func (m Model) renderStatus() string {
	s := m.styles
	label := m.saveLabel()
	line := s.Success.Render(label)
	if label != "Saved" {
		line = s.Warning.Render(label)
	}
	if m.status != "" {
		line += "  " + s.Muted.Render(m.status)
	}
	return line
}

func (m Model) renderHints() string {
	s := m.styles
	switch {
	case m.form.mode == editLine:
		return s.Hints(ui.KeyHint{Key: "Enter", Desc: "apply"}, ui.KeyHint{Key: "Esc", Desc: "cancel"})
	case m.form.mode == editText:
		return s.Hints(ui.KeyHint{Key: "Esc", Desc: "apply"}, ui.KeyHint{Key: "Ctrl+S", Desc: "apply and save"})
	case m.form.filesMode:
		return s.Hints(
			ui.KeyHint{Key: "a", Desc: "Add File"},
			ui.KeyHint{Key: "x", Desc: "Delete File"},
			ui.KeyHint{Key: "g", Desc: "Get Files"},
			ui.KeyHint{Key: "Esc", Desc: "done"},
		)
	case m.focus == paneForm:
		return s.Hints(
			ui.KeyHint{Key: "Enter", Desc: "edit"},
			ui.KeyHint{Key: "←/→", Desc: "choose file"},
			ui.KeyHint{Key: "o", Desc: "Browse..."},
			ui.KeyHint{Key: "g", Desc: "Get Files"},
			ui.KeyHint{Key: "Tab", Desc: "entries"},
			ui.KeyHint{Key: "s", Desc: m.saveLabel()},
		)
	}
	return s.Hints(
		ui.KeyHint{Key: "a", Desc: "Add Entry"},
		ui.KeyHint{Key: "x", Desc: "Delete Entry"},
		ui.KeyHint{Key: "K/J", Desc: "move"},
		ui.KeyHint{Key: "Enter", Desc: "edit"},
		ui.KeyHint{Key: "s", Desc: m.saveLabel()},
		ui.KeyHint{Key: "p", Desc: "Pack Mod"},
		ui.KeyHint{Key: "L", Desc: "Logs"},
		ui.KeyHint{Key: "q", Desc: "Exit"},
	)
}
