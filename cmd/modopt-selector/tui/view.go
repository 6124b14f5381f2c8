package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/output"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

func (m Model) listWidth() int {
	return min(max(m.width*2/5, 24), 48)
}

func (m Model) logRows() int {
	return max(m.height/3, 5)
}

// View renders the selector.
func (m Model) View() string {
	var body string
	if m.settings != nil {
		body = m.renderSettings()
	} else {
		body = m.renderMain()
	}
	if m.logs.Open {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.logs.View(m.styles, m.width-2, m.logRows()))
	}
	if m.dialog != nil {
		return ui.Overlay(m.dialog.View(m.styles), m.width, m.height)
	}
	return body
}

func (m Model) renderMain() string {
	s := m.styles
	mf := m.manifest()

	header := s.Title.Render(mf.Name(manifest.DefaultSelectorModName))

	left := s.Pane.Width(m.listWidth()).Render(m.renderList())
	right := s.Pane.Width(m.previewWidth()).Render(m.renderDetails())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panes,
		m.renderTooltip(),
		m.renderStatus(),
		m.renderButtons(),
	)
}

func (m Model) renderList() string {
	s := m.styles
	mf := m.manifest()
	if len(mf.Entries) == 0 {
		return s.Muted.Render("No options in manifest")
	}

	rows := max(m.height-10, 3)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(mf.Entries))

	inner := m.listWidth() - 4
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		state := m.statuses[i].State.String()
		glyph := output.StateStyle(state).Render(output.StateGlyph(state))
		title := ui.Clip(mf.Entries[i].Title, inner)
		if i == m.cursor {
			title = s.Selected.Render(title)
		} else {
			title = s.Text.Render(title)
		}
		lines = append(lines, glyph+" "+title)
	}
	return strings.Join(lines, "\n")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (m Model) renderDetails() string {
	s := m.styles
	e, ok := m.current()
	if !ok {
		return ""
	}

	var b strings.Builder
	switch {
	case m.preview.index != m.cursor || m.preview.width != m.previewWidth():
		b.WriteString(s.Muted.Render("Loading preview..."))
	case m.preview.err != nil:
		b.WriteString(s.Muted.Render("No preview image"))
	default:
		b.WriteString(m.preview.rendered)
	}
	b.WriteString("\n\n")

	width := m.previewWidth() - 2
	details := []string{
		"Mod: " + e.Title,
		"Chunk ID: " + valueOr(e.ChunkID, "N/A"),
		"Replaces: " + valueOr(e.Replaces, "N/A"),
		"Description: " + valueOr(e.Description, "No description provided."),
	}
	b.WriteString(s.Text.Width(width).Render(strings.Join(details, "\n")))
	return b.String()
}

func (m Model) renderTooltip() string {
	if m.cursor >= len(m.statuses) {
		return ""
	}
	tip := m.statuses[m.cursor].Tooltip()
	if tip == "" {
		return ""
	}
	return m.styles.Tooltip.Render(strings.ReplaceAll(tip, "\n", "  "))
}

func (m Model) renderStatus() string {
	s := m.styles
	dir := m.opts.Installer.Settings().InstallDir()
	line := s.Muted.Render("Install dir: ")
	if dir == "" {
		line += s.Warning.Render("not set")
	} else {
		line += s.Text.Render(ui.Truncate(dir, max(m.width-16, 10)))
	}
	if m.status != "" {
		line += "  " + s.Muted.Render(m.status)
	}
	return line
}

func (m Model) renderButtons() string {
	s := m.styles
	action := "Install"
	if m.cursor < len(m.statuses) {
		action = m.statuses[m.cursor].ActionLabel()
	}
	if m.busy {
		action = "Working..."
	}
	hints := []ui.KeyHint{
		{Key: "Enter", Desc: action},
		{Key: "d", Desc: "Set Install Directory"},
	}
	if m.opts.Builder != "" {
		hints = append(hints, ui.KeyHint{Key: "b", Desc: "Open Mod Option Builder"})
	}
	hints = append(hints,
		ui.KeyHint{Key: "s", Desc: "Settings"},
		ui.KeyHint{Key: "a", Desc: "About"},
		ui.KeyHint{Key: "L", Desc: "Logs"},
		ui.KeyHint{Key: "q", Desc: "Exit"},
	)
	return s.Hints(hints...)
}

func (m Model) renderSettings() string {
	s := m.styles
	sc := m.settings
	set := m.opts.Installer.Settings()

	dir := set.InstallDir()
	if dir == "" {
		dir = "No install directory set"
	}

	var lines []string
	lines = append(lines, s.Title.Render("Settings"), "")
	lines = append(lines, s.Muted.Render("Install Directory:"))
	lines = append(lines, m.settingsRow(0, fmt.Sprintf("%s  [Change Directory]", ui.Truncate(dir, 38))))
	lines = append(lines, "")
	for i, it := range settingItems {
		box := "[ ]"
		if sc.values[i] {
			box = "[x]"
		}
		lines = append(lines, m.settingsRow(i+1, box+" "+it.label))
	}
	lines = append(lines, "", m.settingsRow(len(settingItems)+1, "[ OK ]"))
	lines = append(lines, "", s.Tooltip.Render(sc.tooltip()))
	lines = append(lines, "", s.Hints(
		ui.KeyHint{Key: "Space", Desc: "toggle"},
		ui.KeyHint{Key: "o", Desc: "ok"},
		ui.KeyHint{Key: "Esc", Desc: "cancel"},
	))
	return s.Pane.Render(strings.Join(lines, "\n"))
}

func (m Model) settingsRow(i int, text string) string {
	if m.settings.cursor == i {
		return m.styles.Selected.Render("> " + text)
	}
	return m.styles.Text.Render("  " + text)
}
