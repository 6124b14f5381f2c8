package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DialogKind selects the buttons a dialog shows.
type DialogKind int

const (
	// DialogMessage has a single OK button.
	DialogMessage DialogKind = iota
	// DialogConfirm asks yes or no.
	DialogConfirm
	// DialogInput asks for one line of text.
	DialogInput
)

// Dialog is a modal box. Tag identifies the question for the caller when
// the dialog closes.
type Dialog struct {
	Kind  DialogKind
	Tag   string
	Title string
	Body  string

	input   textinput.Model
	focused int // 0 = first button
}

// DialogClosedMsg reports how a dialog was closed.
type DialogClosedMsg struct {
	Tag      string
	Accepted bool
	Value    string
}

// NewMessage returns an OK-only dialog.
func NewMessage(tag, title, body string) *Dialog {
	return &Dialog{Kind: DialogMessage, Tag: tag, Title: title, Body: body}
}

// NewConfirm returns a yes/no dialog. "No" is focused first.
func NewConfirm(tag, title, body string) *Dialog {
	return &Dialog{Kind: DialogConfirm, Tag: tag, Title: title, Body: body, focused: 1}
}

// NewInput returns a dialog with a text field holding value.
func NewInput(tag, title, body, value string) *Dialog {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 4096
	ti.Width = 48
	ti.Focus()
	return &Dialog{Kind: DialogInput, Tag: tag, Title: title, Body: body, input: ti}
}

// Value returns the text field content of an input dialog.
func (d *Dialog) Value() string { return d.input.Value() }

func (d *Dialog) close(accepted bool) tea.Cmd {
	msg := DialogClosedMsg{Tag: d.Tag, Accepted: accepted}
	if d.Kind == DialogInput {
		msg.Value = strings.TrimSpace(d.input.Value())
	}
	return func() tea.Msg { return msg }
}

// Update handles a message while the dialog is open. The returned command
// yields a DialogClosedMsg once the user answers.
func (d *Dialog) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if d.Kind == DialogInput {
			var cmd tea.Cmd
			d.input, cmd = d.input.Update(msg)
			return cmd
		}
		return nil
	}

	switch d.Kind {
	case DialogMessage:
		switch key.String() {
		case "enter", "esc", "q", " ":
			return d.close(true)
		}

	case DialogConfirm:
		switch key.String() {
		case "y":
			return d.close(true)
		case "n", "esc", "q":
			return d.close(false)
		case "left", "h", "right", "l", "tab", "shift+tab":
			d.focused = 1 - d.focused
		case "enter", " ":
			return d.close(d.focused == 0)
		}

	case DialogInput:
		switch key.String() {
		case "enter":
			return d.close(true)
		case "esc":
			return d.close(false)
		}
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return cmd
	}
	return nil
}

// View renders the dialog box.
func (d *Dialog) View(s Styles) string {
	var b strings.Builder
	b.WriteString(s.DialogTitle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(s.Text.Render(d.Body))
	b.WriteString("\n\n")

	switch d.Kind {
	case DialogMessage:
		b.WriteString(s.ButtonActive.Render("OK"))
	case DialogConfirm:
		yes, no := s.Button, s.Button
		if d.focused == 0 {
			yes = s.ButtonActive
		} else {
			no = s.ButtonActive
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, yes.Render("Yes"), no.Render("No")))
	case DialogInput:
		b.WriteString(d.input.View())
		b.WriteString("\n\n")
		b.WriteString(s.Hints(KeyHint{"Enter", "ok"}, KeyHint{"Esc", "cancel"}))
	}
	return s.Dialog.Render(b.String())
}

// Overlay centers box in a width x height area.
func Overlay(box string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
