package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Colors shared with the TUIs.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("245")
)

var (
	headerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	footerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)

// StateGlyph returns the one-cell marker used for a state name.
func StateGlyph(state string) string {
	switch state {
	case "installed", "installed_caution":
		return "✓"
	case "caution":
		return "!"
	case "error":
		return "✗"
	default:
		return "·"
	}
}

// StateStyle returns the color used for a state name.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "installed":
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case "installed_caution", "caution":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case "error":
		return lipgloss.NewStyle().Foreground(ColorDanger)
	default:
		return mutedStyle
	}
}

// PrettyFormatter writes a colored listing for terminals.
type PrettyFormatter struct{}

// Format implements Formatter.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.header(r))
	w.WriteString("\n")

	if len(r.Options) == 0 {
		w.WriteString(mutedStyle.Render("  No options in manifest"))
		w.WriteString("\n")
	}
	for _, o := range r.Options {
		marker := StateStyle(o.State).Render(StateGlyph(o.State))
		line := fmt.Sprintf("  %s %3d  %s", marker, o.Index, valueStyle.Render(o.Title))
		if o.SizeHuman != "" {
			line += "  " + mutedStyle.Render(o.SizeHuman)
		}
		w.WriteString(line + "\n")
		for _, warn := range o.Warnings {
			w.WriteString("         " + warningStyle.Render(warn) + "\n")
		}
	}

	parts := []string{
		labelStyle.Render("Options:") + " " + valueStyle.Render(fmt.Sprintf("%d", len(r.Options))),
		labelStyle.Render("Installed:") + " " + valueStyle.Render(fmt.Sprintf("%d", r.InstalledCount())),
		labelStyle.Render("Archives:") + " " + valueStyle.Render(humanize.IBytes(uint64(r.TotalSize()))),
	}
	w.WriteString(footerBox.Render(strings.Join(parts, "  ")))
	w.WriteString("\n")

	if len(r.Warnings) > 0 {
		w.WriteString(warningStyle.Bold(true).Render("Warnings:") + "\n")
		for _, warn := range r.Warnings {
			w.WriteString(warningStyle.Render("  "+warn) + "\n")
		}
	}
	return nil
}

func (f *PrettyFormatter) header(r *Result) string {
	dir := r.InstallDir
	if dir == "" {
		dir = "(not set)"
	}
	lines := []string{
		titleStyle.Render(r.ModName),
		labelStyle.Render("Install dir:") + " " + valueStyle.Render(dir),
	}
	return headerBox.Render(strings.Join(lines, "\n"))
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
