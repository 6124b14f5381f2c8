// Package ui holds the Bubble Tea pieces shared by the builder and selector
// TUIs: theme-driven styles, modal dialogs and the log panel.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/modopt/pkg/modopt/settings"
)

// Colors used when theme.json does not name one.
const (
	DefaultBackground     = "#2e2e2e"
	DefaultForeground     = "#ffffff"
	DefaultButtonBg       = "#444444"
	DefaultButtonFg       = "#ffffff"
	DefaultButtonActiveBg = "#666666"
	DefaultSelectBg       = "#444444"
	DefaultTooltipBg      = "#2e2e2e"
	DefaultTooltipFg      = "#ffffff"
)

// Status colors are fixed; the theme has no keys for them.
var (
	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")
	mutedColor   = lipgloss.Color("#888888")
	accentColor  = lipgloss.Color("#87CEEB")
)

// Styles is the resolved style set for one theme.
type Styles struct {
	Background lipgloss.Color
	Foreground lipgloss.Color

	App          lipgloss.Style
	Title        lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Selected     lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Link         lipgloss.Style
	Pane         lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	Tooltip      lipgloss.Style
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	Key          lipgloss.Style
	KeyDesc      lipgloss.Style
	Divider      lipgloss.Style
}

// NewStyles builds styles from theme, falling back to the default palette
// for every missing color.
func NewStyles(theme settings.Theme) Styles {
	bg := lipgloss.Color(theme.Color(settings.ColorBackground, DefaultBackground))
	fg := lipgloss.Color(theme.Color(settings.ColorForeground, DefaultForeground))
	buttonBg := lipgloss.Color(theme.Color(settings.ColorButtonBg, DefaultButtonBg))
	buttonFg := lipgloss.Color(theme.Color(settings.ColorButtonFg, DefaultButtonFg))
	activeBg := lipgloss.Color(theme.Color(settings.ColorButtonActiveBg, DefaultButtonActiveBg))
	selectBg := lipgloss.Color(theme.Color(settings.ColorSelectBg, DefaultSelectBg))
	tipBg := lipgloss.Color(theme.Color(settings.ColorTooltipBg, DefaultTooltipBg))
	tipFg := lipgloss.Color(theme.Color(settings.ColorTooltipFg, DefaultTooltipFg))

	return Styles{
		Background: bg,
		Foreground: fg,

		App:      lipgloss.NewStyle().Background(bg).Foreground(fg),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		Text:     lipgloss.NewStyle().Foreground(fg),
		Muted:    lipgloss.NewStyle().Foreground(mutedColor),
		Selected: lipgloss.NewStyle().Background(selectBg).Foreground(fg).Bold(true),
		Success:  lipgloss.NewStyle().Foreground(successColor),
		Warning:  lipgloss.NewStyle().Foreground(warningColor),
		Error:    lipgloss.NewStyle().Foreground(dangerColor),
		Link:     lipgloss.NewStyle().Foreground(accentColor).Underline(true),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(buttonBg).
			Padding(0, 1),
		Button: lipgloss.NewStyle().
			Padding(0, 2).
			Margin(0, 1).
			Background(buttonBg).
			Foreground(buttonFg),
		ButtonActive: lipgloss.NewStyle().
			Padding(0, 2).
			Margin(0, 1).
			Background(activeBg).
			Foreground(buttonFg).
			Bold(true),
		Tooltip: lipgloss.NewStyle().
			Background(tipBg).
			Foreground(tipFg).
			Border(lipgloss.NormalBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(1, 2).
			Width(56),
		DialogTitle: lipgloss.NewStyle().Bold(true).Foreground(warningColor),
		Key:         lipgloss.NewStyle().Bold(true).Foreground(accentColor),
		KeyDesc:     lipgloss.NewStyle().Foreground(mutedColor),
		Divider:     lipgloss.NewStyle().Foreground(buttonBg),
	}
}

// KeyHint is one "[key] action" pair in a help line.
type KeyHint struct {
	Key  string
	Desc string
}

// Hints renders a help line.
func (s Styles) Hints(hints ...KeyHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, s.Key.Render("["+h.Key+"]")+" "+s.KeyDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// Rule renders a horizontal divider.
func (s Styles) Rule(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}

// Truncate shortens s to width cells, keeping the end and prefixing "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:max(width, 0)])
	}
	return "..." + string(r[len(r)-(width-3):])
}

// Clip shortens s to width cells, keeping the start and ending with "...".
func Clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-3]) + "..."
}
