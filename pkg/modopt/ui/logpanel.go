package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/modopt/pkg/modopt/logging"
)

var (
	logTimeStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	logComponentStyle = lipgloss.NewStyle().Foreground(accentColor)
	logDebugStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	logInfoStyle      = lipgloss.NewStyle().Foreground(successColor)
	logWarnStyle      = lipgloss.NewStyle().Foreground(warningColor)
	logErrorStyle     = lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
)

// LogPanel shows the records kept by the logging ring buffer.
type LogPanel struct {
	Open   bool
	Level  logging.Level
	Offset int
}

// NewLogPanel returns a closed panel showing info and above.
func NewLogPanel() *LogPanel {
	return &LogPanel{Level: logging.LevelInfo}
}

// Toggle opens or closes the panel.
func (p *LogPanel) Toggle() { p.Open = !p.Open }

// HandleKey handles a key while the panel is open and reports whether it
// was consumed.
func (p *LogPanel) HandleKey(key string, rows int) bool {
	switch key {
	case "1", "2", "3", "4":
		p.Level = logging.Level(key[0] - '1')
		p.Offset = 0
	case "up", "k":
		n := len(filterLevel(entries(), p.Level))
		if p.Offset < n-rows {
			p.Offset++
		}
	case "down", "j":
		if p.Offset > 0 {
			p.Offset--
		}
	case "esc", "L":
		p.Open = false
	default:
		return false
	}
	return true
}

func entries() []logging.LogEntry {
	buf := logging.GetLogBuffer()
	if buf == nil {
		return nil
	}
	return buf.Entries()
}

func filterLevel(all []logging.LogEntry, lowest logging.Level) []logging.LogEntry {
	out := make([]logging.LogEntry, 0, len(all))
	for _, e := range all {
		if e.Level >= lowest {
			out = append(out, e)
		}
	}
	return out
}

// View renders the panel in width x height cells. Offset counts rows back
// from the newest record.
func (p *LogPanel) View(s Styles, width, height int) string {
	if height < 3 {
		return ""
	}
	rows := height - 2
	shown := filterLevel(entries(), p.Level)

	start := len(shown) - rows - p.Offset
	if start < 0 {
		start = 0
	}
	end := min(start+rows, len(shown))

	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf(" Logs [%s] ", p.Level)))
	b.WriteString(s.Muted.Render("[1-4] level  [j/k] scroll  [Esc] close"))
	b.WriteString("\n")
	b.WriteString(s.Rule(width))
	for _, e := range shown[start:end] {
		b.WriteString("\n")
		b.WriteString(renderLogEntry(e, width))
	}
	for i := end - start; i < rows; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func renderLogEntry(e logging.LogEntry, width int) string {
	comp := e.Component
	if len(comp) > 10 {
		comp = comp[:10]
	}
	prefix := 8 + 1 + 3 + 1 + len(comp) + 2
	return fmt.Sprintf("%s %s %s: %s",
		logTimeStyle.Render(e.Time.Format("15:04:05")),
		levelStyle(e.Level).Render("["+levelChar(e.Level)+"]"),
		logComponentStyle.Render(comp),
		Clip(e.Message, max(width-prefix, 10)))
}

func levelStyle(l logging.Level) lipgloss.Style {
	switch l {
	case logging.LevelDebug:
		return logDebugStyle
	case logging.LevelWarn:
		return logWarnStyle
	case logging.LevelError:
		return logErrorStyle
	default:
		return logInfoStyle
	}
}

func levelChar(l logging.Level) string {
	switch l {
	case logging.LevelDebug:
		return "D"
	case logging.LevelInfo:
		return "I"
	case logging.LevelWarn:
		return "W"
	case logging.LevelError:
		return "E"
	default:
		return "?"
	}
}
