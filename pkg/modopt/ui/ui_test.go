package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func closed(t *testing.T, cmd tea.Cmd) DialogClosedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(DialogClosedMsg)
	require.True(t, ok)
	return msg
}

func TestNewStyles_ThemeFallback(t *testing.T) {
	t.Parallel()

	s := NewStyles(settings.Theme{"background": "#000000"})
	assert.Equal(t, "#000000", string(s.Background))
	assert.Equal(t, DefaultForeground, string(s.Foreground))
}

func TestConfirmDialog(t *testing.T) {
	t.Parallel()

	d := NewConfirm("uninstall", "Confirm Uninstall", "Do you want to uninstall 'Red'?")
	assert.Nil(t, d.Update(keyMsg("x")))

	// No is focused first.
	msg := closed(t, d.Update(keyMsg("enter")))
	assert.Equal(t, "uninstall", msg.Tag)
	assert.False(t, msg.Accepted)

	d.Update(keyMsg("tab"))
	assert.True(t, closed(t, d.Update(keyMsg("enter"))).Accepted)

	assert.True(t, closed(t, d.Update(keyMsg("y"))).Accepted)
	assert.False(t, closed(t, d.Update(keyMsg("esc"))).Accepted)

	view := d.View(NewStyles(nil))
	assert.Contains(t, view, "Confirm Uninstall")
	assert.Contains(t, view, "Yes")
}

func TestMessageDialog(t *testing.T) {
	t.Parallel()

	d := NewMessage("error", "Error", "boom")
	assert.True(t, closed(t, d.Update(keyMsg("enter"))).Accepted)
	assert.Contains(t, d.View(NewStyles(nil)), "OK")
}

func TestInputDialog(t *testing.T) {
	t.Parallel()

	d := NewInput("dir", "Set Install Directory", "Folder:", "/games")
	d.Update(keyMsg("/"))
	d.Update(keyMsg("x"))
	msg := closed(t, d.Update(keyMsg("enter")))
	assert.True(t, msg.Accepted)
	assert.Equal(t, "/games/x", msg.Value)

	assert.False(t, closed(t, d.Update(keyMsg("esc"))).Accepted)
}

func TestTruncateAndClip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "...89", Truncate("0123456789", 5))
	assert.Equal(t, "01...", Clip("0123456789", 5))
	assert.Equal(t, "01", Clip("0123456789", 2))
}

func TestHints(t *testing.T) {
	t.Parallel()

	out := NewStyles(nil).Hints(KeyHint{"i", "install"}, KeyHint{"q", "quit"})
	assert.Contains(t, out, "install")
	assert.Contains(t, out, "quit")
}

func TestLogPanel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, logging.Init(logging.Config{
		Level:   "debug",
		Path:    dir + "/test.log",
		TUIMode: true,
	}))
	t.Cleanup(func() { _ = logging.Close() })

	log := logging.Get("paneltest")
	log.Debug("hidden at info")
	log.Info("first")
	log.Warn("second")

	p := NewLogPanel()
	p.Toggle()
	assert.True(t, p.Open)

	view := p.View(NewStyles(nil), 80, 10)
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "second")
	assert.NotContains(t, view, "hidden at info")

	assert.True(t, p.HandleKey("3", 8))
	view = p.View(NewStyles(nil), 80, 10)
	assert.NotContains(t, view, "first")
	assert.Equal(t, 10, len(strings.Split(view, "\n")))

	assert.False(t, p.HandleKey("x", 8))
	assert.True(t, p.HandleKey("esc", 8))
	assert.False(t, p.Open)
}
