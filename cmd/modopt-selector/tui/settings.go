package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/modopt/pkg/modopt/settings"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
)

type settingItem struct {
	label   string
	tooltip string
	get     func(*settings.Settings) bool
	set     func(*settings.Settings, bool)
}

var settingItems = []settingItem{
	{
		label:   "Allow Multiple Installs",
		tooltip: "Allows more than one mod to be installed at the same time.\n(Not recommended for mods with different styles that replace the same thing)",
		get:     (*settings.Settings).CanInstallMultiple,
		set:     (*settings.Settings).SetCanInstallMultiple,
	},
	{
		label:   "Prompt Before Replace/Uninstall",
		tooltip: "Ask for confirmation before replacing or uninstalling mods.",
		get:     (*settings.Settings).PromptUser,
		set:     (*settings.Settings).SetPromptUser,
	},
	{
		label:   "Prompt Before Exit",
		tooltip: "Ask for confirmation before closing the application.",
		get:     (*settings.Settings).PromptBeforeExit,
		set:     (*settings.Settings).SetPromptBeforeExit,
	},
}

// settingsScreen edits the boolean settings. Row 0 is the install
// directory; changes are written when the screen is closed with OK.
type settingsScreen struct {
	cursor int
	values []bool
}

func newSettingsScreen(s *settings.Settings) *settingsScreen {
	sc := &settingsScreen{values: make([]bool, len(settingItems))}
	for i, it := range settingItems {
		sc.values[i] = it.get(s)
	}
	return sc
}

func (sc *settingsScreen) rows() int { return len(settingItems) + 2 }

func (sc *settingsScreen) tooltip() string {
	switch {
	case sc.cursor == 0:
		return "Choose the folder where mods will be installed."
	case sc.cursor <= len(settingItems):
		return settingItems[sc.cursor-1].tooltip
	default:
		return "Save settings and close."
	}
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sc := m.settings
	switch msg.String() {
	case "up", "k":
		if sc.cursor > 0 {
			sc.cursor--
		}
	case "down", "j", "tab":
		if sc.cursor < sc.rows()-1 {
			sc.cursor++
		}
	case "esc", "q":
		m.settings = nil
	case "enter", " ":
		switch {
		case sc.cursor == 0:
			m.dialog = m.installDirDialog()
		case sc.cursor <= len(settingItems):
			sc.values[sc.cursor-1] = !sc.values[sc.cursor-1]
		default:
			return m.saveSettings()
		}
	case "o":
		return m.saveSettings()
	}
	return m, nil
}

func (m Model) saveSettings() (tea.Model, tea.Cmd) {
	s := m.opts.Installer.Settings()
	for i, it := range settingItems {
		it.set(s, m.settings.values[i])
	}
	m.settings = nil
	if err := s.Save(); err != nil {
		log.Error("saving settings", "error", err)
		m.dialog = ui.NewMessage(tagInfo, "Error", "Failed to save settings:\n"+err.Error())
		return m, nil
	}
	m.refresh()
	m.status = "Settings saved"
	return m, nil
}
