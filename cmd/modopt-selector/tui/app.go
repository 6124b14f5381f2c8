// Package tui is the interactive option selector.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/install"
	"github.com/jamesainslie/modopt/pkg/modopt/launch"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
	"github.com/jamesainslie/modopt/pkg/modopt/ui"
	"github.com/jamesainslie/modopt/pkg/modopt/watch"
)

var log = logging.Get("selector")

// Dialog tags.
const (
	tagToggle     = "toggle"
	tagInstallDir = "install_dir"
	tagExit       = "exit"
	tagInfo       = "info"
)

// Options configures the selector TUI.
type Options struct {
	AppName   string
	Version   string
	Layout    config.Layout
	Installer *install.Installer
	Theme     settings.Theme

	// Watcher reloads the manifest when it changes. Nil disables reloads.
	Watcher *watch.Watcher

	// Builder is the builder executable; empty hides the launch key.
	Builder string
}

// Model is the Bubble Tea model of the selector.
type Model struct {
	opts   Options
	styles ui.Styles

	ctx    context.Context
	cancel context.CancelFunc
	sub    *watch.Subscriber

	statuses []install.Status
	cursor   int

	preview previewState

	// pending is the entry to toggle once an install directory is chosen.
	pending int
	plan    install.Plan
	busy    bool
	status  string

	dialog   *ui.Dialog
	settings *settingsScreen
	logs     *ui.LogPanel

	width  int
	height int
}

// NewModel creates the selector model.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.AppName == "" {
		opts.AppName = "Mod Option Selector"
	}
	m := Model{
		opts:    opts,
		styles:  ui.NewStyles(opts.Theme),
		ctx:     ctx,
		cancel:  cancel,
		pending: -1,
		logs:    ui.NewLogPanel(),
		width:   80,
		height:  24,
	}
	if opts.Watcher != nil {
		m.sub = opts.Watcher.Broadcaster().Subscribe()
	}
	m.statuses = opts.Installer.Status()
	return m
}

// manifestChangedMsg is sent when the watcher sees the manifest change.
type manifestChangedMsg struct{}

// reloadedMsg carries a freshly loaded manifest.
type reloadedMsg struct {
	manifest *manifest.Manifest
	err      error
}

// opDoneMsg reports a finished install or uninstall.
type opDoneMsg struct {
	action install.Action
	title  string
	err    error
}

// Init starts the watcher and loads the first preview.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadPreview()}
	if m.opts.Watcher != nil {
		w := m.opts.Watcher
		ctx := m.ctx
		go func() {
			if err := w.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("manifest watcher stopped", "error", err)
			}
		}()
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

func (m Model) waitForChange() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-sub.Events; !ok {
			return nil
		}
		return manifestChangedMsg{}
	}
}

func (m Model) reload() tea.Cmd {
	path := m.opts.Layout.ManifestPath()
	return func() tea.Msg {
		mf, err := manifest.Load(path)
		return reloadedMsg{manifest: mf, err: err}
	}
}

func (m Model) manifest() *manifest.Manifest { return m.opts.Installer.Manifest() }

func (m Model) current() (manifest.Entry, bool) {
	mf := m.manifest()
	if m.cursor < 0 || m.cursor >= len(mf.Entries) {
		return manifest.Entry{}, false
	}
	return mf.Entries[m.cursor], true
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
		if m.logs.Open && m.logs.HandleKey(msg.String(), m.logRows()) {
			return m, nil
		}
		if m.settings != nil {
			return m.updateSettings(msg)
		}
		return m.handleKey(msg)

	case manifestChangedMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())

	case reloadedMsg:
		if msg.err != nil {
			log.Error("reloading manifest", "error", msg.err)
			m.status = "Failed to reload manifest: " + msg.err.Error()
			return m, nil
		}
		m.opts.Installer.SetManifest(msg.manifest)
		m.refresh()
		m.preview = previewState{}
		m.status = "Manifest reloaded"
		return m, m.loadPreview()

	case previewMsg:
		if msg.index == m.cursor && msg.width == m.previewWidth() {
			m.preview = previewState(msg)
		}
		return m, nil

	case opDoneMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.dialog = ui.NewMessage(tagInfo, "Error", msg.err.Error())
			return m, nil
		}
		m.status = fmt.Sprintf("%sed '%s'", capitalize(msg.action.String()), msg.title)
		return m, nil
	}

	if m.dialog != nil {
		return m, m.dialog.Update(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	m.statuses = m.opts.Installer.Status()
	if m.cursor >= len(m.statuses) {
		m.cursor = max(len(m.statuses)-1, 0)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.requestExit()
	case "up", "k":
		return m.move(-1)
	case "down", "j":
		return m.move(1)
	case "home", "g":
		return m.move(-m.cursor)
	case "end", "G":
		return m.move(len(m.statuses))
	case "enter", " ", "i":
		return m.toggle()
	case "d":
		m.dialog = m.installDirDialog()
	case "s":
		m.settings = newSettingsScreen(m.opts.Installer.Settings())
	case "a":
		m.dialog = ui.NewMessage(tagInfo, "About", m.aboutText())
	case "b":
		return m.openBuilder()
	case "r":
		return m, m.reload()
	case "L":
		m.logs.Toggle()
	}
	return m, nil
}

func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	next := min(max(m.cursor+delta, 0), max(len(m.statuses)-1, 0))
	if next == m.cursor {
		return m, nil
	}
	m.cursor = next
	m.preview = previewState{}
	return m, m.loadPreview()
}

func (m Model) requestExit() (tea.Model, tea.Cmd) {
	if m.opts.Installer.Settings().PromptBeforeExit() {
		m.dialog = ui.NewConfirm(tagExit, m.opts.AppName, "Are you sure you want to exit?")
		return m, nil
	}
	m.cancel()
	return m, tea.Quit
}

func (m Model) installDirDialog() *ui.Dialog {
	return ui.NewInput(tagInstallDir, "Select Installation Directory",
		"Folder where mods will be installed:", m.opts.Installer.Settings().InstallDir())
}

// toggle starts installing or uninstalling the entry under the cursor,
// asking for an install directory or a confirmation first when needed.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	if m.busy || len(m.statuses) == 0 {
		return m, nil
	}
	if m.opts.Installer.Settings().InstallDir() == "" {
		m.pending = m.cursor
		m.dialog = m.installDirDialog()
		return m, nil
	}

	plan, err := m.opts.Installer.Plan(m.cursor)
	if err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
		return m, nil
	}
	if plan.NeedsConfirm {
		m.plan = plan
		title := m.opts.AppName + " - Confirm Uninstall"
		if plan.Action == install.ActionInstall {
			title = m.opts.AppName + " - Confirm Replace"
		}
		m.dialog = ui.NewConfirm(tagToggle, title, plan.Prompt())
		return m, nil
	}
	return m.run(plan)
}

func (m Model) run(plan install.Plan) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = fmt.Sprintf("Running %s of '%s'...", plan.Action, plan.Title)
	in := m.opts.Installer
	ctx := m.ctx
	return m, func() tea.Msg {
		var err error
		if plan.Action == install.ActionUninstall {
			err = in.Uninstall(ctx, plan.Index)
		} else {
			err = in.Install(ctx, plan.Index)
		}
		return opDoneMsg{action: plan.Action, title: plan.Title, err: err}
	}
}

func (m Model) dialogClosed(msg ui.DialogClosedMsg) (tea.Model, tea.Cmd) {
	switch msg.Tag {
	case tagExit:
		if msg.Accepted {
			m.cancel()
			return m, tea.Quit
		}

	case tagToggle:
		if msg.Accepted {
			return m.run(m.plan)
		}

	case tagInstallDir:
		pending := m.pending
		m.pending = -1
		if !msg.Accepted || msg.Value == "" {
			return m, nil
		}
		if err := m.setInstallDir(msg.Value); err != nil {
			m.dialog = ui.NewMessage(tagInfo, "Error", err.Error())
			return m, nil
		}
		if pending >= 0 && pending == m.cursor {
			return m.toggle()
		}
	}
	return m, nil
}

func (m *Model) setInstallDir(value string) error {
	dir, err := config.ExpandPath(value)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("install directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("install directory: %s is not a folder", dir)
	}

	s := m.opts.Installer.Settings()
	s.SetInstallDir(dir)
	if err := s.Save(); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	log.Info("install directory changed", "dir", dir)
	m.refresh()
	m.status = "Install directory: " + dir
	return nil
}

func (m Model) openBuilder() (tea.Model, tea.Cmd) {
	if m.opts.Builder == "" {
		return m, nil
	}
	if _, err := launch.Detached(m.opts.Builder, m.builderArgs()...); err != nil {
		m.dialog = ui.NewMessage(tagInfo, "Error", "Could not launch Mod Option Builder:\n"+err.Error())
		return m, nil
	}
	m.status = "Started Mod Option Builder"
	return m, nil
}

// builderArgs points the builder at the data folder this selector watches,
// whatever directory the builder binary lives in.
func (m Model) builderArgs() []string {
	dir := m.opts.Layout.DataDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return []string{"--data-dir", dir}
}

func (m Model) aboutText() string {
	return fmt.Sprintf("%s\nVersion: %s\nData: %s", m.opts.AppName, m.opts.Version, m.opts.Layout.DataDir)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.cancel()
	}
	return err
}
