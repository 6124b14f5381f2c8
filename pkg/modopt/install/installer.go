package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
)

var log = logging.Get("installer")

// Action is what toggling an entry would do.
type Action int

// Toggle actions.
const (
	ActionInstall Action = iota
	ActionUninstall
)

// String returns "install" or "uninstall".
func (a Action) String() string {
	if a == ActionUninstall {
		return "uninstall"
	}
	return "install"
}

// Plan describes a pending toggle so the caller can confirm it first.
type Plan struct {
	Index  int
	Title  string
	Action Action

	// Conflicts holds the indices of other installed entries that an install
	// will remove. It is empty when multiple installs are allowed.
	Conflicts []int

	// NeedsConfirm is set when PromptUser is on and the action is an
	// uninstall or would replace another option.
	NeedsConfirm bool
}

// Prompt returns the confirmation question for the plan.
func (p Plan) Prompt() string {
	if p.Action == ActionUninstall {
		return fmt.Sprintf("Do you want to uninstall '%s'?", p.Title)
	}
	return fmt.Sprintf("Another option is already installed.\nDo you want to uninstall it and install '%s'?", p.Title)
}

// Installer installs and uninstalls the entries of one manifest into the
// configured install directory. Operations are serialized; a call made while
// another is running fails with ErrBusy.
type Installer struct {
	layout   config.Layout
	settings *settings.Settings

	mu       sync.RWMutex
	manifest *manifest.Manifest

	running sync.Mutex
}

// New returns an Installer for m.
func New(layout config.Layout, m *manifest.Manifest, s *settings.Settings) *Installer {
	return &Installer{layout: layout, settings: s, manifest: m}
}

// SetManifest replaces the manifest after a reload.
func (in *Installer) SetManifest(m *manifest.Manifest) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.manifest = m
}

// Manifest returns the current manifest.
func (in *Installer) Manifest() *manifest.Manifest {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.manifest
}

// Settings returns the settings the installer reads.
func (in *Installer) Settings() *settings.Settings { return in.settings }

// Status evaluates every entry in manifest order.
func (in *Installer) Status() []Status {
	m := in.Manifest()
	dir := in.settings.InstallDir()
	out := make([]Status, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = Evaluate(e, dir, in.layout)
	}
	return out
}

// Plan reports what Toggle(index) would do.
func (in *Installer) Plan(index int) (Plan, error) {
	m := in.Manifest()
	e, err := m.Entry(index)
	if err != nil {
		return Plan{}, err
	}

	dir := in.settings.InstallDir()
	p := Plan{Index: index, Title: e.Title, Action: ActionInstall}
	if IsInstalled(e, dir) {
		p.Action = ActionUninstall
		p.NeedsConfirm = in.settings.PromptUser()
		return p, nil
	}

	if !in.settings.CanInstallMultiple() {
		p.Conflicts = installedExcept(m, dir, index)
	}
	p.NeedsConfirm = in.settings.PromptUser() && len(p.Conflicts) > 0
	return p, nil
}

// PlanUninstall reports what an explicit uninstall of index would do. Unlike
// Plan it also applies to a partly installed entry; ok is false when none
// of the entry's files are present.
func (in *Installer) PlanUninstall(index int) (p Plan, ok bool, err error) {
	e, err := in.Manifest().Entry(index)
	if err != nil {
		return Plan{}, false, err
	}
	p = Plan{
		Index:        index,
		Title:        e.Title,
		Action:       ActionUninstall,
		NeedsConfirm: in.settings.PromptUser(),
	}
	return p, len(PresentFiles(e, in.settings.InstallDir())) > 0, nil
}

func installedExcept(m *manifest.Manifest, dir string, skip int) []int {
	var out []int
	for i, e := range m.Entries {
		if i != skip && IsInstalled(e, dir) {
			out = append(out, i)
		}
	}
	return out
}

// Toggle uninstalls the entry when it is installed and installs it otherwise.
func (in *Installer) Toggle(ctx context.Context, index int) (Action, error) {
	p, err := in.Plan(index)
	if err != nil {
		return ActionInstall, err
	}
	if p.Action == ActionUninstall {
		return p.Action, in.Uninstall(ctx, index)
	}
	return p.Action, in.Install(ctx, index)
}

// Install extracts the entry's archive into the install directory. Unless
// multiple installs are allowed, the files of every other installed entry
// are removed first; those removals are best effort.
func (in *Installer) Install(ctx context.Context, index int) error {
	if !in.running.TryLock() {
		return ErrBusy
	}
	defer in.running.Unlock()

	m := in.Manifest()
	e, err := m.Entry(index)
	if err != nil {
		return err
	}
	dir := in.settings.InstallDir()
	if dir == "" {
		return ErrNoInstallDir
	}
	if e.ZipPath == "" {
		return fmt.Errorf("%s: %w", e.Title, ErrNoArchive)
	}

	if !in.settings.CanInstallMultiple() {
		for _, other := range installedExcept(m, dir, index) {
			o := m.Entries[other]
			if err := removeFiles(ctx, dir, o.Files); err != nil {
				log.Warn("could not fully remove replaced option", "title", o.Title, "error", err)
			} else {
				log.Info("removed replaced option", "title", o.Title)
			}
		}
	}

	archive := in.layout.Resolve(e.ZipPath)
	n, err := Extract(ctx, archive, dir)
	if err != nil {
		log.Error("install failed", "title", e.Title, "archive", archive, "error", err)
		return fmt.Errorf("installing %s: %w", e.Title, err)
	}
	log.Info("installed option", "title", e.Title, "files", n, "dir", dir)
	return nil
}

// Uninstall removes every listed file of the entry that exists. Missing
// files are skipped. Failures do not stop the batch and are returned joined.
func (in *Installer) Uninstall(ctx context.Context, index int) error {
	if !in.running.TryLock() {
		return ErrBusy
	}
	defer in.running.Unlock()

	e, err := in.Manifest().Entry(index)
	if err != nil {
		return err
	}
	dir := in.settings.InstallDir()
	if dir == "" {
		return ErrNoInstallDir
	}

	if err := removeFiles(ctx, dir, e.Files); err != nil {
		log.Error("uninstall incomplete", "title", e.Title, "error", err)
		return fmt.Errorf("uninstalling %s: %w", e.Title, err)
	}
	log.Info("uninstalled option", "title", e.Title)
	return nil
}

func removeFiles(ctx context.Context, dir string, files []string) error {
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		path, err := target(dir, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, &PathError{Op: "remove", Path: path, Err: err})
		}
	}
	return errors.Join(errs...)
}
