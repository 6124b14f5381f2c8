package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/cmd/modopt-selector/tui"
	"github.com/jamesainslie/modopt/pkg/modopt/cli"
	"github.com/jamesainslie/modopt/pkg/modopt/install"
	"github.com/jamesainslie/modopt/pkg/modopt/instance"
	"github.com/jamesainslie/modopt/pkg/modopt/launch"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
	"github.com/jamesainslie/modopt/pkg/modopt/watch"
)

const (
	appName  = "modopt-selector"
	lockName = "modopt-selector"
)

var (
	dataDir   string
	assumeYes bool
	verbose   bool

	env  *cli.Env
	lock *instance.Lock

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Install and uninstall mod options",
		Long: `modopt-selector shows every option in data/mod_options.json with its
install status and installs or uninstalls it in the configured install
directory.

Without a subcommand it starts the interactive selector, which reloads the
manifest whenever the builder saves it.

Examples:
  modopt-selector                       # interactive selector
  modopt-selector list                  # status of every option
  modopt-selector install "Red Skin"    # install by title
  modopt-selector uninstall 0           # uninstall by index
  modopt-selector settings set install_dir ~/Games/MyGame`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runTUI,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data folder (default: ./data)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug output")
}

// setup loads configuration and takes the single-instance lock for commands
// that change the install directory.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	env, err = cli.Load(appName, cli.Options{DataDir: dataDir, Verbose: verbose})
	if err != nil {
		return err
	}
	if !cmd.HasParent() || cmd.Annotations["lock"] == "true" {
		lock, err = instance.Acquire(lockName)
		if err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if lock != nil {
			_ = lock.Release()
			lock = nil
		}
		_ = logging.Close()
	}()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, "The application is already running.")
			return err
		}
		printError("%v", err)
		return err
	}
	return nil
}

// loadState reads the manifest and settings. A missing manifest is an error
// here; the interactive selector shows it as empty.
func loadState() (*manifest.Manifest, *settings.Settings, error) {
	m, err := manifest.Load(env.Layout.ManifestPath())
	if err != nil {
		return nil, nil, fmt.Errorf("loading manifest: %w", err)
	}
	s, err := settings.Load(env.Layout.SettingsPath())
	if err != nil {
		logging.Get("selector").Warn("settings unreadable, using defaults", "error", err)
	}
	return m, s, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	if err := env.InitLogging(true, false); err != nil {
		return fmt.Errorf("failed to initialize TUI logging: %w", err)
	}
	log := logging.Get("selector")

	m, err := manifest.Load(env.Layout.ManifestPath())
	if err != nil {
		log.Warn("manifest unreadable, starting empty", "path", env.Layout.ManifestPath(), "error", err)
		m = &manifest.Manifest{Entries: []manifest.Entry{}}
	}
	s, err := settings.Load(env.Layout.SettingsPath())
	if err != nil {
		log.Warn("settings unreadable, using defaults", "error", err)
	}

	builder, err := launch.Companion(env.Config.Selector.BuilderExecutable, "modopt-builder")
	if err != nil {
		log.Debug("builder not found", "error", err)
		builder = ""
	}

	w := watch.New(env.Layout.ManifestPath(), watch.Options{
		Interval: env.Config.Selector.PollInterval,
		FSNotify: env.Config.Selector.FSNotify,
	})

	return tui.Run(tui.Options{
		AppName:   "Mod Option Selector",
		Version:   version,
		Layout:    env.Layout,
		Installer: install.New(env.Layout, m, s),
		Theme:     settings.LoadTheme(env.Layout.ThemePath()),
		Watcher:   w,
		Builder:   builder,
	})
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
