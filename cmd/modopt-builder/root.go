package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/cmd/modopt-builder/tui"
	"github.com/jamesainslie/modopt/pkg/modopt/cli"
	"github.com/jamesainslie/modopt/pkg/modopt/editor"
	"github.com/jamesainslie/modopt/pkg/modopt/instance"
	"github.com/jamesainslie/modopt/pkg/modopt/launch"
	"github.com/jamesainslie/modopt/pkg/modopt/listing"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
)

const (
	appName  = "modopt-builder"
	lockName = "modopt-builder"
)

var (
	dataDir   string
	assumeYes bool
	verbose   bool

	env    *cli.Env
	lock   *instance.Lock
	lister *listing.Lister

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Edit the mod options manifest and package the mod",
		Long: `modopt-builder edits data/mod_options.json: the mod name and the ordered
list of options with their archive, preview image, installed files, chunk id,
replaces id and description. It also packages the data folder and the
selector program into one archive for distribution.

Without a subcommand it starts the interactive editor.

Examples:
  modopt-builder                                  # interactive editor
  modopt-builder add --title "Red Skin" --zip ~/red.zip --from-zip
  modopt-builder set 0 description "Bright red"
  modopt-builder move 1 up
  modopt-builder pack -o dist/`,
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
// that write the manifest.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	env, err = cli.Load(appName, cli.Options{DataDir: dataDir, Verbose: verbose})
	if err != nil {
		return err
	}
	if !cmd.HasParent() || cmd.Annotations["lock"] == "true" {
		if lock, err = instance.Acquire(lockName); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if lister != nil {
			_ = lister.Close()
			lister = nil
		}
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

// openDocument opens the manifest for editing with the listing cache.
func openDocument() (*editor.Document, error) {
	if lister == nil {
		lister = env.Lister()
	}
	doc, err := editor.Open(env.Layout, lister)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	return doc, nil
}

// resolve picks an entry of doc by index or title.
func resolve(doc *editor.Document, arg string) (int, error) {
	return cli.ResolveEntry(&manifest.Manifest{Entries: doc.Entries()}, arg)
}

// selectorExecutable locates the selector program packed beside data/.
// explicit overrides the configured path. It returns the name it looked for
// when nothing is found.
func selectorExecutable(explicit string) (string, bool) {
	if explicit == "" {
		explicit = env.Config.Builder.SelectorExecutable
	}
	exe, err := launch.Companion(explicit, "modopt-selector")
	if err != nil {
		if explicit != "" {
			return explicit, false
		}
		return "modopt-selector", false
	}
	return exe, true
}

func runTUI(_ *cobra.Command, _ []string) error {
	if err := env.InitLogging(true, false); err != nil {
		return fmt.Errorf("failed to initialize TUI logging: %w", err)
	}
	doc, err := openDocument()
	if err != nil {
		return err
	}

	exe, found := selectorExecutable("")
	if !found {
		exe = ""
	}
	return tui.Run(tui.Options{
		AppName:            "Mod Option Builder",
		Version:            version,
		Document:           doc,
		Theme:              settings.LoadTheme(env.Layout.ThemePath()),
		SelectorExecutable: exe,
		PackageFormat:      env.Config.Builder.PackageFormat,
	})
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
