package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change data/settings.json",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save the file. Keys:

  install_dir          folder options are installed into
  CanInstallMultiple   allow more than one option at a time (true/false)
  PromptUser           confirm before replacing or uninstalling (true/false)
  PromptBeforeExit     confirm before leaving the selector (true/false)`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{"lock": "true"},
	RunE:        runSettingsSet,
}

var configPathCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Write a default config.yaml if none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.WriteDefault()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd, configPathCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(env.Layout.SettingsPath())
	if err != nil {
		printError("reading settings: %v (showing defaults)", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", s.Path())
	values := s.Values()
	for _, k := range settings.Keys() {
		fmt.Fprintf(tw, "%s:\t%v\n", k, values[k])
	}
	extra := s.Extra()
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(tw, "%s:\t%v\t(unknown)\n", k, values[k])
	}
	return tw.Flush()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	s, err := settings.Load(env.Layout.SettingsPath())
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	key, value := args[0], args[1]
	if key == settings.KeyInstallDir && value != "" {
		if value, err = config.ExpandPath(value); err != nil {
			return err
		}
	}
	if err := s.Set(key, value); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, s.Values()[key])
	return nil
}
