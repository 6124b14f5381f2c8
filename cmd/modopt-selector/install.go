package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/cli"
	"github.com/jamesainslie/modopt/pkg/modopt/install"
)

var installCmd = &cobra.Command{
	Use:         "install <index|title>",
	Short:       "Install an option",
	Long:        "Extract the option's archive into the install directory, removing other installed options unless CanInstallMultiple is set.",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"lock": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], install.ActionInstall)
	},
}

var uninstallCmd = &cobra.Command{
	Use:         "uninstall <index|title>",
	Short:       "Uninstall an option",
	Long:        "Remove every file the option lists from the install directory. Missing files are skipped.",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"lock": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], install.ActionUninstall)
	},
}

var toggleCmd = &cobra.Command{
	Use:         "toggle <index|title>",
	Short:       "Uninstall an option if installed, otherwise install it",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"lock": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, args[0], -1)
	},
}

func init() {
	rootCmd.AddCommand(installCmd, uninstallCmd, toggleCmd)
}

// runAction runs want on the selected entry; a negative want toggles.
func runAction(cmd *cobra.Command, arg string, want install.Action) error {
	m, s, err := loadState()
	if err != nil {
		return err
	}
	if s.InstallDir() == "" {
		return fmt.Errorf("%w: run 'modopt-selector settings set install_dir <folder>'", install.ErrNoInstallDir)
	}
	index, err := cli.ResolveEntry(m, arg)
	if err != nil {
		return err
	}

	in := install.New(env.Layout, m, s)
	out := cmd.OutOrStdout()

	var plan install.Plan
	if want == install.ActionUninstall {
		var present bool
		plan, present, err = in.PlanUninstall(index)
		if err != nil {
			return err
		}
		if !present {
			fmt.Fprintf(out, "'%s' is not installed\n", plan.Title)
			return nil
		}
	} else {
		plan, err = in.Plan(index)
		if err != nil {
			return err
		}
		if want == install.ActionInstall && plan.Action != install.ActionInstall {
			fmt.Fprintf(out, "'%s' is already installed\n", plan.Title)
			return nil
		}
	}

	if plan.NeedsConfirm && !cli.Confirm(cmd.InOrStdin(), out, plan.Prompt(), assumeYes) {
		fmt.Fprintln(out, "Cancelled")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if plan.Action == install.ActionUninstall {
		err = in.Uninstall(ctx, index)
	} else {
		err = in.Install(ctx, index)
	}
	if err != nil {
		return err
	}
	for _, c := range plan.Conflicts {
		fmt.Fprintf(out, "Removed '%s'\n", m.Entries[c].Title)
	}
	if plan.Action == install.ActionUninstall {
		fmt.Fprintf(out, "Uninstalled '%s'\n", plan.Title)
	} else {
		fmt.Fprintf(out, "Installed '%s' into %s\n", plan.Title, s.InstallDir())
	}
	return nil
}
