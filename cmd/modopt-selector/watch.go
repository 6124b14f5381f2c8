package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print a line each time the manifest changes",
	Long: `Watch data/mod_options.json the way the interactive selector does and
print the reloaded option count on every change. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path := env.Layout.ManifestPath()
	w := watch.New(path, watch.Options{
		Interval: env.Config.Selector.PollInterval,
		FSNotify: env.Config.Selector.FSNotify,
	})
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %s every %s\n", path, w.Interval())

	err := w.Run(ctx, func(ev watch.Event) {
		if !ev.Exists {
			fmt.Fprintf(out, "%s removed\n", ev.Path)
			return
		}
		m, err := manifest.Load(ev.Path)
		if err != nil {
			fmt.Fprintf(out, "%s changed: %v\n", ev.Path, err)
			return
		}
		fmt.Fprintf(out, "%s reloaded: %q, %d options\n",
			ev.ModTime.Format("15:04:05"), m.Name(manifest.DefaultSelectorModName), len(m.Entries))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
