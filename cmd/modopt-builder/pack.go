package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/packager"
)

var (
	packOutput   string
	packFormat   string
	packSelector string
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Package the mod for distribution",
	Long: `Copy the data folder without data/assets/options_builder and the selector
program into one folder named after the mod, and compress it.

-o takes a file name or an existing folder; the default is
<mod name>.zip in the current directory.`,
	Args: cobra.NoArgs,
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "archive path or folder")
	packCmd.Flags().StringVar(&packFormat, "format", "", "archive format: "+strings.Join(packager.Formats(), ", ")+" (default from config)")
	packCmd.Flags().StringVar(&packSelector, "selector", "", "selector program to include (default: builder.selector_executable or modopt-selector beside this program)")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, _ []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	format := packFormat
	if format == "" {
		format = env.Config.Builder.PackageFormat
	}

	output := packOutput
	if output == "" || isDir(output) {
		name, err := packager.DefaultOutput(doc.ModName(), format)
		if err != nil {
			return err
		}
		output = filepath.Join(output, name)
	}

	exe, found := selectorExecutable(packSelector)
	out := cmd.OutOrStdout()
	if !found {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s not found. Only 'data/' will be packaged.\n", filepath.Base(exe))
		exe = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := packager.Pack(ctx, packager.Options{
		ModName:    doc.ModName(),
		DataDir:    env.Layout.DataDir,
		Executable: exe,
		Output:     output,
		Format:     format,
	})
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	for _, w := range res.Warnings {
		if !errors.Is(w, packager.ErrExecutableMissing) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
		}
	}
	fmt.Fprintf(out, "Mod packaged successfully:\n%s\n", res.Output)
	fmt.Fprintf(out, "%d files, %s\n", res.Files, humanize.Bytes(uint64(res.Bytes)))
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
