package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
	"github.com/jamesainslie/modopt/pkg/modopt/output"
)

var (
	outputFormat string
	templateStr  string
	jsonOut      bool
	yamlOut      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every option and its install status",
	Long: `List the manifest's options with their status:

  ✓  installed
  !  missing preview, chunk id, replaces or description
  ✗  no files listed; cannot be installed`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", "pretty",
		"output format: "+strings.Join(append(output.Available(), "template"), ", "))
	listCmd.Flags().StringVar(&templateStr, "template", "", "template for -o template, e.g. '{{.Index}} {{.Title}}'")
	listCmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "shorthand for -o json")
	listCmd.Flags().BoolVar(&yamlOut, "yaml", false, "shorthand for -o yaml")
	rootCmd.AddCommand(listCmd)
}

func formatterFor() (output.Formatter, error) {
	format := outputFormat
	switch {
	case jsonOut:
		format = "json"
	case yamlOut:
		format = "yaml"
	}
	if format == "template" {
		if templateStr == "" {
			return nil, fmt.Errorf("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(templateStr), nil
	}
	return output.Get(format)
}

func runList(cmd *cobra.Command, _ []string) error {
	formatter, err := formatterFor()
	if err != nil {
		return err
	}
	m, s, err := loadState()
	if err != nil {
		return err
	}

	result := output.FromManifest(m, manifest.DefaultSelectorModName, s.InstallDir(), env.Layout)
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
