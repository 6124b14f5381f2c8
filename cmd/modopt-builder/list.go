package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the manifest entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listJSON, "json", "j", false, "print the manifest as written to disk")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if listJSON {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&manifest.Manifest{ModName: doc.ModName(), Entries: doc.Entries()}); err != nil {
			return err
		}
		_, err = out.Write(buf.Bytes())
		return err
	}

	fmt.Fprintf(out, "%s\n\n", doc.ModName())
	entries := doc.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries. Add one with 'modopt-builder add'.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tZIP\tPREVIEW\tFILES\tCHUNK\tREPLACES")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			i, e.Title, dash(e.ZipPath), dash(e.Preview), len(e.Files), dash(e.ChunkID), dash(e.Replaces))
	}
	return tw.Flush()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
