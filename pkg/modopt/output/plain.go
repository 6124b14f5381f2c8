package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// PlainFormatter writes an aligned, uncolored table for scripts.
type PlainFormatter struct{}

// Format implements Formatter.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATE\tTITLE\tFILES\tSIZE")
	for _, o := range r.Options {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", o.Index, o.State, o.Title, len(o.Files), dash(o.SizeHuman))
	}
	return tw.Flush()
}

// TSVFormatter writes tab-separated rows with a header.
type TSVFormatter struct{}

// Format implements Formatter.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("INDEX\tSTATE\tTITLE\tARCHIVE\tFILES\n")
	for _, o := range r.Options {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			o.Index, o.State, tsvField(o.Title), tsvField(o.Archive), tsvField(strings.Join(o.Files, ",")))
	}
	return nil
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
	Register("tsv", func() Formatter { return &TSVFormatter{} })
}

var (
	_ Formatter = (*PlainFormatter)(nil)
	_ Formatter = (*TSVFormatter)(nil)
)
