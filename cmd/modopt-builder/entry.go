package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/modopt/pkg/modopt/cli"
	"github.com/jamesainslie/modopt/pkg/modopt/editor"
)

var locked = map[string]string{"lock": "true"}

var (
	addTitle       string
	addZip         string
	addPreview     string
	addChunkID     string
	addReplaces    string
	addDescription string
	addFromZip     bool

	rmFiles bool
	rmTrash bool

	filesFromZip bool
	filesAdd     []string
	filesRemove  []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a new entry",
	Long: `Append an entry to the manifest. --zip and --preview accept any file; it is
copied into data/zips or data/zips/previews.`,
	Args:        cobra.NoArgs,
	Annotations: locked,
	RunE:        runAdd,
}

var rmCmd = &cobra.Command{
	Use:         "rm <index|title>",
	Aliases:     []string{"delete"},
	Short:       "Delete an entry",
	Args:        cobra.ExactArgs(1),
	Annotations: locked,
	RunE:        runRemove,
}

var moveCmd = &cobra.Command{
	Use:         "move <index|title> up|down",
	Short:       "Move an entry one place up or down",
	Args:        cobra.ExactArgs(2),
	Annotations: locked,
	RunE:        runMove,
}

var setCmd = &cobra.Command{
	Use:   "set <index|title> <field> <value>",
	Short: "Change one field of an entry",
	Long: `Change one field of an entry. Fields:

  title, zip, preview, chunk_id, replaces, description

zip and preview take a file path; an empty value clears them.`,
	Args:        cobra.ExactArgs(3),
	Annotations: locked,
	RunE:        runSet,
}

var nameCmd = &cobra.Command{
	Use:         "name [new name]",
	Short:       "Show or change the mod name",
	Args:        cobra.MaximumNArgs(1),
	Annotations: locked,
	RunE:        runName,
}

var filesCmd = &cobra.Command{
	Use:   "files <index|title>",
	Short: "Show or edit the files an entry installs",
	Long: `Without flags, print the entry's file list. --from-zip replaces the list
with the regular files of the entry's archive; --add and --rm edit it.`,
	Args:        cobra.ExactArgs(1),
	Annotations: locked,
	RunE:        runFiles,
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", editor.NewEntryTitle, "entry title")
	addCmd.Flags().StringVar(&addZip, "zip", "", "archive to install")
	addCmd.Flags().StringVar(&addPreview, "preview", "", "preview image")
	addCmd.Flags().StringVar(&addChunkID, "chunk-id", "", "chunk id")
	addCmd.Flags().StringVar(&addReplaces, "replaces", "", "id of the content this option replaces")
	addCmd.Flags().StringVar(&addDescription, "description", "", "description")
	addCmd.Flags().BoolVar(&addFromZip, "from-zip", false, "fill the file list from --zip")

	rmCmd.Flags().BoolVar(&rmFiles, "files", false, "also delete the entry's zip and preview from disk")
	rmCmd.Flags().BoolVar(&rmTrash, "trash", false, "move deleted files to the trash instead")

	filesCmd.Flags().BoolVar(&filesFromZip, "from-zip", false, "replace the list with the archive's files")
	filesCmd.Flags().StringArrayVar(&filesAdd, "add", nil, "add a file (repeatable)")
	filesCmd.Flags().StringArrayVar(&filesRemove, "rm", nil, "remove a file (repeatable)")

	rootCmd.AddCommand(addCmd, rmCmd, moveCmd, setCmd, nameCmd, filesCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	i, err := doc.Add()
	if err != nil {
		return err
	}
	d := doc.Draft()
	d.Title = addTitle
	d.ChunkID = addChunkID
	d.Replaces = addReplaces
	d.Description = addDescription
	if addZip != "" {
		if err := doc.ImportZip(d, addZip); err != nil {
			return err
		}
	}
	if addPreview != "" {
		if err := doc.ImportPreview(d, addPreview); err != nil {
			return err
		}
	}
	if addFromZip {
		files, err := doc.FilesFromZip(d)
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		d.Files = files
	}
	if err := doc.Save(false); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d: %s\n", i, d.Title)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	i, err := resolve(doc, args[0])
	if err != nil {
		return err
	}
	out, in := cmd.OutOrStdout(), cmd.InOrStdin()
	title := doc.Titles()[i]

	if !cli.Confirm(in, out, fmt.Sprintf("Delete the selected entry? (%s)", title), assumeYes) {
		fmt.Fprintln(out, "Cancelled")
		return nil
	}
	opts := editor.DeleteOptions{RemoveAssets: rmFiles, Trash: rmTrash}
	if assets := doc.AssetPaths(i); len(assets) > 0 && !opts.RemoveAssets && !assumeYes {
		opts.RemoveAssets = cli.Confirm(in, out, "Delete associated files from disk?", false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := doc.Delete(ctx, i, opts); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted '%s'\n", title)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	i, err := resolve(doc, args[0])
	if err != nil {
		return err
	}

	var to int
	switch strings.ToLower(args[1]) {
	case "up":
		to, err = doc.MoveUp(i)
	case "down":
		to, err = doc.MoveDown(i)
	default:
		return fmt.Errorf("direction must be up or down, got %q", args[1])
	}
	if err != nil {
		return err
	}
	if to == i {
		fmt.Fprintf(cmd.OutOrStdout(), "'%s' is already at the %s\n", doc.Titles()[i], edge(args[1]))
		return nil
	}
	if err := doc.Save(false); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved '%s' to %d\n", doc.Titles()[to], to)
	return nil
}

func edge(direction string) string {
	if strings.EqualFold(direction, "up") {
		return "top"
	}
	return "bottom"
}

func runSet(cmd *cobra.Command, args []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	i, err := resolve(doc, args[0])
	if err != nil {
		return err
	}
	d, err := doc.Select(i)
	if err != nil {
		return err
	}

	field, value := strings.ToLower(args[1]), args[2]
	switch field {
	case "title":
		d.Title = value
	case "zip", "zip_path":
		if value == "" {
			err = doc.UseZip(d, "")
		} else {
			err = doc.ImportZip(d, value)
		}
	case "preview":
		if value == "" {
			err = doc.UsePreview(d, "")
		} else {
			err = doc.ImportPreview(d, value)
		}
	case "chunk_id", "chunk-id":
		d.ChunkID = value
	case "replaces":
		d.Replaces = value
	case "description":
		d.Description = value
	default:
		return fmt.Errorf("unknown field %q", args[1])
	}
	if err != nil {
		return err
	}
	if err := doc.Save(false); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s = %q\n", d.Title, field, value)
	return nil
}

func runName(cmd *cobra.Command, args []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		doc.SetModName(args[0])
		if err := doc.Save(false); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), doc.ModName())
	return nil
}

func runFiles(cmd *cobra.Command, args []string) error {
	doc, err := openDocument()
	if err != nil {
		return err
	}
	i, err := resolve(doc, args[0])
	if err != nil {
		return err
	}
	d, err := doc.Select(i)
	if err != nil {
		return err
	}

	if filesFromZip {
		files, err := doc.FilesFromZip(d)
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		d.Files = files
	}
	for _, f := range filesAdd {
		d.AddFile(f)
	}
	for _, f := range filesRemove {
		for j, have := range d.Files {
			if have == f {
				d.RemoveFile(j)
				break
			}
		}
	}
	if err := doc.Save(false); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(d.Files) == 0 {
		fmt.Fprintf(out, "%s lists no files\n", d.Title)
		return nil
	}
	for _, f := range d.Files {
		fmt.Fprintln(out, f)
	}
	return nil
}
