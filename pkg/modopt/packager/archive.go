package packager

import (
	"archive/tar"
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

type format struct {
	name string
	ext  string
	open func(w io.Writer) (archiveWriter, error)
}

type archiveWriter interface {
	add(name string, info os.FileInfo, r io.Reader) error
	Close() error
}

var formats = []format{
	{name: "zip", ext: ".zip", open: newZipWriter},
	{name: "tar.xz", ext: ".tar.xz", open: newTarXZWriter},
}

// Formats returns the supported package formats.
func Formats() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.name
	}
	return names
}

func lookupFormat(name string) (format, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if name == "" {
		name = "zip"
	}
	for _, f := range formats {
		if f.name == name {
			return f, nil
		}
	}
	return format{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
}

// writeArchive writes files (slash paths relative to root) to output and
// returns the file count and the archive size.
func writeArchive(ctx context.Context, f format, output, root string, files []string) (int, int64, error) {
	out, err := os.Create(output)
	if err != nil {
		return 0, 0, err
	}
	defer out.Close()

	aw, err := f.open(out)
	if err != nil {
		return 0, 0, err
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			_ = aw.Close()
			return 0, 0, err
		}
		if err := addFile(aw, root, name); err != nil {
			_ = aw.Close()
			return 0, 0, err
		}
	}

	if err := aw.Close(); err != nil {
		return 0, 0, err
	}
	info, err := out.Stat()
	if err != nil {
		return 0, 0, err
	}
	return len(files), info.Size(), out.Close()
}

func addFile(aw archiveWriter, root, name string) error {
	path := filepath.Join(root, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return aw.add(name, info, f)
}

type zipWriter struct{ zw *zip.Writer }

func newZipWriter(w io.Writer) (archiveWriter, error) {
	return &zipWriter{zw: zip.NewWriter(w)}, nil
}

func (z *zipWriter) add(name string, info os.FileInfo, r io.Reader) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := z.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func (z *zipWriter) Close() error { return z.zw.Close() }

type tarXZWriter struct {
	xw *xz.Writer
	tw *tar.Writer
}

func newTarXZWriter(w io.Writer) (archiveWriter, error) {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &tarXZWriter{xw: xw, tw: tar.NewWriter(xw)}, nil
}

func (t *tarXZWriter) add(name string, info os.FileInfo, r io.Reader) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := t.tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(t.tw, r)
	return err
}

func (t *tarXZWriter) Close() error {
	if err := t.tw.Close(); err != nil {
		_ = t.xw.Close()
		return err
	}
	return t.xw.Close()
}
