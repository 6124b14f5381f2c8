// Package preview decodes entry preview images and renders them for the
// terminal.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	// Register image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
	// WebP support from x/image
	_ "golang.org/x/image/webp"
)

// ThumbnailSize is the edge of the square previews are fitted into.
const ThumbnailSize = 200

// ErrNoImage is returned when neither the preview nor the fallback loads.
var ErrNoImage = errors.New("no preview image")

var extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Extensions returns the image file extensions previews may use.
func Extensions() []string {
	return append([]string(nil), extensions...)
}

// IsImage reports whether name has a preview image extension.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode reads the image file at path.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s (format=%s): %w", path, format, err)
	}
	return img, nil
}

// Load decodes path, falling back to the placeholder image when path is
// empty, "None" or cannot be decoded. It returns the image and the file it
// came from.
func Load(path, fallback string) (image.Image, string, error) {
	var firstErr error
	if p := strings.TrimSpace(path); p != "" && p != "None" {
		img, err := Decode(p)
		if err == nil {
			return img, p, nil
		}
		firstErr = err
	}

	if fallback != "" {
		img, err := Decode(fallback)
		if err == nil {
			return img, fallback, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		return nil, "", ErrNoImage
	}
	return nil, "", fmt.Errorf("%w: %w", ErrNoImage, firstErr)
}

// Thumbnail scales img to fit within size x size, keeping its aspect ratio.
// Smaller images are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || w == 0 || h == 0 || (w <= size && h <= size) {
		return img
	}
	tw, th := fit(w, h, size, size)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func fit(w, h, maxW, maxH int) (int, int) {
	tw, th := maxW, h*maxW/w
	if th > maxH {
		tw, th = w*maxH/h, maxH
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

// RenderBlocks draws img cols characters wide using upper half blocks, two
// pixel rows per line. The height follows the aspect ratio, capped at
// maxRows lines when maxRows > 0.
func RenderBlocks(img image.Image, cols, maxRows int) string {
	b := img.Bounds()
	if cols <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	maxH := 1 << 20
	if maxRows > 0 {
		maxH = maxRows * 2
	}
	w, h := fit(b.Dx(), b.Dy(), cols, maxH)
	if h%2 == 1 {
		h++
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := hex(small.At(x, y))
			bottom := hex(small.At(x, y+1))
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		if y+2 < h {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
