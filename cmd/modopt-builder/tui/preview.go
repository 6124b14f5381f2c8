package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/modopt/pkg/modopt/preview"
)

type previewState struct {
	key      string
	rendered string
	err      error
}

type previewMsg previewState

// previewKey identifies what the preview pane should show: the draft's
// image at the current pane size.
func (m Model) previewKey() string {
	d := m.doc.Draft()
	if d == nil || m.previewCols() == 0 {
		return ""
	}
	return d.Preview + "|" + strconv.Itoa(m.previewCols()) + "x" + strconv.Itoa(m.previewRows())
}

// loadPreview renders the draft's preview image, or the placeholder, in
// the background.
func (m Model) loadPreview() tea.Cmd {
	key := m.previewKey()
	if key == "" || key == m.preview.key {
		return nil
	}
	layout := m.doc.Layout()
	path := ""
	if p := m.doc.Draft().Preview; p != "" {
		path = layout.Resolve(p)
	}
	fallback := layout.PlaceholderImage()
	cols, rows := m.previewCols(), m.previewRows()

	return func() tea.Msg {
		img, _, err := preview.Load(path, fallback)
		if err != nil {
			return previewMsg{key: key, err: err}
		}
		return previewMsg{key: key, rendered: preview.RenderBlocks(preview.Thumbnail(img, preview.ThumbnailSize), cols, rows)}
	}
}
