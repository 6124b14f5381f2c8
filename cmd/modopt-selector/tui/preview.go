package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/modopt/pkg/modopt/preview"
)

// previewState is the rendered preview of one entry at one pane width.
type previewState struct {
	index    int
	width    int
	rendered string
	source   string
	err      error
}

type previewMsg previewState

func (m Model) previewWidth() int {
	return max(m.width-m.listWidth()-6, 10)
}

func (m Model) previewRows() int {
	return max((m.height-12)/2, 4)
}

// loadPreview decodes and renders the entry under the cursor off the UI
// goroutine.
func (m Model) loadPreview() tea.Cmd {
	e, ok := m.current()
	if !ok {
		return nil
	}
	index, cols, rows := m.cursor, m.previewWidth(), m.previewRows()
	path := ""
	if e.HasPreview() {
		path = m.opts.Layout.Resolve(e.Preview)
	}
	fallback := m.opts.Layout.PlaceholderImage()

	return func() tea.Msg {
		msg := previewMsg{index: index, width: cols}
		img, used, err := preview.Load(path, fallback)
		if err != nil {
			log.Debug("no preview", "path", path, "error", err)
			msg.err = err
			return msg
		}
		msg.source = used
		msg.rendered = preview.RenderBlocks(preview.Thumbnail(img, preview.ThumbnailSize), cols, rows)
		return msg
	}
}
