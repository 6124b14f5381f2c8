package output

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
)

// TemplateFormatter executes a text/template once per option.
type TemplateFormatter struct {
	text string
}

// NewTemplateFormatter returns a formatter for the given template text.
// A trailing newline is added when the template has none.
func NewTemplateFormatter(text string) *TemplateFormatter {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return &TemplateFormatter{text: text}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// {{bytes .ArchiveSize}}
		"bytes": func(size int64) string {
			return humanize.IBytes(uint64(size))
		},
		// {{join .Files ","}}
		"join":  strings.Join,
		"glyph": StateGlyph,
	}
}

// Format implements Formatter.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	tmpl, err := template.New("option").Funcs(templateFuncs()).Parse(f.text)
	if err != nil {
		return err
	}
	for _, o := range r.Options {
		if err := tmpl.Execute(w, o); err != nil {
			return err
		}
	}
	return nil
}

var _ Formatter = (*TemplateFormatter)(nil)
