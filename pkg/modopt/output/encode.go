package output

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONFormatter writes the result as one indented JSON document.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(normalized(r))
}

// YAMLFormatter writes the same document as JSONFormatter in YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalized(r)); err != nil {
		return err
	}
	return enc.Close()
}

// normalized returns a copy where nil lists encode as empty lists.
func normalized(r *Result) *Result {
	out := *r
	if out.Options == nil {
		out.Options = []Option{}
	}
	out.Options = append([]Option(nil), out.Options...)
	for i := range out.Options {
		if out.Options[i].Files == nil {
			out.Options[i].Files = []string{}
		}
	}
	return &out
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
)
