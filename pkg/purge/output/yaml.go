package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter writes the result as a YAML document with the same keys as
// the JSON output. A titled result gets the title as a leading comment, so
// the document stays parseable while still saying which command made it.
type YAMLFormatter struct{}

// Format writes r to w.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	var doc yaml.Node
	if err := doc.Encode(r); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if r.Title != "" {
		doc.HeadComment = "purge: " + r.Title
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func init() {
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
}

var _ Formatter = (*YAMLFormatter)(nil)
