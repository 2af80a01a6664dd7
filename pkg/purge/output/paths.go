package output

import (
	"bytes"
)

// PathsFormatter formats output as one quarantine path per line.
// It produces a simple list suitable for piping to other tools.
// Volumes are listed by root path when the result has no files.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, file := range r.Files {
		w.WriteString(file.Destination)
		w.WriteByte('\n')
	}
	if len(r.Files) == 0 {
		for _, v := range r.Volumes {
			w.WriteString(v.Path)
			w.WriteByte('\n')
		}
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)
