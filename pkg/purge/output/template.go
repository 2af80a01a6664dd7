package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// TemplateFormatter renders a Result through a user-supplied text/template.
// The template is parsed on first use.
type TemplateFormatter struct {
	text string

	mu   sync.Mutex
	tmpl *template.Template
}

// templateData is what a template sees: the Result plus a few totals.
type templateData struct {
	*Result
	TotalSize int64
	FileCount int
	Failures  int64
}

// NewTemplateFormatter returns a formatter for the given template text.
func NewTemplateFormatter(text string) *TemplateFormatter {
	return &TemplateFormatter{text: text}
}

// templateFuncs are available to every template:
//
//	{{date .MovedAt "2006-01-02"}}   formatted time, "" for the zero time
//	{{bytes .Size}}                  "1.5 MiB"
//	{{short .RunID}}                 first segment of a run ID
//	{{tag .Destination}}             volume tag directory of a quarantined file
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"bytes": func(size int64) string {
			if size < 0 {
				return "-" + humanize.IBytes(uint64(-size))
			}
			return humanize.IBytes(uint64(size))
		},
		"short": shortID,
		"tag":   volumeTagOf,
	}
}

// Format renders r into w.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tmpl == nil {
		tmpl, err := template.New("purge").Funcs(templateFuncs()).Parse(f.text)
		if err != nil {
			return fmt.Errorf("parsing output template: %w", err)
		}
		f.tmpl = tmpl
	}

	data := templateData{
		Result:    r,
		TotalSize: r.TotalSize(),
		FileCount: len(r.Files),
	}
	if r.Report != nil {
		data.Failures = r.Report.Failures()
	}
	return f.tmpl.Execute(w, data)
}

// volumeTagOf returns the directory directly under Quarantine in a
// destination path, or "" when the path is not inside a quarantine tree.
func volumeTagOf(dest string) string {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(dest)), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "Quarantine" {
			return parts[i+1]
		}
	}
	return ""
}

// defaultTemplate prints one "source<TAB>destination" line per file.
const defaultTemplate = `{{range .Files}}{{.Source}}	{{.Destination}}
{{end}}`

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(defaultTemplate)
	})
}

var _ Formatter = (*TemplateFormatter)(nil)
