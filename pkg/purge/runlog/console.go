package runlog

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/purge/pkg/purge/event"
)

// Console echoes events to a terminal, one line each, with the tag
// colored when the writer supports it.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	styles  map[event.Tag]lipgloss.Style
}

// NewConsole returns a console sink writing to w. Unless verbose is set,
// SCAN and SKIP events are not echoed.
func NewConsole(w io.Writer, verbose bool) *Console {
	r := lipgloss.NewRenderer(w)
	style := func(color string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(color))
	}

	return &Console{
		w:       w,
		verbose: verbose,
		styles: map[event.Tag]lipgloss.Style{
			event.TagScan:    style("8"),
			event.TagSkip:    style("8"),
			event.TagMatch:   style("11").Bold(true),
			event.TagMove:    style("10").Bold(true),
			event.TagGone:    style("12"),
			event.TagDenied:  style("9"),
			event.TagError:   style("9").Bold(true),
			event.TagReclaim: style("13"),
		},
	}
}

// Emit prints e.
func (c *Console) Emit(e event.Event) {
	if !c.verbose && (e.Tag == event.TagScan || e.Tag == event.TagSkip) {
		return
	}

	line := e.String()
	if st, ok := c.styles[e.Tag]; ok {
		tag := "[" + string(e.Tag) + "]"
		if len(line) >= len(tag) && line[:len(tag)] == tag {
			line = st.Render(tag) + line[len(tag):]
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.w, line)
}
