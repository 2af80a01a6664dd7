// Package event defines the records a scan emits and the sinks that
// receive them. Sinks are passed into the engine explicitly; there is no
// package-level logger.
package event

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Tag classifies an event.
type Tag string

// Per-item tags.
const (
	TagScan   Tag = "SCAN"
	TagMatch  Tag = "MATCH"
	TagSkip   Tag = "SKIP"
	TagMove   Tag = "MOVE"
	TagGone   Tag = "GONE"
	TagDenied Tag = "DENIED"
	TagError  Tag = "ERROR"
)

// Run-structure tags.
const (
	TagStart   Tag = "START"
	TagUsage   Tag = "USAGE"
	TagEnd     Tag = "END"
	TagReclaim Tag = "RECLAIM"
)

// OpMove marks a DENIED or ERROR event raised while relocating a file
// rather than while inspecting it.
const OpMove = "move"

// Event is a single observable outcome of a scan.
type Event struct {
	Tag  Tag
	Time time.Time

	// Path is the directory or file the event is about.
	Path string

	// Destination is set on MOVE events.
	Destination string

	// Op names the failing operation on DENIED and ERROR events, if any.
	Op string

	// AgeDays is meaningful only when HasAge is set.
	AgeDays int
	HasAge  bool

	Err error

	// Message carries the text of run-structure events.
	Message string
}

// String renders the event as a single log line without a timestamp, e.g.
// "[MOVE] /data/a.pdf -> /q/ROOT/data/a__1a2b3c4d.pdf (12 days old)".
func (e Event) String() string {
	var b strings.Builder

	switch e.Tag {
	case TagStart, TagUsage, TagEnd:
		b.WriteString(e.Message)
		if e.Err != nil {
			fmt.Fprintf(&b, " | %v", e.Err)
		}
		return b.String()
	case TagReclaim:
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	}

	fmt.Fprintf(&b, "[%s] ", e.Tag)
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteByte(' ')
	}
	b.WriteString(e.Path)
	if e.Destination != "" {
		fmt.Fprintf(&b, " -> %s", e.Destination)
	}
	if e.HasAge {
		fmt.Fprintf(&b, " (%d days old)", e.AgeDays)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " | %v", e.Err)
	}
	return b.String()
}

// Sink receives events. Emit must not block for long; the engine calls it
// inline, in visit order.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi returns a sink that forwards each event to every non-nil sink, in
// order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Tags returns the tag of every recorded event, in order.
func (r *Recorder) Tags() []Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tag, len(r.events))
	for i, e := range r.events {
		out[i] = e.Tag
	}
	return out
}

// WithTag returns the recorded events carrying tag.
func (r *Recorder) WithTag(tag Tag) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Tag == tag {
			out = append(out, e)
		}
	}
	return out
}

// Paths returns the Path of every recorded event carrying tag.
func (r *Recorder) Paths(tag Tag) []string {
	var out []string
	for _, e := range r.WithTag(tag) {
		out = append(out, e.Path)
	}
	return out
}
