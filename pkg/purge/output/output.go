// Package output provides formatters for displaying purge results
// (run reports, volumes, quarantine status, history and index lookups)
// in various output formats (pretty, plain, json, yaml, paths, template).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/purge/pkg/purge/types"
)

// Report summarises one scan run.
type Report struct {
	RunID           string        `json:"run_id" yaml:"run_id"`
	Roots           []string      `json:"roots" yaml:"roots"`
	DryRun          bool          `json:"dry_run" yaml:"dry_run"`
	DirsScanned     int64         `json:"dirs_scanned" yaml:"dirs_scanned"`
	Matched         int64         `json:"matched" yaml:"matched"`
	Skipped         int64         `json:"skipped" yaml:"skipped"`
	Moved           int64         `json:"moved" yaml:"moved"`
	BytesMoved      int64         `json:"bytes_moved" yaml:"bytes_moved"`
	BytesHuman      string        `json:"bytes_moved_human" yaml:"bytes_moved_human"`
	Gone            int64         `json:"gone" yaml:"gone"`
	Denied          int64         `json:"denied" yaml:"denied"`
	Errors          int64         `json:"errors" yaml:"errors"`
	Reclaimed       bool          `json:"reclaimed" yaml:"reclaimed"`
	ReclaimFailures int           `json:"reclaim_failures" yaml:"reclaim_failures"`
	Interrupted     bool          `json:"interrupted" yaml:"interrupted"`
	Elapsed         time.Duration `json:"-" yaml:"-"`
	ElapsedHuman    string        `json:"elapsed" yaml:"elapsed"`
}

// FromReport converts an engine report for display.
func FromReport(r *types.Report) *Report {
	if r == nil {
		return nil
	}
	return &Report{
		RunID:           r.RunID,
		Roots:           r.Roots,
		DryRun:          r.DryRun,
		DirsScanned:     r.DirsScanned,
		Matched:         r.Matched,
		Skipped:         r.Skipped,
		Moved:           r.Moved,
		BytesMoved:      r.BytesMoved,
		BytesHuman:      humanize.IBytes(uint64(r.BytesMoved)),
		Gone:            r.Gone,
		Denied:          r.Denied,
		Errors:          r.Errors,
		Reclaimed:       r.Reclaimed,
		ReclaimFailures: r.ReclaimFailures,
		Interrupted:     r.Interrupted,
		Elapsed:         r.Elapsed,
		ElapsedHuman:    formatDurationString(r.Elapsed),
	}
}

// Failures returns the number of per-item failures in the run.
func (r *Report) Failures() int64 {
	return r.Gone + r.Denied + r.Errors
}

// Volume is a storage root with its disk usage.
type Volume struct {
	Path      string `json:"path" yaml:"path"`
	Device    string `json:"device,omitempty" yaml:"device,omitempty"`
	FSType    string `json:"fs_type,omitempty" yaml:"fs_type,omitempty"`
	Available bool   `json:"usage_available" yaml:"usage_available"`
	Total     uint64 `json:"total" yaml:"total"`
	Used      uint64 `json:"used" yaml:"used"`
	Free      uint64 `json:"free" yaml:"free"`
}

// QuarantineVolume is the share of the quarantine from one volume tag.
type QuarantineVolume struct {
	Tag   string `json:"tag" yaml:"tag"`
	Files int64  `json:"files" yaml:"files"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Quarantine describes the current contents of the quarantine directory.
type Quarantine struct {
	Dir      string             `json:"dir" yaml:"dir"`
	Files    int64              `json:"files" yaml:"files"`
	Dirs     int64              `json:"dirs" yaml:"dirs"`
	Bytes    int64              `json:"bytes" yaml:"bytes"`
	Volumes  []QuarantineVolume `json:"volumes" yaml:"volumes"`
	Indexed  int64              `json:"indexed" yaml:"indexed"`
	LastRun  time.Time          `json:"last_run,omitempty" yaml:"last_run,omitempty"`
	Locked   bool               `json:"locked" yaml:"locked"`
	LockPID  int                `json:"lock_pid,omitempty" yaml:"lock_pid,omitempty"`
	FreeDisk uint64             `json:"free_disk,omitempty" yaml:"free_disk,omitempty"`
}

// Run is one entry of the run history.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Operation   string    `json:"operation" yaml:"operation"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	DryRun      bool      `json:"dry_run" yaml:"dry_run"`
	Files       int64     `json:"files" yaml:"files"`
	Bytes       int64     `json:"bytes" yaml:"bytes"`
	Failures    int64     `json:"failures" yaml:"failures"`
	Interrupted bool      `json:"interrupted" yaml:"interrupted"`
}

// File is a quarantined file: a move from a run or an index lookup.
type File struct {
	Source      string    `json:"source" yaml:"source"`
	Destination string    `json:"destination" yaml:"destination"`
	Size        int64     `json:"size" yaml:"size"`
	SizeHuman   string    `json:"size_human" yaml:"size_human"`
	ModTime     time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	AgeDays     int       `json:"age_days,omitempty" yaml:"age_days,omitempty"`
	MovedAt     time.Time `json:"moved_at,omitempty" yaml:"moved_at,omitempty"`
	RunID       string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// FilesFromMoves converts move records for display.
func FilesFromMoves(moves []types.MoveRecord) []File {
	files := make([]File, len(moves))
	for i, m := range moves {
		files[i] = File{
			Source:      m.Source,
			Destination: m.Destination,
			Size:        m.Size,
			SizeHuman:   humanize.IBytes(uint64(m.Size)),
			ModTime:     m.ModTime,
			AgeDays:     m.AgeDays,
			MovedAt:     m.MovedAt,
		}
	}
	return files
}

// Result contains the complete output data for formatting. Commands fill
// only the sections they produce; formatters skip empty sections.
type Result struct {
	// Title names the command output, e.g. "Volumes".
	Title string `json:"-" yaml:"-"`

	Report     *Report     `json:"report,omitempty" yaml:"report,omitempty"`
	Volumes    []Volume    `json:"volumes,omitempty" yaml:"volumes,omitempty"`
	Quarantine *Quarantine `json:"quarantine,omitempty" yaml:"quarantine,omitempty"`
	History    []Run       `json:"history,omitempty" yaml:"history,omitempty"`
	Files      []File      `json:"files,omitempty" yaml:"files,omitempty"`

	// Warnings contains any warning messages generated by the command.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalSize returns the sum of all file sizes in the result.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// formatDurationString formats a duration as a string for structured output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}
