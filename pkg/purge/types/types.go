// Package types provides core data types for the purge retention tool.
// It includes the per-file candidate record, the run report, and utility
// functions for parsing and formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Candidate is a file whose extension is in the active set and whose
// modification time has been read.
type Candidate struct {
	// Path is the absolute source path.
	Path string `json:"path"`

	// Ext is the lowercased extension including the leading dot.
	Ext string `json:"ext"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`

	// AgeDays is the age in whole days, floored.
	AgeDays int `json:"age_days"`
}

// MoveRecord describes a file relocated into quarantine.
type MoveRecord struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	AgeDays     int       `json:"age_days"`
	MovedAt     time.Time `json:"moved_at"`
}

// State is the lifecycle state of a scan invocation.
type State int

// Scan states in the order a run passes through them.
const (
	StateInitializing State = iota
	StateEmittingHeader
	StateTraversing
	StateReclaiming
	StateCompleted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateEmittingHeader:
		return "emitting-header"
	case StateTraversing:
		return "traversing"
	case StateReclaiming:
		return "reclaiming"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Report contains the aggregated results of a scan invocation.
type Report struct {
	// RunID identifies the invocation in logs and manifests.
	RunID string `json:"run_id"`

	// Roots are the volume roots that were traversed.
	Roots []string `json:"roots"`

	// State is the state the run finished in.
	State State `json:"-"`

	// DryRun reports whether moves were suppressed.
	DryRun bool `json:"dry_run"`

	// DirsScanned is the number of directories visited (SCAN events).
	DirsScanned int64 `json:"dirs_scanned"`

	// Matched is the number of qualifying files.
	Matched int64 `json:"matched"`

	// Skipped is the number of extension-matching files inside the retention window.
	Skipped int64 `json:"skipped"`

	// Moved is the number of files relocated into quarantine.
	Moved int64 `json:"moved"`

	// BytesMoved is the sum of the sizes of moved files.
	BytesMoved int64 `json:"bytes_moved"`

	// Gone counts files that vanished before they could be inspected.
	Gone int64 `json:"gone"`

	// Denied counts permission failures on stat, listing, or move.
	Denied int64 `json:"denied"`

	// Errors counts all other per-item failures.
	Errors int64 `json:"errors"`

	// Reclaimed reports whether the quarantine was cleared after the scan.
	Reclaimed bool `json:"reclaimed"`

	// ReclaimFailures is the number of quarantine entries that could not be removed.
	ReclaimFailures int `json:"reclaim_failures"`

	// Interrupted indicates that the run was cancelled before traversal finished.
	Interrupted bool `json:"interrupted"`

	// Moves lists every file relocated during the run, in move order.
	Moves []MoveRecord `json:"moves,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total time taken by the run.
	Elapsed time.Duration `json:"elapsed"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It accepts plain byte counts and K/M/G/T suffixes with optional B or iB,
// all interpreted as binary units. Decimal values are truncated.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, e.g. "1.5 MiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}
