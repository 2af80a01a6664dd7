// Package manifest keeps a JSON record of every purge run under the
// program data directory, so past quarantines can be reviewed with
// `purge history`.
package manifest

import "time"

// OperationType represents the type of operation.
type OperationType string

const (
	// OpScan is a scan run; its files are the ones moved into quarantine.
	OpScan OperationType = "scan"
	// OpReclaim is an on-demand clearing of the quarantine.
	OpReclaim OperationType = "reclaim"
)

// Entry represents a single manifest entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Roots     []string      `json:"roots,omitempty"`
	Files     []FileRecord  `json:"files"`
	Summary   Summary       `json:"summary"`
}

// FileRecord represents a file moved into quarantine.
type FileRecord struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	AgeDays     int       `json:"age_days"`
	MovedAt     time.Time `json:"moved_at"`
}

// Summary contains the run's counters.
type Summary struct {
	TotalFiles      int64         `json:"total_files"`
	TotalBytes      int64         `json:"total_bytes"`
	DirsScanned     int64         `json:"dirs_scanned,omitempty"`
	Matched         int64         `json:"matched,omitempty"`
	Skipped         int64         `json:"skipped,omitempty"`
	Failures        int64         `json:"failures,omitempty"`
	Reclaimed       bool          `json:"reclaimed,omitempty"`
	ReclaimFailures int           `json:"reclaim_failures,omitempty"`
	Interrupted     bool          `json:"interrupted,omitempty"`
	Elapsed         time.Duration `json:"elapsed,omitempty"`
}
