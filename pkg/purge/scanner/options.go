// Package scanner implements the scan-classify-quarantine engine. A run
// walks each storage root depth-first, prunes excluded directories, and
// relocates files whose extension is selected and whose modification time
// falls outside the retention window. Every outcome is reported as an
// event to the configured sink.
package scanner

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/logging"
	"github.com/jamesainslie/purge/pkg/purge/quarantine"
	"github.com/jamesainslie/purge/pkg/purge/volume"
)

// DefaultRetentionDays is the retention window used when none is configured.
const DefaultRetentionDays = 7

// Options configures a scan run.
type Options struct {
	// Roots are the directories traversal starts from. Empty means every
	// attached storage root.
	Roots []string

	// QuarantineDir receives relocated files. It is created if missing and
	// is never traversed.
	QuarantineDir string

	// Exclude lists absolute directories pruned from traversal together
	// with everything beneath them.
	Exclude []string

	// ExcludePatterns are wildcard patterns matched against directory base
	// names; a matching directory is pruned.
	ExcludePatterns []string

	// Extensions is the active extension set, each with a leading dot.
	Extensions []string

	// RetentionDays is the age in days a file must exceed to qualify.
	RetentionDays int

	// DryRun classifies and reports but never moves.
	DryRun bool

	// AutoDelete empties the quarantine after traversal completes.
	AutoDelete bool

	// Header holds extra lines emitted as START events after the banner,
	// e.g. the directories in use.
	Header []string

	// RunID identifies the run in events and the report. Empty generates
	// a UUID.
	RunID string

	// Sink receives every event. Nil discards them.
	Sink event.Sink

	// Logger receives diagnostics. Nil discards them.
	Logger *logging.Logger

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time

	// Mover relocates a file. Nil uses quarantine.Move.
	Mover func(src, dst string) error

	// ListRoots enumerates storage roots when Roots is empty. Nil uses
	// volume.List.
	ListRoots func() ([]volume.Root, error)

	// PseudoMounts returns mount points of kernel and memory filesystems
	// to prune when they sit beneath a root. Nil uses volume.Excluded.
	PseudoMounts func() []string

	// DiskUsage reports usage for the header. Nil uses volume.DiskUsage.
	DiskUsage func(path string) (volume.Usage, bool)
}

// ErrInvalidOptions is wrapped by every Validate failure.
var ErrInvalidOptions = errors.New("invalid scan options")

// Validate checks the options and fills defaults for optional hooks.
func (o *Options) Validate() error {
	if o.QuarantineDir == "" {
		return fmt.Errorf("%w: quarantine directory is required", ErrInvalidOptions)
	}
	if !filepath.IsAbs(o.QuarantineDir) {
		return fmt.Errorf("%w: quarantine directory %q is not absolute", ErrInvalidOptions, o.QuarantineDir)
	}
	if o.RetentionDays < 0 {
		return fmt.Errorf("%w: retention days cannot be negative (%d)", ErrInvalidOptions, o.RetentionDays)
	}

	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Sink == nil {
		o.Sink = event.Discard
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Mover == nil {
		o.Mover = quarantine.Move
	}
	if o.ListRoots == nil {
		o.ListRoots = volume.List
	}
	if o.PseudoMounts == nil {
		o.PseudoMounts = volume.Excluded
	}
	if o.DiskUsage == nil {
		o.DiskUsage = volume.DiskUsage
	}
	return nil
}
