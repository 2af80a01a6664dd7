package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/purge/pkg/purge/classify"
	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/quarantine"
	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/jamesainslie/purge/pkg/purge/volume"
)

// Scanner runs one scan invocation. A Scanner is not reusable; create a new
// one per run.
type Scanner struct {
	opts       Options
	extensions map[string]struct{}
	exclude    []string
	now        time.Time
	report     *types.Report
	state      atomic.Int32

	readDir func(string) ([]fs.DirEntry, error)
	stat    func(string) (fs.FileInfo, error)
	reclaim func(dir string, onFailure func(*types.ReclaimItemError)) (int, error)
}

// New creates a Scanner for opts. Options are validated by Run.
func New(opts Options) *Scanner {
	return &Scanner{
		opts:    opts,
		readDir: os.ReadDir,
		stat:    os.Stat,
		reclaim: quarantine.Clear,
	}
}

// State returns the lifecycle state the run is in. It is safe to call from
// another goroutine while Run is executing.
func (s *Scanner) State() types.State {
	return types.State(s.state.Load())
}

func (s *Scanner) setState(st types.State) {
	s.state.Store(int32(st))
	s.opts.Logger.Debug("state change", "state", st.String())
}

// Run performs the scan. It returns an error only when the run cannot
// start: invalid options or a resource that could not be set up. Per-file
// failures are reported as events and counted in the report. If ctx is
// cancelled, traversal stops at the next entry, reclaim is skipped, the END
// event is still emitted and the report is marked interrupted.
func (s *Scanner) Run(ctx context.Context) (*types.Report, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	s.setState(types.StateInitializing)

	s.now = s.opts.Now()
	s.extensions = classify.ExtensionSet(s.opts.Extensions)
	s.exclude = append([]string{s.opts.QuarantineDir}, s.opts.Exclude...)
	s.report = &types.Report{
		RunID:     s.opts.RunID,
		DryRun:    s.opts.DryRun,
		StartedAt: s.now,
	}

	if err := os.MkdirAll(s.opts.QuarantineDir, 0o755); err != nil {
		return nil, &types.ResourceSetupError{Resource: "quarantine directory", Path: s.opts.QuarantineDir, Err: err}
	}

	roots, err := s.resolveRoots()
	if err != nil {
		return nil, err
	}
	s.report.Roots = roots
	s.excludePseudoMounts(roots)

	s.setState(types.StateEmittingHeader)
	s.emitHeader(roots)

	s.setState(types.StateTraversing)
	s.opts.Logger.Info("traversal started", "run", s.opts.RunID, "roots", len(roots), "extensions", len(s.extensions))
	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}
		s.walkRoot(ctx, root)
	}

	s.report.Interrupted = ctx.Err() != nil
	end := "END scan"
	if s.report.Interrupted {
		end = "END scan (interrupted)"
		s.opts.Logger.Warn("scan interrupted", "run", s.opts.RunID, "cause", ctx.Err())
	}
	s.emit(event.Event{Tag: event.TagEnd, Message: end})

	if s.opts.AutoDelete && !s.report.Interrupted {
		s.setState(types.StateReclaiming)
		s.runReclaim()
	}

	s.setState(types.StateCompleted)
	s.report.State = types.StateCompleted
	s.report.Elapsed = s.opts.Now().Sub(s.now)

	s.opts.Logger.Info("scan completed",
		"run", s.opts.RunID,
		"dirs", s.report.DirsScanned,
		"matched", s.report.Matched,
		"moved", s.report.Moved,
		"errors", s.report.Errors+s.report.Denied,
		"elapsed", s.report.Elapsed,
	)
	return s.report, nil
}

// resolveRoots returns the cleaned, de-nested list of roots to traverse.
func (s *Scanner) resolveRoots() ([]string, error) {
	paths := s.opts.Roots
	if len(paths) == 0 {
		listed, err := s.opts.ListRoots()
		if err != nil {
			return nil, &types.ResourceSetupError{Resource: "storage roots", Path: "", Err: err}
		}
		paths = volume.Paths(listed)
	}

	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, &types.ResourceSetupError{Resource: "storage root", Path: p, Err: err}
		}
		abs = append(abs, a)
	}
	return volume.ScanRoots(abs), nil
}

// excludePseudoMounts prunes kernel and memory filesystems mounted beneath
// the roots. A pseudo mount that holds a root, such as a tmpfs a root was
// configured inside, stays walkable.
func (s *Scanner) excludePseudoMounts(roots []string) {
	for _, mount := range s.opts.PseudoMounts() {
		holdsRoot := false
		for _, root := range roots {
			if classify.IsExcludedDirectory(root, []string{mount}) {
				holdsRoot = true
				break
			}
		}
		if holdsRoot {
			continue
		}
		s.exclude = append(s.exclude, mount)
		s.opts.Logger.Debug("pseudo filesystem excluded", "path", mount)
	}
}

func (s *Scanner) emitHeader(roots []string) {
	s.emit(event.Event{
		Tag: event.TagStart,
		Message: fmt.Sprintf("START scan | run=%s | retention_days=%d | dry_run=%t | auto_delete=%t",
			s.opts.RunID, s.opts.RetentionDays, s.opts.DryRun, s.opts.AutoDelete),
	})
	for _, line := range s.opts.Header {
		s.emit(event.Event{Tag: event.TagStart, Message: line})
	}

	s.emit(event.Event{Tag: event.TagUsage, Message: "=== Disk Usage ==="})
	for _, root := range roots {
		u, ok := s.opts.DiskUsage(root)
		if !ok {
			s.emit(event.Event{Tag: event.TagUsage, Path: root, Message: root + " - (unavailable)"})
			continue
		}
		s.emit(event.Event{
			Tag:  event.TagUsage,
			Path: root,
			Message: fmt.Sprintf("%s - Total: %s, Used: %s, Free: %s",
				root, humanize.IBytes(u.Total), humanize.IBytes(u.Used), humanize.IBytes(u.Free)),
		})
	}
}

func (s *Scanner) runReclaim() {
	dir := s.opts.QuarantineDir
	s.emit(event.Event{Tag: event.TagReclaim, Path: "", Message: "Clearing directory: " + dir})

	failures, err := s.reclaim(dir, func(e *types.ReclaimItemError) {
		s.opts.Logger.Warn("reclaim item failed", "path", e.Path, "error", e.Err)
		s.emit(event.Event{Tag: event.TagReclaim, Path: e.Path, Err: e})
	})
	s.report.ReclaimFailures = failures

	if err != nil {
		s.opts.Logger.Error("reclaim failed", "dir", dir, "error", err)
		s.emit(event.Event{Tag: event.TagReclaim, Err: err})
		return
	}

	s.report.Reclaimed = true
	s.emit(event.Event{
		Tag:     event.TagReclaim,
		Message: fmt.Sprintf("Finished clearing quarantine directory: %s (%d failures)", dir, failures),
	})
}

// emit stamps the event, updates the report counters and forwards the
// event to the sink.
func (s *Scanner) emit(e event.Event) {
	if e.Time.IsZero() {
		e.Time = s.opts.Now()
	}

	switch e.Tag {
	case event.TagScan:
		s.report.DirsScanned++
	case event.TagMatch:
		s.report.Matched++
	case event.TagSkip:
		s.report.Skipped++
	case event.TagMove:
		s.report.Moved++
	case event.TagGone:
		s.report.Gone++
	case event.TagDenied:
		s.report.Denied++
	case event.TagError:
		s.report.Errors++
	}

	s.opts.Sink.Emit(e)
}

// failureTag maps an error to DENIED for permission problems and ERROR for
// everything else.
func failureTag(err error) event.Tag {
	if errors.Is(err, fs.ErrPermission) {
		return event.TagDenied
	}
	return event.TagError
}
