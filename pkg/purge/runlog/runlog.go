// Package runlog writes the per-run scan and move logs. Each run gets a
// fresh pair of files under the logs directory, named after the run's start
// time; the move log holds only MOVE events and the scan log holds
// everything else.
package runlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/types"
)

// Log file name layout.
const (
	ScanPrefix      = "scan_log_"
	MovePrefix      = "move_log_"
	Extension       = ".log"
	TimestampLayout = "20060102_150405"
	separatorWidth  = 80
)

// Log is an event.Sink that writes the run's scan and move logs.
type Log struct {
	// ScanPath and MovePath are the files this run writes.
	ScanPath string
	MovePath string

	mu       sync.Mutex
	scanFile *os.File
	moveFile *os.File
	scan     *log.Logger
	move     *log.Logger
	started  bool
}

// Open creates the logs directory if needed and opens the scan and move
// log files for a run started at startedAt. Failure to create either is a
// *types.ResourceSetupError.
func Open(dir string, startedAt time.Time) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.ResourceSetupError{Resource: "logs directory", Path: dir, Err: err}
	}

	stamp := startedAt.Format(TimestampLayout)
	l := &Log{
		ScanPath: filepath.Join(dir, ScanPrefix+stamp+Extension),
		MovePath: filepath.Join(dir, MovePrefix+stamp+Extension),
	}

	var err error
	if l.scanFile, err = createLog(l.ScanPath); err != nil {
		return nil, err
	}
	if l.moveFile, err = createLog(l.MovePath); err != nil {
		_ = l.scanFile.Close()
		return nil, err
	}

	l.scan = newFileLogger(l.scanFile)
	l.move = newFileLogger(l.moveFile)
	return l, nil
}

func createLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &types.ResourceSetupError{Resource: "run log", Path: path, Err: err}
	}
	return f, nil
}

func newFileLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Emit writes e to the scan or move log.
func (l *Log) Emit(e event.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.scan == nil {
		return
	}

	if !l.started {
		l.started = true
		l.scan.Print(strings.Repeat("=", separatorWidth))
	}

	if e.Tag == event.TagMove {
		l.move.Print(e.String())
		return
	}

	switch e.Tag {
	case event.TagDenied, event.TagGone:
		l.scan.Warn(e.String())
	case event.TagError:
		l.scan.Error(e.String())
	case event.TagReclaim:
		if e.Err != nil {
			l.scan.Warn(e.String())
		} else {
			l.scan.Info(e.String())
		}
	default:
		l.scan.Info(e.String())
	}

	if e.Tag == event.TagEnd {
		l.scan.Print(strings.Repeat("=", separatorWidth))
	}
}

// Close flushes and closes both log files. Events emitted afterwards are
// dropped.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.scan == nil {
		return nil
	}
	l.scan, l.move = nil, nil

	var errs []error
	for _, f := range []*os.File{l.scanFile, l.moveFile} {
		if err := f.Sync(); err != nil {
			errs = append(errs, err)
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing run logs: %w", err)
	}
	return nil
}
