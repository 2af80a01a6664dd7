package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// megabyte is lumberjack's size unit.
const megabyte = 1024 * 1024

// RotationConfig configures log file rotation behavior.
type RotationConfig struct {
	// MaxSize is the maximum size in bytes before rotation.
	// Zero uses the default of 10 MiB.
	MaxSize int64 `mapstructure:"max_size"`

	// MaxAge is the maximum number of days to retain old log files.
	// Zero means no age-based cleanup.
	MaxAge int `mapstructure:"max_age"`

	// MaxBackups is the maximum number of old log files to keep.
	// Zero means keep all old files (subject to MaxAge).
	MaxBackups int `mapstructure:"max_backups"`

	// Daily rotates the log file on the first write after midnight.
	Daily bool `mapstructure:"daily"`

	// Compress gzips rotated files.
	Compress bool `mapstructure:"compress"`
}

// DefaultRotationConfig returns sensible defaults for rotation.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * megabyte,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is an io.WriteCloser that rotates by size and age through
// lumberjack and additionally starts a new file each day. It is safe for
// concurrent use.
type RotatingWriter struct {
	mu         sync.Mutex
	lj         *lumberjack.Logger
	daily      bool
	lastRotate time.Time
	now        func() time.Time
}

// NewRotatingWriter creates a rotating writer for the log at path, creating
// parent directories as needed.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	// lumberjack counts in whole megabytes.
	sizeMB := int((cfg.MaxSize + megabyte - 1) / megabyte)

	w := &RotatingWriter{
		lj: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    sizeMB,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
			Compress:   cfg.Compress,
		},
		daily: cfg.Daily,
		now:   time.Now,
	}

	w.lastRotate = w.now()
	if info, err := os.Stat(path); err == nil {
		w.lastRotate = info.ModTime()
	}

	return w, nil
}

// Write writes p to the current log file, rotating first if the day has
// changed since the last rotation.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.daily {
		now := w.now()
		if now.YearDay() != w.lastRotate.YearDay() || now.Year() != w.lastRotate.Year() {
			if err := w.lj.Rotate(); err != nil {
				return 0, fmt.Errorf("rotating log file: %w", err)
			}
			w.lastRotate = now
		}
	}

	n, err := w.lj.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Rotate closes the current file and starts a new one.
func (w *RotatingWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.lj.Rotate(); err != nil {
		return err
	}
	w.lastRotate = w.now()
	return nil
}

// Close closes the log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lj.Close()
}
