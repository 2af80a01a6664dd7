// Package logging provides component loggers with rotation support for
// purge's diagnostic output. Unlike the per-run scan and move logs, which
// live under the program data directory, diagnostics go to a single
// rotating file in the XDG state directory.
//
// Basic usage:
//
//	f, err := logging.New(logging.Config{Level: "info"})
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	logger := f.Get("scanner")
//	logger.Info("scan started", "roots", roots)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level. The empty string means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures a Factory.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string `mapstructure:"level"`

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string `mapstructure:"path"`

	// Rotation configures log file rotation.
	Rotation RotationConfig `mapstructure:"rotation"`

	// Components maps component names to their log levels.
	Components map[string]string `mapstructure:"components"`

	// ConsoleLevel enables stderr output at the given level. Empty disables it.
	ConsoleLevel string `mapstructure:"console_level"`
}

// DefaultLogPath returns $XDG_STATE_HOME/purge/purge.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "purge", "purge.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}

// Logger wraps charmbracelet/log with component identification. It writes
// to the factory's file and, when enabled, to stderr.
type Logger struct {
	file      *log.Logger
	console   *log.Logger
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.log(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args...) }

// Component returns the name the logger was created for.
func (l *Logger) Component() string { return l.component }

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	logTo(l.file, level, msg, args...)
	if l.console != nil {
		logTo(l.console, level, msg, args...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// With returns a new logger with additional key/value context.
func (l *Logger) With(args ...interface{}) *Logger {
	nl := &Logger{
		file:      l.file.With(args...),
		component: l.component,
	}
	if l.console != nil {
		nl.console = l.console.With(args...)
	}
	return nl
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return &Logger{file: log.New(io.Discard)}
}

// Factory hands out component loggers sharing one output and level
// configuration. It is safe for concurrent use.
type Factory struct {
	mu         sync.Mutex
	writer     io.WriteCloser
	console    io.Writer
	level      Level
	consoleLvl Level
	consoleOn  bool
	components map[string]Level
	loggers    map[string]*Logger
}

// New opens the log file described by cfg and returns a Factory writing to it.
func New(cfg Config) (*Factory, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	f := &Factory{
		level:      level,
		components: components,
		loggers:    make(map[string]*Logger),
		console:    os.Stderr,
	}

	if cfg.ConsoleLevel != "" {
		cl, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return nil, fmt.Errorf("parsing console level: %w", err)
		}
		f.consoleLvl = cl
		f.consoleOn = true
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	w, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return nil, fmt.Errorf("creating log writer: %w", err)
	}
	f.writer = w

	return f, nil
}

// Get returns the logger for component, creating it on first use. A
// per-component level from the configuration overrides the default.
func (f *Factory) Get(component string) *Logger {
	if f == nil {
		return Discard()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.loggers[component]; ok {
		return l
	}

	level := f.level
	if cl, ok := f.components[component]; ok {
		level = cl
	}

	var out io.Writer = io.Discard
	if f.writer != nil {
		out = f.writer
	}

	l := &Logger{
		file: log.NewWithOptions(out, log.Options{
			Level:           level.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		component: component,
	}

	if f.consoleOn {
		l.console = log.NewWithOptions(f.console, log.Options{
			Level:           f.consoleLvl.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}

	f.loggers[component] = l
	return l
}

// Close flushes and closes the log file. Loggers obtained earlier become
// silent.
func (f *Factory) Close() error {
	if f == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}
	err := f.writer.Close()
	f.writer = nil
	for _, l := range f.loggers {
		l.file.SetOutput(io.Discard)
	}
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}
