package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func countLogs(t *testing.T, dir, prefix string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".log") {
			n++
		}
	}
	return n
}

func TestRotationBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "size.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1, MaxBackups: 3})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	line := []byte(strings.Repeat("x", 1023) + "\n")
	for i := 0; i < 1100; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := countLogs(t, dir, "size"); got < 2 {
		t.Errorf("expected at least 2 log files after rotation, got %d", got)
	}
}

func TestRotationDaily(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily.log")

	w, err := NewRotatingWriter(path, RotationConfig{Daily: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := w.Write([]byte("first day\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := countLogs(t, dir, "daily"); got != 1 {
		t.Fatalf("expected 1 log file before midnight, got %d", got)
	}

	tomorrow := time.Now().Add(24 * time.Hour)
	w.now = func() time.Time { return tomorrow }

	if _, err := w.Write([]byte("second day\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := countLogs(t, dir, "daily"); got != 2 {
		t.Errorf("expected 2 log files after day change, got %d", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading current log: %v", err)
	}
	if string(data) != "second day\n" {
		t.Errorf("current log = %q, want only the second day", data)
	}
}

func TestRotationDisabledDaily(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "steady.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	w.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	for i := 0; i < 3; i++ {
		if _, err := w.Write([]byte("entry\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if got := countLogs(t, dir, "steady"); got != 1 {
		t.Errorf("expected a single log file, got %d", got)
	}
}

func TestManualRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manual.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := w.Write([]byte("before\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if got := countLogs(t, dir, "manual"); got != 2 {
		t.Errorf("expected 2 log files after Rotate, got %d", got)
	}
}

func TestNewRotatingWriterCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "purge.log")

	w, err := NewRotatingWriter(path, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("log directory not created: %v", err)
	}
}
