package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/purge/pkg/purge/types"
)

// ErrNotFound is returned when no entry matches an ID.
var ErrNotFound = errors.New("manifest entry not found")

// ErrAmbiguous is returned when an ID prefix matches more than one entry.
var ErrAmbiguous = errors.New("manifest entry ID is ambiguous")

const entryExt = ".json"

// Manifest manages run records on the filesystem.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a new Manifest with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string { return m.dir }

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// RecordScan persists the outcome of a scan run. The entry ID is the
// report's run ID, or a fresh UUID if the report has none.
func (m *Manifest) RecordScan(report *types.Report) (*Entry, error) {
	if report == nil {
		return nil, errors.New("report cannot be nil")
	}

	files := make([]FileRecord, len(report.Moves))
	for i, mv := range report.Moves {
		files[i] = FileRecord(mv)
	}

	entry := &Entry{
		ID:        report.RunID,
		Timestamp: report.StartedAt.UTC(),
		Operation: OpScan,
		DryRun:    report.DryRun,
		Roots:     report.Roots,
		Files:     files,
		Summary: Summary{
			TotalFiles:      report.Moved,
			TotalBytes:      report.BytesMoved,
			DirsScanned:     report.DirsScanned,
			Matched:         report.Matched,
			Skipped:         report.Skipped,
			Failures:        report.Gone + report.Denied + report.Errors,
			Reclaimed:       report.Reclaimed,
			ReclaimFailures: report.ReclaimFailures,
			Interrupted:     report.Interrupted,
			Elapsed:         report.Elapsed,
		},
	}
	return m.write(entry)
}

// RecordReclaim persists an on-demand reclaim of the quarantine.
func (m *Manifest) RecordReclaim(runID string, failures int) (*Entry, error) {
	entry := &Entry{
		ID:        runID,
		Operation: OpReclaim,
		Files:     []FileRecord{},
		Summary: Summary{
			Reclaimed:       true,
			ReclaimFailures: failures,
		},
	}
	return m.write(entry)
}

func (m *Manifest) write(entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = m.now().UTC()
	}
	if entry.Files == nil {
		entry.Files = []FileRecord{}
	}

	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return entry, nil
}

// writeEntry writes an entry to a JSON file in the manifest directory.
func (m *Manifest) writeEntry(entry *Entry) error {
	filePath := filepath.Join(m.dir, entryFilename(entry))

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write atomically using a temp file and rename
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// entryFilename sorts entries chronologically in a directory listing.
func entryFilename(entry *Entry) string {
	return fmt.Sprintf("%s_%s_%s%s", entry.Timestamp.Format("20060102T150405Z"), entry.Operation, entry.ID, entryExt)
}

// List returns all manifest entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves the entry whose ID equals id or, failing that, the single
// entry whose ID starts with it.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		e := &entries[i]
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// readAll parses every entry file, skipping ones that cannot be read.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}
		entry, err := readEntryFile(filepath.Join(m.dir, f.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func readEntryFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Cleanup removes entries whose timestamp is older than retentionDays and
// returns how many were removed. A retentionDays of zero keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}

		path := filepath.Join(m.dir, f.Name())
		entry, err := readEntryFile(path)
		if err != nil || !entry.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}
