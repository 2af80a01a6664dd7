package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
)

// DefaultConfigPath returns the per-user config.yaml path.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultProgramDataDir is the program data directory written into a new
// configuration file.
func DefaultProgramDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// WriteDefault writes a commented default configuration to path, creating
// parent directories. It reports whether a file was written; an existing
// file is left untouched.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(DefaultYAML()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

// DefaultYAML renders the default configuration file.
func DefaultYAML() string {
	var cats strings.Builder
	names := make([]string, 0, len(DefaultCategories))
	for name := range DefaultCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&cats, "  %s: [%s]\n", name, quoteList(DefaultCategories[name]))
	}

	return fmt.Sprintf(`# purge retention configuration

# Root for the Quarantine, Logs, Manifest and Index directories.
program_data_dir: %q

# Directories never scanned, with everything beneath them. purge's own
# directories are always added.
exclude_dirs:
  - /proc
  - /sys
  - /dev

# Directory names to prune anywhere, as wildcard patterns.
exclude_patterns:
  - ".git"
  - "node_modules"

# Extension categories. "all" is derived from the others and need not be
# listed.
file_categories:
%s
# Categories whose extensions are scanned.
categories: [all]

# Files older than this many days are quarantined.
retention_days: %d

# Classify and log without moving anything.
dry_run: false

# Empty the quarantine after each scan.
auto_delete: false

# Explicit roots to scan instead of every attached volume.
volumes: []

# Quarantine index used by "purge locate".
index:
  enabled: true

# Per-run manifests used by "purge history".
manifest:
  enabled: true
  retention_days: %d

# Diagnostic logging
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/purge/purge.log)
  path: ""
  # Also log to stderr at this level (empty disables)
  console_level: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
    compress: false
  components:
    scanner: info
    config: info
    index: warn
    manifest: info
`, DefaultProgramDataDir(), cats.String(), DefaultRetentionDays, DefaultManifestRetentionDays)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
