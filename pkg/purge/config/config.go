package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/jamesainslie/purge/pkg/purge/logging"
	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Rotation     RotationConfig    `mapstructure:"rotation"`
	Components   map[string]string `mapstructure:"components"`
}

// Config represents the purge configuration.
type Config struct {
	ProgramDataDir  string              `mapstructure:"program_data_dir"`
	ExcludeDirs     []string            `mapstructure:"exclude_dirs"`
	ExcludePatterns []string            `mapstructure:"exclude_patterns"`
	FileCategories  map[string][]string `mapstructure:"file_categories"`
	RetentionDays   int                 `mapstructure:"retention_days"`
	DryRun          bool                `mapstructure:"dry_run"`
	AutoDelete      bool                `mapstructure:"auto_delete"`
	Volumes         []string            `mapstructure:"volumes"`
	Categories      []string            `mapstructure:"categories"`
	Index           struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"index"`
	Manifest struct {
		Enabled       bool `mapstructure:"enabled"`
		RetentionDays int  `mapstructure:"retention_days"`
	} `mapstructure:"manifest"`
	Logging LoggingConfig `mapstructure:"logging"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

// New returns a viper instance with purge's defaults and environment
// bindings. Callers may bind command-line flags to it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so required keys that may
	// come solely from the environment are bound explicitly.
	for _, key := range []string{KeyProgramDataDir, KeyExcludeDirs, KeyExcludePatterns, KeyVolumes} {
		_ = v.BindEnv(key)
	}

	v.SetDefault(KeyRetentionDays, DefaultRetentionDays)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyCategories, []string{CategoryAll})
	v.SetDefault(KeyExcludePatterns, []string{})
	v.SetDefault(KeyVolumes, []string{})
	v.SetDefault(KeyIndexEnabled, true)
	v.SetDefault(KeyManifestEnabled, true)
	v.SetDefault(KeyManifestDays, DefaultManifestRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.console_level", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.rotation.compress", false)
	v.SetDefault("logging.components", DefaultLogComponents)

	return v
}

// Load reads configuration into v and validates it. If file is empty the
// first config.{json,yaml,...} found in SearchPaths is used. A missing
// file is not an error by itself, but the required keys must then come
// from the environment.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Err: fmt.Errorf("reading config file: %w", err)}
		}
	}

	// Registering the alias after reading moves a file's AutoDelete value
	// onto auto_delete.
	v.RegisterAlias(aliasAutoDelete, KeyAutoDelete)

	for _, key := range RequiredKeys {
		if !v.IsSet(key) {
			return nil, missing(key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the configuration, expands paths, lowercases
// extensions and synthesizes the "all" category.
func (c *Config) normalize() error {
	if strings.TrimSpace(c.ProgramDataDir) == "" {
		return invalid(KeyProgramDataDir, "must not be empty")
	}
	dir, err := ExpandPath(c.ProgramDataDir)
	if err != nil {
		return invalid(KeyProgramDataDir, "%v", err)
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return invalid(KeyProgramDataDir, "%v", err)
	}
	c.ProgramDataDir = dir

	for i, ex := range c.ExcludeDirs {
		expanded, err := ExpandPath(ex)
		if err != nil {
			return invalid(KeyExcludeDirs, "%v", err)
		}
		c.ExcludeDirs[i] = expanded
	}

	if c.RetentionDays < 0 {
		return invalid(KeyRetentionDays, "must be non-negative, got %d", c.RetentionDays)
	}
	if c.Manifest.RetentionDays < 0 {
		return invalid(KeyManifestDays, "must be non-negative, got %d", c.Manifest.RetentionDays)
	}

	if len(c.FileCategories) == 0 {
		return invalid(KeyFileCategories, "at least one category is required")
	}

	cats := make(map[string][]string, len(c.FileCategories)+1)
	union := make(map[string]struct{})
	for name, exts := range c.FileCategories {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return invalid(KeyFileCategories, "category name must not be empty")
		}
		if name == CategoryAll {
			continue
		}
		if len(exts) == 0 {
			return invalid(KeyFileCategories+"."+name, "category has no extensions")
		}

		lowered := make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
				return invalid(KeyFileCategories+"."+name, "extension %q must start with a dot", ext)
			}
			lowered = append(lowered, ext)
			union[ext] = struct{}{}
		}
		cats[name] = lowered
	}
	if len(cats) == 0 {
		return invalid(KeyFileCategories, "at least one category besides %q is required", CategoryAll)
	}

	all := make([]string, 0, len(union))
	for ext := range union {
		all = append(all, ext)
	}
	sort.Strings(all)
	cats[CategoryAll] = all
	c.FileCategories = cats

	if len(c.Categories) == 0 {
		c.Categories = []string{CategoryAll}
	}
	for i, name := range c.Categories {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := cats[name]; !ok {
			return invalid(KeyCategories, "unknown category %q", name)
		}
		c.Categories[i] = name
	}

	if _, err := c.LoggingConfig(); err != nil {
		return err
	}
	return nil
}

// Extensions returns the sorted active extension set: the union of the
// selected categories.
func (c *Config) Extensions() []string {
	set := make(map[string]struct{})
	for _, name := range c.Categories {
		for _, ext := range c.FileCategories[name] {
			set[ext] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// QuarantineDir is where relocated files are kept.
func (c *Config) QuarantineDir() string {
	return filepath.Join(c.ProgramDataDir, QuarantineDirName)
}

// LogsDir holds the per-run scan and move logs.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ProgramDataDir, LogsDirName)
}

// ManifestDir holds one manifest per run.
func (c *Config) ManifestDir() string {
	return filepath.Join(c.ProgramDataDir, ManifestDirName)
}

// IndexDir holds the quarantine index database.
func (c *Config) IndexDir() string {
	return filepath.Join(c.ProgramDataDir, IndexDirName)
}

// LockPath is the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.ProgramDataDir, LockFileName)
}

// EffectiveExcludes returns the configured exclude directories plus
// purge's own directories, each as an absolute path and, where it differs,
// also with symlinks resolved. Duplicates are dropped.
func (c *Config) EffectiveExcludes() []string {
	candidates := append([]string{}, c.ExcludeDirs...)
	candidates = append(candidates, c.ProgramDataDir, c.QuarantineDir(), c.LogsDir())

	seen := make(map[string]struct{}, len(candidates)*2)
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range candidates {
		if strings.TrimSpace(p) == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		add(abs)
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			add(resolved)
		}
	}
	return out
}

// LoggingConfig converts the logging section into a logging.Config.
func (c *Config) LoggingConfig() (logging.Config, error) {
	lc := logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		ConsoleLevel: c.Logging.ConsoleLevel,
		Components:   c.Logging.Components,
		Rotation: logging.RotationConfig{
			MaxAge:     c.Logging.Rotation.MaxAge,
			MaxBackups: c.Logging.Rotation.MaxBackups,
			Daily:      c.Logging.Rotation.Daily,
			Compress:   c.Logging.Rotation.Compress,
		},
	}

	if _, err := logging.ParseLevel(lc.Level); err != nil {
		return lc, invalid("logging.level", "%v", err)
	}
	if lc.Path != "" {
		p, err := ExpandPath(lc.Path)
		if err != nil {
			return lc, invalid("logging.path", "%v", err)
		}
		lc.Path = p
	}

	if s := c.Logging.Rotation.MaxSize; s != "" {
		size, err := types.ParseSize(s)
		if err != nil {
			return lc, invalid("logging.rotation.max_size", "%v", err)
		}
		lc.Rotation.MaxSize = size
	}
	return lc, nil
}

// SearchPaths returns the directories searched for config.{json,yaml}, in
// order: the executable's directory, $XDG_CONFIG_HOME/purge and
// ~/.config/purge.
func SearchPaths() []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		paths = append(paths, filepath.Dir(exe))
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		paths = append(paths, filepath.Join(xdgConfigHome, AppName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppName))
	}
	return paths
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", AppName), nil
}

// StateDir returns $XDG_STATE_HOME/purge/ for diagnostic and error logs.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// ErrorLogPath is where fatal startup errors are appended.
func ErrorLogPath() string {
	return filepath.Join(StateDir(), "error.log")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
