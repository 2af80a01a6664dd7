package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/purge/pkg/purge/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
	Long: `Inspect and manage purge configuration.

Configuration is loaded from the first of:
  1. the file given with --config
  2. config.json or config.yaml next to the purge executable
  3. $XDG_CONFIG_HOME/purge/config.{json,yaml}
  4. ~/.config/purge/config.{json,yaml}

Keys are case-insensitive, so files using PROGRAM_DATA_DIR, EXCLUDE_DIRS
and FILE_CATEGORIES load as-is. Any key can be overridden from the
environment with the PURGE_ prefix, e.g. PURGE_RETENTION_DAYS=30.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after files, environment and flags are merged,
together with what purge derives from it: the active extension set, the
directories that are never scanned, and where quarantine, logs, manifests
and the index live.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration without scanning",
	Long: `Load the configuration and report problems a scan would run into:
missing exclude directories or volumes, an empty extension set, or a
program data directory that cannot be created. Exits non-zero when the
configuration cannot be used at all.`,
	Args: cobra.NoArgs,
	RunE: runConfigCheck,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file",
	Long: `Open the configuration file in $VISUAL, $EDITOR or vi, creating a
default file first if none exists.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long:  `Write a commented default configuration file unless one already exists.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Long:  `Print the configuration file in use, or where 'config init' would create one.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd, configCheckCmd, configEditCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	describeConfig(cmd.OutOrStdout(), cfg, os.Environ())
	return nil
}

// describeConfig writes cfg and the settings derived from it to w. env is
// scanned for PURGE_ overrides.
func describeConfig(w io.Writer, cfg *config.Config, env []string) {
	source := cfg.File
	if source == "" {
		source = "(none, environment only)"
	}
	fmt.Fprintf(w, "Config file: %s\n", source)

	section(w, "Settings")
	fmt.Fprintf(w, "  retention_days:  %d\n", cfg.RetentionDays)
	fmt.Fprintf(w, "  dry_run:         %t\n", cfg.DryRun)
	fmt.Fprintf(w, "  auto_delete:     %t\n", cfg.AutoDelete)
	fmt.Fprintf(w, "  categories:      %s\n", strings.Join(cfg.Categories, ", "))
	fmt.Fprintf(w, "  volumes:         %s\n", listOr(cfg.Volumes, "(all attached)"))
	fmt.Fprintf(w, "  index:           %s\n", onOff(cfg.Index.Enabled))
	fmt.Fprintf(w, "  manifest:        %s (kept %d days)\n", onOff(cfg.Manifest.Enabled), cfg.Manifest.RetentionDays)
	fmt.Fprintf(w, "  logging.level:   %s\n", cfg.Logging.Level)

	section(w, "Paths")
	fmt.Fprintf(w, "  program data:    %s\n", cfg.ProgramDataDir)
	fmt.Fprintf(w, "  quarantine:      %s\n", cfg.QuarantineDir())
	fmt.Fprintf(w, "  logs:            %s\n", cfg.LogsDir())
	fmt.Fprintf(w, "  manifests:       %s\n", cfg.ManifestDir())
	fmt.Fprintf(w, "  index:           %s\n", cfg.IndexDir())
	fmt.Fprintf(w, "  lock:            %s\n", cfg.LockPath())

	section(w, "Never scanned")
	for _, dir := range cfg.EffectiveExcludes() {
		fmt.Fprintf(w, "  %s\n", dir)
	}
	for _, p := range cfg.ExcludePatterns {
		fmt.Fprintf(w, "  %s (pattern)\n", p)
	}

	section(w, "File categories")
	names := make([]string, 0, len(cfg.FileCategories))
	for name := range cfg.FileCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name+":", strings.Join(cfg.FileCategories[name], " "))
	}
	fmt.Fprintf(w, "  active:      %s\n", strings.Join(cfg.Extensions(), " "))

	section(w, "Environment overrides")
	var overrides []string
	for _, kv := range env {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			overrides = append(overrides, kv)
		}
	}
	sort.Strings(overrides)
	fmt.Fprintf(w, "  %s\n", listOr(overrides, "(none)"))
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s:\n", title)
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func listOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, "\n  ")
}

// configProblem is one finding of checkConfig. Fatal problems stop a scan
// from starting; the rest only narrow what it does.
type configProblem struct {
	Fatal   bool
	Message string
}

// checkConfig inspects cfg against the filesystem.
func checkConfig(cfg *config.Config) []configProblem {
	var problems []configProblem
	warn := func(format string, args ...interface{}) {
		problems = append(problems, configProblem{Message: fmt.Sprintf(format, args...)})
	}
	fatal := func(format string, args ...interface{}) {
		problems = append(problems, configProblem{Fatal: true, Message: fmt.Sprintf(format, args...)})
	}

	if !filepath.IsAbs(cfg.ProgramDataDir) {
		fatal("program_data_dir %q is not an absolute path", cfg.ProgramDataDir)
	} else if info, err := os.Stat(cfg.ProgramDataDir); err == nil && !info.IsDir() {
		fatal("program_data_dir %s is not a directory", cfg.ProgramDataDir)
	} else if errors.Is(err, fs.ErrNotExist) {
		if _, perr := os.Stat(nearestExisting(cfg.ProgramDataDir)); perr != nil {
			fatal("program_data_dir %s cannot be created: %v", cfg.ProgramDataDir, perr)
		} else {
			warn("program_data_dir %s does not exist yet; it will be created", cfg.ProgramDataDir)
		}
	}

	if len(cfg.Extensions()) == 0 {
		fatal("categories %v select no extensions", cfg.Categories)
	}

	for _, dir := range cfg.ExcludeDirs {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			warn("exclude_dirs entry %s does not exist", dir)
		}
	}
	for _, vol := range cfg.Volumes {
		p, err := config.ExpandPath(vol)
		if err != nil {
			fatal("volume %q: %v", vol, err)
			continue
		}
		if _, err := os.Stat(p); err != nil {
			warn("volume %s is not accessible: %v", p, err)
		}
	}

	if cfg.AutoDelete && cfg.RetentionDays == 0 {
		warn("auto_delete is on and retention_days is 0: every matching file is deleted on the next run")
	}
	return problems
}

// nearestExisting walks up from path to the first ancestor that exists.
func nearestExisting(path string) string {
	for {
		parent := filepath.Dir(path)
		if _, err := os.Stat(parent); err == nil || parent == path {
			return parent
		}
		path = parent
	}
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := checkConfig(cfg)
	if len(problems) == 0 {
		fmt.Fprintf(out, "%s: OK\n", displayPath(cfg.File))
		return nil
	}

	fatal := 0
	for _, p := range problems {
		level := "warning"
		if p.Fatal {
			level = "error"
			fatal++
		}
		fmt.Fprintf(out, "%s: %s\n", level, p.Message)
	}
	if fatal > 0 {
		return fmt.Errorf("%s: %d configuration errors", displayPath(cfg.File), fatal)
	}
	return nil
}

func displayPath(file string) string {
	if file == "" {
		return "environment configuration"
	}
	return file
}

// targetConfigPath is the file config init and edit operate on.
func targetConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	path, err := targetConfigPath()
	if err != nil {
		return fmt.Errorf("locating config file: %w", err)
	}
	if _, err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	printVerbose("Opening %s with %s", path, editor)

	c := exec.Command(editor, path)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running %s: %w", editor, err)
	}
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := targetConfigPath()
	if err != nil {
		return fmt.Errorf("locating config file: %w", err)
	}

	written, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if !written {
		printInfo("Config file already exists: %s", path)
		return nil
	}
	printInfo("Created default config file: %s", path)
	printInfo("Set program_data_dir and exclude_dirs, then run 'purge config check'.")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, exists, err := resolveConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	if !exists {
		printVerbose("File does not exist (will be created by 'purge config init')")
	}
	return nil
}

// resolveConfigPath returns the file a load would read, or the default
// location when no file exists yet.
func resolveConfigPath() (string, bool, error) {
	if cfgFile != "" {
		_, err := os.Stat(cfgFile)
		return cfgFile, err == nil, nil
	}
	for _, dir := range config.SearchPaths() {
		for _, ext := range []string{"json", "yaml", "yml"} {
			p := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(p); err == nil {
				return p, true, nil
			}
		}
	}
	p, err := config.DefaultConfigPath()
	if err != nil {
		return "", false, fmt.Errorf("locating config directory: %w", err)
	}
	return p, false, nil
}
