package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/purge/pkg/purge/config"
	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/index"
	"github.com/jamesainslie/purge/pkg/purge/lock"
	"github.com/jamesainslie/purge/pkg/purge/logging"
	"github.com/jamesainslie/purge/pkg/purge/manifest"
	"github.com/jamesainslie/purge/pkg/purge/output"
	"github.com/jamesainslie/purge/pkg/purge/runlog"
	"github.com/jamesainslie/purge/pkg/purge/scanner"
	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan volumes and quarantine expired files",
	Long: `Scan every configured root (all attached volumes when none are configured),
moving files of the selected categories that are older than the retention
window into the quarantine. This is also what running purge with no
subcommand does.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// runScan is the main scan command handler.
func runScan(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap("scan")
	if err != nil {
		return err
	}
	defer a.Close()

	lk, err := acquireLock(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lk.Release() }()

	startedAt := time.Now()
	runID := uuid.NewString()

	rl, err := runlog.Open(a.cfg.LogsDir(), startedAt)
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	sinks := []event.Sink{rl}
	if !getQuiet() {
		sinks = append(sinks, runlog.NewConsole(os.Stdout, getVerbose()))
	}

	opts, err := scanOptions(a.cfg, runID, event.Multi(sinks...), a.logs.Get("scanner"))
	if err != nil {
		return err
	}

	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := scanner.New(opts).Run(ctx)
	if err != nil {
		return err
	}

	warnings := recordRun(a.cfg, report, a.log)
	printVerbose("Scan log: %s", rl.ScanPath)
	printVerbose("Move log: %s", rl.MovePath)

	if getQuiet() {
		return nil
	}
	return render(os.Stdout, &output.Result{
		Title:    "Scan summary",
		Report:   output.FromReport(report),
		Warnings: warnings,
	})
}

// acquireLock takes the run lock under the program data directory.
func acquireLock(cfg *config.Config) (*lock.Lock, error) {
	lk, err := lock.Acquire(cfg.LockPath())
	if err != nil {
		return nil, &types.ResourceSetupError{Resource: "run lock", Path: cfg.LockPath(), Err: err}
	}
	return lk, nil
}

// scanOptions maps configuration onto engine options.
func scanOptions(cfg *config.Config, runID string, sink event.Sink, logger *logging.Logger) (scanner.Options, error) {
	roots := make([]string, 0, len(cfg.Volumes))
	for _, vol := range cfg.Volumes {
		p, err := config.ExpandPath(vol)
		if err != nil {
			return scanner.Options{}, &config.ConfigError{Key: config.KeyVolumes, Err: fmt.Errorf("%w: %v", config.ErrInvalidValue, err)}
		}
		roots = append(roots, p)
	}

	return scanner.Options{
		Roots:           roots,
		QuarantineDir:   cfg.QuarantineDir(),
		Exclude:         cfg.EffectiveExcludes(),
		ExcludePatterns: cfg.ExcludePatterns,
		Extensions:      cfg.Extensions(),
		RetentionDays:   cfg.RetentionDays,
		DryRun:          cfg.DryRun,
		AutoDelete:      cfg.AutoDelete,
		Header:          headerLines(cfg),
		RunID:           runID,
		Sink:            sink,
		Logger:          logger,
	}, nil
}

// headerLines describes the configuration in use at the top of the scan log.
func headerLines(cfg *config.Config) []string {
	file := cfg.File
	if file == "" {
		file = "(environment only)"
	}
	return []string{
		"Config file: " + file,
		"Program data: " + cfg.ProgramDataDir,
		"Quarantine: " + cfg.QuarantineDir(),
		"Categories: " + strings.Join(cfg.Categories, ", "),
		fmt.Sprintf("Extensions: %d", len(cfg.Extensions())),
	}
}

// recordRun writes the run manifest and updates the quarantine index. Both
// are best effort: failures are logged and returned as warnings.
func recordRun(cfg *config.Config, report *types.Report, logger *logging.Logger) []string {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		logger.Warn(msg)
		warnings = append(warnings, msg)
	}

	if cfg.Manifest.Enabled {
		if err := writeManifest(cfg, func(m *manifest.Manifest) error {
			_, err := m.RecordScan(report)
			return err
		}); err != nil {
			warn("manifest not written: %v", err)
		}
	}

	if cfg.Index.Enabled {
		if err := updateIndex(cfg, func(idx *index.Index) error {
			if err := idx.Add(report.RunID, report.Moves); err != nil {
				return err
			}
			if report.Reclaimed {
				pruned, err := idx.Prune(index.FileExists)
				logger.Debug("index pruned after reclaim", "records", pruned)
				return err
			}
			return nil
		}); err != nil {
			warn("index not updated: %v", err)
		}
	}

	return warnings
}

// writeManifest opens the manifest directory, applies fn and expires old
// entries.
func writeManifest(cfg *config.Config, fn func(*manifest.Manifest) error) error {
	m, err := manifest.New(cfg.ManifestDir())
	if err != nil {
		return err
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	_, err = m.Cleanup(cfg.Manifest.RetentionDays)
	return err
}

// updateIndex opens the quarantine index, applies fn and closes it.
func updateIndex(cfg *config.Config, fn func(*index.Index) error) (err error) {
	idx, err := index.Open(cfg.IndexDir())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, idx.Close())
	}()
	return fn(idx)
}

// interrupted reports whether err stems from a cancelled context.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
