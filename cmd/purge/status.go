package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/purge/pkg/purge/config"
	"github.com/jamesainslie/purge/pkg/purge/index"
	"github.com/jamesainslie/purge/pkg/purge/lock"
	"github.com/jamesainslie/purge/pkg/purge/manifest"
	"github.com/jamesainslie/purge/pkg/purge/output"
	"github.com/jamesainslie/purge/pkg/purge/quarantine"
	"github.com/jamesainslie/purge/pkg/purge/volume"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show quarantine contents and run state",
	Long: `Summarise what the quarantine currently holds, broken down by source
volume, together with the index size, the last recorded run and whether a run
is in progress.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap("status")
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := quarantine.Inventory(cmd.Context(), a.cfg.QuarantineDir())
	if err != nil {
		if interrupted(err) {
			return nil
		}
		return fmt.Errorf("failed to inventory quarantine: %w", err)
	}

	q := &output.Quarantine{
		Dir:     stats.Root,
		Files:   stats.Files,
		Dirs:    stats.Dirs,
		Bytes:   stats.Bytes,
		Volumes: make([]output.QuarantineVolume, len(stats.Volumes)),
	}
	for i, vs := range stats.Volumes {
		q.Volumes[i] = output.QuarantineVolume(vs)
	}

	var warnings []string
	if stats.Errors > 0 {
		warnings = append(warnings, fmt.Sprintf("%d quarantine entries could not be read", stats.Errors))
	}

	if usage, ok := volume.DiskUsage(a.cfg.ProgramDataDir); ok {
		q.FreeDisk = usage.Free
	}

	q.Locked, q.LockPID = lockState(a.cfg)

	if a.cfg.Index.Enabled && !q.Locked {
		if err := updateIndex(a.cfg, func(idx *index.Index) error {
			files, _, err := idx.Count()
			q.Indexed = files
			return err
		}); err != nil {
			warnings = append(warnings, fmt.Sprintf("index unavailable: %v", err))
		}
	}

	if m, err := manifest.New(a.cfg.ManifestDir()); err == nil {
		if entries, err := m.List(1); err == nil && len(entries) > 0 {
			q.LastRun = entries[0].Timestamp
		}
	}

	return render(os.Stdout, &output.Result{
		Title:      "Quarantine status",
		Quarantine: q,
		Warnings:   warnings,
	})
}

// lockState reports whether another process holds the run lock. The lock
// is probed by acquiring and immediately releasing it.
func lockState(cfg *config.Config) (bool, int) {
	if _, err := os.Stat(cfg.LockPath()); err != nil {
		return false, 0
	}
	lk, err := lock.Acquire(cfg.LockPath())
	if err == nil {
		_ = lk.Release()
		return false, 0
	}
	if !errors.Is(err, lock.ErrLocked) {
		return false, 0
	}
	pid, _ := lock.ReadPID(cfg.LockPath())
	return true, pid
}
