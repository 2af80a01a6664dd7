package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/index"
	"github.com/jamesainslie/purge/pkg/purge/manifest"
	"github.com/jamesainslie/purge/pkg/purge/quarantine"
	"github.com/jamesainslie/purge/pkg/purge/runlog"
	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/spf13/cobra"
)

var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Permanently delete everything in the quarantine",
	Long: `Remove every file and directory inside the quarantine, keeping the
quarantine directory itself. Entries that cannot be removed are reported and
left in place. With --dry-run only the current contents are summarised.`,
	Args: cobra.NoArgs,
	RunE: runReclaim,
}

func init() {
	rootCmd.AddCommand(reclaimCmd)
}

func runReclaim(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap("reclaim")
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.cfg.QuarantineDir()

	if a.cfg.DryRun {
		stats, err := quarantine.Inventory(cmd.Context(), dir)
		if err != nil {
			return fmt.Errorf("failed to inventory quarantine: %w", err)
		}
		printInfo("Dry run: would delete %s files (%s) from %s",
			humanize.Comma(stats.Files), humanize.IBytes(uint64(stats.Bytes)), dir)
		return nil
	}

	lk, err := acquireLock(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lk.Release() }()

	rl, err := runlog.Open(a.cfg.LogsDir(), time.Now())
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	sinks := []event.Sink{rl}
	if !getQuiet() {
		sinks = append(sinks, runlog.NewConsole(os.Stdout, getVerbose()))
	}
	sink := event.Multi(sinks...)

	failures, err := reclaimQuarantine(dir, sink)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			printInfo("Quarantine %s does not exist; nothing to reclaim.", dir)
			return nil
		}
		return err
	}
	a.log.Info("quarantine reclaimed", "dir", dir, "failures", failures)

	runID := uuid.NewString()
	if a.cfg.Manifest.Enabled {
		if err := writeManifest(a.cfg, func(m *manifest.Manifest) error {
			_, err := m.RecordReclaim(runID, failures)
			return err
		}); err != nil {
			a.log.Warn("manifest not written", "error", err)
		}
	}
	if a.cfg.Index.Enabled {
		if err := updateIndex(a.cfg, func(idx *index.Index) error {
			_, err := idx.Prune(index.FileExists)
			return err
		}); err != nil {
			a.log.Warn("index not updated", "error", err)
		}
	}

	if failures > 0 {
		printError("%d quarantine entries could not be deleted; see %s", failures, rl.ScanPath)
	}
	return nil
}

// reclaimQuarantine clears dir, reporting progress and each failure to
// sink as RECLAIM events.
func reclaimQuarantine(dir string, sink event.Sink) (int, error) {
	sink.Emit(event.Event{Tag: event.TagReclaim, Time: time.Now(), Message: "Clearing directory: " + dir})

	failures, err := quarantine.Clear(dir, func(itemErr *types.ReclaimItemError) {
		sink.Emit(event.Event{Tag: event.TagReclaim, Time: time.Now(), Path: itemErr.Path, Err: itemErr})
	})
	if err != nil {
		sink.Emit(event.Event{Tag: event.TagReclaim, Time: time.Now(), Err: err})
		return 0, err
	}

	sink.Emit(event.Event{
		Tag:     event.TagReclaim,
		Time:    time.Now(),
		Message: fmt.Sprintf("Finished clearing quarantine directory: %s (%d failures)", dir, failures),
	})
	return failures, nil
}
