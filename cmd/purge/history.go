package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/purge/pkg/purge/manifest"
	"github.com/jamesainslie/purge/pkg/purge/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	Long: `View the history of scan and reclaim runs.

Each run writes a manifest under the program data directory recording its
counters and every file it moved into quarantine.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific run",
	Long:  `Display a run and the files it moved. A unique prefix of the ID is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than manifest.retention_days.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest instance with the configured directory.
func getManifest() (*manifest.Manifest, *app, error) {
	a, err := bootstrap("history")
	if err != nil {
		return nil, nil, err
	}
	m, err := manifest.New(a.cfg.ManifestDir())
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("failed to initialize manifest: %w", err)
	}
	return m, a, nil
}

// runHistory lists recent runs.
func runHistory(_ *cobra.Command, _ []string) error {
	m, a, err := getManifest()
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'purge scan' to create one.")
		return nil
	}

	runs := make([]output.Run, len(entries))
	for i := range entries {
		runs[i] = toRun(&entries[i])
	}

	return render(os.Stdout, &output.Result{Title: "History", History: runs})
}

// runHistoryShow displays details of a specific run.
func runHistoryShow(_ *cobra.Command, args []string) error {
	m, a, err := getManifest()
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	files := make([]output.File, len(entry.Files))
	for i, f := range entry.Files {
		files[i] = output.File{
			Source:      f.Source,
			Destination: f.Destination,
			Size:        f.Size,
			SizeHuman:   humanSize(f.Size),
			ModTime:     f.ModTime,
			AgeDays:     f.AgeDays,
			MovedAt:     f.MovedAt,
			RunID:       entry.ID,
		}
	}

	return render(os.Stdout, &output.Result{
		Title:   "Run " + entry.ID,
		History: []output.Run{toRun(entry)},
		Files:   files,
	})
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	m, a, err := getManifest()
	if err != nil {
		return err
	}
	defer a.Close()

	retentionDays := a.cfg.Manifest.RetentionDays
	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries.", removed)
	return nil
}

func toRun(e *manifest.Entry) output.Run {
	return output.Run{
		ID:          e.ID,
		Operation:   string(e.Operation),
		Timestamp:   e.Timestamp,
		DryRun:      e.DryRun,
		Files:       e.Summary.TotalFiles,
		Bytes:       e.Summary.TotalBytes,
		Failures:    e.Summary.Failures + int64(e.Summary.ReclaimFailures),
		Interrupted: e.Summary.Interrupted,
	}
}
