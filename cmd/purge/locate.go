package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/purge/pkg/purge/config"
	"github.com/jamesainslie/purge/pkg/purge/index"
	"github.com/jamesainslie/purge/pkg/purge/output"
	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate <path>",
	Short: "Find where files from a path were quarantined",
	Long: `Look up quarantined files by their original location. The argument may
be a file or a directory; every file moved from at or beneath it is listed
with its quarantine path.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

var locateLimit int

func init() {
	locateCmd.Flags().IntVarP(&locateLimit, "limit", "l", 0, "maximum number of files to show (0 = all)")
	rootCmd.AddCommand(locateCmd)
}

func runLocate(_ *cobra.Command, args []string) error {
	a, err := bootstrap("locate")
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.Index.Enabled {
		return fmt.Errorf("the quarantine index is disabled (%s)", config.KeyIndexEnabled)
	}

	expanded, err := config.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}
	prefix, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	var records []index.Record
	if err := updateIndex(a.cfg, func(idx *index.Index) error {
		records, err = idx.Locate(prefix, locateLimit)
		return err
	}); err != nil {
		return fmt.Errorf("failed to search index: %w", err)
	}

	if len(records) == 0 {
		printInfo("Nothing from %s is in quarantine.", prefix)
		return nil
	}

	return render(os.Stdout, &output.Result{Title: "Quarantined from " + prefix, Files: filesFromRecords(records)})
}

func filesFromRecords(records []index.Record) []output.File {
	files := make([]output.File, len(records))
	for i, r := range records {
		files[i] = output.File{
			Source:      r.Source,
			Destination: r.Destination,
			Size:        r.Size,
			SizeHuman:   humanSize(r.Size),
			ModTime:     r.ModTime,
			MovedAt:     r.MovedAt,
			RunID:       r.RunID,
		}
	}
	return files
}

func humanSize(n int64) string {
	return types.FormatSize(n)
}
