package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// PlainFormatter formats output as simple aligned tables, one per populated
// section. No colors or styling are applied, so it suits scripting.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	// Use tabwriter for aligned columns
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if rep := r.Report; rep != nil {
		fmt.Fprintf(tw, "RUN\t%s\n", rep.RunID)
		fmt.Fprintf(tw, "DRY RUN\t%t\n", rep.DryRun)
		fmt.Fprintf(tw, "DIRS\t%d\n", rep.DirsScanned)
		fmt.Fprintf(tw, "MATCHED\t%d\n", rep.Matched)
		fmt.Fprintf(tw, "SKIPPED\t%d\n", rep.Skipped)
		fmt.Fprintf(tw, "MOVED\t%d (%s)\n", rep.Moved, rep.BytesHuman)
		fmt.Fprintf(tw, "FAILURES\t%d\n", rep.Failures())
		if rep.Reclaimed {
			fmt.Fprintf(tw, "RECLAIM FAILURES\t%d\n", rep.ReclaimFailures)
		}
		if rep.Interrupted {
			fmt.Fprintf(tw, "INTERRUPTED\ttrue\n")
		}
		fmt.Fprintf(tw, "ELAPSED\t%s\n", rep.ElapsedHuman)
	}

	if len(r.Volumes) > 0 {
		fmt.Fprintf(tw, "PATH\tTYPE\tTOTAL\tUSED\tFREE\n")
		for _, v := range r.Volumes {
			total, used, free := "-", "-", "-"
			if v.Available {
				total, used, free = humanize.IBytes(v.Total), humanize.IBytes(v.Used), humanize.IBytes(v.Free)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Path, v.FSType, total, used, free)
		}
	}

	if q := r.Quarantine; q != nil {
		fmt.Fprintf(tw, "QUARANTINE\t%s\n", q.Dir)
		fmt.Fprintf(tw, "FILES\t%d\n", q.Files)
		fmt.Fprintf(tw, "SIZE\t%s\n", humanize.IBytes(uint64(q.Bytes)))
		fmt.Fprintf(tw, "INDEXED\t%d\n", q.Indexed)
		if !q.LastRun.IsZero() {
			fmt.Fprintf(tw, "LAST RUN\t%s\n", q.LastRun.Local().Format(time.DateTime))
		}
		if q.Locked {
			fmt.Fprintf(tw, "LOCKED\tpid %d\n", q.LockPID)
		}
		for _, v := range q.Volumes {
			fmt.Fprintf(tw, "  %s\t%d files\t%s\n", v.Tag, v.Files, humanize.IBytes(uint64(v.Bytes)))
		}
	}

	if len(r.History) > 0 {
		fmt.Fprintf(tw, "ID\tTIME\tOPERATION\tFILES\tSIZE\tFAILURES\n")
		for _, run := range r.History {
			op := run.Operation
			if run.DryRun {
				op += " (dry-run)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n",
				shortID(run.ID), run.Timestamp.Local().Format(time.DateTime), op,
				run.Files, humanize.IBytes(uint64(run.Bytes)), run.Failures)
		}
	}

	if len(r.Files) > 0 {
		fmt.Fprintf(tw, "SIZE\tSOURCE\tQUARANTINE\n")
		for _, file := range r.Files {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", file.SizeHuman, file.Source, file.Destination)
		}
	}

	// Flush tabwriter to buffer
	return tw.Flush()
}

// shortID trims a UUID to its first group for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
