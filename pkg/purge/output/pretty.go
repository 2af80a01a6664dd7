package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	if r.Title != "" {
		w.WriteString(titleStyle.Render(r.Title))
		w.WriteString("\n\n")
	}

	if r.Report != nil {
		w.WriteString(f.formatReport(r.Report))
		w.WriteString("\n")
	}
	if len(r.Volumes) > 0 {
		w.WriteString(f.formatVolumes(r.Volumes))
	}
	if r.Quarantine != nil {
		w.WriteString(f.formatQuarantine(r.Quarantine))
		w.WriteString("\n")
	}
	if len(r.History) > 0 {
		w.WriteString(f.formatHistory(r.History))
	}
	if len(r.Files) > 0 {
		w.WriteString(f.formatFiles(r.Files))
		w.WriteString(f.formatFooter(r))
		w.WriteString("\n")
	}
	if r.isEmpty() {
		w.WriteString(mutedStyle.Render("  Nothing to show"))
		w.WriteString("\n")
	}

	// Add warnings if any
	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

func (r *Result) isEmpty() bool {
	return r.Report == nil && r.Quarantine == nil &&
		len(r.Volumes) == 0 && len(r.History) == 0 && len(r.Files) == 0
}

func field(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label), valueStyle.Render(value))
}

// formatReport builds the header box with the run summary.
func (f *PrettyFormatter) formatReport(rep *Report) string {
	var lines []string

	mode := "live"
	if rep.DryRun {
		mode = "dry-run"
	}
	head := []string{
		field("Run:", shortID(rep.RunID)),
		field("Mode:", mode),
		field("Elapsed:", formatDuration(rep.Elapsed)),
	}
	if rep.DryRun {
		head = append(head, dryRunBadge)
	}
	lines = append(lines, strings.Join(head, "  "))

	lines = append(lines, strings.Join([]string{
		field("Dirs:", humanize.Comma(rep.DirsScanned)),
		field("Matched:", humanize.Comma(rep.Matched)),
		field("Skipped:", humanize.Comma(rep.Skipped)),
	}, "  "))

	moved := fmt.Sprintf("%s %s", labelStyle.Render("Moved:"),
		sizeStyle.Render(fmt.Sprintf("%s files, %s", humanize.Comma(rep.Moved), humanize.IBytes(uint64(rep.BytesMoved)))))
	lines = append(lines, moved)

	if n := rep.Failures(); n > 0 {
		lines = append(lines, failedStyle.Render(fmt.Sprintf("%d failures (%d gone, %d denied, %d errors)", n, rep.Gone, rep.Denied, rep.Errors)))
	}
	if rep.Reclaimed {
		if rep.ReclaimFailures > 0 {
			lines = append(lines, cautionStyle.Render(fmt.Sprintf("Quarantine cleared with %d failures", rep.ReclaimFailures)))
		} else {
			lines = append(lines, okStyle.Render("Quarantine cleared"))
		}
	}

	// Interrupted notice
	if rep.Interrupted {
		lines = append(lines, cautionStyle.Bold(true).Render("Scan interrupted"))
	}

	return summaryBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatVolumes(volumes []Volume) string {
	var sb strings.Builder

	pathWidth := 4
	for _, v := range volumes {
		pathWidth = max(pathWidth, len(v.Path))
	}

	sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		columnStyle.Render(padRight("PATH", pathWidth)),
		columnStyle.Render(padLeft("TOTAL", 10)),
		columnStyle.Render(padLeft("FREE", 10)),
		columnStyle.Render("USED")))

	for _, v := range volumes {
		path := pathStyle.Render(padRight(v.Path, pathWidth))
		if !v.Available {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", path, mutedStyle.Render("(unavailable)")))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			path,
			sizeStyle.Render(padLeft(humanize.IBytes(v.Total), 10)),
			valueStyle.Render(padLeft(humanize.IBytes(v.Free), 10)),
			usageStyle(v.Used, v.Total).Render(usagePercent(v.Used, v.Total))))
	}
	return sb.String()
}

// formatQuarantine builds the status box for the quarantine directory.
func (f *PrettyFormatter) formatQuarantine(q *Quarantine) string {
	var lines []string

	lines = append(lines, field("Quarantine:", q.Dir))
	lines = append(lines, strings.Join([]string{
		fmt.Sprintf("%s %s", labelStyle.Render("Holding:"),
			sizeStyle.Render(fmt.Sprintf("%s files, %s", humanize.Comma(q.Files), humanize.IBytes(uint64(q.Bytes))))),
		field("Indexed:", humanize.Comma(q.Indexed)),
	}, "  "))

	if !q.LastRun.IsZero() {
		lines = append(lines, field("Last run:", humanize.Time(q.LastRun)))
	}
	if q.Locked {
		lines = append(lines, cautionStyle.Render(fmt.Sprintf("Run in progress (pid %d)", q.LockPID)))
	}
	for _, v := range q.Volumes {
		lines = append(lines, fmt.Sprintf("  %s %s",
			valueStyle.Render(padRight(v.Tag, 12)),
			mutedStyle.Render(fmt.Sprintf("%d files, %s", v.Files, humanize.IBytes(uint64(v.Bytes))))))
	}

	return summaryBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatHistory(runs []Run) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		columnStyle.Render(padRight("ID", 8)),
		columnStyle.Render(padRight("WHEN", 16)),
		columnStyle.Render(padRight("OPERATION", 17)),
		columnStyle.Render("FILES")))

	for _, run := range runs {
		op := run.Operation
		if run.DryRun {
			op += " (dry-run)"
		}
		files := fmt.Sprintf("%d (%s)", run.Files, humanize.IBytes(uint64(run.Bytes)))
		line := fmt.Sprintf("  %s  %s  %s  %s",
			valueStyle.Render(padRight(shortID(run.ID), 8)),
			mutedStyle.Render(padRight(humanize.Time(run.Timestamp), 16)),
			valueStyle.Render(padRight(op, 17)),
			sizeStyle.Render(files))
		if run.Failures > 0 {
			line += "  " + failedStyle.Render(fmt.Sprintf("%d failed", run.Failures))
		}
		if run.Interrupted {
			line += "  " + cautionStyle.Render("interrupted")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// formatFiles builds the file table with SIZE, SOURCE and QUARANTINE columns.
func (f *PrettyFormatter) formatFiles(files []File) string {
	var sb strings.Builder

	// Calculate max size width for alignment
	maxSizeWidth := 8
	for _, file := range files {
		maxSizeWidth = max(maxSizeWidth, len(file.SizeHuman))
	}

	sb.WriteString(fmt.Sprintf("  %s  %s\n",
		columnStyle.Render(padLeft("SIZE", maxSizeWidth)),
		columnStyle.Render("SOURCE")))

	for _, file := range files {
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			sizeStyle.Render(padLeft(file.SizeHuman, maxSizeWidth)),
			pathStyle.Render(file.Source)))
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			strings.Repeat(" ", maxSizeWidth),
			mutedStyle.Render("-> "+file.Destination)))
	}

	return sb.String()
}

// formatFooter builds the footer box with file totals.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		field("Files:", fmt.Sprintf("%d", len(r.Files))),
		fmt.Sprintf("%s %s", labelStyle.Render("Total:"), sizeStyle.Render(humanize.IBytes(uint64(r.TotalSize())))),
		mutedStyle.Render("Use -o plain for unformatted output"),
	}
	return totalsBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(cautionStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(cautionStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

func usagePercent(used, total uint64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(used)*100/float64(total))
}


// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
