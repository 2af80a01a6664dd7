package output

import "github.com/charmbracelet/lipgloss"

// ANSI 256-color palette.
const (
	colorAccent  = lipgloss.Color("39")  // blue
	colorOK      = lipgloss.Color("42")  // green
	colorCaution = lipgloss.Color("214") // amber
	colorFailed  = lipgloss.Color("196") // red
	colorDim     = lipgloss.Color("245") // gray
	colorText    = lipgloss.Color("255")
)

// Disk fill levels at which usage turns amber and red.
const (
	usageCaution = 0.75
	usageFull    = 0.90
)

var (
	// summaryBox frames the run and quarantine summaries.
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1).
			MarginBottom(1)

	// totalsBox frames the closing totals line.
	totalsBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			MarginTop(1)
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	pathStyle   = lipgloss.NewStyle().Foreground(colorText)
	sizeStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorDim)
	columnStyle = lipgloss.NewStyle().Bold(true).Foreground(colorDim)

	// Outcome styles: files quarantined or cleared, runs that need a look,
	// and failures.
	okStyle      = lipgloss.NewStyle().Foreground(colorOK)
	cautionStyle = lipgloss.NewStyle().Foreground(colorCaution)
	failedStyle  = lipgloss.NewStyle().Foreground(colorFailed)
)

// usageStyle colors a disk usage figure by how full the disk is.
func usageStyle(used, total uint64) lipgloss.Style {
	if total == 0 {
		return mutedStyle
	}
	switch pct := float64(used) / float64(total); {
	case pct >= usageFull:
		return failedStyle
	case pct >= usageCaution:
		return cautionStyle
	default:
		return okStyle
	}
}

// dryRunBadge marks output that describes moves which did not happen.
var dryRunBadge = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCaution).
	Render("[dry run]")
