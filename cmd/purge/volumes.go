package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/purge/pkg/purge/output"
	"github.com/jamesainslie/purge/pkg/purge/volume"
	"github.com/spf13/cobra"
)

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List attached storage roots and their disk usage",
	Long: `List the storage roots a scan would start from when no volumes are
configured, with total, used and free space for each.`,
	Args: cobra.NoArgs,
	RunE: runVolumes,
}

func init() {
	rootCmd.AddCommand(volumesCmd)
}

func runVolumes(_ *cobra.Command, _ []string) error {
	roots, err := volume.List()
	if err != nil {
		return fmt.Errorf("failed to list volumes: %w", err)
	}

	return render(os.Stdout, &output.Result{
		Title:   "Volumes",
		Volumes: describeVolumes(roots, volume.DiskUsage),
	})
}

// describeVolumes attaches disk usage to each root.
func describeVolumes(roots []volume.Root, usage func(string) (volume.Usage, bool)) []output.Volume {
	vols := make([]output.Volume, len(roots))
	for i, r := range roots {
		vols[i] = output.Volume{Path: r.Path, Device: r.Device, FSType: r.FSType}
		if u, ok := usage(r.Path); ok {
			vols[i].Available = true
			vols[i].Total = u.Total
			vols[i].Used = u.Used
			vols[i].Free = u.Free
		}
	}
	return vols
}
