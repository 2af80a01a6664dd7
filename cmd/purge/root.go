package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/purge/pkg/purge/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	// v holds configuration for the whole process; flags are bound to it
	// at init and config.Load reads the file into it.
	v = config.New()

	rootCmd = &cobra.Command{
		Use:   "purge",
		Short: "Quarantine files that have outlived their retention window",
		Long: `Purge walks every attached volume, finds files of the selected categories
that have not been modified within the retention window, and moves them into a
quarantine directory under the program data directory. The quarantine can be
cleared automatically after each scan (auto_delete) or on demand.

Examples:
  purge                          # Scan with the configured settings
  purge --dry-run                # Report what would be moved
  purge -c documents -r 30       # Only documents older than 30 days
  purge --volume /srv scan       # Scan a single root
  purge status                   # Quarantine contents and disk usage
  purge locate /srv/reports      # Find where a file was moved
  purge history                  # Past runs`,
		Args:          cobra.NoArgs,
		RunE:          runScan,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.json|yaml next to the binary or in ~/.config/purge)")
	rootCmd.PersistentFlags().BoolP("dry-run", "d", false, "report matches without moving anything")
	rootCmd.PersistentFlags().Bool("auto-delete", false, "clear the quarantine after the scan")
	rootCmd.PersistentFlags().IntP("retention-days", "r", 0, "minimum age in days for a file to qualify")
	rootCmd.PersistentFlags().StringSliceP("category", "c", nil, "file categories to select (can be specified multiple times)")
	rootCmd.PersistentFlags().StringSlice("volume", nil, "scan only these roots (can be specified multiple times)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show every directory and skipped file")
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format (pretty, plain, json, jsonl, yaml, paths, template)")
	rootCmd.PersistentFlags().String("template", "", "Go template used with -o template")

	// Bind flags to viper
	_ = v.BindPFlag(config.KeyDryRun, rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = v.BindPFlag(config.KeyAutoDelete, rootCmd.PersistentFlags().Lookup("auto-delete"))
	_ = v.BindPFlag(config.KeyRetentionDays, rootCmd.PersistentFlags().Lookup("retention-days"))
	_ = v.BindPFlag(config.KeyCategories, rootCmd.PersistentFlags().Lookup("category"))
	_ = v.BindPFlag(config.KeyVolumes, rootCmd.PersistentFlags().Lookup("volume"))
	_ = v.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = v.BindPFlag("template", rootCmd.PersistentFlags().Lookup("template"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(v, cfgFile)
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return v.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return v.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
