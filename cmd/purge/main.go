// Package main provides the entry point for the purge retention CLI.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		reportFatal(err)
		os.Exit(1)
	}
}
