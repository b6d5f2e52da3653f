// Package main is the entry point for the irs-mortality CLI.
package main

import (
	"os"

	"irs-mortality/cmd/cli/cmd"
	"irs-mortality/core/ui"
)

func main() {
	if err := cmd.Execute(); err != nil {
		ui.NewWriter(os.Stderr, false).Error("%v", err)
		os.Exit(1)
	}
}
