// Package main is the entry point for the wikiparse CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-wikiparse/cmd/wikiparse/internal/cli"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// The error body is already on stdout.
		if !errors.Is(err, cli.ErrParseFailed) {
			fmt.Fprintf(os.Stderr, "wikiparse: %v\n", err)
		}
		return 1
	}
	return 0
}
