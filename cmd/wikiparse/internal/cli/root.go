// Package cli provides the Cobra command structure for wikiparse.
package cli

import (
	"github.com/spf13/cobra"

	wikiparse "github.com/goliatone/go-wikiparse"
	"github.com/goliatone/go-wikiparse/cmd/wikiparse/internal/bootstrap"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	configPath string
	dsn        string
	debug      bool

	// loggerProvider overrides the configured logger, used by tests.
	loggerProvider interfaces.LoggerProvider
}

func (g *globalFlags) buildModule() (*wikiparse.Module, error) {
	opts := bootstrap.Options{
		ConfigPath:     g.configPath,
		DSN:            g.dsn,
		LoggerProvider: g.loggerProvider,
	}
	if g.debug {
		opts.LogLevel = "debug"
	}
	return bootstrap.BuildModule(opts)
}

// NewRootCommand creates the root wikiparse command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	return newRootCommand(info, &globalFlags{})
}

func newRootCommand(info BuildInfo, flags *globalFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikiparse",
		Short: "Parse wikitext and stored page revisions",
		Long: `wikiparse parses wikitext supplied inline or loaded from a content store
and prints the assembled parse result as JSON.

Pages can be seeded from a YAML file into the in-memory store or persisted
to SQLite through the --dsn flag.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "SQLite DSN; selects bun storage")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newParseCommand(flags))
	rootCmd.AddCommand(newSeedCommand(flags))
	rootCmd.AddCommand(newSkinsCommand(flags))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
