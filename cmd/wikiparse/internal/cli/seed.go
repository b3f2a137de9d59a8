package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-wikiparse/cmd/wikiparse/internal/bootstrap"
	"github.com/goliatone/go-wikiparse/internal/commands"
)

// ErrSeedNeedsDSN is returned when seeding would only reach a throwaway store.
var ErrSeedNeedsDSN = errors.New("seed requires persistent storage; pass --dsn or set storage.provider to bun")

func newSeedCommand(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load pages from a YAML seed file into persistent storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := global.buildModule()
			if err != nil {
				return err
			}
			defer module.Close()

			if module.Container().Config.Storage.Provider != "bun" {
				return ErrSeedNeedsDSN
			}

			file, err := bootstrap.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			logger := commands.CommandLogger(module.Container().LoggerProvider(), "seed")
			summary, err := bootstrap.Seed(cmd.Context(), module.Store(), module.Container().Site(), file, args[0], logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pages, %d revisions\n", summary.Pages, summary.Revisions)
			return nil
		},
	}
	return cmd
}
