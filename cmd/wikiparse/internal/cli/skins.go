package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSkinsCommand(global *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "skins",
		Short: "List installed skins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := global.buildModule()
			if err != nil {
				return err
			}
			defer module.Close()

			skins := module.Skins()
			out := cmd.OutOrStdout()
			if format == formatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"skins": skins})
			}
			for _, name := range skins {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
