package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/interact"
)

func newModelsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the known models of the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			models, err := ai.ListModels(cfg.AI.Provider)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, interact.Heading("Available models for "+cfg.AI.Provider+":"))
			for _, m := range models {
				if m == cfg.AI.Model {
					fmt.Fprintf(w, "  %s %s\n", interact.Success("●"), interact.Value(m))
				} else {
					fmt.Fprintf(w, "  %s %s\n", interact.Dim("○"), m)
				}
			}
			return nil
		},
	}
}
