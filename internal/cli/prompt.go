package cli

import (
	"github.com/spf13/cobra"

	"github.com/hoanghonghuy/commitgen/internal/app"
)

func newPromptCmd(g *globalOptions) *cobra.Command {
	var outPath, extra string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the conversation that would be sent for the staged changes, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			repo, err := g.openRepo()
			if err != nil {
				return err
			}

			status, err := repo.StatusLines(ctx)
			if err != nil {
				return err
			}
			diff, err := repo.StagedDiff(ctx, cfg.Git.DiffContext)
			if err != nil {
				return err
			}
			return app.DumpPrompt(cmd.OutOrStdout(), app.Conversation(cfg, status, diff, extra), outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVarP(&extra, "context", "c", "", "extra guidance for the model")
	return cmd
}
