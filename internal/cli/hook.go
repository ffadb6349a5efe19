package cli

import (
	"github.com/spf13/cobra"

	"github.com/hoanghonghuy/commitgen/internal/app"
)

func newInstallHookCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install-hook",
		Short: "Install a prepare-commit-msg hook that runs commitgen on git commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := g.openRepo()
			if err != nil {
				return err
			}
			_, err = app.InstallHook(repo.GitDir(), "", cmd.OutOrStdout())
			return err
		},
	}
}
