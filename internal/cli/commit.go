package cli

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/app"
	"github.com/hoanghonghuy/commitgen/internal/interact"
)

type commitOptions struct {
	all      bool
	yes      bool
	model    string
	context  string
	hookFile string
}

func runCommit(cmd *cobra.Command, g *globalOptions, c *commitOptions) error {
	ctx := cmd.Context()

	_, cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	repo, err := g.openRepo()
	if err != nil {
		return err
	}

	opts := app.Options{
		All:      c.all,
		Yes:      c.yes,
		Model:    c.model,
		Context:  c.context,
		HookFile: c.hookFile,
		// The hook script reattaches stdin to the tty.
		NonInteractive: !stdinIsTerminal(),
	}
	otelzap.Ctx(ctx).Debug("Starting commit flow",
		zap.String("repo", repo.Root()),
		zap.String("branch", repo.Branch()),
		zap.String("provider", cfg.AI.Provider),
		zap.Bool("non_interactive", opts.NonInteractive))

	res, err := app.Run(ctx, app.Deps{
		Repo:     repo,
		Gen:      app.NewLazyGateway(cfg),
		Prompter: interact.NewTerminal(cfg.UI.Editor),
		Config:   cfg,
		Out:      cmd.OutOrStdout(),
	}, opts)
	if err != nil {
		return err
	}
	otelzap.Ctx(ctx).Debug("Commit flow finished", zap.Stringer("outcome", res.Outcome))
	return nil
}
