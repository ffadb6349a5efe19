// Package cli is the commitgen command line: the root command generates and
// commits a message, subcommands manage configuration, list models, dump the
// prompt and install the git hook.
package cli

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/hoanghonghuy/commitgen/internal/config"
	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/gitx"
	"github.com/hoanghonghuy/commitgen/internal/logging"
)

var version = "dev"

// SetVersion is called from main with the build version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	repoPath   string
	debug      bool

	flushLogs func()
}

func (g *globalOptions) store() (*config.Store, error) {
	return config.NewStore(g.configPath)
}

func (g *globalOptions) loadConfig() (*config.Store, config.AppConfig, error) {
	s, err := g.store()
	if err != nil {
		return nil, config.AppConfig{}, err
	}
	cfg, err := s.Load()
	if err != nil {
		return nil, config.AppConfig{}, err
	}
	return s, cfg, nil
}

func (g *globalOptions) openRepo() (*gitx.Repo, error) {
	repo, err := gitx.Open(g.repoPath)
	if err != nil {
		return nil, err
	}
	if !repo.IsUsable() {
		return nil, errors.WithHint(errors.WithStack(errs.ErrNotInRepository), "bare repositories have no working tree to commit from")
	}
	return repo, nil
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(g *globalOptions) *cobra.Command {
	c := &commitOptions{}

	root := &cobra.Command{
		Use:   "commitgen",
		Short: "Generate commit messages for staged changes with an AI model",
		Long: `commitgen sends the staged diff and status to a configured model provider,
shows the suggested commit message and commits it once you accept.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flush, err := logging.Init(g.debug)
			if err != nil {
				return errors.Wrap(err, "init logging")
			}
			g.flushLogs = flush
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, g, c)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetGlobalNormalizationFunc(normalizeFlag)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default <user config dir>/commitgen/config.yaml, or $COMMITGEN_CONFIG)")
	pf.StringVar(&g.repoPath, "repo", ".", "path inside the git repository")
	pf.BoolVar(&g.debug, "debug", false, "log debug output to stderr")

	f := root.Flags()
	f.BoolVarP(&c.all, "all", "a", false, "stage all changes before generating")
	f.BoolVarP(&c.yes, "yes", "y", false, "commit the generated message without asking")
	f.StringVarP(&c.model, "model", "m", "", "override the configured model")
	f.StringVarP(&c.context, "context", "c", "", "extra guidance for the model")
	f.StringVar(&c.hookFile, "hook", "", "write the message to this file instead of committing (prepare-commit-msg)")

	root.AddCommand(
		newConfigCmd(g),
		newModelsCmd(g),
		newPromptCmd(g),
		newInstallHookCmd(g),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	g := &globalOptions{}
	err := newRootCmd(g).ExecuteContext(ctx)
	if g.flushLogs != nil {
		g.flushLogs()
	}
	return err
}

// normalizeFlag accepts snake_case spellings and the older --hook-file name.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if name == "hook-file" {
		name = "hook"
	}
	return pflag.NormalizedName(name)
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
