package cli

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/hoanghonghuy/commitgen/internal/config"
	"github.com/hoanghonghuy/commitgen/internal/interact"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored configuration",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			printConfig(cmd, s.Path, cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration in an interactive form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.store()
			if err != nil {
				return err
			}
			_, err = s.Update(func(c *config.AppConfig) error {
				ok, err := interact.EditConfig(s.Path, c)
				if err != nil {
					return err
				}
				if !ok {
					return errFormAborted
				}
				return nil
			})
			if errors.Is(err, errFormAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), interact.Warn("Configuration unchanged"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), interact.Success("✓ Configuration saved to "+s.Path))
			return nil
		},
	})

	cmd.AddCommand(
		setter(g, "set-provider <provider>", "Set the AI provider", func(s *config.Store, arg string) (string, error) {
			cfg, err := s.SetProvider(arg)
			return "Set provider to: " + cfg.AI.Provider, err
		}),
		setter(g, "set-api-key <key>", "Set the API key; ${VAR} reads it from the environment", func(s *config.Store, arg string) (string, error) {
			_, err := s.SetAPIKey(arg)
			return "API key updated", err
		}),
		setter(g, "set-model <model>", "Set the default model", func(s *config.Store, arg string) (string, error) {
			cfg, err := s.SetModel(arg)
			return "Set model to: " + cfg.AI.Model, err
		}),
		setter(g, "set-temperature <0.0-2.0>", "Set the sampling temperature", func(s *config.Store, arg string) (string, error) {
			t, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return "", errors.Wrapf(err, "temperature %q", arg)
			}
			_, err = s.SetTemperature(t)
			return fmt.Sprintf("Set temperature to: %g", t), err
		}),
		setter(g, "set-max-tokens <n>", "Set the response token budget", func(s *config.Store, arg string) (string, error) {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return "", errors.Wrapf(err, "max tokens %q", arg)
			}
			_, err = s.SetMaxTokens(n)
			return fmt.Sprintf("Set max tokens to: %d", n), err
		}),
		setter(g, "set-interactive <bool>", "Choose between the commit/edit/cancel menu and a yes/no prompt", boolSetter("Set interactive mode to", (*config.Store).SetInteractive)),
		setter(g, "set-conventional <bool>", "Warn when messages are not Conventional Commits", boolSetter("Set conventional commits to", (*config.Store).SetConventional)),
		setter(g, "set-show-diff <bool>", "Print the staged diff before generating", boolSetter("Set show diff to", (*config.Store).SetShowDiff)),
	)
	return cmd
}

var errFormAborted = errors.New("config form aborted")

type setFunc func(s *config.Store, arg string) (string, error)

func setter(g *globalOptions, use, short string, fn setFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.store()
			if err != nil {
				return err
			}
			msg, err := fn(s, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), interact.Success("✓ "+msg))
			return nil
		},
	}
}

func boolSetter(label string, set func(*config.Store, bool) (config.AppConfig, error)) setFunc {
	return func(s *config.Store, arg string) (string, error) {
		v, err := strconv.ParseBool(arg)
		if err != nil {
			return "", errors.Wrapf(err, "expected true or false, got %q", arg)
		}
		_, err = set(s, v)
		return fmt.Sprintf("%s: %t", label, v), err
	}
}

func printConfig(cmd *cobra.Command, path string, cfg config.AppConfig) {
	w := cmd.OutOrStdout()
	key := "not set"
	if cfg.AI.APIKey != "" {
		key = "set"
	}
	fmt.Fprintln(w, interact.Heading("Current configuration:"))
	fmt.Fprintf(w, "Provider: %s\n", interact.Value(cfg.AI.Provider))
	fmt.Fprintf(w, "Model: %s\n", interact.Value(cfg.AI.Model))
	fmt.Fprintf(w, "API key: %s\n", interact.Value(key))
	if cfg.AI.BaseURL != "" {
		fmt.Fprintf(w, "Base URL: %s\n", interact.Value(cfg.AI.BaseURL))
	}
	fmt.Fprintf(w, "Temperature: %s\n", interact.Value(strconv.FormatFloat(cfg.AI.Temperature, 'g', -1, 64)))
	fmt.Fprintf(w, "Max tokens: %s\n", interact.Value(strconv.Itoa(cfg.AI.MaxTokens)))
	fmt.Fprintf(w, "Interactive: %s\n", interact.Value(strconv.FormatBool(cfg.UI.Interactive)))
	fmt.Fprintf(w, "Show diff: %s\n", interact.Value(strconv.FormatBool(cfg.UI.ShowDiff)))
	fmt.Fprintf(w, "Conventional commits: %s\n", interact.Value(strconv.FormatBool(cfg.Git.ConventionalCommits)))
	fmt.Fprintf(w, "Auto stage: %s\n", interact.Value(strconv.FormatBool(cfg.Git.AutoStage)))
	fmt.Fprintf(w, "Config file: %s\n", interact.Dim(path))
}
