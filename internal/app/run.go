package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/config"
	"github.com/hoanghonghuy/commitgen/internal/gitx"
	"github.com/hoanghonghuy/commitgen/internal/interact"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

// Repository is the slice of gitx.Repo the commit flow needs.
type Repository interface {
	Status(ctx context.Context) (gitx.Status, error)
	StatusLines(ctx context.Context) (string, error)
	StagedDiff(ctx context.Context, contextLines int) (string, error)
	StageAll(ctx context.Context) error
	StageModified(ctx context.Context) error
	StageUntracked(ctx context.Context) error
	Commit(ctx context.Context, message string) (string, error)
}

// Generator turns a conversation into a commit message. A blank model uses
// the configured default.
type Generator interface {
	Generate(ctx context.Context, conv prompt.Conversation, model string) (string, error)
}

type Deps struct {
	Repo     Repository
	Gen      Generator
	Prompter interact.Prompter
	Config   config.AppConfig
	Out      io.Writer
}

type Options struct {
	All     bool   // stage everything before reading status
	Yes     bool   // accept the generated message without asking
	Model   string // overrides the configured model
	Context string // extra guidance for the model

	// NonInteractive skips the staging prompts; there is no terminal to ask.
	NonInteractive bool
	// HookFile receives the accepted message instead of a commit being made.
	HookFile string
}

type Outcome int

const (
	OutcomeNothingToCommit Outcome = iota
	OutcomeCommitted
	OutcomeCancelled
	OutcomeHookWritten
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeHookWritten:
		return "hook-written"
	default:
		return "nothing-to-commit"
	}
}

type Result struct {
	Outcome Outcome
	Hash    string // set for OutcomeCommitted
	Message string // the message committed or written
}

// Decision options, in display order.
var decisionOptions = []string{"Commit", "Edit message", "Cancel"}

const (
	choiceCommit = iota
	choiceEdit
	choiceCancel
)

// ErrHookCancelled makes the prepare-commit-msg hook exit non-zero so git
// aborts the commit.
var ErrHookCancelled = errors.New("commit cancelled by user")

// Run stages when asked, generates a message for the staged changes and
// resolves it to a commit, a cancel or a no-op. Failures are returned as is;
// nothing is undone.
func Run(ctx context.Context, d Deps, opts Options) (Result, error) {
	logger := otelzap.Ctx(ctx)
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	cfg := d.Config

	if opts.All || cfg.Git.AutoStage {
		if err := d.Repo.StageAll(ctx); err != nil {
			return Result{}, err
		}
		fmt.Fprintln(out, interact.Success("✓ Staged all files"))
	}

	ready, err := ensureStaged(ctx, d, opts, out)
	if err != nil || !ready {
		return Result{}, err
	}
	if opts.NonInteractive && !opts.Yes {
		return Result{}, errors.WithHint(errors.New("no terminal to confirm the commit"), "pass --yes to commit without confirmation")
	}

	diff, err := d.Repo.StagedDiff(ctx, cfg.Git.DiffContext)
	if err != nil {
		return Result{}, err
	}
	if cfg.UI.ShowDiff {
		fmt.Fprintln(out)
		fmt.Fprintln(out, interact.Heading("Staged changes:"))
		fmt.Fprintln(out, diff)
	}

	status, err := d.Repo.StatusLines(ctx)
	if err != nil {
		return Result{}, err
	}
	conv := Conversation(cfg, status, diff, opts.Context)

	stop := d.Prompter.Spin("Generating commit message...")
	msg, err := d.Gen.Generate(ctx, conv, opts.Model)
	stop()
	if err != nil {
		return Result{}, err
	}
	logger.Debug("Commit message generated", zap.Int("length", len(msg)))

	fmt.Fprintln(out)
	fmt.Fprintln(out, interact.MessageBox(msg))
	if cfg.Git.ConventionalCommits && !prompt.IsConventional(msg) {
		fmt.Fprintln(out, interact.Warn("Warning: the message does not follow the Conventional Commits format"))
	}

	final, accepted, err := decide(d, opts, msg)
	if err != nil {
		return Result{}, err
	}
	if !accepted {
		fmt.Fprintln(out, interact.Warn("Commit cancelled"))
		if opts.HookFile != "" {
			return Result{Outcome: OutcomeCancelled}, ErrHookCancelled
		}
		return Result{Outcome: OutcomeCancelled}, nil
	}

	if opts.HookFile != "" {
		if err := os.WriteFile(opts.HookFile, []byte(final+"\n"), 0o644); err != nil {
			return Result{}, errors.Wrap(err, "write hook message file")
		}
		fmt.Fprintln(out, interact.Success("✓ Message written for git"))
		return Result{Outcome: OutcomeHookWritten, Message: final}, nil
	}

	hash, err := d.Repo.Commit(ctx, final)
	if err != nil {
		return Result{}, err
	}
	logger.Info("Committed", zap.String("hash", hash))
	if final != msg {
		fmt.Fprintln(out, interact.Success("✓ Committed successfully with edited message")+" "+interact.Dim(short(hash)))
	} else {
		fmt.Fprintln(out, interact.Success("✓ Committed successfully")+" "+interact.Dim(short(hash)))
	}
	return Result{Outcome: OutcomeCommitted, Hash: hash, Message: final}, nil
}

// ensureStaged reports whether there is something staged to commit, offering
// to stage modified and untracked files when the index is clean.
func ensureStaged(ctx context.Context, d Deps, opts Options, out io.Writer) (bool, error) {
	st, err := d.Repo.Status(ctx)
	if err != nil {
		return false, err
	}
	if len(st.Staged) > 0 {
		return true, nil
	}
	if st.Empty() {
		fmt.Fprintln(out, interact.Warn("No changes to commit"))
		return false, nil
	}
	if opts.NonInteractive {
		fmt.Fprintln(out, interact.Warn("No staged changes to commit"))
		return false, nil
	}

	if len(st.Modified) > 0 {
		ok, err := d.Prompter.Confirm("Stage modified files?", true)
		if err != nil {
			return false, err
		}
		if ok {
			if err := d.Repo.StageModified(ctx); err != nil {
				return false, err
			}
			fmt.Fprintln(out, interact.Success("✓ Staged modified files"))
		}
	}
	if len(st.Untracked) > 0 {
		ok, err := d.Prompter.Confirm("Stage untracked files?", false)
		if err != nil {
			return false, err
		}
		if ok {
			if err := d.Repo.StageUntracked(ctx); err != nil {
				return false, err
			}
			fmt.Fprintln(out, interact.Success("✓ Staged untracked files"))
		}
	}

	st, err = d.Repo.Status(ctx)
	if err != nil {
		return false, err
	}
	if len(st.Staged) == 0 {
		fmt.Fprintln(out, interact.Warn("No staged changes to commit"))
		return false, nil
	}
	return true, nil
}

// decide resolves the generated message to the text to commit. Precedence:
// --yes, then the interactive menu, then a yes/no confirmation.
func decide(d Deps, opts Options, msg string) (string, bool, error) {
	switch {
	case opts.Yes:
		return msg, true, nil

	case d.Config.UI.Interactive:
		choice, err := d.Prompter.Select("What would you like to do?", decisionOptions)
		if err != nil {
			return "", false, err
		}
		switch choice {
		case choiceCommit:
			return msg, true, nil
		case choiceEdit:
			edited, ok, err := d.Prompter.EditText(msg)
			if err != nil {
				return "", false, err
			}
			edited = strings.TrimSpace(edited)
			if !ok || edited == "" {
				return "", false, nil
			}
			return edited, true, nil
		default: // choiceCancel, or the menu was aborted
			return "", false, nil
		}

	default:
		ok, err := d.Prompter.Confirm("Commit with this message?", true)
		if err != nil {
			return "", false, err
		}
		return msg, ok, nil
	}
}

// Conversation builds the prompt for the staged changes, falling back to the
// built-in system prompt when the configured one is blank.
func Conversation(cfg config.AppConfig, status, diff, extra string) prompt.Conversation {
	system := cfg.Prompts.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = prompt.DefaultSystemPrompt
	}
	return prompt.Build(system, status, diff, extra)
}

func short(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
