package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghonghuy/commitgen/internal/config"
	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/gitx"
	"github.com/hoanghonghuy/commitgen/internal/interact"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

type stubGen struct {
	answer string
	err    error

	calls int
	conv  prompt.Conversation
	model string
}

func (g *stubGen) Generate(_ context.Context, conv prompt.Conversation, model string) (string, error) {
	g.calls++
	g.conv = conv
	g.model = model
	return g.answer, g.err
}

// fakeRepo serves statuses in order, repeating the last one.
type fakeRepo struct {
	statuses []gitx.Status
	lines    string
	diff     string

	contextLines int
	staged       []string
	committed    []string
	commitErr    error
}

func (r *fakeRepo) Status(context.Context) (gitx.Status, error) {
	st := r.statuses[0]
	if len(r.statuses) > 1 {
		r.statuses = r.statuses[1:]
	}
	return st, nil
}

func (r *fakeRepo) StatusLines(context.Context) (string, error) { return r.lines, nil }

func (r *fakeRepo) StagedDiff(_ context.Context, contextLines int) (string, error) {
	r.contextLines = contextLines
	return r.diff, nil
}

func (r *fakeRepo) StageAll(context.Context) error {
	r.staged = append(r.staged, "all")
	return nil
}

func (r *fakeRepo) StageModified(context.Context) error {
	r.staged = append(r.staged, "modified")
	return nil
}

func (r *fakeRepo) StageUntracked(context.Context) error {
	r.staged = append(r.staged, "untracked")
	return nil
}

func (r *fakeRepo) Commit(_ context.Context, msg string) (string, error) {
	if r.commitErr != nil {
		return "", r.commitErr
	}
	r.committed = append(r.committed, msg)
	return "0123456789abcdef0123456789abcdef01234567", nil
}

func stagedRepo() *fakeRepo {
	return &fakeRepo{
		statuses: []gitx.Status{{Staged: []string{"a.go"}}},
		lines:    "M  a.go\n",
		diff:     "-old\n+new\n",
	}
}

func testConfig() config.AppConfig {
	cfg := config.Default()
	cfg.UI.ShowDiff = false
	return cfg
}

func TestRunAutoAcceptOnUnbornBranch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	gcfg, err := r.Config()
	require.NoError(t, err)
	gcfg.User.Name = "Test User"
	gcfg.User.Email = "test@example.com"
	require.NoError(t, r.SetConfig(gcfg))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o644))

	repo, err := gitx.Open(dir)
	require.NoError(t, err)

	gen := &stubGen{answer: "feat: add a.txt"}
	script := &interact.Script{}
	var out bytes.Buffer

	res, err := Run(ctx, Deps{Repo: repo, Gen: gen, Prompter: script, Config: testConfig(), Out: &out},
		Options{All: true, Yes: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Equal(t, 1, gen.calls)

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, res.Hash, head.Hash().String())
	c, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "feat: add a.txt", c.Message)
	assert.Equal(t, 0, c.NumParents())

	var all strings.Builder
	for _, m := range gen.conv {
		all.WriteString(m.Content)
	}
	assert.Contains(t, all.String(), "A  a.txt")
	assert.Contains(t, all.String(), "+hello")
	assert.Equal(t, []string{"spin Generating commit message..."}, script.Calls)
}

func TestRunNothingToCommit(t *testing.T) {
	repo := &fakeRepo{statuses: []gitx.Status{{}}}
	gen := &stubGen{}
	var out bytes.Buffer

	res, err := Run(context.Background(), Deps{Repo: repo, Gen: gen, Prompter: &interact.Script{}, Config: testConfig(), Out: &out}, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToCommit, res.Outcome)
	assert.Zero(t, gen.calls)
	assert.Contains(t, out.String(), "No changes to commit")
}

func TestRunDecliningStagingPrompts(t *testing.T) {
	unstaged := gitx.Status{Modified: []string{"m.go"}, Untracked: []string{"u.go"}}
	repo := &fakeRepo{statuses: []gitx.Status{unstaged}}
	gen := &stubGen{answer: "feat: x"}
	script := &interact.Script{Confirms: []bool{false, false}}
	var out bytes.Buffer

	res, err := Run(context.Background(), Deps{Repo: repo, Gen: gen, Prompter: script, Config: testConfig(), Out: &out}, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToCommit, res.Outcome)
	assert.Zero(t, gen.calls)
	assert.Empty(t, repo.staged)
	assert.Empty(t, repo.committed)
	assert.Equal(t, []string{
		`confirm "Stage modified files?" default=true`,
		`confirm "Stage untracked files?" default=false`,
	}, script.Calls)
}

func TestRunStagesOnConfirm(t *testing.T) {
	unstaged := gitx.Status{Modified: []string{"m.go"}, Untracked: []string{"u.go"}}
	repo := &fakeRepo{statuses: []gitx.Status{unstaged, {Staged: []string{"m.go", "u.go"}}}}
	gen := &stubGen{answer: "feat: x"}
	script := &interact.Script{Confirms: []bool{true, true}}

	res, err := Run(context.Background(), Deps{Repo: repo, Gen: gen, Prompter: script, Config: testConfig(), Out: &bytes.Buffer{}}, Options{Yes: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Equal(t, []string{"modified", "untracked"}, repo.staged)
	assert.Equal(t, []string{"feat: x"}, repo.committed)
}

func TestRunDecision(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		script      interact.Script
		want        Outcome
		committed   []string
	}{
		{
			name:        "commit",
			interactive: true,
			script:      interact.Script{Selects: []int{0}},
			want:        OutcomeCommitted,
			committed:   []string{"feat: generated"},
		},
		{
			name:        "edit",
			interactive: true,
			script:      interact.Script{Selects: []int{1}, Edits: []interact.Edit{{Text: "fix: edited\n", OK: true}}},
			want:        OutcomeCommitted,
			committed:   []string{"fix: edited"},
		},
		{
			name:        "edit to empty",
			interactive: true,
			script:      interact.Script{Selects: []int{1}, Edits: []interact.Edit{{Text: "  \n", OK: true}}},
			want:        OutcomeCancelled,
		},
		{
			name:        "edit aborted",
			interactive: true,
			script:      interact.Script{Selects: []int{1}, Edits: []interact.Edit{{Text: "fix: ignored", OK: false}}},
			want:        OutcomeCancelled,
		},
		{
			name:        "cancel",
			interactive: true,
			script:      interact.Script{Selects: []int{2}},
			want:        OutcomeCancelled,
		},
		{
			name:        "menu aborted",
			interactive: true,
			script:      interact.Script{Selects: []int{-1}},
			want:        OutcomeCancelled,
		},
		{
			name:      "confirm yes",
			script:    interact.Script{Confirms: []bool{true}},
			want:      OutcomeCommitted,
			committed: []string{"feat: generated"},
		},
		{
			name:   "confirm no",
			script: interact.Script{Confirms: []bool{false}},
			want:   OutcomeCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := stagedRepo()
			cfg := testConfig()
			cfg.UI.Interactive = tt.interactive
			script := tt.script
			var out bytes.Buffer

			res, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: generated"}, Prompter: &script, Config: cfg, Out: &out}, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Equal(t, tt.committed, repo.committed)
			assert.False(t, script.Pending())
			if tt.want == OutcomeCancelled {
				assert.Contains(t, out.String(), "Commit cancelled")
			}
		})
	}
}

func TestRunConfirmDefaultsToYes(t *testing.T) {
	cfg := testConfig()
	cfg.UI.Interactive = false
	script := &interact.Script{Confirms: []bool{true}}

	_, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: &stubGen{answer: "feat: x"}, Prompter: script, Config: cfg, Out: &bytes.Buffer{}}, Options{})
	require.NoError(t, err)
	assert.Contains(t, script.Calls, `confirm "Commit with this message?" default=true`)
}

func TestRunYesTakesPrecedence(t *testing.T) {
	repo := stagedRepo()
	script := &interact.Script{}

	res, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: x"}, Prompter: script, Config: testConfig(), Out: &bytes.Buffer{}}, Options{Yes: true, Model: "gpt-4.1", Context: "refactor only"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Equal(t, []string{"spin Generating commit message..."}, script.Calls)
}

func TestRunPassesModelAndContext(t *testing.T) {
	gen := &stubGen{answer: "feat: x"}

	_, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: gen, Prompter: &interact.Script{}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{Yes: true, Model: "gpt-4.1", Context: "refactor only"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", gen.model)
	require.Len(t, gen.conv, 5)
	assert.Equal(t, "Context: refactor only\n\n", gen.conv[1].Content)
	assert.Equal(t, prompt.Directive, gen.conv[4].Content)
}

func TestRunShowsDiff(t *testing.T) {
	cfg := testConfig()
	cfg.UI.ShowDiff = true
	var out bytes.Buffer

	_, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: &stubGen{answer: "feat: x"}, Prompter: &interact.Script{}, Config: cfg, Out: &out}, Options{Yes: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Staged changes:")
	assert.Contains(t, out.String(), "+new")
}

func TestRunUsesConfiguredDiffContext(t *testing.T) {
	cfg := testConfig()
	cfg.Git.DiffContext = 7
	repo := stagedRepo()

	_, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: x"}, Prompter: &interact.Script{}, Config: cfg, Out: &bytes.Buffer{}}, Options{Yes: true})
	require.NoError(t, err)
	assert.Equal(t, 7, repo.contextLines)
}

func TestRunConventionalWarning(t *testing.T) {
	tests := []struct {
		msg  string
		warn bool
	}{
		{"feat(app): add thing", false},
		{"Added a thing", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		_, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: &stubGen{answer: tt.msg}, Prompter: &interact.Script{}, Config: testConfig(), Out: &out}, Options{Yes: true})
		require.NoError(t, err)
		assert.Equal(t, tt.warn, strings.Contains(out.String(), "Conventional Commits"), tt.msg)
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	t.Run("generator", func(t *testing.T) {
		repo := stagedRepo()
		genErr := errors.Mark(errors.New("boom"), errs.ErrNoResponse)

		_, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{err: genErr}, Prompter: &interact.Script{}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{Yes: true})
		assert.True(t, errors.Is(err, errs.ErrNoResponse))
		assert.Empty(t, repo.committed)
	})

	t.Run("commit", func(t *testing.T) {
		repo := stagedRepo()
		repo.commitErr = errs.VersionControl(errors.New("locked"), "commit")

		_, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: x"}, Prompter: &interact.Script{}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{Yes: true})
		assert.True(t, errors.Is(err, errs.ErrVersionControl))
	})

	t.Run("prompter", func(t *testing.T) {
		repo := stagedRepo()
		// An empty script fails the decision menu.
		_, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: x"}, Prompter: &interact.Script{}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{})
		require.Error(t, err)
		assert.Empty(t, repo.committed)
	})
}

func TestRunNonInteractive(t *testing.T) {
	t.Run("nothing staged", func(t *testing.T) {
		repo := &fakeRepo{statuses: []gitx.Status{{Modified: []string{"m.go"}}}}
		script := &interact.Script{}

		res, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{}, Prompter: script, Config: testConfig(), Out: &bytes.Buffer{}}, Options{NonInteractive: true})
		require.NoError(t, err)
		assert.Equal(t, OutcomeNothingToCommit, res.Outcome)
		assert.Empty(t, script.Calls)
	})

	t.Run("requires yes", func(t *testing.T) {
		gen := &stubGen{answer: "feat: x"}
		_, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: gen, Prompter: &interact.Script{}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{NonInteractive: true})
		require.Error(t, err)
		assert.Zero(t, gen.calls)
	})

	t.Run("with yes", func(t *testing.T) {
		res, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: &stubGen{answer: "feat: x"}, Prompter: &interact.Script{}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{NonInteractive: true, Yes: true})
		require.NoError(t, err)
		assert.Equal(t, OutcomeCommitted, res.Outcome)
	})
}

func TestRunAutoStageSetting(t *testing.T) {
	cfg := testConfig()
	cfg.Git.AutoStage = true
	repo := stagedRepo()

	_, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: x"}, Prompter: &interact.Script{}, Config: cfg, Out: &bytes.Buffer{}}, Options{Yes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"all"}, repo.staged)
}

func TestRunHookFile(t *testing.T) {
	hookFile := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")

	t.Run("accepted", func(t *testing.T) {
		repo := stagedRepo()
		res, err := Run(context.Background(), Deps{Repo: repo, Gen: &stubGen{answer: "feat: hooked"}, Prompter: &interact.Script{Selects: []int{0}}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{HookFile: hookFile})
		require.NoError(t, err)
		assert.Equal(t, OutcomeHookWritten, res.Outcome)
		assert.Empty(t, repo.committed)

		b, err := os.ReadFile(hookFile)
		require.NoError(t, err)
		assert.Equal(t, "feat: hooked\n", string(b))
	})

	t.Run("cancelled", func(t *testing.T) {
		_, err := Run(context.Background(), Deps{Repo: stagedRepo(), Gen: &stubGen{answer: "feat: hooked"}, Prompter: &interact.Script{Selects: []int{2}}, Config: testConfig(), Out: &bytes.Buffer{}}, Options{HookFile: hookFile})
		assert.True(t, errors.Is(err, ErrHookCancelled))
	})
}

func TestConversationFallsBackToDefaultPrompt(t *testing.T) {
	cfg := testConfig()
	cfg.Prompts.SystemPrompt = "  "
	conv := Conversation(cfg, "A  a", "", "")
	assert.Equal(t, prompt.DefaultSystemPrompt, conv[0].Content)

	cfg.Prompts.SystemPrompt = "custom"
	assert.Equal(t, "custom", Conversation(cfg, "A  a", "", "")[0].Content)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "committed", OutcomeCommitted.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "nothing-to-commit", OutcomeNothingToCommit.String())
	assert.Equal(t, "hook-written", OutcomeHookWritten.String())
}
