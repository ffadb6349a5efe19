// Package gitx inspects and mutates a single git working tree through go-git:
// discovery, status classification, staging, staged diff and commit creation.
package gitx

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/errs"
)

// Repo is an opened repository. It is owned by one command invocation and
// keeps no state between calls: every query re-reads the index and worktree.
type Repo struct {
	repo *git.Repository
	wt   *git.Worktree
}

// Open discovers the repository containing path, walking up parent directories.
func Open(path string) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.VersionControl(err, "open")
	}

	r, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		// path may itself be a bare repository
		r, err = git.PlainOpen(abs)
	}
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, errors.WithHint(errs.ErrNotInRepository, "run commitgen inside a git working tree")
	}
	if err != nil {
		return nil, errs.VersionControl(err, "open")
	}

	wt, err := r.Worktree()
	if err != nil && !errors.Is(err, git.ErrIsBareRepository) {
		return nil, errs.VersionControl(err, "worktree")
	}
	return &Repo{repo: r, wt: wt}, nil
}

// IsUsable reports whether the repository has a working tree to diff and commit against.
func (r *Repo) IsUsable() bool {
	return r.wt != nil
}

// Root is the top of the working tree.
func (r *Repo) Root() string {
	if r.wt == nil {
		return ""
	}
	return r.wt.Filesystem.Root()
}

// GitDir is the repository's .git directory, or "" when the storage is not on disk.
func (r *Repo) GitDir() string {
	if s, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return s.Filesystem().Root()
	}
	return ""
}

// Branch returns the short name of the branch HEAD points at, even when unborn.
func (r *Repo) Branch() string {
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return ""
	}
	if ref.Type() == plumbing.SymbolicReference {
		return ref.Target().Short()
	}
	return ref.Name().Short()
}

// Commit writes the index as a new commit on the current branch. The commit
// has no parent on an unborn branch and HEAD as its only parent otherwise.
func (r *Repo) Commit(ctx context.Context, message string) (string, error) {
	logger := otelzap.Ctx(ctx)
	if !r.IsUsable() {
		return "", errs.VersionControl(git.ErrIsBareRepository, "commit")
	}

	sig, err := r.signature()
	if err != nil {
		return "", err
	}

	var parents []plumbing.Hash
	head, err := r.repo.Head()
	switch {
	case err == nil:
		parents = []plumbing.Hash{head.Hash()}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		logger.Debug("Committing on unborn branch")
	default:
		return "", errs.VersionControl(err, "resolve HEAD")
	}

	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   parents,
	})
	if err != nil {
		return "", errs.VersionControl(err, "commit")
	}

	logger.Debug("Commit created",
		zap.String("hash", hash.String()),
		zap.Int("parents", len(parents)))
	return hash.String(), nil
}

// signature reads user.name and user.email, local config taking precedence over global.
func (r *Repo) signature() (*object.Signature, error) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return nil, errs.VersionControl(err, "read config")
	}
	name, email := cfg.User.Name, cfg.User.Email
	if name == "" {
		name = cfg.Author.Name
	}
	if email == "" {
		email = cfg.Author.Email
	}
	if name == "" || email == "" {
		err := errs.VersionControl(errors.New("user.name and user.email are not configured"), "signature")
		return nil, errors.WithHint(err, `set them with: git config user.name "You" && git config user.email you@example.com`)
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}, nil
}
