package gitx

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/errs"
)

// StageAll matches `git add -A`: new, modified and deleted paths are staged.
// Ignored paths stay out.
func (r *Repo) StageAll(ctx context.Context) error {
	n, err := r.stageMatching(ctx, WorktreeNew|worktreeMask)
	if err != nil {
		return err
	}
	otelzap.Ctx(ctx).Debug("Staged all changes", zap.Int("count", n))
	return nil
}

// StageModified matches `git add -u`: tracked paths are brought in line with
// the worktree, new paths are never added.
func (r *Repo) StageModified(ctx context.Context) error {
	n, err := r.stageMatching(ctx, worktreeMask)
	if err != nil {
		return err
	}
	otelzap.Ctx(ctx).Debug("Staged modified files", zap.Int("count", n))
	return nil
}

// StageUntracked adds only paths that are new to the repository.
func (r *Repo) StageUntracked(ctx context.Context) error {
	n, err := r.stageMatching(ctx, WorktreeNew)
	if err != nil {
		return err
	}
	otelzap.Ctx(ctx).Debug("Staged untracked files", zap.Int("count", n))
	return nil
}

// stageMatching updates the index for every entry carrying one of the
// worktree flags in mask. The index is read once and written once, so a
// failure on any path leaves it untouched.
func (r *Repo) stageMatching(ctx context.Context, mask StatusFlag) (int, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return 0, err
	}
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return 0, errs.VersionControl(err, "read index")
	}

	n := 0
	for _, e := range entries {
		f := e.Flags & mask
		if f == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, errors.WithStack(err)
		}
		if f&WorktreeDeleted != 0 {
			if _, err := idx.Remove(e.Path); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
				return 0, errs.VersionControl(err, "rm "+e.Path)
			}
		} else if err := r.addToIndex(idx, e.Path); err != nil {
			return 0, err
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}

	if err := r.repo.Storer.SetIndex(idx); err != nil {
		return 0, errs.VersionControl(err, "write index")
	}
	return n, nil
}

// addToIndex stores the worktree content of path as a blob and points the
// index entry at it, creating the entry when the path is new.
func (r *Repo) addToIndex(idx *index.Index, path string) error {
	fi, err := r.wt.Filesystem.Lstat(path)
	if err != nil {
		return errs.VersionControl(err, "stat "+path)
	}
	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil {
		return errs.VersionControl(err, "mode "+path)
	}
	h, err := r.writeBlob(path, fi)
	if err != nil {
		return err
	}

	e, err := idx.Entry(path)
	if errors.Is(err, index.ErrEntryNotFound) {
		e = idx.Add(path)
	} else if err != nil {
		return errs.VersionControl(err, "index entry "+path)
	}
	e.Hash = h
	e.Mode = mode
	e.ModifiedAt = fi.ModTime()
	e.Size = uint32(fi.Size())
	return nil
}

func (r *Repo) writeBlob(path string, fi os.FileInfo) (plumbing.Hash, error) {
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, errs.VersionControl(err, "blob "+path)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := r.wt.Filesystem.Readlink(path)
		if err != nil {
			_ = w.Close()
			return plumbing.ZeroHash, errs.VersionControl(err, "readlink "+path)
		}
		obj.SetSize(int64(len(target)))
		_, err = io.WriteString(w, target)
		if err != nil {
			_ = w.Close()
			return plumbing.ZeroHash, errs.VersionControl(err, "blob "+path)
		}
	} else {
		f, err := r.wt.Filesystem.Open(path)
		if err != nil {
			_ = w.Close()
			return plumbing.ZeroHash, errs.VersionControl(err, "open "+path)
		}
		obj.SetSize(fi.Size())
		_, err = io.Copy(w, f)
		_ = f.Close()
		if err != nil {
			_ = w.Close()
			return plumbing.ZeroHash, errs.VersionControl(err, "blob "+path)
		}
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, errs.VersionControl(err, "blob "+path)
	}

	h, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, errs.VersionControl(err, "write blob "+path)
	}
	return h, nil
}
