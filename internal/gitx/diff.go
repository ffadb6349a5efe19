package gitx

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/errs"
)

// DefaultContextLines matches git's default hunk context.
const DefaultContextLines = 3

// StagedDiff renders the changes between HEAD's tree and the index with
// contextLines unchanged lines around each hunk. On an unborn branch the index
// is compared against the empty tree. Only hunk body lines (added, removed,
// context) are kept; file and hunk headers are dropped. Renames are not
// detected, so a moved file shows as a deletion plus an addition.
func (r *Repo) StagedDiff(ctx context.Context, contextLines int) (string, error) {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	logger := otelzap.Ctx(ctx)

	to, err := r.indexTree()
	if err != nil {
		return "", err
	}

	var from *object.Tree
	head, err := r.repo.Head()
	switch {
	case err == nil:
		c, err := r.repo.CommitObject(head.Hash())
		if err != nil {
			return "", errs.VersionControl(err, "read HEAD commit")
		}
		if from, err = c.Tree(); err != nil {
			return "", errs.VersionControl(err, "read HEAD tree")
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		if from, err = r.writeTree(&dirNode{}); err != nil {
			return "", err
		}
	default:
		return "", errs.VersionControl(err, "resolve HEAD")
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{})
	if err != nil {
		return "", errs.VersionControl(err, "diff")
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", errs.VersionControl(err, "diff patch")
	}

	var buf bytes.Buffer
	if err := diff.NewUnifiedEncoder(&buf, contextLines).Encode(patch); err != nil {
		return "", errs.VersionControl(err, "diff encode")
	}

	out := hunkLines(buf.String())
	logger.Debug("Staged diff computed",
		zap.Int("files", len(changes)),
		zap.Int("bytes", len(out)))
	return out, nil
}

// hunkLines keeps the '+', '-' and ' ' lines that sit inside hunks.
func hunkLines(patch string) string {
	var b strings.Builder
	inHunk := false
	for _, line := range strings.SplitAfter(patch, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "diff --git "):
			inHunk = false
			continue
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}
		switch line[0] {
		case '+', '-', ' ':
			b.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

type dirNode struct {
	dirs  map[string]*dirNode
	files []object.TreeEntry
}

func (d *dirNode) insert(path string, e object.TreeEntry) {
	name, rest, nested := strings.Cut(path, "/")
	if !nested {
		e.Name = name
		d.files = append(d.files, e)
		return
	}
	if d.dirs == nil {
		d.dirs = map[string]*dirNode{}
	}
	child, ok := d.dirs[name]
	if !ok {
		child = &dirNode{}
		d.dirs[name] = child
	}
	child.insert(rest, e)
}

// indexTree writes the index entries as tree objects and returns the root.
// Unmerged entries (stage 1-3) are left out.
func (r *Repo) indexTree() (*object.Tree, error) {
	if !r.IsUsable() {
		return nil, errs.VersionControl(git.ErrIsBareRepository, "read index")
	}
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, errs.VersionControl(err, "read index")
	}
	root := &dirNode{}
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		root.insert(e.Name, object.TreeEntry{Mode: e.Mode, Hash: e.Hash})
	}
	return r.writeTree(root)
}

func (r *Repo) writeTree(d *dirNode) (*object.Tree, error) {
	h, err := r.writeNode(d)
	if err != nil {
		return nil, err
	}
	t, err := r.repo.TreeObject(h)
	if err != nil {
		return nil, errs.VersionControl(err, "read tree")
	}
	return t, nil
}

func (r *Repo) writeNode(d *dirNode) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(d.files)+len(d.dirs))
	entries = append(entries, d.files...)
	for name, child := range d.dirs {
		h, err := r.writeNode(child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: h})
	}
	// git orders directories as if their name ended in '/'.
	sort.Slice(entries, func(i, j int) bool {
		return treeKey(entries[i]) < treeKey(entries[j])
	})

	obj := r.repo.Storer.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(obj); err != nil {
		return plumbing.ZeroHash, errs.VersionControl(err, "encode tree")
	}
	h, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, errs.VersionControl(err, "write tree")
	}
	return h, nil
}

func treeKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}
