package gitx

import (
	"context"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/errs"
)

// StatusFlag is a per-path bitset of index and worktree changes.
type StatusFlag uint16

const (
	IndexNew StatusFlag = 1 << iota
	IndexModified
	IndexDeleted
	IndexRenamed
	IndexTypeChange
	WorktreeNew
	WorktreeModified
	WorktreeDeleted
	WorktreeRenamed
	WorktreeTypeChange
	Ignored
)

const (
	indexMask    = IndexNew | IndexModified | IndexDeleted | IndexRenamed | IndexTypeChange
	worktreeMask = WorktreeModified | WorktreeDeleted | WorktreeRenamed | WorktreeTypeChange
)

// Has reports whether every bit of f2 is set.
func (f StatusFlag) Has(f2 StatusFlag) bool { return f&f2 == f2 }

// Entry is one path reported by status.
type Entry struct {
	Path  string
	Flags StatusFlag
}

// Status groups paths by category. A path may be both staged and modified
// (or untracked) when the index and worktree changed independently.
type Status struct {
	Staged    []string
	Modified  []string
	Untracked []string
}

// Empty reports whether there is nothing at all to commit or stage.
func (s Status) Empty() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}

// Classify maps status flags to categories. Ignored entries are dropped.
func Classify(entries []Entry) Status {
	st := Status{Staged: []string{}, Modified: []string{}, Untracked: []string{}}
	for _, e := range entries {
		if e.Flags&Ignored != 0 {
			continue
		}
		if e.Flags&indexMask != 0 {
			st.Staged = append(st.Staged, e.Path)
		}
		if e.Flags&worktreeMask != 0 {
			st.Modified = append(st.Modified, e.Path)
		}
		if e.Flags&WorktreeNew != 0 {
			st.Untracked = append(st.Untracked, e.Path)
		}
	}
	return st
}

var (
	indexCodes = []struct {
		flag StatusFlag
		code byte
	}{
		{IndexNew, 'A'},
		{IndexModified, 'M'},
		{IndexDeleted, 'D'},
		{IndexRenamed, 'R'},
		{IndexTypeChange, 'T'},
	}
	worktreeCodes = []struct {
		flag StatusFlag
		code byte
	}{
		{WorktreeNew, '?'},
		{WorktreeModified, 'M'},
		{WorktreeDeleted, 'D'},
		{WorktreeRenamed, 'R'},
		{WorktreeTypeChange, 'T'},
	}
)

// ShortCode renders the two-character short status of a flag set. A path
// unknown to the index renders as "??" like git's porcelain output.
func ShortCode(f StatusFlag) string {
	idx, wt := byte(' '), byte(' ')
	for _, c := range indexCodes {
		if f&c.flag != 0 {
			idx = c.code
			break
		}
	}
	if f&WorktreeNew != 0 && f&indexMask == 0 {
		idx = '?'
	}
	for _, c := range worktreeCodes {
		if f&c.flag != 0 {
			wt = c.code
			break
		}
	}
	return string([]byte{idx, wt})
}

// StatusLines renders one "XY path" line per entry in the given order.
func StatusLines(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Flags&Ignored != 0 {
			continue
		}
		b.WriteString(ShortCode(e.Flags))
		b.WriteByte(' ')
		b.WriteString(e.Path)
		b.WriteByte('\n')
	}
	return b.String()
}

// Entries reads the current status from go-git, sorted by path.
func (r *Repo) Entries(ctx context.Context) ([]Entry, error) {
	if !r.IsUsable() {
		return nil, errs.VersionControl(git.ErrIsBareRepository, "status")
	}
	st, err := r.wt.Status()
	if err != nil {
		return nil, errs.VersionControl(err, "status")
	}

	entries := make([]Entry, 0, len(st))
	for path, fs := range st {
		flags := flagsOf(fs)
		if flags == 0 {
			continue
		}
		entries = append(entries, Entry{Path: path, Flags: flags})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	otelzap.Ctx(ctx).Debug("Git status read", zap.Int("entries", len(entries)))
	return entries, nil
}

// Status classifies a fresh status read.
func (r *Repo) Status(ctx context.Context) (Status, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Classify(entries)
	otelzap.Ctx(ctx).Debug("Git status classified",
		zap.Int("staged", len(st.Staged)),
		zap.Int("modified", len(st.Modified)),
		zap.Int("untracked", len(st.Untracked)))
	return st, nil
}

// StatusLines renders a fresh status read in short format.
func (r *Repo) StatusLines(ctx context.Context) (string, error) {
	entries, err := r.Entries(ctx)
	if err != nil {
		return "", err
	}
	return StatusLines(entries), nil
}

func flagsOf(fs *git.FileStatus) StatusFlag {
	var f StatusFlag
	switch fs.Staging {
	case git.Added, git.Copied:
		f |= IndexNew
	case git.Modified, git.UpdatedButUnmerged:
		f |= IndexModified
	case git.Deleted:
		f |= IndexDeleted
	case git.Renamed:
		f |= IndexRenamed
	}
	switch fs.Worktree {
	case git.Untracked:
		f |= WorktreeNew
	case git.Modified, git.UpdatedButUnmerged:
		f |= WorktreeModified
	case git.Deleted:
		f |= WorktreeDeleted
	case git.Renamed:
		f |= WorktreeRenamed
	}
	return f
}
