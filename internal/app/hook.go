package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/interact"
)

const hookName = "prepare-commit-msg"

const hookScript = `#!/bin/sh
# commitgen hook: generates the commit message for a plain "git commit".
# $1 is the message file, $2 the message source.

COMMIT_MSG_FILE=$1
COMMIT_SOURCE=$2

# -m, -F, merges, squashes and amends already have a message.
if [ -n "$COMMIT_SOURCE" ]; then
  exit 0
fi

exec "%s" --hook "$COMMIT_MSG_FILE" < /dev/tty > /dev/tty
`

// InstallHook writes the prepare-commit-msg hook into gitDir/hooks. An
// existing hook is never overwritten.
func InstallHook(gitDir, exe string, out io.Writer) (string, error) {
	if gitDir == "" {
		return "", errors.New("repository has no git directory")
	}
	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create hooks dir")
	}

	hookPath := filepath.Join(hooksDir, hookName)
	if _, err := os.Stat(hookPath); err == nil {
		return "", errors.WithHint(errors.Newf("hook %s already exists", hookPath), "remove it first to install the commitgen hook")
	}

	if exe == "" {
		exe = executable()
	}
	if err := os.WriteFile(hookPath, []byte(fmt.Sprintf(hookScript, exe)), 0o755); err != nil {
		return "", errors.Wrap(err, "write hook file")
	}

	if out != nil {
		fmt.Fprintln(out, interact.Success("✓ Hook installed to "+hookPath))
	}
	return hookPath, nil
}

func executable() string {
	exe, err := os.Executable()
	if err != nil {
		return "commitgen"
	}
	if abs, err := filepath.Abs(exe); err == nil {
		return abs
	}
	return exe
}
