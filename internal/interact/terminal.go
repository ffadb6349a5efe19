package interact

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
)

// Terminal runs huh forms on the controlling terminal.
type Terminal struct {
	// Editor is the command used for external editing of a message, e.g.
	// "code --wait". Empty falls back to $EDITOR, then nano.
	Editor string
	// SpinnerOut receives the spinner frames. Nil means stderr.
	SpinnerOut io.Writer
}

func NewTerminal(editor string) *Terminal {
	return &Terminal{Editor: strings.TrimSpace(editor)}
}

func (t *Terminal) Confirm(title string, def bool) (bool, error) {
	v := def
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&v),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "confirm prompt")
	}
	return v, nil
}

func (t *Terminal) Select(title string, options []string) (int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}

	var selected int
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title(title).
			Options(opts...).
			Value(&selected),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return -1, nil
	}
	if err != nil {
		return -1, errors.Wrap(err, "select prompt")
	}
	return selected, nil
}

func (t *Terminal) EditText(initial string) (string, bool, error) {
	content := initial

	text := huh.NewText().
		Title("Edit commit message").
		Description("ctrl+e opens your editor; submit when done").
		EditorExtension("txt").
		Value(&content)
	if t.Editor != "" {
		text = text.Editor(strings.Fields(t.Editor)...)
	}

	err := huh.NewForm(huh.NewGroup(text)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "edit message")
	}
	return content, true, nil
}

func (t *Terminal) Spin(label string) func() {
	out := t.SpinnerOut
	if out == nil {
		out = os.Stderr
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + label
	s.Start()
	return s.Stop
}
