package interact

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Edit is one scripted answer to EditText.
type Edit struct {
	Text string
	OK   bool
}

// Script answers prompts from fixed queues and records every call. Running
// out of answers is an error so unexpected prompts fail tests.
type Script struct {
	Confirms []bool
	Selects  []int
	Edits    []Edit

	Calls []string
}

var _ Prompter = (*Script)(nil)
var _ Prompter = (*Terminal)(nil)

func (s *Script) Confirm(title string, def bool) (bool, error) {
	s.Calls = append(s.Calls, fmt.Sprintf("confirm %q default=%t", title, def))
	if len(s.Confirms) == 0 {
		return false, errors.Newf("unexpected confirm %q", title)
	}
	v := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return v, nil
}

func (s *Script) Select(title string, options []string) (int, error) {
	s.Calls = append(s.Calls, fmt.Sprintf("select %q %v", title, options))
	if len(s.Selects) == 0 {
		return -1, errors.Newf("unexpected select %q", title)
	}
	v := s.Selects[0]
	s.Selects = s.Selects[1:]
	return v, nil
}

func (s *Script) EditText(initial string) (string, bool, error) {
	s.Calls = append(s.Calls, fmt.Sprintf("edit %q", initial))
	if len(s.Edits) == 0 {
		return "", false, errors.New("unexpected edit")
	}
	e := s.Edits[0]
	s.Edits = s.Edits[1:]
	return e.Text, e.OK, nil
}

func (s *Script) Spin(label string) func() {
	s.Calls = append(s.Calls, "spin "+label)
	return func() {}
}

// Pending reports whether scripted answers were left unused.
func (s *Script) Pending() bool {
	return len(s.Confirms)+len(s.Selects)+len(s.Edits) > 0
}
