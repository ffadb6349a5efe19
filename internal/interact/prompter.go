// Package interact is the boundary between the commit flow and the person at
// the terminal.
package interact

// Prompter asks the user questions. An aborted prompt (Ctrl-C, Esc) is not an
// error: Confirm answers false, Select answers -1 and EditText answers
// ok=false.
type Prompter interface {
	Confirm(title string, def bool) (bool, error)
	Select(title string, options []string) (int, error)
	// EditText opens initial for editing. ok is false when the session was
	// aborted.
	EditText(initial string) (text string, ok bool, err error)
	// Spin shows label while a slow step runs; call stop when it finishes.
	Spin(label string) (stop func())
}
