// Package errs holds the error taxonomy shared by every commitgen component.
//
// Callers match with errors.Is against the sentinels; the constructors mark a
// wrapped cause with its sentinel so the original detail stays printable.
package errs

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrNotInRepository           = errors.New("not in a git repository")
	ErrConfigLocationUnavailable = errors.New("configuration directory not found")
	ErrUnsupportedProvider       = errors.New("unsupported provider")
	ErrInvalidTemperature        = errors.New("invalid temperature value, must be between 0.0 and 2.0")
	ErrNoResponse                = errors.New("no response received from AI")
	ErrAuthentication            = errors.New("authentication failed")
	ErrVersionControl            = errors.New("git error")
	ErrPersistence               = errors.New("configuration persistence error")
)

// UnsupportedProvider reports a provider id outside the known set.
func UnsupportedProvider(name string) error {
	err := errors.Wrapf(ErrUnsupportedProvider, "%q", name)
	return errors.WithHint(err, "supported providers: openai, anthropic, gemini, groq, deepseek, xai, cohere, ollama, github")
}

// Authentication wraps a failed session or credential step.
func Authentication(cause error) error {
	if cause == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(cause, "authentication error"), ErrAuthentication)
}

// VersionControl wraps a go-git failure with the operation that produced it.
func VersionControl(cause error, op string) error {
	if cause == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(cause, "git %s", op), ErrVersionControl)
}

// Persistence wraps a read, write or parse failure of the configuration file.
func Persistence(cause error, op string) error {
	if cause == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(cause, "config %s", op), ErrPersistence)
}

// Hints returns the user-facing hints attached anywhere in the chain.
func Hints(err error) string {
	return errors.FlattenHints(err)
}
