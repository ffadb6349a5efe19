// Package ai defines the provider contract and the gateway that turns a
// conversation into a commit message.
package ai

import (
	"context"

	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

// Options are the sampling settings of a request. Not every provider honours
// every field; see Capabilities.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Capabilities tells which Options fields a provider forwards to its API.
type Capabilities struct {
	Temperature bool
	MaxTokens   bool
}

// Request is immutable once built by the Gateway.
type Request struct {
	Model        string
	Conversation prompt.Conversation
	Options      Options
}

// Provider defines the interface for an AI backend (e.g. OpenAI, Ollama, Anthropic)
type Provider interface {
	// Name is the provider id used in configuration.
	Name() string
	Capabilities() Capabilities
	// Generate sends the conversation and returns the raw text of the first
	// completion. It returns errs.ErrNoResponse when there is none.
	Generate(ctx context.Context, req Request) (string, error)
}
