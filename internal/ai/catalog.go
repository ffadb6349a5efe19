package ai

import (
	"github.com/hoanghonghuy/commitgen/internal/errs"
)

// Providers lists the supported provider ids in display order.
var Providers = []string{
	"openai",
	"anthropic",
	"gemini",
	"groq",
	"deepseek",
	"xai",
	"cohere",
	"ollama",
	"github",
}

// catalog is hand-maintained and advisory only: it feeds `commitgen models`
// and is never used to validate a configured model.
var catalog = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
	"anthropic": {"claude-3-5-sonnet-20241022", "claude-3-haiku-20240307", "claude-3-opus-20240229"},
	"gemini":    {"gemini-2.0-flash", "gemini-1.5-pro", "gemini-1.5-flash"},
	"groq":      {"llama-3.1-8b-instant", "llama-3.1-70b-versatile", "mixtral-8x7b-32768"},
	"deepseek":  {"deepseek-chat", "deepseek-coder"},
	"xai":       {"grok-beta"},
	"cohere":    {"command-r-plus", "command-r", "command-light"},
	"ollama":    {"gpt-oss:20b", "llama3.1", "qwen2.5-coder"},
	"github":    {"gpt-4.1", "gpt-4.1-mini", "gpt-4.1-nano"},
}

// ListModels returns the catalog of a provider.
func ListModels(provider string) ([]string, error) {
	models, ok := catalog[provider]
	if !ok {
		return nil, errs.UnsupportedProvider(provider)
	}
	return append([]string(nil), models...), nil
}

// IsKnown reports whether provider is one of Providers.
func IsKnown(provider string) bool {
	_, ok := catalog[provider]
	return ok
}
