package app

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/anthropic"
	"github.com/hoanghonghuy/commitgen/internal/config"
	"github.com/hoanghonghuy/commitgen/internal/copilot"
	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/gemini"
	"github.com/hoanghonghuy/commitgen/internal/ollama"
	"github.com/hoanghonghuy/commitgen/internal/openai"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

// APIKeyEnv is the fallback variable for each provider that takes an API key.
var APIKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"groq":      "GROQ_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"xai":       "XAI_API_KEY",
	"cohere":    "CO_API_KEY",
}

// NewProvider returns the client for cfg.Provider.
func NewProvider(cfg config.AIConfig) (ai.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	key := apiKey(name, cfg.APIKey)

	switch name {
	case "openai", "groq", "deepseek", "xai", "cohere":
		if key == "" && strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, missingKey(name)
		}
		return openai.New(openai.Config{Provider: name, BaseURL: cfg.BaseURL, APIKey: key}), nil
	case "anthropic":
		if key == "" {
			return nil, missingKey(name)
		}
		return anthropic.New(anthropic.Config{BaseURL: cfg.BaseURL, APIKey: key}), nil
	case "gemini":
		if key == "" {
			return nil, missingKey(name)
		}
		return gemini.New(gemini.Config{BaseURL: cfg.BaseURL, APIKey: key}), nil
	case "ollama":
		return ollama.New(ollama.Config{BaseURL: cfg.BaseURL}), nil
	case "github":
		return copilot.New(copilot.Config{GitHubToken: cfg.APIKey, BaseURL: cfg.BaseURL}), nil
	default:
		return nil, errs.UnsupportedProvider(cfg.Provider)
	}
}

// NewGateway wires the configured provider, model and sampling options.
func NewGateway(cfg config.AppConfig) (*ai.Gateway, error) {
	p, err := NewProvider(cfg.AI)
	if err != nil {
		return nil, err
	}
	return ai.NewGateway(p, cfg.AI.Model, ai.Options{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}), nil
}

// LazyGateway builds the gateway on the first Generate call, so runs that
// end before a message is needed never touch credentials.
type LazyGateway struct {
	cfg config.AppConfig
	gw  *ai.Gateway
}

func NewLazyGateway(cfg config.AppConfig) *LazyGateway {
	return &LazyGateway{cfg: cfg}
}

func (l *LazyGateway) Generate(ctx context.Context, conv prompt.Conversation, model string) (string, error) {
	if l.gw == nil {
		gw, err := NewGateway(l.cfg)
		if err != nil {
			return "", err
		}
		l.gw = gw
	}
	return l.gw.Generate(ctx, conv, model)
}

func apiKey(provider, configured string) string {
	if k := strings.TrimSpace(configured); k != "" {
		return k
	}
	if env, ok := APIKeyEnv[provider]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

func missingKey(provider string) error {
	err := errs.Authentication(errors.Newf("no API key for %s", provider))
	return errors.WithHintf(err, "run: commitgen config set-api-key <key>, or export %s", APIKeyEnv[provider])
}
