package interact

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/config"
)

var providerLabels = map[string]string{
	"openai":    "OpenAI",
	"anthropic": "Anthropic (Claude)",
	"gemini":    "Google Gemini",
	"groq":      "Groq",
	"deepseek":  "DeepSeek",
	"xai":       "xAI (Grok)",
	"cohere":    "Cohere",
	"ollama":    "Ollama (local)",
	"github":    "GitHub Copilot",
}

// EditConfig runs a form over cfg and applies the answers to it. It reports
// false, leaving cfg untouched, when the form was aborted.
func EditConfig(path string, cfg *config.AppConfig) (bool, error) {
	provider := cfg.AI.Provider
	baseURL := cfg.AI.BaseURL
	apiKey := cfg.AI.APIKey
	model := cfg.AI.Model
	tempStr := strconv.FormatFloat(cfg.AI.Temperature, 'g', -1, 64)
	maxTokensStr := strconv.Itoa(cfg.AI.MaxTokens)
	interactive := cfg.UI.Interactive
	showDiff := cfg.UI.ShowDiff
	editor := cfg.UI.Editor
	conventional := cfg.Git.ConventionalCommits
	autoStage := cfg.Git.AutoStage

	providers := make([]huh.Option[string], 0, len(ai.Providers))
	for _, p := range ai.Providers {
		providers = append(providers, huh.NewOption(providerLabels[p], p))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("commitgen configuration").
				Description("Saved to "+path),

			huh.NewSelect[string]().
				Title("AI provider").
				Options(providers...).
				Value(&provider),

			huh.NewInput().
				Title("Base URL").
				Description("Leave empty for the provider default").
				Value(&baseURL),

			huh.NewInput().
				Title("API key").
				Description("A literal key or ${ENV_VAR}").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),

			huh.NewInput().
				Title("Model").
				SuggestionsFunc(func() []string {
					models, _ := ai.ListModels(provider)
					return models
				}, &provider).
				Value(&model),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Temperature").
				Description("0.0 - 2.0").
				Value(&tempStr).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil {
						return err
					}
					if v < 0 || v > 2 {
						return fmt.Errorf("must be between 0.0 and 2.0")
					}
					return nil
				}),

			huh.NewInput().
				Title("Max tokens").
				Value(&maxTokensStr).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return err
					}
					if n <= 0 {
						return fmt.Errorf("must be positive")
					}
					return nil
				}),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Interactive menu").
				Description("Commit / Edit message / Cancel instead of a yes/no prompt").
				Value(&interactive),

			huh.NewConfirm().
				Title("Show staged diff").
				Value(&showDiff),

			huh.NewInput().
				Title("Editor").
				Description("Command for editing messages, e.g. \"code --wait\"; empty uses $EDITOR").
				Value(&editor),

			huh.NewConfirm().
				Title("Conventional Commits").
				Description("Warn when a message has no type(scope): header").
				Value(&conventional),

			huh.NewConfirm().
				Title("Stage everything before generating").
				Value(&autoStage),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, errors.Wrap(err, "config form")
	}

	cfg.AI.Provider = provider
	cfg.AI.BaseURL = baseURL
	cfg.AI.APIKey = apiKey
	cfg.AI.Model = model
	if v, err := strconv.ParseFloat(tempStr, 64); err == nil {
		cfg.AI.Temperature = v
	}
	if v, err := strconv.Atoi(maxTokensStr); err == nil {
		cfg.AI.MaxTokens = v
	}
	cfg.UI.Interactive = interactive
	cfg.UI.ShowDiff = showDiff
	cfg.UI.Editor = editor
	cfg.Git.ConventionalCommits = conventional
	cfg.Git.AutoStage = autoStage
	return true, nil
}
