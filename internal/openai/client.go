// Package openai talks to any OpenAI-compatible chat completions endpoint.
// It backs the openai, groq, deepseek, xai and cohere providers.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/errs"
)

// BaseURLs maps each provider served by this package to its default endpoint.
var BaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"groq":     "https://api.groq.com/openai/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"xai":      "https://api.x.ai/v1",
	"cohere":   "https://api.cohere.ai/compatibility/v1",
}

type Config struct {
	Provider string // one of the BaseURLs keys, "openai" when empty
	BaseURL  string // overrides the provider default
	APIKey   string
}

type Client struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg Config) *Client {
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = BaseURLs[name]
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{},
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Capabilities() ai.Capabilities {
	return ai.Capabilities{Temperature: true, MaxTokens: true}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	msgs := make([]message, 0, len(req.Conversation))
	for _, m := range req.Conversation {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(chatReq{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Options.Temperature,
		MaxTokens:   req.Options.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.Wrapf(err, "%s request failed", c.name)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "%s read response", c.name)
	}

	var out chatResp
	if err := json.Unmarshal(b, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", errors.Newf("%s API error (status %d): %s", c.name, resp.StatusCode, strings.TrimSpace(string(b)))
		}
		return "", errors.Wrapf(err, "%s decode response", c.name)
	}
	if out.Error != nil {
		err := errors.Newf("%s API error (status %d): %s (%s)", c.name, resp.StatusCode, out.Error.Message, out.Error.Type)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", errs.Authentication(err)
		}
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("%s API error (status %d): %s", c.name, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if len(out.Choices) == 0 {
		return "", errs.ErrNoResponse
	}
	return out.Choices[0].Message.Content, nil
}
