package anthropic

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

const (
	DefaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
	// The Messages API requires max_tokens.
	fallbackMaxTokens = 1024
)

type Config struct {
	BaseURL string
	APIKey  string
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  &http.Client{},
	}
}

func (c *Client) Name() string { return "anthropic" }

func (c *Client) Capabilities() ai.Capabilities {
	return ai.Capabilities{Temperature: true, MaxTokens: true}
}

type messageRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	// System prompt is top-level; the remaining turns are all user messages.
	turns := req.Conversation.Turns()
	msgs := make([]message, 0, len(turns))
	for _, m := range turns {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := req.Options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = fallbackMaxTokens
	}

	b, err := json.Marshal(messageRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: clampTemperature(req.Options.Temperature),
		System:      req.Conversation.System(),
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(b))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "anthropic request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		detail := strings.TrimSpace(string(body))
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			detail = er.Error.Message
		}
		err := errors.Newf("anthropic API error (status %d): %s", resp.StatusCode, detail)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", errs.Authentication(err)
		}
		return "", err
	}

	var msgResp messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", errors.Wrap(err, "decode response")
	}

	for _, part := range msgResp.Content {
		if part.Type == "" || part.Type == "text" {
			return part.Text, nil
		}
	}
	return "", errs.ErrNoResponse
}

// Anthropic accepts temperatures in [0, 1] while configuration allows up to 2.
func clampTemperature(t float64) float64 {
	if t > 1 {
		return 1
	}
	return t
}
