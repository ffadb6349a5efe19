package ollama

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

const DefaultBaseURL = "http://localhost:11434"

// Config holds Ollama specific settings
type Config struct {
	BaseURL string // e.g. "http://localhost:11434"
}

// Client implements ai.Provider for a local Ollama server.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (c *Client) Name() string { return "ollama" }

func (c *Client) Capabilities() ai.Capabilities {
	return ai.Capabilities{Temperature: true, MaxTokens: true}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message *message `json:"message"`
	Done    bool     `json:"done"`
	Error   string   `json:"error,omitempty"`
}

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	msgs := make([]message, 0, len(req.Conversation))
	for _, m := range req.Conversation {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}

	b, err := json.Marshal(chatRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   false,
		Options: options{
			Temperature: req.Options.Temperature,
			NumPredict:  req.Options.MaxTokens,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.WithHint(errors.Wrap(err, "ollama request failed"), "is `ollama serve` running?")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Newf("ollama API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if chatResp.Error != "" {
		return "", errors.Newf("ollama error: %s", chatResp.Error)
	}
	if chatResp.Message == nil {
		return "", errs.ErrNoResponse
	}
	return chatResp.Message.Content, nil
}
