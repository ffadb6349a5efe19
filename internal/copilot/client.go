// Package copilot implements the GitHub Copilot provider. Unlike the other
// providers it needs a session: a GitHub token is exchanged for a short-lived
// Copilot token before the chat call. Only the model and messages are sent;
// temperature and token budget are not forwarded.
package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/errs"
)

const (
	DefaultTokenURL = "https://api.github.com/copilot_internal/v2/token"
	DefaultBaseURL  = "https://api.githubcopilot.com"
	editorVersion   = "commitgen/0.1.0"
	integrationID   = "vscode-chat"
)

// TokenEnv lists the variables searched for a GitHub token, in order.
var TokenEnv = []string{"GH_COPILOT_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"}

type Config struct {
	GitHubToken string // falls back to TokenEnv when empty
	TokenURL    string
	BaseURL     string
}

type Client struct {
	githubToken string
	tokenURL    string
	baseURL     string
	http        *http.Client
}

func New(cfg Config) *Client {
	c := &Client{
		githubToken: strings.TrimSpace(cfg.GitHubToken),
		tokenURL:    strings.TrimSpace(cfg.TokenURL),
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:        &http.Client{},
	}
	if c.tokenURL == "" {
		c.tokenURL = DefaultTokenURL
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

func (c *Client) Name() string { return "github" }

func (c *Client) Capabilities() ai.Capabilities { return ai.Capabilities{} }

type session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	s, err := c.session(ctx)
	if err != nil {
		return "", err
	}

	msgs := make([]message, 0, len(req.Conversation))
	for _, m := range req.Conversation {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}
	payload, err := json.Marshal(chatRequest{Model: req.Model, Messages: msgs})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.Token)
	httpReq.Header.Set("Editor-Version", editorVersion)
	httpReq.Header.Set("Copilot-Integration-Id", integrationID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "copilot request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := errors.Newf("copilot API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", errs.Authentication(err)
		}
		return "", err
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if len(out.Choices) == 0 {
		return "", errs.ErrNoResponse
	}
	return out.Choices[0].Message.Content, nil
}

// session exchanges the GitHub token for a Copilot session token.
func (c *Client) session(ctx context.Context) (*session, error) {
	ghToken := c.githubToken
	if ghToken == "" {
		ghToken = tokenFromEnv()
	}
	if ghToken == "" {
		err := errs.Authentication(errors.New("no GitHub token found"))
		return nil, errors.WithHintf(err, "export one of %s, or run: commitgen config set-api-key <token>", strings.Join(TokenEnv, ", "))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create token request")
	}
	httpReq.Header.Set("Authorization", "token "+ghToken)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Editor-Version", editorVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errs.Authentication(errors.Wrap(err, "copilot token exchange"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errs.Authentication(errors.Newf("copilot token exchange (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var s session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, errs.Authentication(errors.Wrap(err, "decode copilot token"))
	}
	if s.Token == "" {
		return nil, errs.Authentication(errors.New("copilot token exchange returned no token"))
	}

	otelzap.Ctx(ctx).Debug("Copilot session acquired", zap.Int64("expires_at", s.ExpiresAt))
	return &s, nil
}

func tokenFromEnv() string {
	for _, k := range TokenEnv {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
