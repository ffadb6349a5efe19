package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/errs"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

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

func (c *Client) Name() string { return "gemini" }

func (c *Client) Capabilities() ai.Capabilities {
	return ai.Capabilities{Temperature: true, MaxTokens: true}
}

// Minimal Gemini API structs
type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	turns := req.Conversation.Turns()
	contents := make([]content, 0, len(turns))
	for _, m := range turns {
		contents = append(contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
	}

	reqBody := generateContentRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     req.Options.Temperature,
			MaxOutputTokens: req.Options.MaxTokens,
		},
	}
	if sys := req.Conversation.System(); sys != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: sys}}}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(req.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "gemini request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "gemini read response")
	}

	var genResp generateContentResponse
	decodeErr := json.Unmarshal(body, &genResp)

	if resp.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(string(body))
		if decodeErr == nil && genResp.Error != nil {
			detail = genResp.Error.Message
		}
		err := errors.Newf("gemini API error (status %d): %s", resp.StatusCode, detail)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", errs.Authentication(err)
		}
		return "", err
	}
	if decodeErr != nil {
		return "", errors.Wrap(decodeErr, "decode response")
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", errs.ErrNoResponse
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
