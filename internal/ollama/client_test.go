package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

func TestGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"chore: bump deps"},"done":true}`))
	}))
	defer srv.Close()

	req := ai.Request{
		Model:        "llama3.1",
		Conversation: prompt.Build("S", "M  go.mod", "", ""),
		Options:      ai.Options{Temperature: 0.7, MaxTokens: 100},
	}
	out, err := New(Config{BaseURL: srv.URL + "/"}).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "chore: bump deps", out)

	assert.False(t, got.Stream)
	assert.Equal(t, "llama3.1", got.Model)
	assert.Equal(t, 0.7, got.Options.Temperature)
	assert.Equal(t, 100, got.Options.NumPredict)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestGenerateNoMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Generate(context.Background(), ai.Request{Model: "m"})
	assert.True(t, errors.Is(err, errs.ErrNoResponse))
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New(Config{}).baseURL)
}
