package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/config"
	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, env := range APIKeyEnv {
		t.Setenv(env, "")
	}
}

func TestNewProviderSelectsVariant(t *testing.T) {
	clearKeyEnv(t)
	for _, name := range ai.Providers {
		t.Run(name, func(t *testing.T) {
			p, err := NewProvider(config.AIConfig{Provider: name, APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
		})
	}
}

func TestNewProviderUnsupported(t *testing.T) {
	_, err := NewProvider(config.AIConfig{Provider: "bard"})
	assert.True(t, errors.Is(err, errs.ErrUnsupportedProvider))
}

func TestNewProviderAPIKey(t *testing.T) {
	clearKeyEnv(t)

	_, err := NewProvider(config.AIConfig{Provider: "anthropic"})
	assert.True(t, errors.Is(err, errs.ErrAuthentication))
	assert.Contains(t, errs.Hints(err), "ANTHROPIC_API_KEY")

	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	_, err = NewProvider(config.AIConfig{Provider: "anthropic"})
	require.NoError(t, err)

	// A custom endpoint may not need a key.
	_, err = NewProvider(config.AIConfig{Provider: "openai", BaseURL: "http://localhost:8080/v1"})
	require.NoError(t, err)

	// Local and session providers never need one.
	_, err = NewProvider(config.AIConfig{Provider: "ollama"})
	require.NoError(t, err)
	_, err = NewProvider(config.AIConfig{Provider: "github"})
	require.NoError(t, err)
}

func TestAPIKeyPrefersConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env")
	assert.Equal(t, "cfg", apiKey("openai", " cfg "))
	assert.Equal(t, "env", apiKey("openai", ""))
	assert.Equal(t, "", apiKey("ollama", ""))
}

func TestNewGateway(t *testing.T) {
	clearKeyEnv(t)
	cfg := config.Default()
	cfg.AI.APIKey = "k"
	g, err := NewGateway(cfg)
	require.NoError(t, err)
	assert.NotNil(t, g)

	cfg.AI.Provider = "nope"
	_, err = NewGateway(cfg)
	assert.True(t, errors.Is(err, errs.ErrUnsupportedProvider))
}

func TestLazyGatewayDefersProviderErrors(t *testing.T) {
	clearKeyEnv(t)
	lg := NewLazyGateway(config.Default())

	_, err := lg.Generate(context.Background(), prompt.Build("S", "A  a", "+a", ""), "")
	assert.True(t, errors.Is(err, errs.ErrAuthentication))
}

func TestLazyGatewayBuildsOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"fix: x"}}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.AI.BaseURL = srv.URL
	lg := NewLazyGateway(cfg)
	conv := prompt.Build("S", "M  a", "-a\n+b", "")

	msg, err := lg.Generate(context.Background(), conv, "")
	require.NoError(t, err)
	assert.Equal(t, "fix: x", msg)
	first := lg.gw

	_, err = lg.Generate(context.Background(), conv, "")
	require.NoError(t, err)
	assert.Same(t, first, lg.gw)
	assert.Equal(t, 2, calls)
}
