package ai

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

var tracer = otel.Tracer("github.com/hoanghonghuy/commitgen/internal/ai")

// Gateway resolves the model, sends one request and normalises the answer.
// It never retries.
type Gateway struct {
	provider     Provider
	defaultModel string
	opts         Options
}

func NewGateway(p Provider, defaultModel string, opts Options) *Gateway {
	return &Gateway{provider: p, defaultModel: defaultModel, opts: opts}
}

// Generate sends conv with modelOverride, or the configured model when the
// override is blank.
func (g *Gateway) Generate(ctx context.Context, conv prompt.Conversation, modelOverride string) (string, error) {
	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = g.defaultModel
	}
	if model == "" {
		return "", errors.WithHint(errors.New("no model configured"), "set one with: commitgen config set-model <name>")
	}

	req := Request{Model: model, Conversation: conv, Options: g.opts}

	ctx, span := tracer.Start(ctx, "ai.generate", trace.WithAttributes(
		attribute.String("ai.provider", g.provider.Name()),
		attribute.String("ai.model", model),
		attribute.Int("ai.messages", len(conv)),
	))
	defer span.End()

	logger := otelzap.Ctx(ctx)
	caps := g.provider.Capabilities()
	logger.Debug("Sending request to AI provider",
		zap.String("provider", g.provider.Name()),
		zap.String("model", model),
		zap.Int("messages", len(conv)),
		zap.Bool("temperature_forwarded", caps.Temperature),
		zap.Bool("max_tokens_forwarded", caps.MaxTokens))

	raw, err := g.provider.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	msg := prompt.Normalize(raw)
	if msg == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", errs.ErrNoResponse
	}

	logger.Info("Generated commit message",
		zap.String("provider", g.provider.Name()),
		zap.Int("length", len(msg)))
	return msg, nil
}
