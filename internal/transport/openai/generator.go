package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
)

// GeneratorConfig holds the chat-completion provider settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	// RequestsPerSecond throttles outgoing calls (0 = unlimited).
	RequestsPerSecond float64
	Burst             int
	Logger            *zap.Logger
}

// Generator produces free text through the chat completions endpoint.
type Generator struct {
	client  *openai.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation client.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Generator{
		client:  newClient(cfg.APIKey, cfg.BaseURL),
		limiter: rate.NewLimiter(limit, burst),
		logger:  cfg.Logger,
	}
}

// Generate implements domain.Generator. The prompt is sent as a single user message.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Completion, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Completion{}, fmt.Errorf("generation rate limit wait: %w: %w", domain.ErrGenerationFailed, err)
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(req.Model, "error").Inc()
		g.logger.Warn("Generation request failed",
			zap.String("model", req.Model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.Completion{}, parseAPIError("generation", err, domain.ErrGenerationFailed)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(req.Model, "error").Inc()
		return domain.Completion{}, fmt.Errorf("empty completion: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(req.Model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(req.Model).Observe(duration.Seconds())
	metrics.GenerationTokensTotal.WithLabelValues(req.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(req.Model, "completion").Add(float64(resp.Usage.CompletionTokens))

	g.logger.Debug("Generation request completed",
		zap.String("model", req.Model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return domain.Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies the API is reachable and the key is accepted.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
