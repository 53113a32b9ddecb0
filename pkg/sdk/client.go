package gitaverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/db/memory"
	"github.com/kailas-cloud/gitaverse/internal/db/sqlite"
	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
	"github.com/kailas-cloud/gitaverse/internal/repository/embcache"
	verserepo "github.com/kailas-cloud/gitaverse/internal/repository/verse"
	"github.com/kailas-cloud/gitaverse/internal/transport/local"
	openaitr "github.com/kailas-cloud/gitaverse/internal/transport/openai"
	budgetuc "github.com/kailas-cloud/gitaverse/internal/usecase/budget"
	chatuc "github.com/kailas-cloud/gitaverse/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/gitaverse/internal/usecase/embedding"
	"github.com/kailas-cloud/gitaverse/internal/usecase/grounding"
	healthuc "github.com/kailas-cloud/gitaverse/internal/usecase/health"
	"github.com/kailas-cloud/gitaverse/internal/usecase/ingest"
	"github.com/kailas-cloud/gitaverse/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/gitaverse/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type chatUseCase interface {
	Ask(ctx context.Context, question string, mode chatuc.Mode) (chatuc.Reply, error)
}

type ingestUseCase interface {
	Run(ctx context.Context, r io.Reader) (ingest.Report, error)
}

type verseLookup interface {
	GetByChapterAndVerse(ctx context.Context, chapter, verseNumber int) (domverse.Verse, error)
}

type closer interface {
	Close() error
}

// Client is the gitaverse SDK entry point.
type Client struct {
	store     closer
	chatSvc   chatUseCase
	ingestSvc ingestUseCase
	verses    verseLookup
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New opens the verse store and assembles the answering pipeline.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dbPath == "" {
		return nil, errors.New("gitaverse: database path required (use WithDatabase)")
	}
	if cfg.dimensions <= 0 {
		return nil, fmt.Errorf("gitaverse: vector dimensions must be positive, got %d", cfg.dimensions)
	}
	if cfg.defaultMode != ModeSimilarity && cfg.defaultMode != ModeGrounded {
		return nil, fmt.Errorf("gitaverse: %w: %q", ErrInvalidMode, cfg.defaultMode)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(ctx, cfg.dbPath)
	if err != nil {
		return nil, fmt.Errorf("gitaverse: open verse store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("gitaverse: verse store not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store *sqlite.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := zap.NewNop()
	verses := verserepo.New(store.DB(), logger)

	var base domain.Embedder = local.NewEmbedder(cfg.dimensions)
	if cfg.embedder != nil {
		base = &embedderAdapter{inner: cfg.embedder}
	}
	guarded := embeddinguc.NewGuardedEmbedder(base, cfg.maxInputChars, cfg.dimensions)
	docEmb := embeddinguc.NewInstrumentedEmbedder(guarded, "sdk", cfg.embedderModel, logger)

	var queryEmb retrieval.Embedder = docEmb
	if cfg.cacheSize > 0 {
		kv, err := memory.NewStore(cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("gitaverse: create query cache: %w", err)
		}
		queryEmb = embcache.New(docEmb, kv, cfg.embedderModel, nil, logger)
	}

	var tracker *budgetuc.Tracker
	if cfg.dailyLimit > 0 || cfg.monthlyLimit > 0 {
		action := budgetuc.ActionWarn
		if cfg.rejectOver {
			action = budgetuc.ActionReject
		}
		tracker = budgetuc.NewTracker(cfg.dailyLimit, cfg.monthlyLimit, action, logger)
	}

	var grounder chatuc.Grounder
	if cfg.generator != nil {
		var b grounding.Budget = noBudget{}
		if tracker != nil {
			b = tracker
		}
		grounder = grounding.New(generatorAdapter{inner: cfg.generator}, grounding.NewCrossReferencer(verses), b,
			grounding.Config{Model: cfg.model, MaxTokens: cfg.maxTokens}, logger)
	}

	fallback := chatuc.FallbackNone
	if cfg.fallback {
		fallback = chatuc.FallbackSimilarity
	}
	chatSvc := chatuc.New(retrieval.New(verses, queryEmb, logger), grounder,
		chatuc.Config{DefaultMode: chatuc.Mode(cfg.defaultMode), Fallback: fallback}, logger)

	comps := healthuc.Components{Corpus: verses}
	if hc, ok := cfg.generator.(domain.HealthChecker); ok {
		comps.Generation = hc
	}

	var br usageuc.BudgetReader
	if tracker != nil {
		br = tracker
	}

	return &Client{
		store:     store,
		chatSvc:   chatSvc,
		ingestSvc: ingest.New(verses, docEmb, logger).WithDimensions(cfg.dimensions),
		verses:    verses,
		healthSvc: healthuc.New(store, comps, logger),
		usageSvc:  usageuc.New(br),
		obs:       obs,
	}, nil
}

// Close releases the verse store.
func (c *Client) Close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps public Generator to satisfy grounding.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a generatorAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Completion, error) {
	c, err := a.inner.Generate(ctx, GenerationRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Prompt:    req.Prompt,
	})
	if err != nil {
		return domain.Completion{}, err
	}
	return domain.Completion{
		Text:             c.Text,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.TotalTokens,
	}, nil
}

// openAIGenerator exposes the built-in OpenAI transport as a public Generator.
type openAIGenerator struct {
	inner *openaitr.Generator
}

func newOpenAIGenerator(apiKey, baseURL string) *openAIGenerator {
	return &openAIGenerator{inner: openaitr.NewGenerator(&openaitr.GeneratorConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Logger:  zap.NewNop(),
	})}
}

func (g *openAIGenerator) Generate(ctx context.Context, req GenerationRequest) (Completion, error) {
	c, err := g.inner.Generate(ctx, domain.GenerationRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Prompt:    req.Prompt,
	})
	if err != nil {
		return Completion{}, err
	}
	return Completion{
		Text:             c.Text,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.TotalTokens,
	}, nil
}

func (g *openAIGenerator) HealthCheck(ctx context.Context) error {
	return g.inner.HealthCheck(ctx)
}

// noBudget admits every generation call.
type noBudget struct{}

func (noBudget) Check(context.Context) error { return nil }
func (noBudget) Record(int64)                {}
