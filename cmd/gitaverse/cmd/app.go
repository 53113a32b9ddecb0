package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/config"
	"github.com/kailas-cloud/gitaverse/internal/db/memory"
	dbRedis "github.com/kailas-cloud/gitaverse/internal/db/redis"
	"github.com/kailas-cloud/gitaverse/internal/db/sqlite"
	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
	budgetrepo "github.com/kailas-cloud/gitaverse/internal/repository/budget"
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

// kvBackend is the cache and counter store behind the embedding cache and budget.
type kvBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// app is the composition root shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	db     *sqlite.Store
	redis  *dbRedis.Store
	kv     kvBackend
	verses *verserepo.Repo

	// docEmbedder encodes verse texts at ingestion; queryEmbedder adds the cache.
	docEmbedder   domain.BatchEmbedder
	queryEmbedder domain.Embedder
	generator     *openaitr.Generator
	budget        *budgetuc.Tracker

	chat   *chatuc.Service
	ingest *ingest.Service
	usage  *usageuc.Service
	health *healthuc.Service
}

// newApp opens the stores and assembles the services. Callers must Close it.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	a := &app{cfg: cfg, logger: logger}
	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// build wires every service; on error the partially opened stores stay set for Close.
func (a *app) build(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	if err := a.openStores(ctx); err != nil {
		return err
	}
	a.verses = verserepo.New(a.db.DB(), logger)

	if err := a.buildEmbedders(); err != nil {
		return err
	}
	a.buildGeneration(ctx)

	mode, err := chatuc.ParseMode(cfg.Answer.DefaultMode)
	if err != nil {
		return err
	}
	fallback, err := chatuc.ParseFallback(cfg.Answer.Fallback)
	if err != nil {
		return err
	}

	retriever := retrieval.New(a.verses, a.queryEmbedder, logger)

	// Nil interface, not a typed nil pointer, when generation is off.
	var grounder chatuc.Grounder
	if a.generator != nil {
		var b grounding.Budget = noBudget{}
		if a.budget != nil {
			b = a.budget
		}
		grounder = grounding.New(a.generator, grounding.NewCrossReferencer(a.verses), b, grounding.Config{
			Model:     cfg.Generation.Model,
			MaxTokens: cfg.Generation.MaxTokens,
		}, logger)
	}
	a.chat = chatuc.New(retriever, grounder, chatuc.Config{DefaultMode: mode, Fallback: fallback}, logger)

	a.ingest = ingest.New(a.verses, a.docEmbedder, logger).
		WithBatchSize(cfg.Embedding.BatchSize).
		WithDimensions(cfg.Embedding.Dimensions)

	var br usageuc.BudgetReader
	if a.budget != nil {
		br = a.budget
	}
	a.usage = usageuc.New(br)

	comps := healthuc.Components{Corpus: a.verses}
	if hc, ok := a.docEmbedder.(domain.HealthChecker); ok && cfg.Embedding.Provider != config.ProviderLocal {
		comps.Embedding = hc
	}
	if a.generator != nil {
		comps.Generation = a.generator
	}
	a.health = healthuc.New(a.db, comps, logger)
	return nil
}

func (a *app) openStores(ctx context.Context) error {
	readiness := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second

	store, err := sqlite.Open(ctx, a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open verse store: %w", err)
	}
	a.db = store
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("verse store not ready: %w", err)
	}
	a.logger.Info("Verse store opened", zap.String("path", a.cfg.Database.Path))

	switch a.cfg.Cache.Driver {
	case config.CacheRedis:
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    a.cfg.Cache.Addrs,
			Username: a.cfg.Cache.Username,
			Password: a.cfg.Cache.Password,
			DB:       a.cfg.Cache.DB,
			EntryTTL: a.cfg.Cache.TTL(),
		})
		if err != nil {
			return fmt.Errorf("create redis store: %w", err)
		}
		a.redis = rs
		if err := rs.WaitForReady(ctx, readiness); err != nil {
			return fmt.Errorf("redis not ready: %w", err)
		}
		a.kv = rs
		a.logger.Info("Connected to redis", zap.Strings("addrs", a.cfg.Cache.Addrs))
	case config.CacheMemory:
		ms, err := memory.NewStore(a.cfg.Cache.Size)
		if err != nil {
			return fmt.Errorf("create memory store: %w", err)
		}
		a.kv = ms
	}
	return nil
}

// buildEmbedders assembles the decorator chain: provider -> Guarded -> Instrumented [-> Cached].
func (a *app) buildEmbedders() error {
	ec := a.cfg.Embedding

	var base domain.Embedder
	switch ec.Provider {
	case config.ProviderOpenAI:
		base = openaitr.NewEmbedder(&openaitr.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Provider:   ec.Provider,
			Logger:     a.logger,
		})
	case config.ProviderLocal:
		base = local.NewEmbedder(ec.Dimensions)
	default:
		return fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}

	guarded := embeddinguc.NewGuardedEmbedder(base, ec.MaxInputChars, ec.Dimensions)
	instrumented := embeddinguc.NewInstrumentedEmbedder(guarded, ec.Provider, ec.Model, a.logger)
	a.docEmbedder = instrumented
	a.queryEmbedder = instrumented

	if a.kv != nil {
		a.queryEmbedder = embcache.New(instrumented, a.kv, ec.Model, metrics.EmbeddingCacheTotal, a.logger)
	}

	a.logger.Info("Embedders created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
		zap.String("cache", a.cfg.Cache.Driver),
	)
	return nil
}

func (a *app) buildGeneration(ctx context.Context) {
	gc := a.cfg.Generation
	if !gc.Enabled() {
		a.logger.Info("Generation disabled; grounded mode unavailable")
		return
	}

	a.generator = openaitr.NewGenerator(&openaitr.GeneratorConfig{
		APIKey:            gc.APIKey,
		BaseURL:           gc.BaseURL,
		RequestsPerSecond: gc.RequestsPerSecond,
		Burst:             gc.Burst,
		Logger:            a.logger,
	})

	if !gc.Budget.Enabled() {
		return
	}
	action := budgetuc.ActionWarn
	if gc.Budget.Action == string(budgetuc.ActionReject) {
		action = budgetuc.ActionReject
	}
	a.budget = budgetuc.NewTracker(gc.Budget.DailyTokenLimit, gc.Budget.MonthlyTokenLimit, action, a.logger)
	if a.kv != nil {
		a.budget.WithStore(ctx, budgetrepo.New(a.kv, gc.Provider, budgetrepo.DefaultRetention))
	}
}

// Close releases stores in reverse order of opening.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close verse store", zap.Error(err))
		}
	}
}

// noBudget admits every generation call.
type noBudget struct{}

func (noBudget) Check(context.Context) error { return nil }
func (noBudget) Record(int64)                {}
