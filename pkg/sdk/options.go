package gitaverse

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dbPath string

	embedder      Embedder
	embedderModel string
	dimensions    int
	maxInputChars int
	cacheSize     int

	generator Generator
	model     string
	maxTokens int

	dailyLimit   int64
	monthlyLimit int64
	rejectOver   bool

	defaultMode Mode
	fallback    bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		embedderModel: "hashing-v1",
		dimensions:    384,
		maxInputChars: 2048,
		cacheSize:     1024,
		model:         "gpt-4o-mini",
		maxTokens:     300,
		defaultMode:   ModeSimilarity,
	}
}

// WithDatabase sets the SQLite file holding the verse corpus.
// Use ":memory:" for a throwaway store.
func WithDatabase(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dbPath = path
	})
}

// WithEmbedder replaces the built-in hashing encoder.
// model names the encoder in cache keys; vectors from different models never mix.
// The same encoder must be used for ingestion and questions.
func WithEmbedder(e Embedder, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.embedderModel = model
		c.dimensions = dimensions
	})
}

// WithVectorDimensions sets the output size of the built-in encoder. Default: 384.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithQueryCache sets how many question embeddings are kept in memory.
// Zero disables the cache. Default: 1024.
func WithQueryCache(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
	})
}

// WithGenerator enables grounded answers through a custom text generator.
func WithGenerator(g Generator, model string, maxTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
		if model != "" {
			c.model = model
		}
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
	})
}

// WithOpenAI enables grounded answers through an OpenAI-compatible endpoint.
// An empty baseURL selects the public API.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = newOpenAIGenerator(apiKey, baseURL)
		if model != "" {
			c.model = model
		}
	})
}

// WithTokenBudget caps generation tokens per UTC day and month (0 = unlimited).
// With reject set, calls over the limit fail with ErrGenerationQuotaExceeded;
// otherwise overruns are only logged.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = daily
		c.monthlyLimit = monthly
		c.rejectOver = reject
	})
}

// WithDefaultMode sets the mode used when Ask receives an empty mode.
func WithDefaultMode(m Mode) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultMode = m
	})
}

// WithSimilarityFallback answers with the top similarity match when a
// grounded attempt fails on citation or generation.
func WithSimilarityFallback() Option {
	return optionFunc(func(c *clientConfig) {
		c.fallback = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
