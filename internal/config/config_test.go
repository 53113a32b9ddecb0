package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `generation.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Generation.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_RedisCacheNeedsAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = CacheRedis

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}

	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownCacheDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestValidate_OpenAIEmbeddingNeedsKey(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Provider: ProviderOpenAI}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_GroundedDefaultNeedsGeneration(t *testing.T) {
	cfg := validConfig()
	cfg.Answer.DefaultMode = "grounded"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for grounded mode without a generation key")
	}

	cfg.Generation.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidAnswerFallback(t *testing.T) {
	cfg := validConfig()
	cfg.Answer.Fallback = "random"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid fallback")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Path != "data/gitaverse.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
	if cfg.Cache.Driver != CacheMemory {
		t.Errorf("expected memory cache, got %q", cfg.Cache.Driver)
	}
	if cfg.Embedding.Provider != ProviderLocal || cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected local 384-dim encoder, got %q/%d", cfg.Embedding.Provider, cfg.Embedding.Dimensions)
	}
	if cfg.Generation.MaxTokens != 300 {
		t.Errorf("expected MaxTokens=300, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Answer.DefaultMode != "similarity" || cfg.Answer.Fallback != "none" {
		t.Errorf("unexpected answer defaults: %+v", cfg.Answer)
	}
	if cfg.Generation.Enabled() {
		t.Error("generation should be disabled without an api key")
	}
}

func TestApplyDefaults_OpenAIModel(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Provider: ProviderOpenAI}}
	cfg.ApplyDefaults()

	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected openai defaults: %q/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Database:  DatabaseConfig{Path: ":memory:", ReadinessTimeout: 15},
		Embedding: EmbeddingConfig{Dimensions: 128},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("expected :memory:, got %q", cfg.Database.Path)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("expected Dimensions=128, got %d", cfg.Embedding.Dimensions)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("GITAVERSE_TEST_KEY", "sk-from-env")

	cfg, err := Parse([]byte(`
generation:
  api_key: ${GITAVERSE_TEST_KEY}
  model: ${GITAVERSE_TEST_MODEL:-gpt-4o}
answer:
  default_mode: grounded
  fallback: similarity
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generation.APIKey != "sk-from-env" {
		t.Errorf("expected key from env, got %q", cfg.Generation.APIKey)
	}
	if cfg.Generation.Model != "gpt-4o" {
		t.Errorf("expected default model substitution, got %q", cfg.Generation.Model)
	}
	if cfg.Answer.Fallback != "similarity" {
		t.Errorf("expected similarity fallback, got %q", cfg.Answer.Fallback)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 9090\ncache:\n  ttl_hours: 24\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Cache.TTL().Hours() != 24 {
		t.Errorf("expected 24h TTL, got %v", cfg.Cache.TTL())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.Provider != ProviderLocal {
		t.Errorf("expected local encoder in local config, got %q", cfg.Embedding.Provider)
	}
}
