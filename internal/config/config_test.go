package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "all-minilm"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_QdrantNeedsHost(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "qdrant"
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing qdrant host")
	}

	cfg.Database.Qdrant.Host = "localhost"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mongo"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_UncertainPolicy(t *testing.T) {
	for _, p := range []string{"hold", "accept", "reject"} {
		t.Run("policy="+p, func(t *testing.T) {
			cfg := validConfig()
			cfg.Dedup.UncertainPolicy = p
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for %q: %v", p, err)
			}
		})
	}

	cfg := validConfig()
	cfg.Dedup.UncertainPolicy = "ignore"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid policy")
	}
	expected := `dedup.uncertain_policy must be "hold", "accept" or "reject", got "ignore"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_JudgeModelRequiredWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Judge.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled judge without model")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.BatchSize != 64 {
		t.Errorf("expected BatchSize=64, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Judge.Concurrency != 2 {
		t.Errorf("expected Concurrency=2, got %d", cfg.Judge.Concurrency)
	}
	if cfg.Judge.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", cfg.Judge.MaxAttempts)
	}
	if cfg.Ranking.DefaultVariant != "B" {
		t.Errorf("expected DefaultVariant=B, got %q", cfg.Ranking.DefaultVariant)
	}
	if cfg.Ranking.Candidates != 15 {
		t.Errorf("expected Candidates=15, got %d", cfg.Ranking.Candidates)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("expected TTLSec=300, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Dedup.SimilarityFloor != 0.80 {
		t.Errorf("expected SimilarityFloor=0.80, got %v", cfg.Dedup.SimilarityFloor)
	}
	if cfg.Dedup.UncertainPolicy != "hold" {
		t.Errorf("expected UncertainPolicy=hold, got %q", cfg.Dedup.UncertainPolicy)
	}
	if cfg.Vectors.SummaryWeight != 0.5 || cfg.Vectors.RawWeight != 0.5 {
		t.Errorf("expected vector weights 0.5/0.5, got %v/%v", cfg.Vectors.SummaryWeight, cfg.Vectors.RawWeight)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30},
		Judge:   JudgeConfig{Concurrency: 8},
		Dedup:   DedupConfig{UncertainPolicy: "accept"},
		Vectors: VectorsConfig{SummaryWeight: 0.7, RawWeight: 0.3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Judge.Concurrency != 8 {
		t.Errorf("expected Concurrency=8, got %d", cfg.Judge.Concurrency)
	}
	if cfg.Dedup.UncertainPolicy != "accept" {
		t.Errorf("expected UncertainPolicy=accept, got %q", cfg.Dedup.UncertainPolicy)
	}
	if cfg.Vectors.SummaryWeight != 0.7 {
		t.Errorf("expected SummaryWeight=0.7, got %v", cfg.Vectors.SummaryWeight)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SNIPDEX_TEST_KEY", "sk-test")

	data := []byte(strings.Join([]string{
		"http:",
		"  port: ${SNIPDEX_TEST_PORT:-9090}",
		"database:",
		"  addrs: [\"localhost:6379\"]",
		"embedding:",
		"  model: all-minilm",
		"  api_key: ${SNIPDEX_TEST_KEY}",
		"ranking:",
		"  variants:",
		"    - name: C",
		"      version: 1",
		"      weights: {vector: 0.9}",
	}, "\n"))

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.Embedding.APIKey)
	}
	if len(cfg.Ranking.Variants) != 1 || cfg.Ranking.Variants[0].Weights["vector"] != 0.9 {
		t.Errorf("unexpected variants: %+v", cfg.Ranking.Variants)
	}
}
