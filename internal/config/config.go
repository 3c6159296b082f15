package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the snipdex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Judge     JudgeConfig     `yaml:"judge"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Cache     CacheConfig     `yaml:"cache"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Vectors   VectorsConfig   `yaml:"vectors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Driver           string       `yaml:"driver"` // redis, qdrant (default: redis)
	Addrs            []string     `yaml:"addrs"`
	Password         string       `yaml:"password"`
	Index            string       `yaml:"index"`
	TagFields        []string     `yaml:"tag_fields"`
	Qdrant           QdrantConfig `yaml:"qdrant"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
}

// QdrantConfig holds Qdrant gRPC connection settings.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	BatchSize    int    `yaml:"batch_size"`
	MaxTextBytes int    `yaml:"max_text_bytes"`
	Serialize    bool   `yaml:"serialize"`
	CacheTTLSec  int    `yaml:"cache_ttl_sec"` // 0 disables the KV embedding cache
	// Instruction prefixes for instruction-tuned models (e5, Qwen3-Embedding).
	QueryInstruction  string `yaml:"query_instruction"`
	RecordInstruction string `yaml:"record_instruction"`
}

// JudgeConfig holds external judge settings.
type JudgeConfig struct {
	Enabled          bool   `yaml:"enabled"`
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	Concurrency      int    `yaml:"concurrency"`
	MaxAttempts      int    `yaml:"max_attempts"`
	InitialBackoffMs int    `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int    `yaml:"max_backoff_ms"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	MinIntervalMs    int    `yaml:"min_interval_ms"`
}

// RankingConfig holds fusion and rerank settings.
type RankingConfig struct {
	DefaultVariant        string          `yaml:"default_variant"`
	Candidates            int             `yaml:"candidates"`
	RerankEnabled         bool            `yaml:"rerank_enabled"`
	RerankWindow          int             `yaml:"rerank_window"`
	RerankWeight          float64         `yaml:"rerank_weight"`
	PopularitySaturation  float64         `yaml:"popularity_saturation"`
	PopularityHalfLifeHrs float64         `yaml:"popularity_half_life_hours"` // 0 = raw counts
	Variants              []VariantConfig `yaml:"variants"`
}

// VariantConfig declares or overrides a weight profile.
type VariantConfig struct {
	Name    string             `yaml:"name"`
	Version int                `yaml:"version"`
	Weights map[string]float64 `yaml:"weights"`
	Boost   BoostConfig        `yaml:"boost"`
}

// BoostConfig holds the additive token-match boost of a profile.
type BoostConfig struct {
	TextPerMatch    float64 `yaml:"text_per_match"`
	KeywordPerMatch float64 `yaml:"keyword_per_match"`
	Cap             float64 `yaml:"cap"`
}

// CacheConfig holds ranked result cache settings.
type CacheConfig struct {
	TTLSec     int `yaml:"ttl_sec"`
	MaxEntries int `yaml:"max_entries"`
}

// DedupConfig holds duplicate screening settings.
type DedupConfig struct {
	TopK            int     `yaml:"top_k"`
	SimilarityFloor float64 `yaml:"similarity_floor"`
	ConfidenceFloor float64 `yaml:"confidence_floor"`
	SummaryWords    int     `yaml:"summary_words"`
	UncertainPolicy string  `yaml:"uncertain_policy"` // hold, accept, reject
}

// VectorsConfig holds the main vector mix.
type VectorsConfig struct {
	SummaryWeight float64 `yaml:"summary_weight"`
	RawWeight     float64 `yaml:"raw_weight"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.Index == "" {
		c.Database.Index = "snippets"
	}
	if c.Database.Qdrant.Port <= 0 {
		c.Database.Qdrant.Port = 6334
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 64
	}
	if c.Embedding.MaxTextBytes <= 0 {
		c.Embedding.MaxTextBytes = 16 << 10
	}

	if c.Judge.Concurrency <= 0 {
		c.Judge.Concurrency = 2
	}
	if c.Judge.MaxAttempts <= 0 {
		c.Judge.MaxAttempts = 3
	}
	if c.Judge.InitialBackoffMs <= 0 {
		c.Judge.InitialBackoffMs = 500
	}
	if c.Judge.MaxBackoffMs <= 0 {
		c.Judge.MaxBackoffMs = 8000
	}
	if c.Judge.TimeoutSec <= 0 {
		c.Judge.TimeoutSec = 20
	}

	if c.Ranking.DefaultVariant == "" {
		c.Ranking.DefaultVariant = "B"
	}
	if c.Ranking.Candidates <= 0 {
		c.Ranking.Candidates = 15
	}
	if c.Ranking.RerankWindow <= 0 {
		c.Ranking.RerankWindow = 10
	}
	if c.Ranking.RerankWeight <= 0 {
		c.Ranking.RerankWeight = 0.1
	}
	if c.Ranking.PopularitySaturation <= 0 {
		c.Ranking.PopularitySaturation = 100
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 1024
	}

	if c.Dedup.TopK <= 0 {
		c.Dedup.TopK = 3
	}
	if c.Dedup.SimilarityFloor <= 0 {
		c.Dedup.SimilarityFloor = 0.80
	}
	if c.Dedup.ConfidenceFloor <= 0 {
		c.Dedup.ConfidenceFloor = 0.7
	}
	if c.Dedup.SummaryWords <= 0 {
		c.Dedup.SummaryWords = 12
	}
	if c.Dedup.UncertainPolicy == "" {
		c.Dedup.UncertainPolicy = "hold"
	}

	if c.Vectors.SummaryWeight == 0 && c.Vectors.RawWeight == 0 {
		c.Vectors.SummaryWeight = 0.5
		c.Vectors.RawWeight = 0.5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case "qdrant":
		if c.Database.Qdrant.Host == "" {
			return fmt.Errorf("database.qdrant.host is required")
		}
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"qdrant\", got %q", c.Database.Driver)
	}

	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Judge.Enabled && c.Judge.Model == "" {
		return fmt.Errorf("judge.model is required when the judge is enabled")
	}

	if c.Ranking.RerankWeight > 1 {
		return fmt.Errorf("ranking.rerank_weight must be at most 1, got %g", c.Ranking.RerankWeight)
	}
	for _, v := range c.Ranking.Variants {
		if v.Name == "" {
			return fmt.Errorf("ranking.variants: name is required")
		}
	}

	if c.Dedup.SimilarityFloor > 1 || c.Dedup.ConfidenceFloor > 1 {
		return fmt.Errorf("dedup floors must be in [0,1]")
	}
	switch c.Dedup.UncertainPolicy {
	case "hold", "accept", "reject":
	default:
		return fmt.Errorf(
			"dedup.uncertain_policy must be \"hold\", \"accept\" or \"reject\", got %q",
			c.Dedup.UncertainPolicy,
		)
	}

	if c.Vectors.SummaryWeight < 0 || c.Vectors.RawWeight < 0 {
		return fmt.Errorf("vectors weights must be non-negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
