package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/cache"
	"github.com/kailas-cloud/snipdex/internal/config"
	"github.com/kailas-cloud/snipdex/internal/db"
	dbQdrant "github.com/kailas-cloud/snipdex/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/snipdex/internal/db/redis"
	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/dedup"
	domjudge "github.com/kailas-cloud/snipdex/internal/domain/judge"
	"github.com/kailas-cloud/snipdex/internal/domain/signal"
	"github.com/kailas-cloud/snipdex/internal/domain/variant"
	logpkg "github.com/kailas-cloud/snipdex/internal/logger"
	"github.com/kailas-cloud/snipdex/internal/metrics"
	"github.com/kailas-cloud/snipdex/internal/repository/candidate"
	"github.com/kailas-cloud/snipdex/internal/repository/embcache"
	recordrepo "github.com/kailas-cloud/snipdex/internal/repository/record"
	chiTransport "github.com/kailas-cloud/snipdex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/snipdex/internal/transport/openai"
	dedupuc "github.com/kailas-cloud/snipdex/internal/usecase/dedup"
	embeddinguc "github.com/kailas-cloud/snipdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/snipdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/snipdex/internal/usecase/ingest"
	judgeuc "github.com/kailas-cloud/snipdex/internal/usecase/judge"
	"github.com/kailas-cloud/snipdex/internal/usecase/ranking"
	"github.com/kailas-cloud/snipdex/internal/usecase/rerank"
	searchuc "github.com/kailas-cloud/snipdex/internal/usecase/search"
	vectorsuc "github.com/kailas-cloud/snipdex/internal/usecase/vectors"
)

const recordPrefix = "snip:"

// errJudgeDisabled is returned by every judge call when judge.enabled is false.
var errJudgeDisabled = errors.New("judge is disabled")

// app is the composition root shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	store     db.VectorStore
	queryEnc  *embeddinguc.Adapter
	recordEnc *embeddinguc.Adapter
	records   *recordrepo.Repo

	search  *searchuc.Service
	dedup   *dedupuc.Service
	vectors *vectorsuc.Service
	ingest  *ingestuc.Service
	health  *healthuc.Service
}

// newApp loads configuration for env and wires the full object graph.
// The caller must Close the returned app.
func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterJudgeMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	a := &app{cfg: cfg, logger: logger}

	// kv is nil for stores without key-value access; the embedding cache is skipped then.
	store, kv, err := openStore(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = store

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		a.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to vector store",
		zap.String("driver", cfg.Database.Driver),
		zap.String("index", cfg.Database.Index),
	)

	schema := recordrepo.Schema{
		Index:     cfg.Database.Index,
		Prefix:    recordPrefix,
		Dimension: cfg.Embedding.Dimensions,
		TagFields: cfg.Database.TagFields,
	}
	a.records = recordrepo.New(store, schema)
	if err := a.records.EnsureIndex(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	retriever := candidate.New(store, schema)

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var provider domain.BatchEmbedder = base
	if kv != nil && cfg.Embedding.CacheTTLSec > 0 {
		ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
		provider = embcache.New(base, kv, cfg.Embedding.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	a.queryEnc, err = openAdapter(ctx, provider, "query", cfg.Embedding.QueryInstruction, &cfg.Embedding, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.recordEnc, err = openAdapter(ctx, provider, "record", cfg.Embedding.RecordInstruction, &cfg.Embedding, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	judgeSvc, judgeHealth := buildJudge(&cfg.Judge, logger)
	gate := judgeuc.NewGate(judgeSvc, judgeuc.Config{
		Concurrency:    cfg.Judge.Concurrency,
		MaxAttempts:    cfg.Judge.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Judge.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.Judge.MaxBackoffMs) * time.Millisecond,
		Timeout:        time.Duration(cfg.Judge.TimeoutSec) * time.Second,
		MinInterval:    time.Duration(cfg.Judge.MinIntervalMs) * time.Millisecond,
	}, logger)

	registry, err := buildRegistry(cfg.Ranking.Variants)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build variants: %w", err)
	}
	ranker := ranking.New(registry, ranking.Config{
		PopularitySaturation: cfg.Ranking.PopularitySaturation,
		PopularityHalfLife:   time.Duration(cfg.Ranking.PopularityHalfLifeHrs * float64(time.Hour)),
	})

	// Nil interface, not a typed nil pointer, when reranking cannot run.
	var reranker searchuc.Reranker
	if cfg.Judge.Enabled && cfg.Ranking.RerankEnabled {
		reranker = rerank.New(gate, rerank.Config{
			Window: cfg.Ranking.RerankWindow,
			Weight: cfg.Ranking.RerankWeight,
		}, logger)
	}

	results := cache.NewResults(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLSec)*time.Second)
	a.search = searchuc.New(a.queryEnc, retriever, ranker, reranker, results, nil, searchuc.Config{
		DefaultVariant: cfg.Ranking.DefaultVariant,
		Candidates:     cfg.Ranking.Candidates,
		RerankEnabled:  cfg.Ranking.RerankEnabled,
	}, logger)

	a.dedup = dedupuc.New(a.recordEnc, retriever, gate, dedupuc.Config{
		TopK:            cfg.Dedup.TopK,
		SimilarityFloor: cfg.Dedup.SimilarityFloor,
		ConfidenceFloor: cfg.Dedup.ConfidenceFloor,
		SummaryWords:    cfg.Dedup.SummaryWords,
	}, logger)

	a.vectors = vectorsuc.New(a.recordEnc, vectorsuc.Config{
		SummaryWeight: cfg.Vectors.SummaryWeight,
		RawWeight:     cfg.Vectors.RawWeight,
	})

	a.ingest = ingestuc.New(a.dedup, a.vectors, a.records, ingestuc.Policy(cfg.Dedup.UncertainPolicy), logger)
	a.health = healthuc.New(store, base, judgeHealth)

	return a, nil
}

// server builds the HTTP API over the wired services.
func (a *app) server() *chiTransport.Server {
	return chiTransport.NewServer(a.search, a.dedup, a.ingest, a.vectors, a.records, a.health, a.logger)
}

// Close releases encoders and the store. Safe on a partially built app.
func (a *app) Close() {
	if a.queryEnc != nil {
		_ = a.queryEnc.Close()
	}
	if a.recordEnc != nil {
		_ = a.recordEnc.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

func openStore(cfg *config.DatabaseConfig) (db.VectorStore, db.KVStore, error) {
	switch cfg.Driver {
	case "qdrant":
		s, err := dbQdrant.NewStore(dbQdrant.Config{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.APIKey,
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("qdrant: %w", err)
		}
		return s, nil, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown database driver %q", domain.ErrConfiguration, cfg.Driver)
	}
}

// openAdapter assembles provider -> instrumented -> instruction -> adapter and probes it.
// The instruction sits outermost so the embedding cache key includes it.
func openAdapter(
	ctx context.Context, provider domain.BatchEmbedder, kind, instruction string,
	cfg *config.EmbeddingConfig, logger *zap.Logger,
) (*embeddinguc.Adapter, error) {
	var chain domain.BatchEmbedder = embeddinguc.NewInstrumentedEmbedder(provider, cfg.Provider, cfg.Model, kind, logger)
	if instruction != "" {
		chain = domain.NewInstructionEmbedder(chain, instruction)
	}
	a := embeddinguc.NewAdapter(chain, embeddinguc.Config{
		Dimension:    cfg.Dimensions,
		BatchSize:    cfg.BatchSize,
		MaxTextBytes: cfg.MaxTextBytes,
		Serialize:    cfg.Serialize,
	}, logger.With(zap.String("kind", kind)))
	if err := a.Open(ctx); err != nil {
		return nil, fmt.Errorf("open %s encoder: %w", kind, err)
	}
	return a, nil
}

// buildJudge returns the judge service and its health probe. A disabled judge
// fails every call so the gate reports it and callers degrade.
func buildJudge(cfg *config.JudgeConfig, logger *zap.Logger) (judgeuc.Service, healthuc.Checker) {
	if !cfg.Enabled {
		return disabledJudge{}, disabledJudge{}
	}
	j := openaiTransport.NewJudge(&openaiTransport.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Provider: "openai",
		Logger:   logger,
	})
	return j, j
}

// buildRegistry merges configured variants over the built-in A and B profiles.
func buildRegistry(variants []config.VariantConfig) (*variant.Registry, error) {
	profiles := variant.Builtins()
	for _, v := range variants {
		weights := make(map[signal.Name]float64, len(v.Weights))
		for name, w := range v.Weights {
			weights[signal.Name(name)] = w
		}
		profiles = append(profiles, variant.Profile{
			Name:    v.Name,
			Version: v.Version,
			Weights: weights,
			Boost: variant.Boost{
				TextPerMatch:    v.Boost.TextPerMatch,
				KeywordPerMatch: v.Boost.KeywordPerMatch,
				Cap:             v.Boost.Cap,
			},
		})
	}
	return variant.NewRegistry(profiles...)
}

type disabledJudge struct{}

func (disabledJudge) Summarize(context.Context, string, int) (string, error) {
	return "", errJudgeDisabled
}

func (disabledJudge) VerifyDuplicate(context.Context, string, string) (dedup.Judgment, error) {
	return dedup.Judgment{}, errJudgeDisabled
}

func (disabledJudge) Rerank(context.Context, string, []domjudge.Item) (domjudge.Scores, error) {
	return nil, errJudgeDisabled
}

// HealthCheck reports healthy: a disabled judge is not a degraded one.
func (disabledJudge) HealthCheck(context.Context) error { return nil }
