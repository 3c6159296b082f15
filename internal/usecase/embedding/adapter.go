package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/domain"
)

// Adapter defaults.
const (
	DefaultDimension    = 384
	DefaultBatchSize    = 64
	DefaultMaxTextBytes = 16 * 1024
)

const probeText = "snipdex dimension probe"

// Config controls batching, limits and serialization of the adapter.
type Config struct {
	Dimension    int
	BatchSize    int
	MaxTextBytes int
	// Serialize guards providers that cannot serve concurrent batches.
	Serialize bool
}

func (c *Config) applyDefaults() {
	if c.Dimension <= 0 {
		c.Dimension = DefaultDimension
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxTextBytes <= 0 {
		c.MaxTextBytes = DefaultMaxTextBytes
	}
}

type state int

const (
	stateNew state = iota
	stateOpen
	stateClosed
)

// Adapter implements domain.Encoder over a batch Provider.
// Encode is all-or-nothing: any failing batch or wrong-length vector fails the call.
type Adapter struct {
	provider Provider
	cfg      Config
	logger   *zap.Logger

	callMu  sync.Mutex
	stateMu sync.RWMutex
	state   state
}

var _ domain.Encoder = (*Adapter)(nil)

// NewAdapter creates an adapter. Open must be called before Encode.
func NewAdapter(p Provider, cfg Config, logger *zap.Logger) *Adapter {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{provider: p, cfg: cfg, logger: logger}
}

// Dimension returns the configured vector length.
func (a *Adapter) Dimension() int { return a.cfg.Dimension }

// Open probes the provider once and checks the vector dimension.
func (a *Adapter) Open(ctx context.Context) error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	switch a.state {
	case stateOpen:
		return nil
	case stateClosed:
		return domain.NewEncodingError("adapter is closed")
	}

	res, err := a.provider.BatchEmbed(ctx, []string{probeText})
	if err != nil {
		return fmt.Errorf("probe provider: %w", err)
	}
	if len(res.Embeddings) != 1 || len(res.Embeddings[0]) != a.cfg.Dimension {
		got := 0
		if len(res.Embeddings) == 1 {
			got = len(res.Embeddings[0])
		}
		return domain.NewEncodingError("provider dimension %d, expected %d", got, a.cfg.Dimension)
	}

	a.state = stateOpen
	a.logger.Info("Embedding adapter opened",
		zap.Int("dimension", a.cfg.Dimension),
		zap.Int("batch_size", a.cfg.BatchSize),
		zap.Bool("serialize", a.cfg.Serialize),
	)
	return nil
}

// Close releases the adapter. Later Encode calls fail.
func (a *Adapter) Close() error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.state = stateClosed
	return nil
}

// Encode vectorizes texts in order, batching internally.
func (a *Adapter) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	a.stateMu.RLock()
	st := a.state
	a.stateMu.RUnlock()
	if st != stateOpen {
		return nil, domain.NewEncodingError("adapter is not open")
	}

	normalized, err := a.prepare(texts)
	if err != nil {
		return nil, err
	}

	if a.cfg.Serialize {
		a.callMu.Lock()
		defer a.callMu.Unlock()
	}

	out := make([][]float32, 0, len(normalized))
	for offset := 0; offset < len(normalized); offset += a.cfg.BatchSize {
		end := min(offset+a.cfg.BatchSize, len(normalized))
		chunk := normalized[offset:end]

		res, err := a.provider.BatchEmbed(ctx, chunk)
		if err != nil {
			return nil, wrapEncoding(err)
		}
		if len(res.Embeddings) != len(chunk) {
			return nil, domain.NewEncodingError("provider returned %d vectors for %d texts",
				len(res.Embeddings), len(chunk))
		}
		for i, v := range res.Embeddings {
			if len(v) != a.cfg.Dimension {
				return nil, domain.NewEncodingError("vector %d has dimension %d, expected %d",
					offset+i, len(v), a.cfg.Dimension)
			}
		}
		out = append(out, res.Embeddings...)
	}
	return out, nil
}

// HealthCheck forwards to the provider when it supports health checks.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.provider.(healthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (a *Adapter) prepare(texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, domain.NewEncodingError("no texts to encode")
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		if len(t) > a.cfg.MaxTextBytes {
			return nil, domain.NewEncodingError("text %d is %d bytes (max %d)", i, len(t), a.cfg.MaxTextBytes)
		}
		n := NormalizeWhitespace(t)
		if n == "" {
			return nil, domain.NewEncodingError("text %d is empty", i)
		}
		out[i] = n
	}
	return out, nil
}

// NormalizeWhitespace collapses runs of whitespace into single spaces and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wrapEncoding(err error) error {
	if errors.Is(err, domain.ErrEncoding) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEncoding, err)
}
