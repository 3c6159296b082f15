package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/snipdex/internal/db"
)

// Compile-time check: Store implements db.VectorStore.
var _ db.VectorStore = (*Store)(nil)

// keyField stores the caller's point key in the payload; Qdrant IDs must be UUIDs.
const keyField = "_key"

// Config holds connection parameters for a Qdrant store.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// Store implements db.VectorStore over the Qdrant gRPC API.
// Each index is one collection; vector fields become named vectors.
type Store struct {
	client *qdrant.Client
}

// NewStore creates a Qdrant store. Defaults: localhost:6334.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping calls the Qdrant HealthCheck RPC.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() {
	_ = s.client.Close()
}

// WaitForReady polls Ping until Qdrant responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// PointID maps an arbitrary key to a stable UUID point identifier.
func PointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("snipdex:"+key)).String()
}
