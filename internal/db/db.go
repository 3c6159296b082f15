package db

import (
	"context"
	"time"
)

// VectorStore is the nearest-neighbour backend facade: point persistence,
// index lifecycle and KNN search. Both the Redis and Qdrant adapters implement it.
type VectorStore interface {
	Pinger
	PointStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Store is the full Redis-backed facade: vector operations plus key-value access.
type Store interface {
	VectorStore
	KVStore
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Point is a storage-neutral record: scalar payload, numeric payload and named vectors.
type Point struct {
	Key      string
	Fields   map[string]string
	Numerics map[string]float64
	Vectors  map[string][]float32
}

// PointStore persists points.
type PointStore interface {
	Upsert(ctx context.Context, index string, p *Point) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides index (collection) lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides nearest-neighbour search.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
