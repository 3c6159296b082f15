package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/snipdex/internal/db"
)

// CreateIndex creates a collection with one named vector per vector field.
// Scalar fields need no schema in Qdrant.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	params, err := vectorParams(def)
	if err != nil {
		return err
	}

	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return err
	}
	if exists {
		return db.ErrIndexExists
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: def.Name,
		VectorsConfig:  qdrant.NewVectorsConfigMap(params),
	})
	if err != nil {
		return &db.Error{Op: db.OpCollectionCreate, Err: err}
	}
	return nil
}

// IndexExists reports whether the collection exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, &db.Error{Op: db.OpCollectionExists, Err: err}
	}
	return exists, nil
}

func vectorParams(def *db.IndexDefinition) (map[string]*qdrant.VectorParams, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	fields := def.VectorFields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("index %q has no vector fields", def.Name)
	}

	params := make(map[string]*qdrant.VectorParams, len(fields))
	for _, f := range fields {
		params[f.Name] = &qdrant.VectorParams{
			Size:     uint64(f.VectorDim),
			Distance: distance(f.VectorDistance),
		}
	}
	return params, nil
}

func distance(m db.DistanceMetric) qdrant.Distance {
	switch m {
	case db.DistanceL2:
		return qdrant.Distance_Euclid
	case db.DistanceIP:
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Cosine
	}
}
