package db

import "github.com/kailas-cloud/snipdex/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName   string
	VectorField string
	Filters     filter.Expression
	Vector      []float32
	K           int
	// ReturnFields limits the scalar payload returned; empty returns everything.
	ReturnFields []string
	// ReturnVectors names the vector fields to hydrate into SearchEntry.Vectors.
	ReturnVectors []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is cosine similarity in [-1,1].
type SearchEntry struct {
	Key     string
	Score   float64
	Fields  map[string]string
	Vectors map[string][]float32
}
