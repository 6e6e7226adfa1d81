// Package vectorstore wraps the vector index collaborator behind a narrow
// interface: upsert-by-id, nearest-neighbor query with metadata filtering,
// and full scans for aggregation. Metadata crosses this boundary as flat
// string maps; the pipeline layer owns the structured encoding.
package vectorstore

import "context"

// Entry is one stored unit: id, embedding, the narrative the embedding was
// computed from, and flat metadata used for filter predicates.
type Entry struct {
	ID        string
	Embedding []float32
	Narrative string
	Metadata  map[string]string
}

// Result is an Entry returned from a similarity query together with its
// relevance (1 - distance, where distance is the index's dissimilarity
// score).
type Result struct {
	Entry
	Relevance float64
}

// Index is the contract the vector store collaborator must satisfy.
// Upsert has replace-by-id semantics: storing again under the same id
// replaces the prior document entirely.
type Index interface {
	Upsert(ctx context.Context, e Entry) error
	Query(ctx context.Context, embedding []float32, k int, where map[string]string) ([]Result, error)
	GetAll(ctx context.Context, where map[string]string) ([]Entry, error)
	Count() int
	Close() error
}
