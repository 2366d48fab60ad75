package database

import (
	"context"

	"github.com/ragkit/indexer-be/types"
)

// VectorStore defines the interface for vector index operations. The store
// owns record identity and on-disk index format; this side only hands over
// (text, metadata, vector) triples and queries them back by similarity.
type VectorStore interface {
	// EnsureIndex creates the similarity search index for vectors of the
	// given dimensionality if it does not already exist.
	EnsureIndex(ctx context.Context, dimensions int) error

	// Upsert writes a single record. Re-indexing the same chunk of the
	// same source replaces the previous record.
	Upsert(ctx context.Context, record *types.IndexedRecord) error

	// BatchUpsert writes records in batches.
	BatchUpsert(ctx context.Context, records []types.IndexedRecord) error

	// Search returns up to limit records nearest to the query vector.
	Search(ctx context.Context, vector []float32, limit int) ([]types.ScoredRecord, error)

	// Drop removes all indexed records and the search index.
	Drop(ctx context.Context) error

	Close(ctx context.Context) error
}
