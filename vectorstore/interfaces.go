package vectorstore

import (
	"context"

	"github.com/tessella/docvec/core"
)

// MaxTopK is the hard ceiling on query result counts. Requests above it
// are clamped.
const MaxTopK = 1000

// Stats describes the contents of a single namespace.
type Stats struct {
	// VectorCount is the number of vectors stored in the namespace.
	VectorCount int
}

// Match is a single query result.
type Match struct {
	// ID is the stored record ID.
	ID string

	// Score is the cosine similarity between the probe and the stored
	// vector. Higher is more similar.
	Score float32

	// Metadata is the stored chunk payload. Zero-valued unless the query
	// requested metadata.
	Metadata core.ChunkMetadata
}

// Index provides namespaced vector storage and similarity search.
// Implementations must be thread-safe and support concurrent access.
type Index interface {
	// DescribeStats reports the number of vectors stored under a namespace.
	// A namespace that has never been written to reports zero vectors.
	// Returns an error only if the store itself cannot be reached.
	DescribeStats(ctx context.Context, namespace string) (Stats, error)

	// Upsert writes records into the namespace. Records with IDs already
	// present are overwritten. The write is atomic per call.
	Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error

	// Query finds the topK records in the namespace most similar to the
	// probe vector, ordered by descending similarity. topK is clamped to
	// MaxTopK. If includeMetadata is false, result metadata is left zero.
	//
	// Query is a similarity search, not an enumeration: with fewer than
	// topK records stored it returns everything, but callers must not rely
	// on it as a complete scan of the namespace.
	Query(ctx context.Context, namespace string, probe []float32, topK int, includeMetadata bool) ([]Match, error)

	// DeleteNamespace removes every record stored under the namespace.
	// Deleting a namespace that does not exist is not an error.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Close releases resources held by the index.
	Close() error
}
