package search

import (
	"context"
	"log/slog"
	"slices"

	"github.com/tessella/docvec/ai"
	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/ingest"
	"github.com/tessella/docvec/vectorstore"
)

// Searcher provides semantic search over ingested documents.
// Every query is scoped to one document via its source identity.
type Searcher struct {
	index    vectorstore.Index
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(index vectorstore.Index, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		index:    index,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search finds the topK chunks of the document most similar to the query.
// Returns matches ranked by descending similarity, with metadata attached.
func (s *Searcher) Search(ctx context.Context, source, query string, topK int) ([]vectorstore.Match, error) {
	return s.SearchWithMonitor(ctx, source, query, topK, nil)
}

// SearchWithMonitor searches with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, source, query string, topK int, monitor SearchMonitor) ([]vectorstore.Match, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Stored vectors are unit length; a normalized probe makes the dot
	// product a true cosine similarity.
	probe := ingest.NormalizeVector(embedding)
	monitor.AfterQueryEmbedding(probe)

	namespace := core.NamespaceFromSource(source)
	matches, err := s.index.Query(ctx, namespace, probe, topK, true)
	if err != nil {
		s.logger.Error("error querying index", "namespace", namespace, "err", err)
		return nil, err
	}

	monitor.Finish(matches)
	return matches, nil
}

// ListChunks retrieves the document's stored chunks in their original order.
//
// The index offers similarity search only, so this issues a probe query
// capped at the store's maximum result count and re-sorts by the stored
// sequence index. For documents with more chunks than that cap the listing
// is incomplete; treat it as best-effort, not an enumeration.
func (s *Searcher) ListChunks(ctx context.Context, source string) ([]core.ChunkMetadata, error) {
	// Any probe works: ranking is irrelevant when everything is fetched.
	probe, err := s.embedder.EmbedText(ctx, source)
	if err != nil {
		s.logger.Error("error generating probe embedding", "source", source, "err", err)
		return nil, err
	}

	namespace := core.NamespaceFromSource(source)
	matches, err := s.index.Query(ctx, namespace, probe, vectorstore.MaxTopK, true)
	if err != nil {
		s.logger.Error("error querying index", "namespace", namespace, "err", err)
		return nil, err
	}

	chunks := make([]core.ChunkMetadata, len(matches))
	for i, match := range matches {
		chunks[i] = match.Metadata
	}
	slices.SortFunc(chunks, func(a, b core.ChunkMetadata) int {
		return a.SequenceIndex - b.SequenceIndex
	})
	return chunks, nil
}
