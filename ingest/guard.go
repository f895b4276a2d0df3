package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tessella/docvec/vectorstore"
)

// Guard decides whether a namespace needs ingestion. A namespace with any
// vectors already stored is treated as fully ingested and skipped.
type Guard struct {
	index  vectorstore.Index
	logger *slog.Logger
}

// NewGuard creates a guard backed by the given index.
func NewGuard(index vectorstore.Index) (*Guard, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	return &Guard{
		index:  index,
		logger: slog.Default().With("component", "ingest-guard"),
	}, nil
}

// ShouldIngest reports whether the namespace is empty and safe to write.
// A store error fails fast: an unreachable store must never be mistaken
// for an empty namespace.
func (g *Guard) ShouldIngest(ctx context.Context, namespace string) (bool, error) {
	stats, err := g.index.DescribeStats(ctx, namespace)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if stats.VectorCount > 0 {
		g.logger.Debug("namespace already ingested",
			"namespace", namespace,
			"vectors", stats.VectorCount)
		return false, nil
	}
	return true, nil
}
