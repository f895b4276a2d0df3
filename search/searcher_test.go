package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docvec/ai/mock"
	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/vectorstore"
	badgerstore "github.com/tessella/docvec/vectorstore/badger"
)

const testSource = "https://example.com/guide"

// seedChunks stores n chunks for testSource with orthogonal unit vectors,
// so each chunk matches exactly one axis-aligned probe.
func seedChunks(t *testing.T, index vectorstore.Index, n int) {
	t.Helper()
	namespace := core.NamespaceFromSource(testSource)

	records := make([]core.VectorRecord, n)
	for i := range records {
		vector := make([]float32, n)
		vector[i] = 1
		records[i] = core.VectorRecord{
			ID:     fmt.Sprintf("%s_chunk_%d", namespace, i),
			Vector: vector,
			Metadata: core.ChunkMetadata{
				Source:        testSource,
				Title:         "Introduction",
				Hierarchy:     "Introduction",
				Text:          fmt.Sprintf("chunk %d body", i),
				TokenCount:    3,
				SequenceIndex: i,
			},
		}
	}
	require.NoError(t, index.Upsert(context.Background(), namespace, records))
}

func newTestSearcher(t *testing.T, embedder *mock.MockEmbedder) (*Searcher, vectorstore.Index) {
	t.Helper()

	index, err := badgerstore.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	searcher, err := NewSearcher(index, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)
	return searcher, index
}

func TestSearch_RanksByQuerySimilarity(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Query points at chunk 2's axis
		return []float32{0, 0, 5, 0}, nil
	}

	searcher, index := newTestSearcher(t, embedder)
	seedChunks(t, index, 4)

	matches, err := searcher.Search(context.Background(), testSource, "anything", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "chunk 2 body", matches[0].Metadata.Text)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5, "normalized probe on matching unit vector")
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSearch_ScopedToSource(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	searcher, index := newTestSearcher(t, embedder)
	ctx := context.Background()

	otherNamespace := core.NamespaceFromSource("https://example.com/other")
	require.NoError(t, index.Upsert(ctx, otherNamespace, []core.VectorRecord{
		{ID: otherNamespace + "_chunk_0", Vector: []float32{1, 0}},
	}))

	matches, err := searcher.Search(ctx, testSource, "query", 10)
	require.NoError(t, err)
	assert.Empty(t, matches, "other documents' chunks must not appear")
}

func TestSearch_InvalidTopK(t *testing.T) {
	searcher, _ := newTestSearcher(t, mock.NewMockEmbedder())

	_, err := searcher.Search(context.Background(), testSource, "query", 0)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestSearch_EmbeddingError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	searcher, _ := newTestSearcher(t, embedder)

	_, err := searcher.Search(context.Background(), testSource, "query", 5)
	require.Error(t, err)
}

func TestSearchWithMonitor(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	searcher, index := newTestSearcher(t, embedder)
	seedChunks(t, index, 3)

	monitor := &recordingMonitor{}
	matches, err := searcher.SearchWithMonitor(context.Background(), testSource, "the query", 3, monitor)
	require.NoError(t, err)

	assert.Equal(t, "the query", monitor.query)
	assert.NotEmpty(t, monitor.probe)
	assert.Equal(t, len(matches), monitor.finished)
}

func TestListChunks_OriginalOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Probe biased toward a late chunk: order must still come from
		// the stored sequence index, not similarity.
		return []float32{0, 0, 0, 0, 1}, nil
	}

	searcher, index := newTestSearcher(t, embedder)
	seedChunks(t, index, 5)

	chunks, err := searcher.ListChunks(context.Background(), testSource)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.SequenceIndex, "chunk %d out of order", i)
		assert.Equal(t, fmt.Sprintf("chunk %d body", i), chunk.Text)
	}
}

func TestListChunks_EmptyDocument(t *testing.T) {
	searcher, _ := newTestSearcher(t, mock.NewMockEmbedder())

	chunks, err := searcher.ListChunks(context.Background(), "https://example.com/never-ingested")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNewSearcher_Validation(t *testing.T) {
	index, err := badgerstore.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	_, err = NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewSearcher(index, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	query    string
	probe    []float32
	finished int
}

func (m *recordingMonitor) Start(query string)                  { m.query = query }
func (m *recordingMonitor) AfterQueryEmbedding(probe []float32) { m.probe = probe }
func (m *recordingMonitor) Finish(matches []vectorstore.Match)  { m.finished = len(matches) }
