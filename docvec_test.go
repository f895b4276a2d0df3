package docvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docvec/ai"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.NotNil(t, store.Index())

	pipeline, err := store.NewIngestPipeline()
	require.NoError(t, err)
	pipeline.Release()

	searcher, err := store.NewSearcher()
	require.NoError(t, err)
	assert.NotNil(t, searcher)

	require.NoError(t, store.Close())
}

func TestNewStore_CustomAIConfig(t *testing.T) {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost("http://localhost:9999"),
		ai.WithEmbeddingModel("text-embedding-3-small"),
	)

	store, err := NewStore(t.TempDir(), WithAIConfig(cfg))
	require.NoError(t, err)
	defer store.Close()

	// Host was normalized during provider construction
	assert.Equal(t, "http://localhost:9999/v1", cfg.EmbeddingHost)
}

func TestNewStore_InvalidAIConfig(t *testing.T) {
	cfg := &ai.Config{} // missing model and host

	_, err := NewStore(t.TempDir(), WithAIConfig(cfg))
	require.Error(t, err)
}
