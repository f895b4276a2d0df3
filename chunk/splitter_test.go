package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docvec/tokens"
)

func TestSplitter_BoundsAndOrder(t *testing.T) {
	splitter, err := NewSplitter(tokens.WordCounter{}, 350, 35)
	require.NoError(t, err)

	text := wordsOf("w", 800)
	chunks, err := splitter.Split(text)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	counter := tokens.WordCounter{}
	for i, c := range chunks {
		assert.LessOrEqual(t, counter.Count(c), 350, "chunk %d exceeds the token ceiling", i)
	}

	assert.True(t, strings.HasPrefix(chunks[0], "w0 "), "first chunk must start at the beginning")
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "w799"), "last chunk must end at the end")
}

func TestSplitter_Overlap(t *testing.T) {
	splitter, err := NewSplitter(tokens.WordCounter{}, 100, 10)
	require.NoError(t, err)

	chunks, err := splitter.Split(wordsOf("w", 250))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	// Consecutive chunks share boundary context: the next chunk opens with
	// words that already appeared at the tail of the previous one.
	for i := 0; i < len(chunks)-1; i++ {
		next := strings.Fields(chunks[i+1])
		require.NotEmpty(t, next)
		assert.Contains(t, chunks[i], next[0],
			"chunk %d should share leading context with chunk %d", i+1, i)
	}
}

func TestSplitter_ShortInputSingleChunk(t *testing.T) {
	splitter, err := NewSplitter(tokens.WordCounter{}, 100, 10)
	require.NoError(t, err)

	chunks, err := splitter.Split("short input text")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short input text", chunks[0])
}

func TestSplitter_WhitespaceOnly(t *testing.T) {
	splitter, err := NewSplitter(tokens.WordCounter{}, 100, 10)
	require.NoError(t, err)

	chunks, err := splitter.Split("   \n\t  ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNewSplitter_Validation(t *testing.T) {
	_, err := NewSplitter(nil, 100, 10)
	assert.ErrorIs(t, err, ErrCounterRequired)

	_, err = NewSplitter(tokens.WordCounter{}, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSplitter(tokens.WordCounter{}, 100, 100)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSplitTranscript(t *testing.T) {
	records, err := SplitTranscript(tokens.WordCounter{}, "https://example.com/watch?v=abc",
		"Lecture 1", wordsOf("t", 900), 400, 40)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(records), 2)

	for i, r := range records {
		assert.Equal(t, i, r.SequenceIndex)
		assert.Equal(t, "Lecture 1", r.Title)
		assert.Equal(t, "Lecture 1", r.HierarchyPath)
		assert.LessOrEqual(t, r.TokenCount, 400)
	}
}

func TestSplitTranscript_DefaultTitle(t *testing.T) {
	records, err := SplitTranscript(tokens.WordCounter{}, "file.txt", "  ", "a few words here", 0, -1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, DefaultHeading, records[0].Title)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative min", mutate: func(c *Config) { c.MinChunkTokens = -1 }},
		{name: "zero target", mutate: func(c *Config) { c.TargetChunkTokens = 0 }},
		{name: "zero max", mutate: func(c *Config) { c.MaxChunkTokens = 0 }},
		{name: "zero list max", mutate: func(c *Config) { c.MaxListChunkTokens = 0 }},
		{name: "target above max", mutate: func(c *Config) { c.TargetChunkTokens = 500 }},
		{name: "overlap fraction too large", mutate: func(c *Config) { c.OverlapFraction = 1.0 }},
		{name: "negative overlap fraction", mutate: func(c *Config) { c.OverlapFraction = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}
