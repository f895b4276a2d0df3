package chunk

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/elements"
	"github.com/tessella/docvec/tokens"
)

// wordsOf produces n distinct whitespace-separated words so that
// tokens.WordCounter counts exactly n tokens.
func wordsOf(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}

func newTestAssembler(t *testing.T, config *Config) *Assembler {
	t.Helper()
	a, err := NewAssembler(tokens.WordCounter{}, WithConfig(config))
	require.NoError(t, err)
	return a
}

func assemble(t *testing.T, a *Assembler, elems []core.Element) []core.ChunkRecord {
	t.Helper()
	chunks, err := a.Assemble(context.Background(), "test.pdf", elements.NewSliceSource(elems))
	require.NoError(t, err)
	return chunks
}

func TestAssemble_SingleChunkAtStreamEnd(t *testing.T) {
	// Two narratives below the target under one title produce exactly one
	// chunk, flushed at end of stream even though it never reached the
	// minimum for a title flush.
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     100,
		TargetChunkTokens:  250,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
		OverlapFraction:    0.10,
	})

	first := wordsOf("a", 50)
	second := wordsOf("b", 60)
	chunks := assemble(t, a, []core.Element{
		{Text: "Intro", Kind: core.KindTitle},
		{Text: first, Kind: core.KindNarrative},
		{Text: second, Kind: core.KindNarrative},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Intro", chunks[0].Title)
	assert.Equal(t, first+"\n\n"+second, chunks[0].Text)
	assert.Equal(t, 110, chunks[0].TokenCount)
	assert.Equal(t, DefaultHeading+" > Intro", chunks[0].HierarchyPath)
}

func TestAssemble_OversizedElementFallsBackToSplitter(t *testing.T) {
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     100,
		TargetChunkTokens:  250,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
		OverlapFraction:    0.10,
	})

	chunks := assemble(t, a, []core.Element{
		{Text: wordsOf("w", 800), Kind: core.KindNarrative},
	})

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.TokenCount, 350, "sub-chunk exceeds splitter ceiling")
	}
	// Order is preserved end to end.
	assert.True(t, strings.HasPrefix(chunks[0].Text, "w0 "))
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1].Text, "w799"))
}

func TestAssemble_OversizedElementFlushesPendingFirst(t *testing.T) {
	a := newTestAssembler(t, DefaultConfig())

	pending := wordsOf("p", 30) // well below MinChunkTokens
	chunks := assemble(t, a, []core.Element{
		{Text: pending, Kind: core.KindNarrative},
		{Text: wordsOf("w", 500), Kind: core.KindNarrative},
	})

	require.GreaterOrEqual(t, len(chunks), 2)
	// The small pending accumulation flushes on its own, regardless of size.
	assert.Equal(t, pending, chunks[0].Text)
}

func TestAssemble_ListCeiling(t *testing.T) {
	// Nine 50-token list items (450 total) against a 400-token list ceiling:
	// at least two chunks, each within the ceiling except a shorter remainder.
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     100,
		TargetChunkTokens:  250,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
		OverlapFraction:    0.10,
	})

	var elems []core.Element
	for i := 0; i < 9; i++ {
		elems = append(elems, core.Element{
			Text: wordsOf(fmt.Sprintf("item%d_", i), 50),
			Kind: core.KindListItem,
		})
	}

	chunks := assemble(t, a, elems)
	require.GreaterOrEqual(t, len(chunks), 2)
	for i, c := range chunks {
		if i < len(chunks)-1 {
			assert.LessOrEqual(t, c.TokenCount, 400, "list chunk %d exceeds list ceiling", i)
		}
	}
}

func TestAssemble_TypeChangeFlushes(t *testing.T) {
	a := newTestAssembler(t, DefaultConfig())

	narrative := wordsOf("n", 20)
	item := wordsOf("l", 10)
	chunks := assemble(t, a, []core.Element{
		{Text: narrative, Kind: core.KindNarrative},
		{Text: item, Kind: core.KindListItem},
	})

	// Narrative flushes when the list item arrives; the list flushes at
	// stream end.
	require.Len(t, chunks, 2)
	assert.Equal(t, narrative, chunks[0].Text)
	assert.Equal(t, item, chunks[1].Text)
}

func TestAssemble_TitleFlushRequiresMinimum(t *testing.T) {
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     100,
		TargetChunkTokens:  250,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
		OverlapFraction:    0.10,
	})

	small := wordsOf("s", 40)
	after := wordsOf("t", 10)
	chunks := assemble(t, a, []core.Element{
		{Text: small, Kind: core.KindNarrative},
		{Text: "Next Section", Kind: core.KindTitle},
		{Text: after, Kind: core.KindNarrative},
	})

	// Below the minimum, the title does not flush: the pre-title text rides
	// into the next section's chunk.
	require.Len(t, chunks, 1)
	assert.Equal(t, small+"\n\n"+after, chunks[0].Text)
	assert.Equal(t, "Next Section", chunks[0].Title)
}

func TestAssemble_HierarchyStackAppendOnly(t *testing.T) {
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     5,
		TargetChunkTokens:  250,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
		OverlapFraction:    0.10,
	})

	chunks := assemble(t, a, []core.Element{
		{Text: "Chapter 1", Kind: core.KindTitle},
		{Text: wordsOf("a", 10), Kind: core.KindNarrative},
		{Text: "Chapter 2", Kind: core.KindTitle},
		{Text: wordsOf("b", 10), Kind: core.KindNarrative},
	})

	require.Len(t, chunks, 2)
	assert.Equal(t, "Introduction > Chapter 1", chunks[0].HierarchyPath)
	// The stack never pops, so sibling chapters extend the path.
	assert.Equal(t, "Introduction > Chapter 1 > Chapter 2", chunks[1].HierarchyPath)
	assert.Equal(t, "Chapter 2", chunks[1].Title)
}

func TestAssemble_SkipsEmptyElements(t *testing.T) {
	a := newTestAssembler(t, DefaultConfig())

	body := wordsOf("x", 12)
	chunks := assemble(t, a, []core.Element{
		{Text: "   ", Kind: core.KindNarrative},
		{Text: "", Kind: core.KindTitle},
		{Text: body, Kind: core.KindNarrative},
		{Text: "\n\t", Kind: core.KindListItem},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, body, chunks[0].Text)
}

func TestAssemble_EmptyStream(t *testing.T) {
	a := newTestAssembler(t, DefaultConfig())
	chunks := assemble(t, a, nil)
	assert.Empty(t, chunks)
}

func TestAssemble_OrderPreservation(t *testing.T) {
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     10,
		TargetChunkTokens:  40,
		MaxChunkTokens:     80,
		MaxListChunkTokens: 60,
		OverlapFraction:    0.10,
	})

	var elems []core.Element
	var wantOrder []string
	for i := 0; i < 25; i++ {
		kind := core.KindNarrative
		if i%5 == 0 {
			kind = core.KindListItem
		}
		text := wordsOf(fmt.Sprintf("e%d_", i), 15)
		elems = append(elems, core.Element{Text: text, Kind: kind})
		wantOrder = append(wantOrder, text)
	}

	chunks := assemble(t, a, elems)

	var concatenated []string
	for i, c := range chunks {
		assert.Equal(t, i, c.SequenceIndex, "sequence index must match emission order")
		concatenated = append(concatenated, strings.Split(c.Text, "\n\n")...)
	}

	require.Equal(t, wantOrder, concatenated, "chunks must reproduce element order with no loss or duplication")
}

func TestAssemble_StreamFailureReturnsPartialChunks(t *testing.T) {
	a := newTestAssembler(t, &Config{
		MinChunkTokens:     5,
		TargetChunkTokens:  10,
		MaxChunkTokens:     80,
		MaxListChunkTokens: 60,
		OverlapFraction:    0.10,
	})

	src := &failingSource{
		elements: []core.Element{
			{Text: wordsOf("a", 12), Kind: core.KindNarrative},
			{Text: wordsOf("b", 12), Kind: core.KindNarrative},
		},
		failAfter: 2,
	}

	chunks, err := a.Assemble(context.Background(), "doc", src)
	require.ErrorIs(t, err, ErrStreamFailed)
	// The first accumulation flushed before the failure surfaced.
	assert.NotEmpty(t, chunks)
}

type failingSource struct {
	elements  []core.Element
	failAfter int
	pos       int
}

func (f *failingSource) Next(ctx context.Context) (core.Element, error) {
	if f.pos >= f.failAfter {
		return core.Element{}, fmt.Errorf("parser exploded")
	}
	el := f.elements[f.pos]
	f.pos++
	return el, nil
}

func TestNewAssembler_Validation(t *testing.T) {
	_, err := NewAssembler(nil)
	assert.ErrorIs(t, err, ErrCounterRequired)

	_, err = NewAssembler(tokens.WordCounter{}, WithConfig(&Config{
		MinChunkTokens:     100,
		TargetChunkTokens:  500,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
	}))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewAssembler(tokens.WordCounter{}, WithConfig(nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
