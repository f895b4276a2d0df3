package chunk

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/tokens"
)

// Default transcript splitting parameters, used for flat text without
// structural elements.
const (
	DefaultTranscriptChunkTokens   = 400
	DefaultTranscriptOverlapTokens = 40
)

// Splitter splits a single oversized text unit into ordered sub-chunks,
// each bounded by maxTokens, with consecutive sub-chunks sharing
// overlapTokens of boundary context. A short trailing remainder is kept
// as-is, not re-merged.
type Splitter struct {
	maxTokens     int
	overlapTokens int
	splitter      textsplitter.RecursiveCharacter
}

// NewSplitter creates a splitter bounded by maxTokens per sub-chunk.
// Lengths are measured by counter, so the bound holds in tokens rather
// than characters.
func NewSplitter(counter tokens.Counter, maxTokens, overlapTokens int) (*Splitter, error) {
	if counter == nil {
		return nil, ErrCounterRequired
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: maxTokens must be positive", ErrInvalidConfig)
	}
	if overlapTokens < 0 || overlapTokens >= maxTokens {
		return nil, fmt.Errorf("%w: overlapTokens must be in [0, maxTokens)", ErrInvalidConfig)
	}

	return &Splitter{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(maxTokens),
			textsplitter.WithChunkOverlap(overlapTokens),
			textsplitter.WithLenFunc(counter.Count),
		),
	}, nil
}

// MaxTokens returns the per-sub-chunk token ceiling.
func (s *Splitter) MaxTokens() int {
	return s.maxTokens
}

// Split returns text as an ordered sequence of bounded sub-chunks.
// Whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	parts, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks, nil
}

// SplitTranscript splits flat transcript text into chunk records with
// overlapping boundaries. Transcripts carry no structural elements, so
// every record shares the transcript's title as its hierarchy.
func SplitTranscript(counter tokens.Counter, sourceID, title, text string, chunkTokens, overlapTokens int) ([]core.ChunkRecord, error) {
	if chunkTokens <= 0 {
		chunkTokens = DefaultTranscriptChunkTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultTranscriptOverlapTokens
	}

	splitter, err := NewSplitter(counter, chunkTokens, overlapTokens)
	if err != nil {
		return nil, err
	}

	parts, err := splitter.Split(text)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultHeading
	}

	records := make([]core.ChunkRecord, len(parts))
	for i, part := range parts {
		records[i] = core.ChunkRecord{
			SourceID:      sourceID,
			Title:         title,
			HierarchyPath: title,
			Text:          part,
			TokenCount:    counter.Count(part),
			SequenceIndex: i,
		}
	}
	return records, nil
}
