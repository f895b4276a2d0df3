package tokens

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tokenizer shared with the embedding model family.
const DefaultEncoding = "cl100k_base"

// Counter maps text to a non-negative token count. Implementations must be
// deterministic and safe for concurrent use.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts sub-word tokens using a tiktoken BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var _ Counter = (*TiktokenCounter)(nil)

// NewTiktokenCounter creates a counter for the named encoding.
func NewTiktokenCounter(encodingName string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count returns the number of BPE tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// WordCounter approximates token counts with a whitespace word count.
// It is the degraded mode used when the tokenizer is unavailable.
type WordCounter struct{}

var _ Counter = WordCounter{}

// Count returns the number of whitespace-separated words in text.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// NewCounter returns a Counter for the default encoding, falling back to a
// word count if the tokenizer cannot be constructed. The fallback is logged
// once at construction; counting itself never fails.
func NewCounter(logger *slog.Logger) Counter {
	if logger == nil {
		logger = slog.Default()
	}

	counter, err := NewTiktokenCounter(DefaultEncoding)
	if err != nil {
		logger.Warn("tokenizer unavailable, falling back to word count",
			"encoding", DefaultEncoding, "err", err)
		return WordCounter{}
	}
	return counter
}
