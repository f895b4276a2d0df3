package chunk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/elements"
	"github.com/tessella/docvec/tokens"
)

// Assembler consumes an ordered element stream and emits bounded chunk
// records while tracking the heading hierarchy. Safe for concurrent use;
// each Assemble call owns its own accumulation state.
type Assembler struct {
	config   *Config
	counter  tokens.Counter
	splitter *Splitter
	logger   *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithConfig replaces the default thresholds.
func WithConfig(config *Config) Option {
	return func(a *Assembler) error {
		if config == nil {
			return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
		}
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAssembler creates an assembler using counter for all size decisions.
func NewAssembler(counter tokens.Counter, opts ...Option) (*Assembler, error) {
	if counter == nil {
		return nil, ErrCounterRequired
	}

	a := &Assembler{
		config:  DefaultConfig(),
		counter: counter,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	overlap := int(float64(a.config.MaxChunkTokens) * a.config.OverlapFraction)
	splitter, err := NewSplitter(counter, a.config.MaxChunkTokens, overlap)
	if err != nil {
		return nil, err
	}
	a.splitter = splitter

	return a, nil
}

// Assemble drains the element stream and returns the document's chunk
// records in emission order. A stream error aborts assembly and returns
// the chunks emitted so far alongside the error.
func (a *Assembler) Assemble(ctx context.Context, sourceID string, stream elements.Source) ([]core.ChunkRecord, error) {
	acc := newAccumulator(sourceID, a.counter)

	for {
		el, err := stream.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return acc.chunks, fmt.Errorf("%w: %w", ErrStreamFailed, err)
		}

		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}

		if el.Kind == core.KindTitle {
			if acc.tokenCount() >= a.config.MinChunkTokens {
				acc.flush()
			}
			acc.pushHeading(text)
			continue
		}

		if a.counter.Count(text) > a.config.MaxChunkTokens {
			if acc.tokenCount() > 0 {
				acc.flush()
			}
			subChunks, err := a.splitter.Split(text)
			if err != nil {
				return acc.chunks, err
			}
			for _, sub := range subChunks {
				acc.emit(sub)
			}
			continue
		}

		newType := core.ContentTypeFor(el.Kind)
		if a.shouldFlushBefore(acc, newType) {
			acc.flush()
		}
		acc.append(text, newType)
	}

	// Whatever remains is flushed even below the minimum size.
	acc.flush()

	a.logger.Debug("assembled document into chunks",
		"source", sourceID, "chunks", len(acc.chunks))
	return acc.chunks, nil
}

// shouldFlushBefore reports whether the current accumulation must be
// flushed before appending content of newType.
func (a *Assembler) shouldFlushBefore(acc *accumulator, newType core.ContentType) bool {
	accTokens := acc.tokenCount()
	switch {
	case acc.contentType != newType && accTokens > 0:
		return true
	case acc.contentType == core.ContentNarrative && accTokens >= a.config.TargetChunkTokens:
		return true
	case acc.contentType == core.ContentList && accTokens >= a.config.MaxListChunkTokens:
		return true
	}
	return false
}

// accumulator carries one document's assembly state: the pending text, its
// content type, the heading hierarchy, and the chunks emitted so far.
// It is an explicit value owned by a single Assemble call.
type accumulator struct {
	sourceID    string
	counter     tokens.Counter
	text        string
	contentType core.ContentType
	hierarchy   []string
	chunks      []core.ChunkRecord
}

func newAccumulator(sourceID string, counter tokens.Counter) *accumulator {
	return &accumulator{
		sourceID:    sourceID,
		counter:     counter,
		contentType: core.ContentNarrative,
		hierarchy:   []string{DefaultHeading},
	}
}

func (acc *accumulator) tokenCount() int {
	if strings.TrimSpace(acc.text) == "" {
		return 0
	}
	return acc.counter.Count(acc.text)
}

// pushHeading appends a heading to the hierarchy stack. The stack is
// append-only: sibling and higher-level headings extend the path rather
// than replacing it. Pushing also resets the content type to narrative.
func (acc *accumulator) pushHeading(title string) {
	acc.hierarchy = append(acc.hierarchy, title)
	acc.contentType = core.ContentNarrative
}

// append adds element text to the accumulation with a separating blank
// line and records its content type.
func (acc *accumulator) append(text string, contentType core.ContentType) {
	if acc.text == "" {
		acc.text = text
	} else {
		acc.text += "\n\n" + text
	}
	acc.contentType = contentType
}

// flush emits the pending accumulation as a chunk record and clears it.
// Whitespace-only accumulations are discarded silently.
func (acc *accumulator) flush() {
	acc.emit(acc.text)
	acc.text = ""
}

// emit appends a chunk record for text under the current hierarchy.
func (acc *accumulator) emit(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	trimmed := make([]string, len(acc.hierarchy))
	for i, h := range acc.hierarchy {
		trimmed[i] = strings.TrimSpace(h)
	}

	acc.chunks = append(acc.chunks, core.ChunkRecord{
		SourceID:      acc.sourceID,
		Title:         trimmed[len(trimmed)-1],
		HierarchyPath: strings.Join(trimmed, " > "),
		Text:          text,
		TokenCount:    acc.counter.Count(text),
		SequenceIndex: len(acc.chunks),
	})
}
