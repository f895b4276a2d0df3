// Copyright 2025 Tessella Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/tessella/docvec/ai"
	"github.com/tessella/docvec/chunk"
	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/elements"
	"github.com/tessella/docvec/tokens"
	"github.com/tessella/docvec/vectorstore"
)

const (
	// DefaultMaxRetries bounds retry attempts for embed and upsert calls.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the initial backoff delay.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Document pairs a source identity with its element stream.
type Document struct {
	// Source is the document's identity: a URL or any stable identifier.
	Source string

	// Elements produces the document's typed text units in order.
	Elements elements.Source
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	// Force deletes any vectors already stored under the document's
	// namespace and re-ingests from scratch.
	Force bool
}

// Pipeline orchestrates chunking, embedding, and upserting documents into
// the vector store. Documents are processed concurrently; the chunks of one
// document are embedded and written strictly in order.
type Pipeline struct {
	index          vectorstore.Index
	embedder       ai.Embedder
	counter        tokens.Counter
	guard          *Guard
	chunkConfig    *chunk.Config
	docPool        *ants.Pool
	assemblyPool   *ants.Pool
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	callTimeout    time.Duration
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.docPool != nil {
			p.docPool.Release()
		}
		if p.assemblyPool != nil {
			p.assemblyPool.Release()
		}

		// Create new pools
		docPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		assemblyPool, err := ants.NewPool(size)
		if err != nil {
			docPool.Release()
			return err
		}

		p.docPool = docPool
		p.assemblyPool = assemblyPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithBatchSize sets the number of chunks embedded and upserted per call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry configures retry attempts and base backoff delay for embed and
// upsert calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithCallTimeout bounds each embedding and upsert attempt. A timed-out
// attempt is a recoverable failure: it feeds back into the retry loop
// instead of failing the document outright. Zero disables the timeout.
// Default is zero.
func WithCallTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		p.callTimeout = timeout
		return nil
	}
}

// WithChunkConfig overrides the chunk assembly thresholds.
func WithChunkConfig(config *chunk.Config) Option {
	return func(p *Pipeline) error {
		if err := config.Validate(); err != nil {
			return err
		}
		p.chunkConfig = config
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(index vectorstore.Index, provider ai.Provider, counter tokens.Counter, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if counter == nil {
		return nil, ErrCounterRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	docPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	assemblyPool, err := ants.NewPool(poolSize)
	if err != nil {
		docPool.Release()
		return nil, err
	}

	guard, err := NewGuard(index)
	if err != nil {
		docPool.Release()
		assemblyPool.Release()
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		index:          index,
		embedder:       provider.Embedder(),
		counter:        counter,
		guard:          guard,
		chunkConfig:    chunk.DefaultConfig(),
		docPool:        docPool,
		assemblyPool:   assemblyPool,
		batchSize:      DefaultBatchSize,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestDocument chunks, embeds, and upserts a single document.
// The returned Outcome is always populated; failures are reported there
// rather than panicking or aborting sibling work.
func (p *Pipeline) IngestDocument(ctx context.Context, doc Document, opts *IngestOptions) Outcome {
	if opts == nil {
		opts = &IngestOptions{}
	}

	namespace := core.NamespaceFromSource(doc.Source)
	logger := p.logger.With("source", doc.Source, "namespace", namespace)

	proceed, err := p.prepareNamespace(ctx, namespace, opts)
	if err != nil {
		return Outcome{Source: doc.Source, Namespace: namespace, Status: StatusFailed, Err: err}
	}
	if !proceed {
		logger.Info("document already ingested, skipping")
		return Outcome{Source: doc.Source, Namespace: namespace, Status: StatusSkipped}
	}

	chunks, err := p.assemble(ctx, doc)
	if err != nil {
		logger.Error("chunk assembly failed", "err", err)
		err = fmt.Errorf("%w: %w", ErrStreamFailed, err)
		return Outcome{Source: doc.Source, Namespace: namespace, Status: StatusFailed, Err: err}
	}
	if len(chunks) == 0 {
		logger.Info("document produced no chunks")
		return Outcome{Source: doc.Source, Namespace: namespace, Status: StatusSucceeded}
	}

	return p.runBatches(ctx, doc.Source, namespace, chunks, logger)
}

// IngestAll ingests documents concurrently on the document pool.
// Each document fails or succeeds independently.
func (p *Pipeline) IngestAll(ctx context.Context, docs []Document, opts *IngestOptions) Summary {
	summary := Summary{Outcomes: make([]Outcome, len(docs))}

	var wg sync.WaitGroup
	for i := range docs {
		i := i
		wg.Add(1)
		err := p.docPool.Submit(func() {
			defer wg.Done()
			summary.Outcomes[i] = p.IngestDocument(ctx, docs[i], opts)
		})
		if err != nil {
			wg.Done()
			summary.Outcomes[i] = Outcome{
				Source:    docs[i].Source,
				Namespace: core.NamespaceFromSource(docs[i].Source),
				Status:    StatusFailed,
				Err:       err,
			}
		}
	}
	wg.Wait()

	p.logger.Info("ingestion run complete",
		"documents", len(docs),
		"succeeded", summary.Succeeded(),
		"skipped", summary.Skipped(),
		"failed", summary.Failed(),
		"partial", summary.Partial())

	return summary
}

// IngestTranscript ingests flat transcript text. Unlike documents,
// transcripts carry no structure: the text is split into fixed-size
// overlapping chunks under a single heading.
func (p *Pipeline) IngestTranscript(ctx context.Context, source, title, text string, opts *IngestOptions) Outcome {
	if opts == nil {
		opts = &IngestOptions{}
	}

	namespace := core.NamespaceFromSource(source)
	logger := p.logger.With("source", source, "namespace", namespace)

	proceed, err := p.prepareNamespace(ctx, namespace, opts)
	if err != nil {
		return Outcome{Source: source, Namespace: namespace, Status: StatusFailed, Err: err}
	}
	if !proceed {
		logger.Info("transcript already ingested, skipping")
		return Outcome{Source: source, Namespace: namespace, Status: StatusSkipped}
	}

	chunks, err := chunk.SplitTranscript(p.counter, source, title, text,
		chunk.DefaultTranscriptChunkTokens, chunk.DefaultTranscriptOverlapTokens)
	if err != nil {
		logger.Error("transcript splitting failed", "err", err)
		return Outcome{Source: source, Namespace: namespace, Status: StatusFailed, Err: err}
	}
	if len(chunks) == 0 {
		logger.Info("transcript produced no chunks")
		return Outcome{Source: source, Namespace: namespace, Status: StatusSucceeded}
	}

	return p.runBatches(ctx, source, namespace, chunks, logger)
}

// prepareNamespace applies the dedup guard, honoring the Force escape hatch.
func (p *Pipeline) prepareNamespace(ctx context.Context, namespace string, opts *IngestOptions) (bool, error) {
	if opts.Force {
		if err := p.index.DeleteNamespace(ctx, namespace); err != nil {
			return false, errors.Join(ErrStoreUnavailable, err)
		}
		return true, nil
	}
	return p.guard.ShouldIngest(ctx, namespace)
}

// assemble runs chunk assembly on the assembly pool and waits for the result.
func (p *Pipeline) assemble(ctx context.Context, doc Document) ([]core.ChunkRecord, error) {
	assembler, err := chunk.NewAssembler(p.counter,
		chunk.WithConfig(p.chunkConfig),
		chunk.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}

	type result struct {
		chunks []core.ChunkRecord
		err    error
	}
	done := make(chan result, 1)

	err = p.assemblyPool.Submit(func() {
		chunks, err := assembler.Assemble(ctx, doc.Source, doc.Elements)
		done <- result{chunks: chunks, err: err}
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.chunks, res.err
	}
}

func (p *Pipeline) runBatches(ctx context.Context, source, namespace string, chunks []core.ChunkRecord, logger *slog.Logger) Outcome {
	bp, err := NewBatchProcessor(p.index, p.embedder, p.batchSize, p.maxRetries, p.retryBaseDelay, p.callTimeout)
	if err != nil {
		return Outcome{Source: source, Namespace: namespace, Status: StatusFailed, Err: err}
	}

	processed, err := bp.Run(ctx, namespace, chunks)
	if err != nil {
		status := StatusFailed
		if processed > 0 {
			status = StatusPartialFailure
		}
		logger.Error("ingestion failed", "processed", processed, "total", len(chunks), "err", err)
		return Outcome{
			Source:          source,
			Namespace:       namespace,
			Status:          status,
			ChunksProcessed: processed,
			Err:             err,
		}
	}

	logger.Info("document ingested", "chunks", processed)
	return Outcome{
		Source:          source,
		Namespace:       namespace,
		Status:          StatusSucceeded,
		ChunksProcessed: processed,
	}
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.docPool != nil {
		p.docPool.Release()
	}
	if p.assemblyPool != nil {
		p.assemblyPool.Release()
	}
}
