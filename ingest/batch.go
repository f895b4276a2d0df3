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
	"fmt"
	"log/slog"
	"time"

	"github.com/tessella/docvec/ai"
	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/vectorstore"
)

// DefaultBatchSize is the number of chunks embedded and upserted per call.
const DefaultBatchSize = 256

// BatchProcessor embeds chunks and writes them to the vector store in
// strictly sequential batches. A failure stops the run; the count of
// chunks already written is returned alongside the error so callers can
// report partial progress.
type BatchProcessor struct {
	index          vectorstore.Index
	embedder       ai.Embedder
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	callTimeout    time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embed and upsert calls
// retryBaseDelay: base delay for exponential backoff
// callTimeout: per-attempt timeout for embed and upsert calls (0 disables)
func NewBatchProcessor(index vectorstore.Index, embedder ai.Embedder, batchSize, maxRetries int, retryBaseDelay, callTimeout time.Duration) (*BatchProcessor, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrProviderRequired
	}
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	return &BatchProcessor{
		index:          index,
		embedder:       embedder,
		batchSize:      batchSize,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		callTimeout:    callTimeout,
		logger:         slog.Default().With("component", "batch-processor"),
	}, nil
}

func (bp *BatchProcessor) retrier() Retrier {
	return Retrier{
		MaxAttempts:    bp.maxRetries,
		BaseDelay:      bp.retryBaseDelay,
		AttemptTimeout: bp.callTimeout,
		Logger:         bp.logger,
	}
}

// Run embeds and upserts all chunks under the namespace.
// Record IDs are derived from the chunk's absolute position across the whole
// run, so IDs are stable for identical input regardless of batch size.
func (bp *BatchProcessor) Run(ctx context.Context, namespace string, chunks []core.ChunkRecord) (int, error) {
	processed := 0
	for start := 0; start < len(chunks); start += bp.batchSize {
		end := start + bp.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := bp.runBatch(ctx, namespace, chunks[start:end], start, len(chunks)); err != nil {
			return processed, err
		}
		processed = end

		bp.logger.Debug("batch upserted",
			"namespace", namespace,
			"batch_start", start,
			"processed", processed,
			"total", len(chunks))
	}
	return processed, nil
}

func (bp *BatchProcessor) runBatch(ctx context.Context, namespace string, batch []core.ChunkRecord, offset, total int) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Text
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	attempts, err := bp.retrier().Do(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: after %d attempts: %w", ErrEmbeddingFailed, attempts, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: count mismatch: expected %d, got %d", ErrEmbeddingFailed, len(batch), len(embeddings))
	}

	// Normalize vectors and build records with absolute-position IDs.
	// The run's chunk count is only known here, so TotalChunks is stamped
	// per record rather than by the assembler.
	records := make([]core.VectorRecord, len(batch))
	for i := range batch {
		metadata := batch[i].Metadata()
		metadata.TotalChunks = total
		records[i] = core.VectorRecord{
			ID:       fmt.Sprintf("%s_chunk_%d", namespace, offset+i),
			Vector:   NormalizeVector(embeddings[i]),
			Metadata: metadata,
		}
	}

	// Upsert with retry
	attempts, err = bp.retrier().Do(ctx, func(ctx context.Context) error {
		return bp.index.Upsert(ctx, namespace, records)
	})
	if err != nil {
		return fmt.Errorf("%w: after %d attempts: %w", ErrUpsertFailed, attempts, err)
	}

	return nil
}
