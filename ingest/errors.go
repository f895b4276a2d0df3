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

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("ai provider required")

	// ErrCounterRequired is returned when a token counter is not provided.
	ErrCounterRequired = errors.New("token counter required")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrStoreUnavailable indicates the vector store could not be reached.
	// Ingestion fails fast rather than risking duplicate writes.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrStreamFailed indicates the element stream or chunk assembly
	// failed before any vectors were written.
	ErrStreamFailed = errors.New("element stream failed")

	// ErrEmbeddingFailed indicates embedding generation failed after retries.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrUpsertFailed indicates a vector store write failed after retries.
	ErrUpsertFailed = errors.New("vector upsert failed")
)
