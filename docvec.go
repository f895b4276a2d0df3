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


package docvec

import (
	"log/slog"

	"github.com/tessella/docvec/ai"
	"github.com/tessella/docvec/ai/openai"
	"github.com/tessella/docvec/ingest"
	"github.com/tessella/docvec/search"
	"github.com/tessella/docvec/tokens"
	"github.com/tessella/docvec/vectorstore"
	"github.com/tessella/docvec/vectorstore/badger"
	"github.com/tessella/docvec/vectorstore/qdrant"
)

// Store bundles a vector index, an embedding provider, and a token counter,
// and hands out pipelines and searchers wired to them.
type Store struct {
	index    vectorstore.Index
	provider ai.Provider
	counter  tokens.Counter
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	aiConfig         *ai.Config
	qdrant           string
	qdrantCollection string
}

// WithAIConfig overrides the embedding service configuration.
func WithAIConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		o.aiConfig = config
	}
}

// WithQdrant uses a remote Qdrant instance instead of the embedded index.
// addr is a gRPC address ("localhost:6334").
func WithQdrant(addr, collection string) StoreOption {
	return func(o *storeOptions) {
		o.qdrant = addr
		o.qdrantCollection = collection
	}
}

// NewStore opens a store with an embedded index at filePath.
// Pass WithQdrant to use a remote index instead; filePath is then ignored.
func NewStore(filePath string, opts ...StoreOption) (*Store, error) {
	// Apply options
	options := &storeOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open the index
	var index vectorstore.Index
	var err error
	if options.qdrant != "" {
		index, err = qdrant.NewIndex(options.qdrant, options.qdrantCollection)
	} else {
		index, err = badger.NewIndex(filePath)
	}
	if err != nil {
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		index.Close()
		return nil, err
	}

	return &Store{
		index:    index,
		provider: provider,
		counter:  tokens.NewCounter(slog.Default()),
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and the index.
func (s *Store) Close() error {
	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	return nil
}

// Index returns the underlying vector index.
func (s *Store) Index() vectorstore.Index {
	return s.index
}

// NewIngestPipeline creates an ingestion pipeline bound to this store.
func (s *Store) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(s.index, s.provider, s.counter, opts...)
}

// NewSearcher creates a searcher bound to this store.
func (s *Store) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.index, s.provider, opts...)
}
