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


package badger

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/vectorstore"
)

// Index implements vectorstore.Index on an embedded BadgerDB database.
// Similarity search scans the namespace and ranks by dot product, which
// works for the normalized vectors the pipeline writes.
type Index struct {
	backend *Backend
	logger  *slog.Logger
}

var _ vectorstore.Index = (*Index)(nil)

// NewIndex opens an embedded vector index at the given path.
//
// Returns vectorstore.Index interface to enforce abstraction.
func NewIndex(path string) (vectorstore.Index, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newIndex(backend), nil
}

func newIndex(backend *Backend) *Index {
	return &Index{
		backend: backend,
		logger:  slog.Default().With("component", "badger-index"),
	}
}

// DescribeStats counts the vectors stored under a namespace.
func (x *Index) DescribeStats(ctx context.Context, namespace string) (vectorstore.Stats, error) {
	if x.backend.IsClosed() {
		return vectorstore.Stats{}, vectorstore.ErrStoreClosed
	}

	count := 0
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeNamespacePrefix(namespace)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
	if err != nil {
		return vectorstore.Stats{}, err
	}

	return vectorstore.Stats{VectorCount: count}, nil
}

// Upsert writes records into the namespace in a single transaction.
func (x *Index) Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error {
	if x.backend.IsClosed() {
		return vectorstore.ErrStoreClosed
	}
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for i := range records {
			record := &records[i]
			key := makeVectorKey(namespace, record.ID)
			if err := tx.Set(key, vectorstore.MarshalVectorRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query scans the namespace and returns the topK most similar records.
func (x *Index) Query(ctx context.Context, namespace string, probe []float32, topK int, includeMetadata bool) ([]vectorstore.Match, error) {
	if x.backend.IsClosed() {
		return nil, vectorstore.ErrStoreClosed
	}
	if topK <= 0 {
		return nil, vectorstore.ErrInvalidQuery
	}
	if topK > vectorstore.MaxTopK {
		topK = vectorstore.MaxTopK
	}

	var matches []vectorstore.Match
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeNamespacePrefix(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.VectorRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = vectorstore.UnmarshalVectorRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			match := vectorstore.Match{
				ID:    record.ID,
				Score: dotProduct(probe, record.Vector),
			}
			if includeMetadata {
				match.Metadata = record.Metadata
			}
			matches = append(matches, match)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(matches, func(a, b vectorstore.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteNamespace removes every record stored under the namespace.
func (x *Index) DeleteNamespace(ctx context.Context, namespace string) error {
	if x.backend.IsClosed() {
		return vectorstore.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Collect keys first: deleting while iterating invalidates the iterator.
	var keys [][]byte
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeNamespacePrefix(namespace)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	x.logger.Debug("deleting namespace", "namespace", namespace, "records", len(keys))

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Close closes the underlying database.
func (x *Index) Close() error {
	return x.backend.Close()
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
