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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidElement indicates an Element failed validation.
	ErrInvalidElement = errors.New("invalid element")

	// ErrInvalidChunkRecord indicates a ChunkRecord failed validation.
	ErrInvalidChunkRecord = errors.New("invalid chunk record")

	// ErrInvalidVectorRecord indicates a VectorRecord failed validation.
	ErrInvalidVectorRecord = errors.New("invalid vector record")

	// ErrInvalidElementKind indicates an unrecognized ElementKind value.
	ErrInvalidElementKind = errors.New("invalid element kind")

	// ErrEmptyText indicates a required text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyHierarchy indicates a chunk has no hierarchy path.
	ErrEmptyHierarchy = errors.New("hierarchy path cannot be empty")

	// ErrEmptyVector indicates a vector record carries no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrNegativeSequence indicates a negative sequence index.
	ErrNegativeSequence = errors.New("sequence index cannot be negative")
)
