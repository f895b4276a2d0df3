package core

import (
	"fmt"
	"strings"
)

// ValidateElementKind checks that the kind is one of the defined values.
func ValidateElementKind(kind ElementKind) error {
	switch kind {
	case KindTitle, KindListItem, KindNarrative:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidElementKind, kind)
	}
}

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - Text must not be empty or whitespace-only
//   - HierarchyPath must not be empty
//   - SequenceIndex must not be negative
//
// NOT validated:
//   - TokenCount (counter-dependent; zero is possible for degenerate input)
//   - SourceID (transcript and file sources carry arbitrary identities)
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if strings.TrimSpace(record.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyText)
	}

	if record.HierarchyPath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptyHierarchy)
	}

	if record.SequenceIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrNegativeSequence)
	}

	return nil
}

// ValidateVectorRecord validates a VectorRecord before upsert.
func ValidateVectorRecord(record *VectorRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidVectorRecord)
	}

	if record.ID == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidVectorRecord)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidVectorRecord, ErrEmptyVector)
	}

	return nil
}
