package elements

import (
	"context"
	"io"

	"github.com/tessella/docvec/core"
)

// Source yields the elements of one document in strict document order.
// Next returns io.EOF after the final element; any other error is a stream
// failure. Sources are single-pass and need not be safe for concurrent use.
type Source interface {
	Next(ctx context.Context) (core.Element, error)
}

// SliceSource adapts an in-memory element slice to the Source interface.
type SliceSource struct {
	elements []core.Element
	pos      int
}

var _ Source = (*SliceSource)(nil)

// NewSliceSource creates a Source over the given elements. Ordinals are
// assigned from slice position if unset.
func NewSliceSource(elems []core.Element) *SliceSource {
	for i := range elems {
		if elems[i].Ordinal == 0 {
			elems[i].Ordinal = i
		}
	}
	return &SliceSource{elements: elems}
}

// Next returns the next element or io.EOF at the end of the slice.
func (s *SliceSource) Next(ctx context.Context) (core.Element, error) {
	if err := ctx.Err(); err != nil {
		return core.Element{}, err
	}
	if s.pos >= len(s.elements) {
		return core.Element{}, io.EOF
	}
	el := s.elements[s.pos]
	s.pos++
	return el, nil
}
