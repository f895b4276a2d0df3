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


package vectorstore

import (
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/tessella/docvec/core"
)

// vectorSer serializes embedding vectors as length-prefixed raw float32s.
var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// vectorRecordSer is a hand-composed MUS serializer for core.VectorRecord.
// Field order is part of the stored format and must not change.
type vectorRecordSer struct{}

var _ mus.Serializer[core.VectorRecord] = vectorRecordSer{}

// VectorRecordMUS is the MUS serializer used by embedded index backends.
var VectorRecordMUS = vectorRecordSer{}

func (vectorRecordSer) Marshal(r core.VectorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.ID, bs)
	n += vectorSer.Marshal(r.Vector, bs[n:])
	n += ord.String.Marshal(r.Metadata.Source, bs[n:])
	n += ord.String.Marshal(r.Metadata.Title, bs[n:])
	n += ord.String.Marshal(r.Metadata.Hierarchy, bs[n:])
	n += ord.String.Marshal(r.Metadata.Text, bs[n:])
	n += varint.Int.Marshal(r.Metadata.TokenCount, bs[n:])
	n += varint.Int.Marshal(r.Metadata.SequenceIndex, bs[n:])
	n += varint.Int.Marshal(r.Metadata.TotalChunks, bs[n:])
	return n
}

func (vectorRecordSer) Unmarshal(bs []byte) (r core.VectorRecord, n int, err error) {
	var n1 int
	if r.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if r.Vector, n1, err = vectorSer.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	if r.Metadata.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	if r.Metadata.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	if r.Metadata.Hierarchy, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	if r.Metadata.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	if r.Metadata.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	if r.Metadata.SequenceIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	r.Metadata.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (vectorRecordSer) Size(r core.VectorRecord) (size int) {
	size = ord.String.Size(r.ID)
	size += vectorSer.Size(r.Vector)
	size += ord.String.Size(r.Metadata.Source)
	size += ord.String.Size(r.Metadata.Title)
	size += ord.String.Size(r.Metadata.Hierarchy)
	size += ord.String.Size(r.Metadata.Text)
	size += varint.Int.Size(r.Metadata.TokenCount)
	size += varint.Int.Size(r.Metadata.SequenceIndex)
	size += varint.Int.Size(r.Metadata.TotalChunks)
	return size
}

func (vectorRecordSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if n1, err = vectorSer.Skip(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	for i := 0; i < 4; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			n += n1
			return
		}
		n += n1
	}
	for i := 0; i < 3; i++ {
		if n1, err = varint.Int.Skip(bs[n:]); err != nil {
			n += n1
			return
		}
		n += n1
	}
	return
}

// MarshalVectorRecord serializes a VectorRecord to bytes.
func MarshalVectorRecord(record *core.VectorRecord) []byte {
	buf := make([]byte, VectorRecordMUS.Size(*record))
	VectorRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalVectorRecord deserializes a VectorRecord from bytes.
func UnmarshalVectorRecord(data []byte) (*core.VectorRecord, error) {
	record, _, err := VectorRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
