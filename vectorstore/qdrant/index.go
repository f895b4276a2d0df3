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


package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/vectorstore"
)

// metaChunkID carries the pipeline's record ID in the point payload.
// Qdrant point IDs must be UUIDs, so the original ID survives only here.
const metaChunkID = "chunk_id"

// metaNamespace scopes every point to its document namespace.
const metaNamespace = "namespace"

// Index implements vectorstore.Index on a remote Qdrant instance.
// All records share one collection; namespaces are realized as a keyword
// payload filter.
type Index struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	logger      *slog.Logger

	mu      sync.Mutex
	ensured bool
}

var _ vectorstore.Index = (*Index)(nil)

// NewIndex creates an Index connected to Qdrant at the given gRPC address.
// The collection is created lazily on first upsert, sized to the first
// record's vector.
//
// Returns vectorstore.Index interface to enforce abstraction.
func NewIndex(addr string, collection string) (vectorstore.Index, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return &Index{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		logger:      slog.Default().With("component", "qdrant-index"),
	}, nil
}

// Close closes the underlying gRPC connection.
func (x *Index) Close() error {
	return x.conn.Close()
}

// ensureCollection creates the collection if it doesn't exist.
func (x *Index) ensureCollection(ctx context.Context, dims int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ensured {
		return nil
	}

	list, err := x.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == x.collection {
			x.ensured = true
			return nil
		}
	}

	_, err = x.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: x.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", x.collection, err)
	}

	x.logger.Info("created collection", "collection", x.collection, "dims", dims)
	x.ensured = true
	return nil
}

// DescribeStats counts the points stored under a namespace.
func (x *Index) DescribeStats(ctx context.Context, namespace string) (vectorstore.Stats, error) {
	exact := true
	resp, err := x.points.Count(ctx, &pb.CountPoints{
		CollectionName: x.collection,
		Exact:          &exact,
		Filter: &pb.Filter{
			Must: []*pb.Condition{
				fieldMatch(metaNamespace, namespace),
			},
		},
	})
	if err != nil {
		// A collection nobody has written to yet holds no vectors.
		if status.Code(err) == codes.NotFound {
			return vectorstore.Stats{}, nil
		}
		return vectorstore.Stats{}, fmt.Errorf("qdrant: count namespace %s: %w", namespace, err)
	}
	return vectorstore.Stats{VectorCount: int(resp.GetResult().GetCount())}, nil
}

// Upsert stores records into Qdrant under the namespace.
func (x *Index) Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := x.ensureCollection(ctx, len(records[0].Vector)); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, len(records))
	for i := range records {
		record := &records[i]

		payload := payloadFromMetadata(record.Metadata)
		payload[metaChunkID] = stringValue(record.ID)
		payload[metaNamespace] = stringValue(namespace)

		// Qdrant requires UUID point IDs. Derive one deterministically
		// from the record ID so re-upserts overwrite in place.
		pointID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(record.ID)).String()

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: record.Vector},
				},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := x.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: x.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Query performs k-NN similarity search within the namespace.
func (x *Index) Query(ctx context.Context, namespace string, probe []float32, topK int, includeMetadata bool) ([]vectorstore.Match, error) {
	if topK <= 0 {
		return nil, vectorstore.ErrInvalidQuery
	}
	if topK > vectorstore.MaxTopK {
		topK = vectorstore.MaxTopK
	}

	resp, err := x.points.Search(ctx, &pb.SearchPoints{
		CollectionName: x.collection,
		Vector:         probe,
		Limit:          uint64(topK),
		Filter: &pb.Filter{
			Must: []*pb.Condition{
				fieldMatch(metaNamespace, namespace),
			},
		},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	matches := make([]vectorstore.Match, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		payload := r.GetPayload()

		match := vectorstore.Match{
			ID:    payload[metaChunkID].GetStringValue(),
			Score: r.GetScore(),
		}
		if match.ID == "" {
			match.ID = r.GetId().GetUuid()
		}
		if includeMetadata {
			match.Metadata = metadataFromPayload(payload)
		}
		matches[i] = match
	}
	return matches, nil
}

// DeleteNamespace removes all points in the namespace. Used for re-ingestion.
func (x *Index) DeleteNamespace(ctx context.Context, namespace string) error {
	wait := true
	_, err := x.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: x.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{
						fieldMatch(metaNamespace, namespace),
					},
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("qdrant: delete namespace %s: %w", namespace, err)
	}
	return nil
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(n int) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(n)}}
}

func payloadFromMetadata(m core.ChunkMetadata) map[string]*pb.Value {
	return map[string]*pb.Value{
		core.MetaSource:        stringValue(m.Source),
		core.MetaTitle:         stringValue(m.Title),
		core.MetaHierarchy:     stringValue(m.Hierarchy),
		core.MetaText:          stringValue(m.Text),
		core.MetaTokenCount:    intValue(m.TokenCount),
		core.MetaSequenceIndex: intValue(m.SequenceIndex),
		core.MetaTotalChunks:   intValue(m.TotalChunks),
	}
}

func metadataFromPayload(payload map[string]*pb.Value) core.ChunkMetadata {
	m := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *pb.Value_StringValue:
			m[k] = kind.StringValue
		case *pb.Value_IntegerValue:
			m[k] = kind.IntegerValue
		case *pb.Value_DoubleValue:
			m[k] = kind.DoubleValue
		}
	}
	return core.MetadataFromMap(m)
}
