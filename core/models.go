package core

// ElementKind discriminates the typed text units a document parser emits.
type ElementKind int

const (
	// KindTitle marks a section heading.
	KindTitle ElementKind = iota + 1
	// KindListItem marks a single list entry.
	KindListItem
	// KindNarrative marks any other body text.
	KindNarrative
)

// String returns a human-readable name for the element kind.
func (k ElementKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindListItem:
		return "list_item"
	case KindNarrative:
		return "narrative"
	default:
		return "unknown"
	}
}

// Element is a single typed unit of text in strict document order.
// Elements are transient: produced once by a parser and consumed once
// by the chunk assembler.
type Element struct {
	Text    string
	Kind    ElementKind
	Ordinal int
}

// ContentType reflects the kind of the most recently accumulated element.
// It drives the assembler's flush decisions: narrative and list content use
// different token ceilings and never share a chunk.
type ContentType int

const (
	// ContentNarrative accumulates prose under the target token ceiling.
	ContentNarrative ContentType = iota + 1
	// ContentList accumulates list items under the list token ceiling.
	ContentList
)

// ContentTypeFor maps an element kind to the content type its text
// accumulates under. Titles reset accumulation to narrative.
func ContentTypeFor(kind ElementKind) ContentType {
	if kind == KindListItem {
		return ContentList
	}
	return ContentNarrative
}

// ChunkRecord is a bounded span of text plus the metadata captured at the
// moment it was flushed. SequenceIndex is strictly increasing and matches
// emission order within one document.
type ChunkRecord struct {
	SourceID      string
	Title         string
	HierarchyPath string
	Text          string
	TokenCount    int
	SequenceIndex int
}

// Metadata returns the chunk's stored metadata record.
func (c *ChunkRecord) Metadata() ChunkMetadata {
	return ChunkMetadata{
		Source:        c.SourceID,
		Title:         c.Title,
		Hierarchy:     c.HierarchyPath,
		Text:          c.Text,
		TokenCount:    c.TokenCount,
		SequenceIndex: c.SequenceIndex,
	}
}

// ChunkMetadata is the structured payload stored alongside each vector.
// All fields are named and typed; dynamic metadata maps are only produced
// at the store boundary via Map.
type ChunkMetadata struct {
	Source        string
	Title         string
	Hierarchy     string
	Text          string
	TokenCount    int
	SequenceIndex int

	// TotalChunks is the number of chunks the ingestion run that wrote
	// this record stored for the source, letting readers tell how far
	// through the source a chunk sits.
	TotalChunks int
}

// Metadata payload keys, shared by every store backend so that records
// written by one backend can be read back through another.
const (
	MetaSource        = "source"
	MetaTitle         = "title"
	MetaHierarchy     = "hierarchy"
	MetaText          = "text"
	MetaTokenCount    = "token_count"
	MetaSequenceIndex = "sequence_index"
	MetaTotalChunks   = "total_chunks"
)

// Map converts the metadata to the key/value payload stored in the index.
func (m ChunkMetadata) Map() map[string]any {
	return map[string]any{
		MetaSource:        m.Source,
		MetaTitle:         m.Title,
		MetaHierarchy:     m.Hierarchy,
		MetaText:          m.Text,
		MetaTokenCount:    m.TokenCount,
		MetaSequenceIndex: m.SequenceIndex,
		MetaTotalChunks:   m.TotalChunks,
	}
}

// MetadataFromMap rebuilds a ChunkMetadata from a stored payload.
// Missing keys yield zero values; numeric values may arrive as int or
// float64 depending on the backend.
func MetadataFromMap(payload map[string]any) ChunkMetadata {
	m := ChunkMetadata{}
	if v, ok := payload[MetaSource].(string); ok {
		m.Source = v
	}
	if v, ok := payload[MetaTitle].(string); ok {
		m.Title = v
	}
	if v, ok := payload[MetaHierarchy].(string); ok {
		m.Hierarchy = v
	}
	if v, ok := payload[MetaText].(string); ok {
		m.Text = v
	}
	m.TokenCount = intFromPayload(payload[MetaTokenCount])
	m.SequenceIndex = intFromPayload(payload[MetaSequenceIndex])
	m.TotalChunks = intFromPayload(payload[MetaTotalChunks])
	return m
}

func intFromPayload(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// VectorRecord is an embedded chunk ready for upsert into the store.
// ID is globally unique within a namespace for one ingestion run:
// "{namespace}_chunk_{globalIndex}".
type VectorRecord struct {
	ID       string
	Vector   []float32
	Metadata ChunkMetadata
}
