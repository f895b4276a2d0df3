// Package ingest provides pipeline orchestration for turning documents into
// stored vectors.
//
// The Pipeline type manages the full ingestion workflow for a document:
//   - Deriving the document's namespace from its source identity
//   - Skipping documents whose namespace already holds vectors
//   - Assembling elements into token-bounded chunks
//   - Embedding chunks and upserting them in sequential batches
//
// Documents are processed concurrently using worker pools; within one
// document, batches run strictly in order so record IDs and progress counts
// stay deterministic. A failing document never affects its siblings.
package ingest
