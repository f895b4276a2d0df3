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


// Package core defines the domain model for document ingestion.
//
// The central types are:
//   - Element: a typed unit of text produced by a document parser
//   - ChunkRecord: a bounded span of text plus metadata, the unit stored
//     in the vector index
//   - VectorRecord: an embedded chunk ready for upsert
//
// It also provides namespace resolution (NamespaceFromSource), which derives
// a stable per-source partition key from a URL or filename, and validation
// for records constructed elsewhere in the system.
package core
