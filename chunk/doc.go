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


// Package chunk turns an ordered element stream into bounded,
// context-preserving chunk records.
//
// The Assembler accumulates element text under token budgets while tracking
// the document's heading hierarchy:
//
//   - a Title element flushes a sufficiently large accumulation and becomes
//     the new current section
//   - narrative and list content accumulate under separate ceilings and
//     never share a chunk
//   - a single element larger than the hard ceiling is handed to the
//     Splitter, which produces overlapping sub-chunks
//
// Chunk sizes are measured in tokens via a tokens.Counter, so budgets stay
// aligned with the embedding model's tokenizer.
package chunk
