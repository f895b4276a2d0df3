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


// Package elements defines the element stream contract consumed by the
// chunk assembler, plus two producers: a slice adapter and a Markdown
// parser.
//
// A Source yields a finite, ordered, single-pass sequence of typed text
// elements for one document. Streams are not restartable; a mid-stream
// error aborts that document's ingestion only.
//
// Parsers for other formats (PDF extractors, transcript fetchers) live
// outside this module and only need to implement Source.
package elements
