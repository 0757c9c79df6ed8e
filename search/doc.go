// Copyright 2025 Poiesic Systems
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


// Package search turns free text diagnoses into ranked ICD-10-CM code
// suggestions.
//
// The Searcher type implements a multi-stage algorithm that combines:
//   - Lexical matching using token-sort similarity over code descriptions
//   - Hierarchy coherence using embeddings of the classification tree
//   - Optional semantic reranking through an embedding service
//   - Verbatim keyword matching with stop-word filtering
//
// Every match carries its component scores and a human readable
// justification. Code-shaped queries ("E11.52") skip fuzzy matching and
// resolve by direct lookup. Related finds the classification neighbors of
// a known code through its hierarchy embedding.
package search
