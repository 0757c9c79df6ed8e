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


// Package match provides lexical matching of free text against code
// descriptions.
//
// Matching combines:
//   - Tokenization with clinical stop-word filtering
//   - Synonym expansion of shorthand ("htn" -> "essential hypertension")
//   - Token-sort similarity on indel distance, so word order is ignored
//   - An inverted token index that prunes candidates before scoring
//
// Scores are in [0, 1] and compare the sorted token strings of the query
// and the description, the same measure regardless of corpus size.
package match
