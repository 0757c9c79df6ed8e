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


// Package embedding trains hierarchy embeddings for ICD-10-CM codes.
//
// The Trainer runs skip-gram with negative sampling over random walks on the
// classification tree: codes that sit near each other in the classification
// co-occur in walks and end up with nearby vectors. This is the node2vec
// recipe with uniform walk transitions.
//
// Training is parallel: walks are split across a worker pool and workers
// apply gradient updates to the shared weight matrices without
// synchronization (asynchronous SGD). Runs are deterministic only with a
// single worker and a fixed seed.
//
// The resulting Model maps node keys to unit-length vectors, so cosine
// similarity between codes reduces to a dot product.
package embedding
