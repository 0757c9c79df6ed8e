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


// Package hierarchy derives the ICD-10-CM classification tree from a code
// set and generates random walks over it.
//
// ICD-10-CM is prefix-subsumptive: E11.52 sits under E11.5, which sits under
// the E11 category, which belongs to chapter 4. Build reconstructs that tree
// from the flat code list, synthesizing any interior prefixes the source
// omits, and hangs every category off its chapter node under a single root.
//
// The Walker turns the tree into a corpus for embedding training: fixed
// length uniform random walks started from every node. Codes that sit close
// in the classification co-occur in walks, which is what the skip-gram
// trainer in the embedding package turns into vector proximity.
package hierarchy
