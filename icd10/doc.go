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


// Package icd10 holds the ICD-10-CM vocabulary: code normalization and
// formatting, the chapter table of the tabular list, prefix-based parent
// derivation, a parser for the CMS order file distribution, and a small
// built-in catalog used for demos and tests.
//
// Codes are handled in normalized form throughout (uppercase, dot removed).
// Display formatting reinserts the dot after the third character:
//
//	icd10.Normalize("e11.52") // "E1152"
//	icd10.Format("E1152")     // "E11.52"
//
// The full code set is distributed by CMS as a fixed-width "order file".
// ParseOrderFile reads that format:
//
//	entries, err := icd10.LoadOrderFile("icd10cm_order_2026.txt")
package icd10
