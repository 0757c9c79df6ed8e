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


package icd10

import "errors"

var (
	// ErrMalformedCode indicates a string that does not normalize to an
	// ICD-10-CM code shape.
	ErrMalformedCode = errors.New("malformed ICD-10-CM code")

	// ErrUnknownChapter indicates a code whose category falls outside every
	// chapter range of the tabular list.
	ErrUnknownChapter = errors.New("code outside tabular list chapters")

	// ErrNoEntries indicates a code set source that yielded no usable rows.
	ErrNoEntries = errors.New("code set contains no entries")
)
