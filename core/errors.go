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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidCodeRecord indicates a CodeRecord failed validation.
	ErrInvalidCodeRecord = errors.New("invalid code record")

	// ErrEmptyCode indicates the Code field is empty.
	ErrEmptyCode = errors.New("code cannot be empty")

	// ErrMalformedCode indicates the Code field does not have the shape of an
	// ICD-10-CM code.
	ErrMalformedCode = errors.New("malformed code")

	// ErrEmptyDescription indicates the Description field is empty.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrInvalidChapter indicates a chapter number outside the tabular list.
	ErrInvalidChapter = errors.New("invalid chapter number")

	// ErrCorruptRecord indicates stored bytes could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record bytes")
)
