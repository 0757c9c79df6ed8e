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


package search

import "errors"

var (
	// ErrCodeRepositoryRequired is returned when a code repository is not provided.
	ErrCodeRepositoryRequired = errors.New("code repository required")

	// ErrMatchIndexRequired is returned when a lexical match index is not provided.
	ErrMatchIndexRequired = errors.New("match index required")

	// ErrEmptyQuery is returned when a query is empty or only whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrIndexEmpty is returned when searching before any codes have been indexed.
	ErrIndexEmpty = errors.New("no codes indexed")

	// ErrNoVector is returned by Related when the anchor code has no
	// hierarchy embedding yet.
	ErrNoVector = errors.New("code has no vector")
)
