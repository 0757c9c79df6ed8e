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

import (
	"fmt"
)

// ValidateCodeRecord validates a CodeRecord according to domain rules.
//
// Validation rules:
//   - Code must not be empty and must have the shape of a normalized
//     ICD-10-CM code (dot already stripped)
//   - Description must not be empty
//   - Chapter must be within the tabular list
//
// NOT validated (populated during indexing):
//   - Vector (can be empty until the vectorizer runs)
//   - InsertedAt/UpdatedAt (set by the repository)
func ValidateCodeRecord(record *CodeRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidCodeRecord)
	}

	if record.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCodeRecord, ErrEmptyCode)
	}

	if !IsValidCodeShape(record.Code) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidCodeRecord, ErrMalformedCode, record.Code)
	}

	if record.Description == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCodeRecord, ErrEmptyDescription)
	}

	if err := ValidateChapter(record.Chapter); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCodeRecord, err)
	}

	return nil
}

// ValidateChapter validates that a chapter number is within the tabular list.
func ValidateChapter(chapter int) error {
	if chapter < 1 || chapter > ChapterCount {
		return fmt.Errorf("%w: value %d", ErrInvalidChapter, chapter)
	}
	return nil
}

// IsValidCodeShape reports whether code has the shape of a normalized
// ICD-10-CM code: an uppercase letter, a digit, an alphanumeric, then up to
// four alphanumeric extension characters. The second character is always a
// digit in ICD-10-CM (letters only appear from the third position on, as in
// C4A or O9A), which also keeps short clinical shorthand like "GERD" from
// passing as a code. Normalization (uppercasing, dot removal) is the
// caller's job.
func IsValidCodeShape(code string) bool {
	if len(code) < 3 || len(code) > 7 {
		return false
	}
	if code[0] < 'A' || code[0] > 'Z' {
		return false
	}
	if code[1] < '0' || code[1] > '9' {
		return false
	}
	for i := 2; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
