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

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/icdmap/core"
)

// CMS order file column layout, zero-based. Columns 1-5 hold the sort order
// number, which the parser ignores.
const (
	orderCodeStart  = 6
	orderCodeEnd    = 13
	orderFlagCol    = 14
	orderShortStart = 16
	orderShortEnd   = 76
	orderLongStart  = 77
)

// ParseOrderFile reads the fixed-width order file CMS distributes with each
// ICD-10-CM release. Blank, truncated, or otherwise unusable rows are
// skipped; their count comes back alongside the entries. A source that
// yields no entries at all is an error.
func ParseOrderFile(r io.Reader) (entries []Entry, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			skipped++
			continue
		}
		if len(raw) <= orderFlagCol {
			skipped++
			continue
		}

		code := Normalize(raw[orderCodeStart:min(orderCodeEnd, len(raw))])
		if !core.IsValidCodeShape(code) {
			skipped++
			continue
		}

		entry := Entry{
			Code:     code,
			Billable: raw[orderFlagCol] == '1',
		}
		if len(raw) > orderShortStart {
			entry.ShortDesc = strings.TrimSpace(raw[orderShortStart:min(orderShortEnd, len(raw))])
		}
		if len(raw) > orderLongStart {
			entry.LongDesc = strings.TrimSpace(raw[orderLongStart:])
		}
		if entry.Description() == "" {
			skipped++
			continue
		}

		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read code set: %w", err)
	}
	if len(entries) == 0 {
		return nil, skipped, ErrNoEntries
	}
	return entries, skipped, nil
}

// LoadOrderFile opens and parses an order file from disk.
func LoadOrderFile(path string) (entries []Entry, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open code set %s: %w", path, err)
	}
	defer f.Close()

	entries, skipped, err = ParseOrderFile(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("failed to parse code set %s: %w", path, err)
	}
	return entries, skipped, nil
}
