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
	"fmt"
	"strings"

	"github.com/poiesic/icdmap/core"
)

// Entry is one row of an ICD-10-CM code set.
type Entry struct {
	Code      string // normalized, no dot
	Billable  bool
	ShortDesc string
	LongDesc  string
}

// Description returns the long description, falling back to the short one.
func (e *Entry) Description() string {
	if e.LongDesc != "" {
		return e.LongDesc
	}
	return e.ShortDesc
}

// Normalize converts a code to its stored form: uppercase, surrounding
// whitespace and the dot removed. It does not validate the result.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, ".", "")
	return strings.ToUpper(code)
}

// Format renders a normalized code for display, inserting the dot after the
// three character category: "E1152" becomes "E11.52". Codes at category
// length are returned unchanged.
func Format(code string) string {
	if len(code) <= 3 {
		return code
	}
	return code[:3] + "." + code[3:]
}

// Validate normalizes a code and checks its shape, returning the normalized
// form.
func Validate(code string) (string, error) {
	norm := Normalize(code)
	if !core.IsValidCodeShape(norm) {
		return "", fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}
	return norm, nil
}

// LooksLikeCode reports whether the input plausibly is a code rather than
// diagnosis text, so queries like "E11.52" can skip fuzzy matching.
func LooksLikeCode(s string) bool {
	norm := Normalize(s)
	return core.IsValidCodeShape(norm)
}

// CategoryOf returns the three character category of a normalized code.
func CategoryOf(code string) string {
	if len(code) <= 3 {
		return code
	}
	return code[:3]
}

// ParentOf returns the immediate parent within the code tree: extension
// codes shorten by one character down to the category. The second return is
// false at category level, where the parent is the chapter rather than
// another code.
func ParentOf(code string) (string, bool) {
	if len(code) <= 3 {
		return "", false
	}
	return code[:len(code)-1], true
}

// Chapter describes one chapter of the ICD-10-CM tabular list. Start and
// End are the first and last three character categories, inclusive.
type Chapter struct {
	Number int
	Start  string
	End    string
	Title  string
}

// Chapters lists the tabular list chapters in order. Category ranges
// compare lexically, which holds for the alphanumeric categories in use
// (O9A sorts after O99).
var Chapters = []Chapter{
	{1, "A00", "B99", "Certain infectious and parasitic diseases"},
	{2, "C00", "D49", "Neoplasms"},
	{3, "D50", "D89", "Diseases of the blood and blood-forming organs and certain disorders involving the immune mechanism"},
	{4, "E00", "E89", "Endocrine, nutritional and metabolic diseases"},
	{5, "F01", "F99", "Mental, Behavioral and Neurodevelopmental disorders"},
	{6, "G00", "G99", "Diseases of the nervous system"},
	{7, "H00", "H59", "Diseases of the eye and adnexa"},
	{8, "H60", "H95", "Diseases of the ear and mastoid process"},
	{9, "I00", "I99", "Diseases of the circulatory system"},
	{10, "J00", "J99", "Diseases of the respiratory system"},
	{11, "K00", "K95", "Diseases of the digestive system"},
	{12, "L00", "L99", "Diseases of the skin and subcutaneous tissue"},
	{13, "M00", "M99", "Diseases of the musculoskeletal system and connective tissue"},
	{14, "N00", "N99", "Diseases of the genitourinary system"},
	{15, "O00", "O9A", "Pregnancy, childbirth and the puerperium"},
	{16, "P00", "P96", "Certain conditions originating in the perinatal period"},
	{17, "Q00", "Q99", "Congenital malformations, deformations and chromosomal abnormalities"},
	{18, "R00", "R99", "Symptoms, signs and abnormal clinical and laboratory findings, not elsewhere classified"},
	{19, "S00", "T88", "Injury, poisoning and certain other consequences of external causes"},
	{20, "V00", "Y99", "External causes of morbidity"},
	{21, "Z00", "Z99", "Factors influencing health status and contact with health services"},
	{22, "U00", "U85", "Codes for special purposes"},
}

// ChapterOf returns the chapter containing a normalized code.
func ChapterOf(code string) (Chapter, error) {
	if !core.IsValidCodeShape(code) {
		return Chapter{}, fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}
	category := CategoryOf(code)
	for _, ch := range Chapters {
		if category >= ch.Start && category <= ch.End {
			return ch, nil
		}
	}
	return Chapter{}, fmt.Errorf("%w: %q", ErrUnknownChapter, code)
}

// ChapterByNumber returns the chapter with the given number.
func ChapterByNumber(number int) (Chapter, error) {
	if number < 1 || number > len(Chapters) {
		return Chapter{}, fmt.Errorf("%w: chapter %d", ErrUnknownChapter, number)
	}
	return Chapters[number-1], nil
}
