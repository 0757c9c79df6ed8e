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


package match

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary maps clinical shorthand to the terms code descriptions use.
// Keys are single lowercase tokens; values are expansion phrases whose
// tokens are added to the query before candidate lookup.
type Vocabulary struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// LoadVocabulary reads a vocabulary from a YAML file.
// An empty path returns the built-in clinical vocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Vocabulary{}, err
	}
	var vocab Vocabulary
	if err := yaml.Unmarshal(content, &vocab); err != nil {
		return Vocabulary{}, err
	}
	if len(vocab.Synonyms) == 0 {
		return Vocabulary{}, ErrEmptyVocabulary
	}

	// Normalize keys so lookups stay case-insensitive
	normalized := make(map[string][]string, len(vocab.Synonyms))
	for key, expansions := range vocab.Synonyms {
		normalized[strings.ToLower(key)] = expansions
	}
	vocab.Synonyms = normalized
	return vocab, nil
}

// maxVariants caps the query rewrites Variants will produce.
const maxVariants = 8

// Variants returns rewrites of the query with shorthand tokens replaced by
// their vocabulary phrases, the original query first. A token with several
// phrases yields one rewrite per phrase, capped at maxVariants.
func (v Vocabulary) Variants(query string) []string {
	tokens := tokenize(query)
	combos := [][]string{{}}

	for _, token := range tokens {
		options := [][]string{{token}}
		for _, phrase := range v.Synonyms[token] {
			options = append(options, tokenize(phrase))
		}

		next := make([][]string, 0, len(combos))
		for _, combo := range combos {
			for _, option := range options {
				if len(next) == maxVariants {
					break
				}
				extended := make([]string, 0, len(combo)+len(option))
				extended = append(extended, combo...)
				extended = append(extended, option...)
				next = append(next, extended)
			}
		}
		combos = next
	}

	variants := make([]string, 0, len(combos))
	seen := make(map[string]bool, len(combos))
	for _, combo := range combos {
		variant := strings.Join(combo, " ")
		if !seen[variant] {
			seen[variant] = true
			variants = append(variants, variant)
		}
	}
	return variants
}

// Expand returns tokens plus the tokens of any expansions, deduplicated.
// Original tokens keep their positions; expansions append.
func (v Vocabulary) Expand(tokens []string) []string {
	if len(v.Synonyms) == 0 {
		return tokens
	}

	seen := make(map[string]bool, len(tokens))
	expanded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !seen[token] {
			seen[token] = true
			expanded = append(expanded, token)
		}
	}

	for _, token := range tokens {
		for _, phrase := range v.Synonyms[token] {
			for _, expansion := range tokenizeAndFilter(phrase) {
				if !seen[expansion] {
					seen[expansion] = true
					expanded = append(expanded, expansion)
				}
			}
		}
	}

	return expanded
}

// DefaultVocabulary returns the built-in clinical shorthand table.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{Synonyms: map[string][]string{
		"dm":       {"diabetes mellitus"},
		"t1dm":     {"type 1 diabetes mellitus"},
		"t2dm":     {"type 2 diabetes mellitus"},
		"htn":      {"essential hypertension"},
		"hld":      {"hyperlipidemia"},
		"uti":      {"urinary tract infection"},
		"uri":      {"upper respiratory infection"},
		"copd":     {"chronic obstructive pulmonary disease"},
		"chf":      {"congestive heart failure"},
		"cad":      {"coronary artery disease"},
		"mi":       {"myocardial infarction"},
		"afib":     {"atrial fibrillation"},
		"cva":      {"cerebral infarction", "stroke"},
		"tia":      {"transient ischemic attack"},
		"ckd":      {"chronic kidney disease"},
		"esrd":     {"end stage renal disease"},
		"gerd":     {"gastro-esophageal reflux disease"},
		"osa":      {"obstructive sleep apnea"},
		"ra":       {"rheumatoid arthritis"},
		"oa":       {"osteoarthritis"},
		"gad":      {"generalized anxiety disorder"},
		"mdd":      {"major depressive disorder"},
		"adhd":     {"attention-deficit hyperactivity disorder"},
		"sob":      {"shortness of breath", "dyspnea"},
		"fx":       {"fracture"},
		"heart":    {"cardiac"},
		"kidney":   {"renal"},
		"stroke":   {"cerebral infarction"},
		"flu":      {"influenza"},
		"sugar":    {"diabetes mellitus"},
	}}
}
