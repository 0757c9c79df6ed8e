package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"identical", "low back pain", "low back pain", 1.0},
		{"both empty", "", "", 0.0},
		{"one empty", "pain", "", 0.0},
		{"disjoint", "ab", "cd", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Ratio(tt.a, tt.b), 1e-9)
		})
	}

	t.Run("single substitution costs two edits", func(t *testing.T) {
		// "cat" -> "car": 1 - 2/6
		assert.InDelta(t, 1.0-2.0/6.0, Ratio("cat", "car"), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, Ratio("asthma", "asthmatic"), Ratio("asthmatic", "asthma"), 1e-9)
	})
}

func TestTokenSortRatio(t *testing.T) {
	t.Run("word order ignored", func(t *testing.T) {
		score := TokenSortRatio("pain back lower", "lower back pain")
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("punctuation and case ignored", func(t *testing.T) {
		score := TokenSortRatio("Low back pain", "low back pain,")
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("typo scores high but below exact", func(t *testing.T) {
		exact := TokenSortRatio("diabetes", "diabetes")
		typo := TokenSortRatio("diabetis", "diabetes")
		assert.InDelta(t, 1.0, exact, 1e-9)
		assert.Greater(t, typo, 0.8)
		assert.Less(t, typo, 1.0)
	})

	t.Run("longer description dilutes score", func(t *testing.T) {
		short := TokenSortRatio("low back pain", "low back pain")
		diluted := TokenSortRatio("low back pain", "low back pain, unspecified")
		assert.Greater(t, short, diluted)
		assert.Greater(t, diluted, 0.5)
	})

	t.Run("unrelated text scores low", func(t *testing.T) {
		score := TokenSortRatio("fractured femur", "essential hypertension")
		assert.Less(t, score, 0.4)
	})
}

func TestCodeSimilarity(t *testing.T) {
	t.Run("identical codes", func(t *testing.T) {
		assert.InDelta(t, 1.0, CodeSimilarity("E1152", "E1152"), 1e-9)
	})

	t.Run("shared prefix scores higher", func(t *testing.T) {
		sibling := CodeSimilarity("E1152", "E115")
		unrelated := CodeSimilarity("E1152", "W19XXXA")
		assert.Greater(t, sibling, 0.9)
		assert.Greater(t, sibling, unrelated)
	})
}
