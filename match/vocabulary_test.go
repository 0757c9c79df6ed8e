package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	vocab := DefaultVocabulary()
	require.NotEmpty(t, vocab.Synonyms)

	expanded := vocab.Expand([]string{"htn"})
	assert.Equal(t, "htn", expanded[0])
	assert.Contains(t, expanded, "essential")
	assert.Contains(t, expanded, "hypertension")
}

func TestVocabulary_Expand(t *testing.T) {
	vocab := Vocabulary{Synonyms: map[string][]string{
		"mi": {"myocardial infarction"},
	}}

	t.Run("expands known shorthand", func(t *testing.T) {
		expanded := vocab.Expand([]string{"acute", "mi"})
		assert.Equal(t, []string{"acute", "mi", "myocardial", "infarction"}, expanded)
	})

	t.Run("unknown tokens pass through", func(t *testing.T) {
		expanded := vocab.Expand([]string{"fracture", "femur"})
		assert.Equal(t, []string{"fracture", "femur"}, expanded)
	})

	t.Run("deduplicates", func(t *testing.T) {
		expanded := vocab.Expand([]string{"mi", "mi"})
		assert.Equal(t, []string{"mi", "myocardial", "infarction"}, expanded)
	})

	t.Run("empty vocabulary is a no-op", func(t *testing.T) {
		empty := Vocabulary{}
		assert.Equal(t, []string{"a", "b"}, empty.Expand([]string{"a", "b"}))
	})
}

func TestVocabulary_Variants(t *testing.T) {
	vocab := Vocabulary{Synonyms: map[string][]string{
		"cva": {"cerebral infarction", "stroke"},
		"htn": {"essential hypertension"},
	}}

	t.Run("original query comes first", func(t *testing.T) {
		variants := vocab.Variants("history of cva")
		require.NotEmpty(t, variants)
		assert.Equal(t, "history of cva", variants[0])
	})

	t.Run("one rewrite per phrase", func(t *testing.T) {
		variants := vocab.Variants("cva")
		assert.Equal(t, []string{"cva", "cerebral infarction", "stroke"}, variants)
	})

	t.Run("plain queries yield a single variant", func(t *testing.T) {
		variants := vocab.Variants("low back pain")
		assert.Equal(t, []string{"low back pain"}, variants)
	})

	t.Run("rewrites are capped", func(t *testing.T) {
		variants := vocab.Variants("cva htn cva htn cva")
		assert.LessOrEqual(t, len(variants), maxVariants)
	})
}

func TestLoadVocabulary(t *testing.T) {
	t.Run("empty path returns the builtin table", func(t *testing.T) {
		vocab, err := LoadVocabulary("")
		require.NoError(t, err)
		assert.NotEmpty(t, vocab.Synonyms)
	})

	t.Run("loads from file with case-folded keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		content := "synonyms:\n  HTN:\n    - essential hypertension\n  dm:\n    - diabetes mellitus\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		vocab, err := LoadVocabulary(path)
		require.NoError(t, err)
		assert.Len(t, vocab.Synonyms, 2)
		assert.Contains(t, vocab.Synonyms, "htn")
		assert.Contains(t, vocab.Synonyms, "dm")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadVocabulary(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty synonyms errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		require.NoError(t, os.WriteFile(path, []byte("synonyms: {}\n"), 0644))

		_, err := LoadVocabulary(path)
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\n\t- bad"), 0644))

		_, err := LoadVocabulary(path)
		assert.Error(t, err)
	})
}
