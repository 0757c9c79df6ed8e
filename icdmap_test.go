package icdmap

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/search"
	"github.com/poiesic/icdmap/storage"
)

func fastTrainer(t *testing.T) *embedding.Trainer {
	t.Helper()

	trainer, err := embedding.NewTrainer(
		embedding.WithDimensions(16),
		embedding.WithWalks(2, 8),
		embedding.WithEpochs(2),
		embedding.WithWorkers(1),
		embedding.WithSeed(7),
	)
	require.NoError(t, err)
	return trainer
}

func TestOpen(t *testing.T) {
	t.Run("creates new index at path", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		idx, err := Open(dir)
		require.NoError(t, err)
		require.NotNil(t, idx)
		defer idx.Close()

		assert.NotNil(t, idx.CodeRepository())
		assert.NotNil(t, idx.backend)
		assert.NotNil(t, idx.logger)

		count, err := idx.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the database directory should be
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		idx, err := Open(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, idx)
	})
}

func TestOpenMemory(t *testing.T) {
	idx, err := OpenMemory()
	require.NoError(t, err)
	defer idx.Close()

	// Nothing indexed yet
	_, err = idx.Search(context.Background(), "chest pain", 3)
	assert.ErrorIs(t, err, search.ErrIndexEmpty)

	info, err := idx.Info(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestIndex_BuildAndSearch(t *testing.T) {
	idx, err := OpenMemory()
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	entries := icd10.BuiltinCatalog()

	info, err := idx.Build(ctx, icd10.SourceBuiltin, entries, fastTrainer(t), nil, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, len(entries), info.CodeCount)
	assert.Equal(t, 16, info.Dimensions)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(entries), count)

	t.Run("search finds the obvious code", func(t *testing.T) {
		matches, err := idx.Search(ctx, "type 2 diabetes without complications", 3)
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, "E11.9", matches[0].Code)
		assert.True(t, matches[0].Billable)
	})

	t.Run("lookup accepts dotted and bare forms", func(t *testing.T) {
		record, err := idx.Lookup(ctx, "E11.9")
		require.NoError(t, err)
		assert.Equal(t, "E119", record.Code)

		record, err = idx.Lookup(ctx, "e119")
		require.NoError(t, err)
		assert.Equal(t, "E119", record.Code)
	})

	t.Run("lookup of unknown code", func(t *testing.T) {
		_, err := idx.Lookup(ctx, "E8888")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("lookup of malformed code", func(t *testing.T) {
		_, err := idx.Lookup(ctx, "GERD")
		assert.ErrorIs(t, err, icd10.ErrMalformedCode)
	})

	t.Run("related returns classification neighbors", func(t *testing.T) {
		matches, err := idx.Related(ctx, "E11.9", 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		for _, m := range matches {
			assert.NotEqual(t, "E11.9", m.Code)
			assert.Contains(t, m.Justification, "Classification neighbor")
		}
	})

	t.Run("info reflects the build", func(t *testing.T) {
		loaded, err := idx.Info(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, icd10.SourceBuiltin, loaded.Source)
		assert.Equal(t, len(entries), loaded.CodeCount)
	})
}

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "icdmap_db")
	ctx := context.Background()

	idx, err := Open(dir)
	require.NoError(t, err)

	entries := icd10.BuiltinCatalog()
	_, err = idx.Build(ctx, icd10.SourceBuiltin, entries, fastTrainer(t), nil, io.Discard)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	// Reopen without rebuilding: records, vectors, and metadata survive and
	// the match index is loaded from the store.
	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(entries), count)

	matches, err := reopened.Search(ctx, "essential hypertension", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "I10", matches[0].Code)

	info, err := reopened.Info(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, len(entries), info.CodeCount)
}

func TestIndex_Reload(t *testing.T) {
	idx, err := OpenMemory()
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()

	_, err = idx.Search(ctx, "hypertension", 3)
	assert.ErrorIs(t, err, search.ErrIndexEmpty)

	record := &core.CodeRecord{
		Code:        "I10",
		Description: "Essential (primary) hypertension",
		Billable:    true,
		Chapter:     9,
	}
	_, err = idx.CodeRepository().AddCodeRecords(ctx, record)
	require.NoError(t, err)

	// Records written through the repository are invisible until a reload.
	_, err = idx.Search(ctx, "hypertension", 3)
	assert.ErrorIs(t, err, search.ErrIndexEmpty)

	require.NoError(t, idx.Reload(ctx))

	matches, err := idx.Search(ctx, "hypertension", 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "I10", matches[0].Code)
}

func TestIndex_Close(t *testing.T) {
	idx, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, idx.Close())
}
