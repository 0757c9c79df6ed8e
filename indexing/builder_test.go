package indexing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/storage"
	"github.com/poiesic/icdmap/storage/badger"
)

func newTestRepos(t *testing.T) (storage.CodeRepository, storage.MetaRepository, storage.CheckpointRepository) {
	t.Helper()

	codes, meta, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	checkpoints := badger.NewCheckpointRepository(backend)

	t.Cleanup(func() {
		assert.NoError(t, codes.Close())
		assert.NoError(t, backend.Close())
	})
	return codes, meta, checkpoints
}

func diabetesEntries() []icd10.Entry {
	return []icd10.Entry{
		{Code: "E11", LongDesc: "Type 2 diabetes mellitus"},
		{Code: "E115", LongDesc: "Type 2 diabetes mellitus with circulatory complications"},
		{Code: "E119", Billable: true, LongDesc: "Type 2 diabetes mellitus without complications"},
		{Code: "E1122", Billable: true, LongDesc: "Type 2 diabetes mellitus with diabetic chronic kidney disease"},
		{Code: "E1152", Billable: true, LongDesc: "Type 2 diabetes mellitus with diabetic peripheral angiopathy with gangrene"},
		{Code: "E1165", Billable: true, LongDesc: "Type 2 diabetes mellitus with hyperglycemia"},
	}
}

func TestNewBuilder(t *testing.T) {
	codes, _, _ := newTestRepos(t)

	t.Run("creates builder with defaults", func(t *testing.T) {
		builder, err := NewBuilder(codes, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, builder)
		assert.Equal(t, DefaultBatchSize, builder.batchSize)
	})

	t.Run("requires code repository", func(t *testing.T) {
		_, err := NewBuilder(nil, nil, nil)
		assert.ErrorIs(t, err, ErrCodeRepositoryRequired)
	})

	t.Run("floors invalid batch size", func(t *testing.T) {
		builder, err := NewBuilder(codes, &Config{BatchSize: -3}, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultBatchSize, builder.batchSize)
	})
}

func TestBuilder_Build(t *testing.T) {
	codes, _, _ := newTestRepos(t)
	ctx := context.Background()

	var buf bytes.Buffer
	builder, err := NewBuilder(codes, &Config{BatchSize: 2, ReportInterval: 2}, &buf)
	require.NoError(t, err)

	entries := diabetesEntries()
	records, err := builder.Build(ctx, entries)
	require.NoError(t, err)
	require.Len(t, records, len(entries))
	for _, record := range records {
		assert.NotZero(t, record.Id)
	}

	count, err := codes.CountCodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(entries), count)

	stored, err := codes.GetCodeRecordByCode(ctx, "E119")
	require.NoError(t, err)
	assert.Equal(t, "Type 2 diabetes mellitus without complications", stored.Description)
	assert.True(t, stored.Billable)
	assert.Equal(t, 4, stored.Chapter)
	assert.Empty(t, stored.Vector)

	category, err := codes.GetCodeRecordByCode(ctx, "E11")
	require.NoError(t, err)
	assert.False(t, category.Billable)

	assert.Contains(t, buf.String(), "Storing 6 code records (batch size: 2)")
	assert.Contains(t, buf.String(), "Storing: 6/6 (100.0%)")
}

func TestBuilder_Build_NoEntries(t *testing.T) {
	codes, _, _ := newTestRepos(t)

	builder, err := NewBuilder(codes, nil, nil)
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestBuilder_Build_InvalidEntry(t *testing.T) {
	codes, _, _ := newTestRepos(t)
	ctx := context.Background()

	builder, err := NewBuilder(codes, nil, nil)
	require.NoError(t, err)

	// E95 is not assigned to any chapter. It comes last so the test also
	// proves validation runs before any write.
	entries := append(diabetesEntries(), icd10.Entry{Code: "E95", LongDesc: "Not an assigned code"})
	_, err = builder.Build(ctx, entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E95")

	count, err := codes.CountCodeRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBuilder_Build_DuplicateCode(t *testing.T) {
	codes, _, _ := newTestRepos(t)

	builder, err := NewBuilder(codes, nil, nil)
	require.NoError(t, err)

	entries := []icd10.Entry{
		{Code: "E119", Billable: true, LongDesc: "Type 2 diabetes mellitus without complications"},
		{Code: "E119", Billable: true, LongDesc: "Type 2 diabetes mellitus without complications"},
	}
	_, err = builder.Build(context.Background(), entries)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
