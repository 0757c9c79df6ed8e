package storage

import (
	"testing"
	"time"

	"github.com/poiesic/icdmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"code-based ID", core.IDFromCode("E1152")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalCodeRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		record *core.CodeRecord
	}{
		{
			name: "minimal record",
			record: &core.CodeRecord{
				Id:          core.IDFromCode("A000"),
				Code:        "A000",
				Description: "Cholera due to Vibrio cholerae 01, biovar cholerae",
				Billable:    true,
				Chapter:     1,
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
		{
			name: "record with vector",
			record: &core.CodeRecord{
				Id:          core.IDFromCode("E1152"),
				Code:        "E1152",
				Description: "Type 2 diabetes mellitus with diabetic peripheral angiopathy with gangrene",
				Billable:    true,
				Chapter:     4,
				Vector:      []float32{0.1, 0.2, 0.3, 0.4, 0.5},
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
		{
			name: "non-billable category",
			record: &core.CodeRecord{
				Id:          core.IDFromCode("S72"),
				Code:        "S72",
				Description: "Fracture of femur",
				Billable:    false,
				Chapter:     19,
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
		{
			name: "zero timestamps",
			record: &core.CodeRecord{
				Id:          core.IDFromCode("J45909"),
				Code:        "J45909",
				Description: "Unspecified asthma, uncomplicated",
				Billable:    true,
				Chapter:     10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCodeRecord(tt.record)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalCodeRecord(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.record.Id, decoded.Id)
			assert.Equal(t, tt.record.Code, decoded.Code)
			assert.Equal(t, tt.record.Description, decoded.Description)
			assert.Equal(t, tt.record.Billable, decoded.Billable)
			assert.Equal(t, tt.record.Chapter, decoded.Chapter)
			assert.True(t, tt.record.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.record.UpdatedAt.Equal(decoded.UpdatedAt))
			if len(tt.record.Vector) == 0 {
				assert.Empty(t, decoded.Vector)
			} else {
				assert.Equal(t, tt.record.Vector, decoded.Vector)
			}
		})
	}
}

func TestUnmarshalCodeRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCodeRecord(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalIndexInfo(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	info := &core.IndexInfo{
		Source:     "icd10cm_order_2026.txt",
		CodeCount:  74260,
		Dimensions: 64,
		BuiltAt:    now,
		EmbeddedAt: now.Add(time.Minute),
	}

	data := MarshalIndexInfo(info)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalIndexInfo(data)
	require.NoError(t, err)
	assert.Equal(t, info.Source, decoded.Source)
	assert.Equal(t, info.CodeCount, decoded.CodeCount)
	assert.Equal(t, info.Dimensions, decoded.Dimensions)
	assert.True(t, info.BuiltAt.Equal(decoded.BuiltAt))
	assert.True(t, info.EmbeddedAt.Equal(decoded.EmbeddedAt))
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	cp := &core.Checkpoint{
		Stage:     "vectorize",
		LastId:    core.IDFromCode("M5450"),
		UpdatedAt: now,
	}

	data := MarshalCheckpoint(cp)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, cp.Stage, decoded.Stage)
	assert.Equal(t, cp.LastId, decoded.LastId)
	assert.True(t, cp.UpdatedAt.Equal(decoded.UpdatedAt))
}
