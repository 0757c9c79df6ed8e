package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/storage"
)

func TestCodeRecordBasics(t *testing.T) {
	// Create in-memory repositories
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Test adding a code record
	record := &core.CodeRecord{
		Code:        "E1152",
		Description: "Type 2 diabetes mellitus with diabetic peripheral angiopathy with gangrene",
		Billable:    true,
		Chapter:     4,
	}

	added, err := codeRepo.AddCodeRecords(ctx, record)
	if err != nil {
		t.Fatalf("Failed to add code record: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].Id != core.IDFromCode("E1152") {
		t.Fatal("Expected ID derived from code")
	}
	if added[0].InsertedAt.IsZero() || added[0].UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}

	// Test retrieving the record by ID
	retrieved, err := codeRepo.GetCodeRecord(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get code record: %v", err)
	}

	if retrieved.Code != "E1152" {
		t.Fatalf("Expected 'E1152', got '%s'", retrieved.Code)
	}
	if !retrieved.Billable {
		t.Fatal("Expected billable record")
	}

	// And by code string
	byCode, err := codeRepo.GetCodeRecordByCode(ctx, "E1152")
	if err != nil {
		t.Fatalf("Failed to get code record by code: %v", err)
	}
	if byCode.Id != added[0].Id {
		t.Fatalf("Expected ID %d, got %d", added[0].Id, byCode.Id)
	}
}

func TestCodeRecordNotFound(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = codeRepo.GetCodeRecord(ctx, core.IDFromCode("Z9999"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	_, err = codeRepo.GetCodeRecordByCode(ctx, "Z9999")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddCodeRecords_RejectsInvalid(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Malformed code
	_, err = codeRepo.AddCodeRecords(ctx, &core.CodeRecord{
		Code:        "12345",
		Description: "Not a code",
		Chapter:     1,
	})
	if !errors.Is(err, core.ErrMalformedCode) {
		t.Fatalf("Expected ErrMalformedCode, got %v", err)
	}

	// Missing description
	_, err = codeRepo.AddCodeRecords(ctx, &core.CodeRecord{
		Code:    "A000",
		Chapter: 1,
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("Expected ErrEmptyDescription, got %v", err)
	}
}

func TestAddCodeRecords_DuplicateInBatch(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	records := []*core.CodeRecord{
		{Code: "I10", Description: "Essential (primary) hypertension", Billable: true, Chapter: 9},
		{Code: "I10", Description: "Essential (primary) hypertension", Billable: true, Chapter: 9},
	}

	_, err = codeRepo.AddCodeRecords(ctx, records...)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// Nothing from the failed batch should be visible
	count, err := codeRepo.CountCodeRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 records after failed batch, got %d", count)
	}
}

func TestUpdateCodeRecords(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.CodeRecord{
		Code:        "M5450",
		Description: "Low back pain, unspecified",
		Billable:    true,
		Chapter:     13,
	}
	added, err := codeRepo.AddCodeRecords(ctx, record)
	if err != nil {
		t.Fatalf("Failed to add code record: %v", err)
	}
	insertedAt := added[0].InsertedAt

	// Attach a vector, the usual update path
	added[0].Vector = []float32{0.6, 0.8}
	updated, err := codeRepo.UpdateCodeRecords(ctx, added[0])
	if err != nil {
		t.Fatalf("Failed to update code record: %v", err)
	}
	if !updated[0].InsertedAt.Equal(insertedAt) {
		t.Fatal("Expected InsertedAt to be preserved")
	}

	retrieved, err := codeRepo.GetCodeRecord(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get code record: %v", err)
	}
	if len(retrieved.Vector) != 2 {
		t.Fatalf("Expected vector of length 2, got %d", len(retrieved.Vector))
	}
	if retrieved.UpdatedAt.Before(retrieved.InsertedAt) {
		t.Fatal("Expected UpdatedAt >= InsertedAt")
	}
}

func TestUpdateCodeRecords_NotFound(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.CodeRecord{
		Id:          core.IDFromCode("N390"),
		Code:        "N390",
		Description: "Urinary tract infection, site not specified",
		Billable:    true,
		Chapter:     14,
	}

	_, err = codeRepo.UpdateCodeRecords(ctx, record)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCodeRecords_IDMismatch(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.CodeRecord{
		Id:          core.IDFromCode("A000"),
		Code:        "B000",
		Description: "Code changed after load",
		Billable:    true,
		Chapter:     1,
	}

	_, err = codeRepo.UpdateCodeRecords(ctx, record)
	if !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestUpdateCodeRecords_ChapterChangeMovesIndex(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.CodeRecord{
		Code:        "R070",
		Description: "Pain in throat",
		Billable:    true,
		Chapter:     17, // deliberately wrong at first
	}
	added, err := codeRepo.AddCodeRecords(ctx, record)
	if err != nil {
		t.Fatalf("Failed to add code record: %v", err)
	}

	added[0].Chapter = 18
	if _, err := codeRepo.UpdateCodeRecords(ctx, added[0]); err != nil {
		t.Fatalf("Failed to update code record: %v", err)
	}

	old, err := codeRepo.GetCodeRecordsByChapter(ctx, 17)
	if err != nil {
		t.Fatalf("Failed to get chapter 17 records: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("Expected no records left in chapter 17, got %d", len(old))
	}

	moved, err := codeRepo.GetCodeRecordsByChapter(ctx, 18)
	if err != nil {
		t.Fatalf("Failed to get chapter 18 records: %v", err)
	}
	if len(moved) != 1 || moved[0].Code != "R070" {
		t.Fatalf("Expected R070 in chapter 18, got %v", moved)
	}
}

func TestDeleteCodeRecords(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	records := []*core.CodeRecord{
		{Code: "K219", Description: "Gastro-esophageal reflux disease without esophagitis", Billable: true, Chapter: 11},
		{Code: "K8020", Description: "Calculus of gallbladder without cholecystitis without obstruction", Billable: true, Chapter: 11},
	}
	added, err := codeRepo.AddCodeRecords(ctx, records...)
	if err != nil {
		t.Fatalf("Failed to add code records: %v", err)
	}

	if err := codeRepo.DeleteCodeRecords(ctx, added[0].Id); err != nil {
		t.Fatalf("Failed to delete code record: %v", err)
	}

	// Primary record gone
	if _, err := codeRepo.GetCodeRecord(ctx, added[0].Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// String index entry gone too
	if _, err := codeRepo.GetCodeRecordByCode(ctx, "K219"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound from code index after delete, got %v", err)
	}

	// Chapter index no longer lists it
	inChapter, err := codeRepo.GetCodeRecordsByChapter(ctx, 11)
	if err != nil {
		t.Fatalf("Failed to get chapter records: %v", err)
	}
	if len(inChapter) != 1 || inChapter[0].Code != "K8020" {
		t.Fatalf("Expected only K8020 left in chapter 11, got %v", inChapter)
	}

	// Deleting again reports not found
	if err := codeRepo.DeleteCodeRecords(ctx, added[0].Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetCodeRecords_SkipsMissing(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := codeRepo.AddCodeRecords(ctx, &core.CodeRecord{
		Code:        "F411",
		Description: "Generalized anxiety disorder",
		Billable:    true,
		Chapter:     5,
	})
	if err != nil {
		t.Fatalf("Failed to add code record: %v", err)
	}

	got, err := codeRepo.GetCodeRecords(ctx, added[0].Id, core.IDFromCode("Z0000"))
	if err != nil {
		t.Fatalf("Failed to get code records: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
}

func TestGetCodeRecordsByChapter_Ordering(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Insert out of order; chapter scans come back sorted by code
	records := []*core.CodeRecord{
		{Code: "J45909", Description: "Unspecified asthma, uncomplicated", Billable: true, Chapter: 10},
		{Code: "J069", Description: "Acute upper respiratory infection, unspecified", Billable: true, Chapter: 10},
		{Code: "J189", Description: "Pneumonia, unspecified organism", Billable: true, Chapter: 10},
	}
	if _, err := codeRepo.AddCodeRecords(ctx, records...); err != nil {
		t.Fatalf("Failed to add code records: %v", err)
	}

	got, err := codeRepo.GetCodeRecordsByChapter(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get chapter records: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(got))
	}
	want := []string{"J069", "J189", "J45909"}
	for i, code := range want {
		if got[i].Code != code {
			t.Fatalf("Expected %s at position %d, got %s", code, i, got[i].Code)
		}
	}
}

func TestGetCodeRecordsByChapter_InvalidChapter(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := codeRepo.GetCodeRecordsByChapter(ctx, 0); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery for chapter 0, got %v", err)
	}
	if _, err := codeRepo.GetCodeRecordsByChapter(ctx, 23); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery for chapter 23, got %v", err)
	}
}

func TestListAndCountCodeRecords(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	records := []*core.CodeRecord{
		{Code: "A000", Description: "Cholera due to Vibrio cholerae 01, biovar cholerae", Billable: true, Chapter: 1},
		{Code: "C3490", Description: "Malignant neoplasm of unspecified part of unspecified bronchus or lung", Billable: true, Chapter: 2},
		{Code: "D509", Description: "Iron deficiency anemia, unspecified", Billable: true, Chapter: 3},
	}
	if _, err := codeRepo.AddCodeRecords(ctx, records...); err != nil {
		t.Fatalf("Failed to add code records: %v", err)
	}

	count, err := codeRepo.CountCodeRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 records, got %d", count)
	}

	seen := make(map[string]bool)
	err = codeRepo.ListCodeRecords(ctx, func(record *core.CodeRecord) error {
		seen[record.Code] = true
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(seen) != 3 || !seen["A000"] || !seen["C3490"] || !seen["D509"] {
		t.Fatalf("List visited unexpected set: %v", seen)
	}

	// Early exit propagates the callback error
	sentinel := errors.New("stop")
	err = codeRepo.ListCodeRecords(ctx, func(record *core.CodeRecord) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected callback error, got %v", err)
	}
}

func TestAddCodeRecords_ReAddOverwrites(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first := &core.CodeRecord{Code: "I10", Description: "Old description", Billable: true, Chapter: 9}
	if _, err := codeRepo.AddCodeRecords(ctx, first); err != nil {
		t.Fatalf("Failed to add code record: %v", err)
	}

	second := &core.CodeRecord{Code: "I10", Description: "Essential (primary) hypertension", Billable: true, Chapter: 9}
	if _, err := codeRepo.AddCodeRecords(ctx, second); err != nil {
		t.Fatalf("Failed to re-add code record: %v", err)
	}

	got, err := codeRepo.GetCodeRecordByCode(ctx, "I10")
	if err != nil {
		t.Fatalf("Failed to get code record: %v", err)
	}
	if got.Description != "Essential (primary) hypertension" {
		t.Fatalf("Expected overwrite, got '%s'", got.Description)
	}

	count, err := codeRepo.CountCodeRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 record after overwrite, got %d", count)
	}
}
