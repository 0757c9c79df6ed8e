package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/icdmap/core"
)

func TestIndexInfoRoundTrip(t *testing.T) {
	codeRepo, metaRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Nothing saved yet
	info, err := metaRepo.LoadIndexInfo(ctx)
	if err != nil {
		t.Fatalf("Failed to load index info: %v", err)
	}
	if info != nil {
		t.Fatalf("Expected nil info before save, got %+v", info)
	}

	saved := &core.IndexInfo{
		Source:     "icd10cm_order_2026.txt",
		CodeCount:  74260,
		Dimensions: 64,
		BuiltAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := metaRepo.SaveIndexInfo(ctx, saved); err != nil {
		t.Fatalf("Failed to save index info: %v", err)
	}

	loaded, err := metaRepo.LoadIndexInfo(ctx)
	if err != nil {
		t.Fatalf("Failed to load index info: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected saved info, got nil")
	}
	if loaded.Source != saved.Source || loaded.CodeCount != saved.CodeCount || loaded.Dimensions != saved.Dimensions {
		t.Fatalf("Loaded info does not match saved: %+v", loaded)
	}
	if !loaded.BuiltAt.Equal(saved.BuiltAt) {
		t.Fatalf("Expected BuiltAt %v, got %v", saved.BuiltAt, loaded.BuiltAt)
	}

	// Saving again replaces the earlier value
	saved.CodeCount = 74261
	saved.EmbeddedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := metaRepo.SaveIndexInfo(ctx, saved); err != nil {
		t.Fatalf("Failed to re-save index info: %v", err)
	}
	loaded, err = metaRepo.LoadIndexInfo(ctx)
	if err != nil {
		t.Fatalf("Failed to reload index info: %v", err)
	}
	if loaded.CodeCount != 74261 {
		t.Fatalf("Expected replacement, got count %d", loaded.CodeCount)
	}
	if loaded.EmbeddedAt.IsZero() {
		t.Fatal("Expected EmbeddedAt to round-trip")
	}
}

func TestCheckpointLifecycle(t *testing.T) {
	codeRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { codeRepo.Close(); backend.Close() }()

	checkpointRepo := NewCheckpointRepository(backend)
	ctx := context.Background()

	// Missing checkpoint loads as nil
	cp, err := checkpointRepo.LoadCheckpoint(ctx, "vectorize")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp != nil {
		t.Fatalf("Expected nil checkpoint, got %+v", cp)
	}

	// Save and reload
	saved := &core.Checkpoint{
		Stage:  "vectorize",
		LastId: core.IDFromCode("M5450"),
	}
	if err := checkpointRepo.SaveCheckpoint(ctx, saved); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatal("Expected SaveCheckpoint to stamp UpdatedAt")
	}

	cp, err = checkpointRepo.LoadCheckpoint(ctx, "vectorize")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp == nil || cp.LastId != saved.LastId || cp.Stage != "vectorize" {
		t.Fatalf("Loaded checkpoint does not match saved: %+v", cp)
	}

	// Checkpoints are stage-scoped
	other, err := checkpointRepo.LoadCheckpoint(ctx, "build")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if other != nil {
		t.Fatalf("Expected nil checkpoint for other stage, got %+v", other)
	}

	// Clear removes it; clearing twice is fine
	if err := checkpointRepo.ClearCheckpoint(ctx, "vectorize"); err != nil {
		t.Fatalf("Failed to clear checkpoint: %v", err)
	}
	cp, err = checkpointRepo.LoadCheckpoint(ctx, "vectorize")
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp != nil {
		t.Fatalf("Expected nil checkpoint after clear, got %+v", cp)
	}
	if err := checkpointRepo.ClearCheckpoint(ctx, "vectorize"); err != nil {
		t.Fatalf("Expected clearing a missing checkpoint to succeed, got %v", err)
	}
}
