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

package indexing

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/hierarchy"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/storage"
)

// vectorizeStage keys the resume checkpoint for the vectorize stage.
const vectorizeStage = "vectorize"

// Vectorizer trains the hierarchy embedding over a code set and writes each
// stored record's vector back through the repository.
type Vectorizer struct {
	codes       storage.CodeRepository
	checkpoints storage.CheckpointRepository
	trainer     *embedding.Trainer
	batchSize   int
	interval    int
	workers     int
	maxRetries  int
	retryDelay  time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// NewVectorizer creates a vectorizer over the given repositories.
// progress: where to write progress output (typically os.Stderr)
func NewVectorizer(
	codes storage.CodeRepository,
	checkpoints storage.CheckpointRepository,
	trainer *embedding.Trainer,
	config *Config,
	progress io.Writer,
) (*Vectorizer, error) {
	if codes == nil {
		return nil, ErrCodeRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if trainer == nil {
		return nil, ErrTrainerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Vectorizer{
		codes:       codes,
		checkpoints: checkpoints,
		trainer:     trainer,
		batchSize:   config.batchSize(),
		interval:    config.reportInterval(),
		workers:     config.workers(),
		maxRetries:  config.maxRetries(),
		retryDelay:  config.retryDelay(),
		progress:    progress,
		logger:      slog.Default().With("stage", vectorizeStage),
	}, nil
}

// Vectorize trains the embedding over the code set hierarchy, then assigns a
// vector to every stored record that still needs one, batching the updates
// across a worker pool. Progress is checkpointed so an interrupted run picks
// up where it left off. Returns the trained model.
func (v *Vectorizer) Vectorize(ctx context.Context, entries []icd10.Entry) (*embedding.Model, error) {
	graph, err := hierarchy.Build(entries)
	if err != nil {
		return nil, err
	}

	model, err := v.trainer.Train(ctx, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to train embedding: %w", err)
	}

	records, err := v.pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		if err := v.checkpoints.ClearCheckpoint(ctx, vectorizeStage); err != nil {
			return nil, fmt.Errorf("failed to clear checkpoint: %w", err)
		}
		fmt.Fprintf(v.progress, "No records to vectorize\n")
		return model, nil
	}

	fmt.Fprintf(v.progress, "Vectorizing %d code records (batch size: %d, workers: %d)\n",
		len(records), v.batchSize, v.workers)

	tracker := NewProgressTracker(v.progress, "Vectorizing", len(records), v.interval)
	tracker.Start()

	// Records arrive in ascending Id order; keep the batches that way so the
	// frontier stays a prefix of the Id space.
	var batches [][]*core.CodeRecord
	for start := 0; start < len(records); start += v.batchSize {
		end := min(start+v.batchSize, len(records))
		batches = append(batches, records[start:end])
	}
	front := newFrontier(batches)

	pool, err := ants.NewPool(v.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create vectorize pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	errs := make(chan error, len(batches))
	var submitErr error

	for i, batch := range batches {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := v.vectorizeBatch(ctx, batch, model); err != nil {
				select {
				case errs <- err:
				default:
				}
				return
			}
			tracker.Increment(len(batch))
			if lastId, advanced := front.complete(i); advanced {
				cp := &core.Checkpoint{Stage: vectorizeStage, LastId: lastId}
				if err := v.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
					v.logger.Warn("failed to save checkpoint", "lastId", uint64(lastId), "error", err)
				}
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("failed to submit vectorize task: %w", err)
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	select {
	case err := <-errs:
		return nil, err
	default:
	}

	tracker.Finish()

	// The stage is complete; the frontier has no further use.
	if err := v.checkpoints.ClearCheckpoint(ctx, vectorizeStage); err != nil {
		return nil, fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	rate := float64(len(records)) / elapsed.Seconds()
	fmt.Fprintf(v.progress, "Vectorized %d records in %v (%.1f records/sec)\n",
		len(records), elapsed.Round(time.Millisecond), rate)

	return model, nil
}

// Reset clears the resume frontier so the next Vectorize starts from the
// beginning of the record space.
func (v *Vectorizer) Reset(ctx context.Context) error {
	return v.checkpoints.ClearCheckpoint(ctx, vectorizeStage)
}

// pending returns the stored records that still need vectors, in ascending
// Id order. Records at or below a saved frontier already got theirs before
// the previous run was interrupted.
func (v *Vectorizer) pending(ctx context.Context) ([]*core.CodeRecord, error) {
	var fromId core.ID
	cp, err := v.checkpoints.LoadCheckpoint(ctx, vectorizeStage)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if cp != nil {
		fromId = cp.LastId
		v.logger.Info("resuming from checkpoint", "lastId", uint64(fromId))
	}

	var records []*core.CodeRecord
	err = v.codes.ListCodeRecords(ctx, func(record *core.CodeRecord) error {
		if record.Id > fromId {
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	// Sort by Id, not store key order, so checkpointing works correctly.
	slices.SortFunc(records, func(a, b *core.CodeRecord) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return records, nil
}

// vectorizeBatch assigns model vectors to one batch and writes it back,
// retrying transaction conflicts.
func (v *Vectorizer) vectorizeBatch(ctx context.Context, batch []*core.CodeRecord, model *embedding.Model) error {
	updates := make([]*core.CodeRecord, 0, len(batch))
	for _, record := range batch {
		vector, ok := model.Vector(record.Code)
		if !ok {
			// A stored code the hierarchy never saw stays lexical-only.
			v.logger.Warn("no vector for stored code", "code", record.Code)
			continue
		}
		record.Vector = vector
		updates = append(updates, record)
	}
	if len(updates) == 0 {
		return nil
	}

	err := RetryWithBackoff(ctx, func() error {
		_, err := v.codes.UpdateCodeRecords(ctx, updates...)
		return err
	}, v.maxRetries, v.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to update %d records after %d attempts: %w",
			len(updates), v.maxRetries, err)
	}
	return nil
}

// frontier tracks batch completion so the checkpoint only ever records a
// prefix: every record at or below the saved Id has its vector, whatever
// order the pool finished in.
type frontier struct {
	mu     sync.Mutex
	done   []bool
	lastId []core.ID
	next   int
}

func newFrontier(batches [][]*core.CodeRecord) *frontier {
	f := &frontier{
		done:   make([]bool, len(batches)),
		lastId: make([]core.ID, len(batches)),
	}
	for i, batch := range batches {
		f.lastId[i] = batch[len(batch)-1].Id
	}
	return f
}

// complete marks batch i done and reports the new frontier Id when the
// contiguous completed prefix grew.
func (f *frontier) complete(i int) (core.ID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.done[i] = true
	if i != f.next {
		return 0, false
	}
	for f.next < len(f.done) && f.done[f.next] {
		f.next++
	}
	return f.lastId[f.next-1], true
}
