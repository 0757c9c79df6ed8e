package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/storage"
)

// CodeRepository implements storage.CodeRepository for BadgerDB.
type CodeRepository struct {
	backend *Backend
}

var _ storage.CodeRepository = (*CodeRepository)(nil)

// NewCodeRepository creates a new CodeRepository.
func NewCodeRepository(backend *Backend) (*CodeRepository, error) {
	return &CodeRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CodeRepository has no resources to release.
func (r *CodeRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *CodeRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *CodeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCodeRecords adds one or more code records to storage.
// IDs are derived from the code string, so codes must be unique in a batch.
func (r *CodeRepository) AddCodeRecords(ctx context.Context, records ...*core.CodeRecord) ([]*core.CodeRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[core.ID]struct{}, len(records))
		for _, record := range records {
			// Code is the identity, so the ID is always recomputed
			record.Id = core.IDFromCode(record.Code)

			if err := core.ValidateCodeRecord(record); err != nil {
				return err
			}
			if _, dup := seen[record.Id]; dup {
				return fmt.Errorf("%w: code %s appears twice in batch", storage.ErrDuplicateKey, record.Code)
			}
			seen[record.Id] = struct{}{}

			record.InsertedAt = time.Now().UTC()
			record.UpdatedAt = record.InsertedAt

			// Store primary record
			key := makeCodeRecordKey(record.Id)
			value := storage.MarshalCodeRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update code string index
			stringKey := makeCodeStringKey(record.Code)
			if err := tx.Set(stringKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}

			// Update chapter index
			chapterKey := makeChapterKey(record.Chapter, record.Code)
			if err := tx.Set(chapterKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateCodeRecords updates existing code records.
// The code string is immutable; records whose Id does not match their
// code are rejected.
func (r *CodeRepository) UpdateCodeRecords(ctx context.Context, records ...*core.CodeRecord) ([]*core.CodeRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateCodeRecord(record); err != nil {
				return err
			}
			if record.Id != core.IDFromCode(record.Code) {
				return fmt.Errorf("%w: record ID does not match code %s", storage.ErrInvalidQuery, record.Code)
			}

			key := makeCodeRecordKey(record.Id)

			// Read old record to detect changes
			old, err := r.readCodeRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp, preserve original insert time
			record.InsertedAt = old.InsertedAt
			record.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalCodeRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update chapter index if chapter changed
			if old.Chapter != record.Chapter {
				oldChapterKey := makeChapterKey(old.Chapter, old.Code)
				if err := tx.Delete(oldChapterKey); err != nil {
					return err
				}
				newChapterKey := makeChapterKey(record.Chapter, record.Code)
				if err := tx.Set(newChapterKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteCodeRecords removes code records by their IDs.
func (r *CodeRepository) DeleteCodeRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCodeRecordKey(id)

			// Read record to get index keys for cleanup
			record, err := r.readCodeRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			// Delete from code string index
			if err := tx.Delete(makeCodeStringKey(record.Code)); err != nil {
				return err
			}

			// Delete from chapter index
			if err := tx.Delete(makeChapterKey(record.Chapter, record.Code)); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCodeRecord retrieves a single code record by ID.
func (r *CodeRepository) GetCodeRecord(ctx context.Context, id core.ID) (*core.CodeRecord, error) {
	var result *core.CodeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCodeRecordKey(id)
		var err error
		result, err = r.readCodeRecord(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCodeRecords retrieves multiple code records by their IDs.
func (r *CodeRepository) GetCodeRecords(ctx context.Context, ids ...core.ID) ([]*core.CodeRecord, error) {
	var result []*core.CodeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCodeRecordKey(id)
			record, err := r.readCodeRecord(tx, key)
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetCodeRecordByCode retrieves a code record by its normalized code string.
func (r *CodeRepository) GetCodeRecordByCode(ctx context.Context, code string) (*core.CodeRecord, error) {
	var result *core.CodeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCodeStringKey(code))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var recordID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			recordID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readCodeRecord(tx, makeCodeRecordKey(recordID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCodeRecordsByChapter retrieves all records in a chapter, ordered by code.
func (r *CodeRepository) GetCodeRecordsByChapter(ctx context.Context, chapter int) ([]*core.CodeRecord, error) {
	if err := core.ValidateChapter(chapter); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var results []*core.CodeRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChapterKey(chapter)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			// Check if key still has our chapter prefix
			if len(key) < len(startKey) {
				break
			}
			if slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			// Read the recordID from the value
			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			record, err := r.readCodeRecord(tx, makeCodeRecordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListCodeRecords streams every stored record to fn in key order.
func (r *CodeRepository) ListCodeRecords(ctx context.Context, fn func(record *core.CodeRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(codeRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := iter.Item()
			if isIndexKey(item.Key()) {
				continue
			}

			var record *core.CodeRecord
			if err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalCodeRecord(val)
				return err
			}); err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountCodeRecords returns the number of stored code records.
func (r *CodeRepository) CountCodeRecords(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(codeRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if isIndexKey(iter.Item().Key()) {
				continue
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// readCodeRecord reads a code record from the transaction.
// Returns nil, nil when the key does not exist.
func (r *CodeRepository) readCodeRecord(tx *badger.Txn, key []byte) (*core.CodeRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.CodeRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalCodeRecord(val)
		return unmarshalErr
	})
	return record, err
}
