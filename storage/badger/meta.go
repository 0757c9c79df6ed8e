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


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/icdmap/core"
	"github.com/poiesic/icdmap/storage"
)

// MetaRepository implements storage.MetaRepository for BadgerDB.
type MetaRepository struct {
	backend *Backend
}

var _ storage.MetaRepository = (*MetaRepository)(nil)

// NewMetaRepository creates a new MetaRepository.
func NewMetaRepository(backend *Backend) *MetaRepository {
	return &MetaRepository{
		backend: backend,
	}
}

// SaveIndexInfo persists the index metadata, replacing any prior value.
func (r *MetaRepository) SaveIndexInfo(ctx context.Context, info *core.IndexInfo) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		value := storage.MarshalIndexInfo(info)
		if err := tx.Set(makeIndexInfoKey(), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadIndexInfo retrieves the stored index metadata.
// Returns nil, nil if no metadata has been saved.
func (r *MetaRepository) LoadIndexInfo(ctx context.Context) (*core.IndexInfo, error) {
	var info *core.IndexInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexInfoKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			info, unmarshalErr = storage.UnmarshalIndexInfo(val)
			return unmarshalErr
		})
	}, false)

	return info, err
}
