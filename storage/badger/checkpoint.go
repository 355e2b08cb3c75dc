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
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/storage"
)

// CheckpointRepository implements storage.CheckpointRepository for BadgerDB.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a new CheckpointRepository.
func NewCheckpointRepository(backend *Backend) (*CheckpointRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &CheckpointRepository{
		backend: backend,
	}, nil
}

// SaveCheckpoint persists a checkpoint for a scope. The cursor is
// monotonic: a save with a cursor at or before the stored one is a no-op,
// so the watermark never moves backwards.
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	if err := core.ValidateCursor(checkpoint.Cursor); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckpointKey(checkpoint.Scope)

		item, err := tx.Get(key)
		if err == nil {
			var existing *core.Checkpoint
			valErr := item.Value(func(val []byte) error {
				var unmarshalErr error
				existing, unmarshalErr = storage.UnmarshalCheckpoint(val)
				return unmarshalErr
			})
			if valErr != nil {
				return valErr
			}
			// Lexicographic comparison orders YYYY-MM-DD dates correctly.
			if existing != nil && existing.Cursor >= checkpoint.Cursor {
				return nil
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		checkpoint.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalCheckpoint(checkpoint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint retrieves the checkpoint for a scope.
// Returns nil, nil if no checkpoint exists.
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context, scope string) (*core.Checkpoint, error) {
	var checkpoint *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(scope))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)

	return checkpoint, err
}

// Close releases resources held by the repository. The underlying backend
// is owned by the caller and stays open.
func (r *CheckpointRepository) Close() error {
	return nil
}
