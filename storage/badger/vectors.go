package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/storage"
)

// VectorRepository implements storage.VectorStore for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &VectorRepository{
		backend: backend,
	}, nil
}

// PutVectors writes a batch of vectors in one transaction. The batch is
// accepted or rejected as a whole; no partial-batch state is left behind.
func (r *VectorRepository) PutVectors(ctx context.Context, vectors ...*core.Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, vector := range vectors {
			if err := core.ValidateVector(vector); err != nil {
				return err
			}
			if err := tx.Set(makeVectorKey(vector.Key), storage.MarshalVector(vector)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetVector retrieves a stored vector by key.
// Returns storage.ErrNotFound if the key doesn't exist.
func (r *VectorRepository) GetVector(ctx context.Context, key string) (*core.Vector, error) {
	var vector *core.Vector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			vector, unmarshalErr = storage.UnmarshalVector(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return vector, nil
}

// FindSimilar scans stored vectors and returns those whose similarity to
// the given embedding meets minSimilarity, highest score first.
func (r *VectorRepository) FindSimilar(ctx context.Context, embedding []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var vector *core.Vector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vector, err = storage.UnmarshalVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if vector == nil || len(vector.Embedding) == 0 {
				continue
			}

			// Cosine similarity (dot product for normalized vectors)
			similarity := dotProduct(embedding, vector.Embedding)

			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Vector: vector,
					Score:  similarity,
				})
			}
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Close releases resources held by the repository. The underlying backend
// is owned by the caller and stays open.
func (r *VectorRepository) Close() error {
	return nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
