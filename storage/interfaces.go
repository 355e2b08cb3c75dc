package storage

import (
	"context"

	"github.com/poiesic/chatsync/core"
)

// VectorStore persists embedding vectors keyed by chunk ID.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// PutVectors writes vectors in one downstream call. The call has no
	// partial-batch semantics: it either is accepted as a whole or fails
	// as a whole. Callers partition larger sets into batches themselves.
	PutVectors(ctx context.Context, vectors ...*core.Vector) error

	// GetVector retrieves a stored vector by key.
	// Returns ErrNotFound if the key doesn't exist.
	GetVector(ctx context.Context, key string) (*core.Vector, error)

	// FindSimilar finds stored vectors similar to the given embedding.
	// Returns vectors with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, embedding []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close releases resources held by the store.
	Close() error
}

// CheckpointRepository persists the processing cursor per logical scope.
type CheckpointRepository interface {
	// LoadCheckpoint retrieves the checkpoint for a scope.
	// Returns nil, nil if no checkpoint exists, a valid state meaning
	// "process everything", distinct from a transport failure.
	LoadCheckpoint(ctx context.Context, scope string) (*core.Checkpoint, error)

	// SaveCheckpoint persists a checkpoint. The cursor never regresses:
	// saving a cursor at or before the stored one leaves the stored value
	// in place, so repeated saves with ascending dates are always safe.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// Close releases resources held by the repository.
	Close() error
}
