package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/storage"
)

// BatchError records one failed downstream batch write.
type BatchError struct {
	// Offset is the index of the first vector in the failed batch.
	Offset int
	Err    error
}

// WriteResult summarizes a batched write: how many vectors were durably
// stored and which batches failed.
type WriteResult struct {
	Stored int
	Errors []BatchError
}

// BatchWriter writes vectors downstream in fixed-size batches. A batch
// failure is recorded with its starting offset and does not block
// subsequent batches; partial success is expected and reported.
type BatchWriter struct {
	store     storage.VectorStore
	batchSize int
	logger    *slog.Logger
}

// NewBatchWriter creates a batch writer. A non-positive batchSize falls
// back to the default.
func NewBatchWriter(store storage.VectorStore, batchSize int, logger *slog.Logger) *BatchWriter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{
		store:     store,
		batchSize: batchSize,
		logger:    logger.With("component", "batch-writer"),
	}
}

// Write partitions vectors into contiguous batches and writes each batch
// as one downstream call.
func (w *BatchWriter) Write(ctx context.Context, vectors []*core.Vector) WriteResult {
	var result WriteResult

	for start := 0; start < len(vectors); start += w.batchSize {
		end := start + w.batchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		batch := vectors[start:end]

		if err := w.store.PutVectors(ctx, batch...); err != nil {
			w.logger.Error("error storing batch", "offset", start, "size", len(batch), "err", err)
			result.Errors = append(result.Errors, BatchError{Offset: start, Err: err})
			continue
		}
		result.Stored += len(batch)
	}

	return result
}
