package ingestion

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chatsync/ai"
)

// EmbedResult is the outcome of embedding one text, addressed by its
// input index. Exactly one of Embedding and Err is meaningful.
type EmbedResult struct {
	Index     int
	Embedding []float32
	Err       error
}

// EmbedAll generates embeddings for all texts on the given worker pool.
// Each text is embedded independently; a failure on one text is captured
// in its result slot and never aborts sibling tasks or the overall call.
// No retry is performed here; retry policy belongs to the caller.
// Result order matches input order regardless of completion order.
func EmbedAll(ctx context.Context, embedder ai.Embedder, pool *ants.Pool, texts []string) []EmbedResult {
	results := make([]EmbedResult, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			embedding, err := embedder.EmbedText(ctx, text)
			results[i] = EmbedResult{Index: i, Embedding: embedding, Err: err}
		})
		if err != nil {
			// Pool rejected the task (released or overloaded); record it
			// like any other per-item failure.
			results[i] = EmbedResult{Index: i, Err: err}
			wg.Done()
		}
	}
	wg.Wait()

	return results
}
