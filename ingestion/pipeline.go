package ingestion

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chatsync/ai"
	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/segment"
	"github.com/poiesic/chatsync/source"
	"github.com/poiesic/chatsync/storage"
)

const (
	defaultMaxWorkers = 10
	defaultBatchSize  = 50
	defaultScope      = "chat-history"
	defaultSourceTag  = "webex"

	// defaultSafetyMargin is the execution time reserved for final
	// bookkeeping when a remaining-time signal is available.
	defaultSafetyMargin = 30 * time.Second

	// chunkTextLimit caps the chunk text copy carried in vector metadata.
	chunkTextLimit = 2000
)

// Pipeline drives the sync of chat transcript sources into the vector
// store. Sources are processed strictly sequentially in ascending date
// order; within one source, embedding calls fan out on a bounded worker
// pool. The checkpoint cursor is the commit point of each unit of work.
type Pipeline struct {
	loader      source.Loader
	segmenter   *segment.Segmenter
	embedder    ai.Embedder
	writer      *BatchWriter
	checkpoints storage.CheckpointRepository
	pool        *ants.Pool

	scope        string
	sourceTag    string
	batchSize    int
	remaining    func() time.Duration // nil disables the early-pause check
	safetyMargin time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for embedding generation.
// This is a capacity control for downstream rate limits, not a tuning
// knob. Default is 10, minimum 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSegmenter sets the conversation segmenter.
// Default uses the stock keyword table and segmentation limits.
func WithSegmenter(segmenter *segment.Segmenter) Option {
	return func(p *Pipeline) error {
		if segmenter != nil {
			p.segmenter = segmenter
		}
		return nil
	}
}

// WithScope sets the checkpoint scope (project namespace).
func WithScope(scope string) Option {
	return func(p *Pipeline) error {
		if scope != "" {
			p.scope = scope
		}
		return nil
	}
}

// WithSourceTag sets the source tag recorded in vector metadata.
func WithSourceTag(tag string) Option {
	return func(p *Pipeline) error {
		if tag != "" {
			p.sourceTag = tag
		}
		return nil
	}
}

// WithBatchSize sets the downstream write batch size.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithTimeBudget supplies the invocation's remaining-time signal. The
// pipeline samples it only between sources; when the remaining time drops
// below the safety margin it pauses instead of starting another source.
// Without this option the pipeline runs all discovered sources.
func WithTimeBudget(remaining func() time.Duration) Option {
	return func(p *Pipeline) error {
		p.remaining = remaining
		return nil
	}
}

// WithSafetyMargin sets the time reserved for final bookkeeping when a
// time budget is configured.
func WithSafetyMargin(margin time.Duration) Option {
	return func(p *Pipeline) error {
		if margin > 0 {
			p.safetyMargin = margin
		}
		return nil
	}
}

// NewPipeline creates a new sync pipeline.
func NewPipeline(
	loader source.Loader,
	embedder ai.Embedder,
	vectors storage.VectorStore,
	checkpoints storage.CheckpointRepository,
	opts ...Option,
) (*Pipeline, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}

	pool, err := ants.NewPool(defaultMaxWorkers)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		loader:       loader,
		segmenter:    segment.NewSegmenter(nil, segment.DefaultConfig()),
		embedder:     embedder,
		checkpoints:  checkpoints,
		pool:         pool,
		scope:        defaultScope,
		sourceTag:    defaultSourceTag,
		batchSize:    defaultBatchSize,
		safetyMargin: defaultSafetyMargin,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the writer after options are applied so it gets final config.
	p.writer = NewBatchWriter(vectors, p.batchSize, p.logger)

	return p, nil
}

// Run executes one sync invocation: discovers sources past the checkpoint
// cursor, processes them in ascending date order and reports the outcome.
// Only discovery-level failures (checkpoint load, source listing) are
// returned as errors; everything inside the per-source loop is isolated
// and counted.
func (p *Pipeline) Run(ctx context.Context) (*core.SyncResult, error) {
	result := &core.SyncResult{}

	checkpoint, err := p.checkpoints.LoadCheckpoint(ctx, p.scope)
	if err != nil {
		return nil, err
	}
	cursor := ""
	if checkpoint != nil {
		cursor = checkpoint.Cursor
		p.logger.Info("resuming from checkpoint", "scope", p.scope, "cursor", cursor)
	} else {
		p.logger.Info("no checkpoint found, processing all sources", "scope", p.scope)
	}

	files, err := p.loader.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	// Ascending date order is a correctness requirement: checkpointing
	// after each source assumes earlier-dated sources are fully handled.
	pending := make([]source.File, 0, len(files))
	for _, file := range files {
		if cursor != "" && file.Date <= cursor {
			continue
		}
		pending = append(pending, file)
	}
	slices.SortStableFunc(pending, func(a, b source.File) int {
		return strings.Compare(a.Date, b.Date)
	})

	if len(pending) == 0 {
		p.logger.Info("no new sources to process")
		return result, nil
	}
	p.logger.Info("discovered sources", "count", len(pending))

	for _, file := range pending {
		if p.budgetExhausted() {
			p.logger.Info("time budget low, pausing before next source", "next", file.Key)
			result.Paused = true
			break
		}
		p.processSource(ctx, file, result)
	}

	p.logger.Info("sync finished",
		"sources", result.SourcesProcessed,
		"vectors", result.VectorsStored,
		"errors", result.ErrorCount,
		"paused", result.Paused)

	return result, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// budgetExhausted reports whether the remaining execution time has dropped
// below the safety margin. Without a remaining-time signal the check is
// disabled and the pipeline never pauses.
func (p *Pipeline) budgetExhausted() bool {
	if p.remaining == nil {
		return false
	}
	return p.remaining() < p.safetyMargin
}

// processSource runs one source through load, dedupe, segment, embed and
// write, then advances the checkpoint. Failures are isolated: a load
// failure skips the source without advancing the cursor so the next run
// retries it; embedding failures skip their chunk; batch write failures
// keep the cursor in place so nothing is lost.
func (p *Pipeline) processSource(ctx context.Context, file source.File, result *core.SyncResult) {
	logger := p.logger.With("source", file.Key)
	logger.Info("processing source", "date", file.Date)

	messages, err := p.loader.LoadMessages(ctx, file)
	if err != nil {
		logger.Error("error loading source, will retry next run", "err", err)
		result.ErrorCount++
		return
	}

	messages = dedupeMessages(messages)
	if len(messages) == 0 {
		logger.Debug("no messages in source")
		return
	}

	chunks := p.segmenter.Segment(messages, file.SourceID)
	if len(chunks) == 0 {
		return
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embedResults := EmbedAll(ctx, p.embedder, p.pool, texts)

	vectors := make([]*core.Vector, 0, len(chunks))
	for i, chunk := range chunks {
		if embedResults[i].Err != nil {
			logger.Warn("embedding failed for chunk", "chunkID", chunk.ChunkID, "err", embedResults[i].Err)
			result.ErrorCount++
			continue
		}
		vectors = append(vectors, p.vectorFromChunk(chunk, embedResults[i].Embedding))
	}

	if len(vectors) > 0 {
		writeResult := p.writer.Write(ctx, vectors)
		result.VectorsStored += writeResult.Stored
		result.ErrorCount += len(writeResult.Errors)

		if len(writeResult.Errors) > 0 {
			// Some vectors were not durably written. Leaving the cursor in
			// place makes the next run reprocess this source from scratch;
			// chunk IDs are stable so rewrites are idempotent.
			logger.Warn("write incomplete, checkpoint not advanced",
				"stored", writeResult.Stored, "failedBatches", len(writeResult.Errors))
			return
		}
		logger.Info("stored vectors", "count", writeResult.Stored)
	}

	result.SourcesProcessed++

	// Write-then-checkpoint: a crash before this point reprocesses the
	// source safely; a crash after it loses nothing.
	err = p.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		Scope:  p.scope,
		Cursor: file.Date,
	})
	if err != nil {
		logger.Error("error saving checkpoint", "err", err)
		result.ErrorCount++
	}
}

// vectorFromChunk combines a chunk with its embedding into a storable vector.
func (p *Pipeline) vectorFromChunk(chunk core.Chunk, embedding []float32) *core.Vector {
	text := chunk.Text
	if len(text) > chunkTextLimit {
		cut := chunkTextLimit
		// Back off to a rune boundary.
		for cut > 0 && text[cut]&0xC0 == 0x80 {
			cut--
		}
		text = text[:cut]
	}

	return &core.Vector{
		Key:       chunk.ChunkID,
		Embedding: embedding,
		Metadata: core.VectorMetadata{
			Type:             "chat_history",
			SourceID:         chunk.SourceID,
			Timestamp:        chunk.StartTime.Format(time.DateOnly),
			Topics:           chunk.Topics,
			PrimaryTopic:     chunk.PrimaryTopic,
			IsThreadComplete: chunk.IsThreadComplete,
			StartTime:        chunk.StartTime.Format(time.RFC3339),
			EndTime:          chunk.EndTime.Format(time.RFC3339),
			MessageCount:     chunk.MessageCount,
			ChunkText:        text,
			ProjectID:        p.scope,
			Source:           p.sourceTag,
		},
	}
}

// dedupeMessages drops messages without text and collapses duplicates by
// message ID within this run. Messages without an ID are never treated as
// duplicates of one another.
func dedupeMessages(messages []core.Message) []core.Message {
	seen := make(map[string]struct{}, len(messages))
	unique := make([]core.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}
		if msg.MessageID != "" {
			if _, ok := seen[msg.MessageID]; ok {
				continue
			}
			seen[msg.MessageID] = struct{}{}
		}
		unique = append(unique, msg)
	}
	return unique
}
