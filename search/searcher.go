package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/chatsync/ai"
	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/storage"
)

// defaultMinScore is the similarity threshold below which stored vectors
// are not considered a match.
const defaultMinScore = 0.60

// Searcher answers semantic queries over the stored chunk vectors.
type Searcher struct {
	vectors  storage.VectorStore
	embedder ai.Embedder
	minScore float32
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinScore sets the similarity threshold for matches.
func WithMinScore(minScore float32) Option {
	return func(s *Searcher) error {
		s.minScore = minScore
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(vectors storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		vectors:  vectors,
		embedder: embedder,
		minScore: defaultMinScore,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar embeds the query and returns up to maxHits stored vectors
// ranked by similarity.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	results, err := s.vectors.FindSimilar(ctx, embedding, s.minScore, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar vectors", "err", err)
		return nil, err
	}

	return results, nil
}

// FindSimilarByTopic is FindSimilar restricted to chunks tagged with the
// given topic. The topic filter is applied after ranking, so fewer than
// maxHits results may come back even when more similar chunks exist.
func (s *Searcher) FindSimilarByTopic(ctx context.Context, query, topic string, maxHits int) ([]*core.SearchResult, error) {
	results, err := s.FindSimilar(ctx, query, maxHits)
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, result := range results {
		for _, t := range result.Vector.Metadata.Topics {
			if t == topic {
				filtered = append(filtered, result)
				break
			}
		}
	}

	return filtered, nil
}
