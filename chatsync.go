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


package chatsync

import (
	"log/slog"

	"github.com/poiesic/chatsync/ai"
	"github.com/poiesic/chatsync/ai/openai"
	"github.com/poiesic/chatsync/ingestion"
	"github.com/poiesic/chatsync/search"
	"github.com/poiesic/chatsync/source"
	"github.com/poiesic/chatsync/storage"
	"github.com/poiesic/chatsync/storage/badger"
)

// Index bundles the vector store, checkpoint repository and embedder into
// one handle. It is the library entry point for embedding applications;
// the CLI wires the same components by hand.
type Index struct {
	backend     *badger.Backend
	vectors     storage.VectorStore
	checkpoints storage.CheckpointRepository
	embedder    ai.Embedder
	logger      *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) IndexOption {
	return func(o *indexOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder supplies a pre-built embedder, bypassing the AI config.
// Mainly useful for tests and custom embedding backends.
func WithEmbedder(embedder ai.Embedder) IndexOption {
	return func(o *indexOptions) {
		o.embedder = embedder
	}
}

// NewIndex opens (or creates) an index at the given path.
func NewIndex(filePath string, opts ...IndexOption) (*Index, error) {
	options := &indexOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	vectors, err := badger.NewVectorRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	checkpoints, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		vectors.Close()
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			checkpoints.Close()
			vectors.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Index{
		backend:     backend,
		vectors:     vectors,
		checkpoints: checkpoints,
		embedder:    embedder,
		logger:      slog.Default(),
	}, nil
}

func (idx *Index) Close() error {
	if err := idx.checkpoints.Close(); err != nil {
		idx.logger.Error("error closing checkpoint repository", "err", err)
		return err
	}
	if err := idx.vectors.Close(); err != nil {
		idx.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := idx.backend.Close(); err != nil {
		idx.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (idx *Index) VectorStore() storage.VectorStore {
	return idx.vectors
}

func (idx *Index) CheckpointRepository() storage.CheckpointRepository {
	return idx.checkpoints
}

// NewSyncPipeline creates an ingestion pipeline over the index for the
// given transcript source.
func (idx *Index) NewSyncPipeline(loader source.Loader, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(loader, idx.embedder, idx.vectors, idx.checkpoints, opts...)
}

// NewSearcher creates a semantic searcher over the index.
func (idx *Index) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(idx.vectors, idx.embedder, opts...)
}
