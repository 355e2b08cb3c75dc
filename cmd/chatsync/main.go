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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/chatsync/ai"
	"github.com/poiesic/chatsync/ai/openai"
	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/ingestion"
	"github.com/poiesic/chatsync/search"
	"github.com/poiesic/chatsync/segment"
	"github.com/poiesic/chatsync/source"
	"github.com/poiesic/chatsync/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chatsync",
		Usage: "Chat transcript chunking, embedding and semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Chunk, embed and index new chat transcripts",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source-dir",
						Aliases:  []string{"s"},
						Usage:    "Directory containing transcript files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "project-id",
						Usage: "Project namespace for checkpoint and metadata",
						Value: "chat-history",
					},
					&cli.IntFlag{
						Name:  "max-workers",
						Usage: "Concurrent embedding workers",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of vectors per storage write",
						Value: 50,
					},
					&cli.Float64Flag{
						Name:  "gap-minutes",
						Usage: "Silence between messages that starts a new chunk",
						Value: 30,
					},
					&cli.IntFlag{
						Name:  "max-messages",
						Usage: "Maximum messages per chunk",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-chars",
						Usage: "Maximum rendered characters per chunk",
						Value: 4000,
					},
					&cli.DurationFlag{
						Name:  "time-budget",
						Usage: "Pause the sync when this much wall time has elapsed (0 disables)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed chat history semantically",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Restrict results to chunks tagged with this topic",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum similarity score for a match",
						Value: 0.60,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func syncCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	vectors, err := badger.NewVectorRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create vector repository: %w", err)
	}
	defer vectors.Close()

	checkpoints, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint repository: %w", err)
	}
	defer checkpoints.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	segmenter := segment.NewSegmenter(nil, segment.Config{
		GapMinutes:  c.Float64("gap-minutes"),
		MaxMessages: c.Int("max-messages"),
		MaxChars:    c.Int("max-chars"),
	})

	opts := []ingestion.Option{
		ingestion.WithSegmenter(segmenter),
		ingestion.WithScope(c.String("project-id")),
		ingestion.WithPoolSize(c.Int("max-workers")),
		ingestion.WithBatchSize(c.Int("batch-size")),
	}
	if budget := c.Duration("time-budget"); budget > 0 {
		deadline := time.Now().Add(budget)
		opts = append(opts, ingestion.WithTimeBudget(func() time.Duration {
			return time.Until(deadline)
		}))
	}

	pipeline, err := ingestion.NewPipeline(
		source.NewFilesystemLoader(c.String("source-dir")),
		embedder,
		vectors,
		checkpoints,
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Sources processed: %d\n", result.SourcesProcessed)
	fmt.Fprintf(os.Stderr, "Vectors stored: %d\n", result.VectorsStored)
	fmt.Fprintf(os.Stderr, "Errors: %d\n", result.ErrorCount)
	if result.Paused {
		fmt.Fprintln(os.Stderr, "Paused on time budget; rerun to continue")
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	vectors, err := badger.NewVectorRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create vector repository: %w", err)
	}
	defer vectors.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(vectors, embedder,
		search.WithMinScore(float32(c.Float64("min-score"))))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	var results []*chatResult
	if topic := c.String("topic"); topic != "" {
		hits, err := searcher.FindSimilarByTopic(ctx, query, topic, c.Int("limit"))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		results = toChatResults(hits)
	} else {
		hits, err := searcher.FindSimilar(ctx, query, c.Int("limit"))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		results = toChatResults(hits)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s (%s, %s)\n", i+1, r.score, r.chunkID, r.date, r.primaryTopic)
		fmt.Println(indent(r.text, "   "))
		fmt.Println()
	}

	return nil
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

type chatResult struct {
	score        float32
	chunkID      string
	date         string
	primaryTopic string
	text         string
}

func toChatResults(hits []*core.SearchResult) []*chatResult {
	results := make([]*chatResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, &chatResult{
			score:        hit.Score,
			chunkID:      hit.Vector.Key,
			date:         hit.Vector.Metadata.Timestamp,
			primaryTopic: hit.Vector.Metadata.PrimaryTopic,
			text:         hit.Vector.Metadata.ChunkText,
		})
	}
	return results
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
