// Package mock provides a deterministic test double for the ai.Embedder
// interface. Vectors are derived from a content hash so tests get stable
// embeddings without a live embedding service.
package mock
