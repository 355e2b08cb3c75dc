// Package ai defines the embedding capability consumed by the sync
// pipeline and the configuration for its providers.
//
// The Embedder interface abstracts "compute embedding of text" so the
// pipeline never depends on a concrete backend. The openai subpackage
// implements it against OpenAI-compatible APIs; the mock subpackage
// provides a deterministic test double.
package ai
