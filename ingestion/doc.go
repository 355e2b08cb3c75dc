// Package ingestion provides the resumable sync pipeline that turns chat
// transcripts into stored embedding vectors.
//
// The Pipeline type drives the workflow per discovered source:
//   - Loading and deduplicating messages
//   - Segmenting them into conversation chunks
//   - Generating embeddings on a bounded worker pool
//   - Writing vectors downstream in batches
//   - Advancing the checkpoint cursor once the source's vectors are durable
//
// Every failure mode is isolated to its unit of work (a chunk, a batch or
// a source) and surfaces only as a count in the run's summary. A
// remaining-time budget, when supplied, pauses the run between sources so
// a later invocation resumes from the last committed checkpoint.
package ingestion
