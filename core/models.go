package core

import "time"

// Message is a single chat message loaded from a transcript source.
// The timestamp is kept in its raw string form; sources produce a mix of
// RFC3339, fractional-second and zone-less formats, so parsing is deferred
// to the segmenter which handles malformed values leniently.
type Message struct {
	Timestamp string
	Sender    string
	Text      string
	SourceID  string
	MessageID string // empty for synthetic/system messages
}

// Chunk is a contiguous, bounded run of messages treated as one semantic
// unit for embedding. Chunks are created by the segmenter and never
// mutated afterwards.
type Chunk struct {
	ChunkID          string
	Text             string
	SourceID         string
	StartTime        time.Time
	EndTime          time.Time
	MessageCount     int
	Topics           []string
	PrimaryTopic     string
	IsThreadComplete bool
}

// Vector is an embedding ready to be written downstream, keyed by chunk ID.
type Vector struct {
	Key       string
	Embedding []float32
	Metadata  VectorMetadata
}

// VectorMetadata carries the searchable attributes of a chunk alongside its
// embedding. The downstream vector store only accepts strings, numbers,
// booleans and arrays as metadata values; AsMap omits zero values to
// honor that.
type VectorMetadata struct {
	Type             string
	SourceID         string
	Timestamp        string // chunk date, YYYY-MM-DD
	Topics           []string
	PrimaryTopic     string
	IsThreadComplete bool
	StartTime        string
	EndTime          string
	MessageCount     int
	ChunkText        string
	ProjectID        string
	Source           string
}

// AsMap renders the metadata as a generic mapping with zero values omitted.
// IsThreadComplete and MessageCount are always included since false/0 are
// meaningful there.
func (m *VectorMetadata) AsMap() map[string]any {
	out := make(map[string]any)
	if m.Type != "" {
		out["type"] = m.Type
	}
	if m.SourceID != "" {
		out["source_id"] = m.SourceID
	}
	if m.Timestamp != "" {
		out["timestamp"] = m.Timestamp
	}
	if len(m.Topics) > 0 {
		out["topics"] = m.Topics
	}
	if m.PrimaryTopic != "" {
		out["primary_topic"] = m.PrimaryTopic
	}
	out["is_thread_complete"] = m.IsThreadComplete
	if m.StartTime != "" {
		out["start_time"] = m.StartTime
	}
	if m.EndTime != "" {
		out["end_time"] = m.EndTime
	}
	out["message_count"] = m.MessageCount
	if m.ChunkText != "" {
		out["chunk_text"] = m.ChunkText
	}
	if m.ProjectID != "" {
		out["project_id"] = m.ProjectID
	}
	if m.Source != "" {
		out["source"] = m.Source
	}
	return out
}

// Checkpoint records the processing cursor for one logical scope
// (project/source namespace). The cursor is a YYYY-MM-DD date string and
// only ever advances; a source dated at or before the cursor is never
// reprocessed.
type Checkpoint struct {
	Scope     string
	Cursor    string
	UpdatedAt time.Time
}

// SyncResult is the externally observable outcome of one sync invocation.
type SyncResult struct {
	SourcesProcessed int
	VectorsStored    int
	ErrorCount       int
	Paused           bool // the run stopped early on the time budget
}

// SearchResult is a stored vector match with its relevance score.
type SearchResult struct {
	Vector *Vector
	Score  float32
}
