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


package segment

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/chatsync/classify"
	"github.com/poiesic/chatsync/core"
)

// resolutionFollowupGapMinutes is the quiet period after a resolution
// phrase beyond which the next message is treated as a new thread even
// without a question mark.
const resolutionFollowupGapMinutes = 10

// threadCompleteWindow is how many trailing messages are checked for a
// resolution phrase when deciding whether a chunk's thread concluded.
const threadCompleteWindow = 3

// Config holds the segmentation limits.
type Config struct {
	// GapMinutes is the silence between messages that forces a new chunk.
	GapMinutes float64

	// MaxMessages is the maximum number of messages per chunk.
	MaxMessages int

	// MaxChars caps the total rendered length of a chunk. A single message
	// longer than MaxChars still forms a singleton chunk.
	MaxChars int
}

// DefaultConfig returns the stock segmentation limits.
func DefaultConfig() Config {
	return Config{
		GapMinutes:  30,
		MaxMessages: 50,
		MaxChars:    4000,
	}
}

// Segmenter splits a time-ordered message sequence into bounded,
// semantically coherent chunks. Boundaries depend only on prior state and
// the single next candidate message, so segmentation is a single O(n)
// forward pass.
type Segmenter struct {
	classifier *classify.Classifier
	config     Config
}

// NewSegmenter creates a segmenter. A nil classifier uses the default
// keyword table; non-positive config fields fall back to defaults.
func NewSegmenter(classifier *classify.Classifier, config Config) *Segmenter {
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}
	defaults := DefaultConfig()
	if config.GapMinutes <= 0 {
		config.GapMinutes = defaults.GapMinutes
	}
	if config.MaxMessages <= 0 {
		config.MaxMessages = defaults.MaxMessages
	}
	if config.MaxChars <= 0 {
		config.MaxChars = defaults.MaxChars
	}
	return &Segmenter{
		classifier: classifier,
		config:     config,
	}
}

// Segment splits messages into chunks for the given source. Input order is
// normalized by a stable sort on the raw timestamp (ties keep their input
// order, which makes recomputation deterministic). No message is ever
// dropped: a trailing open chunk is always materialized.
func (s *Segmenter) Segment(messages []core.Message, sourceID string) []core.Chunk {
	if len(messages) == 0 {
		return nil
	}

	sorted := make([]core.Message, len(messages))
	copy(sorted, messages)
	slices.SortStableFunc(sorted, func(a, b core.Message) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})

	var (
		chunks        []core.Chunk
		open          []core.Message
		openTimes     []time.Time
		openChars     int
		lastTimestamp time.Time
		haveLast      bool
		chunkIndex    int
	)

	for _, msg := range sorted {
		ts, _ := ParseTimestamp(msg.Timestamp)
		rendered := renderMessage(msg)

		shouldSplit := false
		gapMinutes := 0.0
		if haveLast {
			gapMinutes = ts.Sub(lastTimestamp).Minutes()
			if gapMinutes > s.config.GapMinutes {
				shouldSplit = true
			}
		}

		if len(open) >= s.config.MaxMessages {
			shouldSplit = true
		}
		if openChars+utf8.RuneCountInString(rendered) > s.config.MaxChars {
			shouldSplit = true
		}

		// A resolution phrase on the last appended message ends the thread
		// when the next message opens a new question or arrives after a
		// quiet period.
		if len(open) > 0 && containsResolution(open[len(open)-1].Text) {
			if strings.Contains(msg.Text, "?") || (haveLast && gapMinutes > resolutionFollowupGapMinutes) {
				shouldSplit = true
			}
		}

		if shouldSplit && len(open) > 0 {
			chunks = append(chunks, s.materialize(open, openTimes, sourceID, chunkIndex))
			open = nil
			openTimes = nil
			openChars = 0
			chunkIndex++
		}

		open = append(open, msg)
		openTimes = append(openTimes, ts)
		openChars += utf8.RuneCountInString(rendered)
		lastTimestamp = ts
		haveLast = true
	}

	if len(open) > 0 {
		chunks = append(chunks, s.materialize(open, openTimes, sourceID, chunkIndex))
	}

	return chunks
}

// materialize closes an open chunk: renders its text, classifies topics
// and assigns the chunk ID from source, start date and ordinal index.
func (s *Segmenter) materialize(messages []core.Message, times []time.Time, sourceID string, index int) core.Chunk {
	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = renderMessage(msg)
	}
	text := strings.Join(parts, "\n")

	topics := s.classifier.Classify(text)

	complete := false
	tail := len(messages) - threadCompleteWindow
	if tail < 0 {
		tail = 0
	}
	for _, msg := range messages[tail:] {
		if containsResolution(msg.Text) {
			complete = true
			break
		}
	}

	startTime := times[0]
	endTime := times[len(times)-1]
	chunkID := fmt.Sprintf("%s-%s-%d", sourceID, startTime.Format(time.DateOnly), index)

	return core.Chunk{
		ChunkID:          chunkID,
		Text:             text,
		SourceID:         sourceID,
		StartTime:        startTime,
		EndTime:          endTime,
		MessageCount:     len(messages),
		Topics:           topics,
		PrimaryTopic:     classify.PrimaryTopic(topics),
		IsThreadComplete: complete,
	}
}

// renderMessage formats a message the way it appears in chunk text.
func renderMessage(msg core.Message) string {
	sender := msg.Sender
	if sender == "" {
		sender = "Unknown"
	}
	return "[" + sender + "]: " + msg.Text
}
