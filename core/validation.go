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


package core

import (
	"fmt"
	"time"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SourceID must not be empty
//
// NOT validated:
//   - Timestamp (malformed timestamps are tolerated by the segmenter)
//   - MessageID (empty is valid for synthetic/system messages)
func ValidateMessage(message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if message.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyText)
	}

	if message.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptySourceID)
	}

	return nil
}

// ValidateVector validates a Vector according to domain rules.
//
// Validation rules:
//   - Key must not be empty (a vector is never stored without its key)
//   - Embedding must not be empty
func ValidateVector(vector *Vector) error {
	if vector == nil {
		return fmt.Errorf("%w: vector is nil", ErrInvalidVector)
	}

	if vector.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVector, ErrEmptyVectorKey)
	}

	if len(vector.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidVector, ErrEmptyEmbedding)
	}

	return nil
}

// ValidateCursor checks that a checkpoint cursor is a YYYY-MM-DD date string.
// Cursors are compared lexicographically, which only orders correctly for
// this fixed-width form.
func ValidateCursor(cursor string) error {
	if _, err := time.Parse(time.DateOnly, cursor); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	return nil
}
