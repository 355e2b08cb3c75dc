package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/chatsync/core"
)

// chatFileSuffix is the naming convention for transcript files:
// {sourceID}_{YYYY-MM-DD}_chat.json
const chatFileSuffix = "_chat.json"

// FilesystemLoader loads chat transcripts from a local directory.
type FilesystemLoader struct {
	dir    string
	logger *slog.Logger
}

var _ Loader = (*FilesystemLoader)(nil)

// NewFilesystemLoader creates a loader over the given directory.
func NewFilesystemLoader(dir string) *FilesystemLoader {
	return &FilesystemLoader{
		dir:    dir,
		logger: slog.Default().With("component", "filesystem-loader"),
	}
}

// ListSources scans the directory for transcript files. Files that don't
// follow the naming convention are skipped with a warning.
func (l *FilesystemLoader) ListSources(ctx context.Context) ([]File, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("listing sources in %s: %w", l.dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), chatFileSuffix) {
			continue
		}

		sourceID, date, ok := parseChatFilename(entry.Name())
		if !ok {
			l.logger.Warn("skipping file with unexpected name", "file", entry.Name())
			continue
		}

		files = append(files, File{
			Key:      filepath.Join(l.dir, entry.Name()),
			SourceID: sourceID,
			Date:     date,
		})
	}

	return files, nil
}

// rawMessage is the wire shape of one message in a transcript file.
type rawMessage struct {
	ID                string `json:"id"`
	Created           string `json:"created"`
	PersonEmail       string `json:"personEmail"`
	PersonDisplayName string `json:"personDisplayName"`
	Text              string `json:"text"`
}

// LoadMessages reads one transcript file and transforms its records into
// messages, dropping any without text.
func (l *FilesystemLoader) LoadMessages(ctx context.Context, file File) ([]core.Message, error) {
	data, err := os.ReadFile(file.Key)
	if err != nil {
		l.logger.Error("error loading source", "key", file.Key, "err", err)
		return nil, fmt.Errorf("loading %s: %w", file.Key, err)
	}

	var raw []rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		l.logger.Error("error parsing source", "key", file.Key, "err", err)
		return nil, fmt.Errorf("parsing %s: %w", file.Key, err)
	}

	messages := make([]core.Message, 0, len(raw))
	for _, r := range raw {
		if r.Text == "" {
			continue
		}

		sender := r.PersonEmail
		if sender == "" {
			sender = r.PersonDisplayName
		}

		messages = append(messages, core.Message{
			Timestamp: r.Created,
			Sender:    sender,
			Text:      r.Text,
			SourceID:  file.SourceID,
			MessageID: r.ID,
		})
	}

	return messages, nil
}

// parseChatFilename splits "{sourceID}_{date}_chat.json" into its parts.
// The source ID may itself contain underscores; the date is whatever sits
// between the last underscore and the suffix, and must be a valid
// YYYY-MM-DD date.
func parseChatFilename(name string) (sourceID, date string, ok bool) {
	base := strings.TrimSuffix(name, chatFileSuffix)
	idx := strings.LastIndex(base, "_")
	if idx <= 0 {
		return "", "", false
	}

	sourceID = base[:idx]
	date = base[idx+1:]
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", "", false
	}
	return sourceID, date, true
}
