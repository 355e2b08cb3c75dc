package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFilesystemLoader_ListSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "room-1_2024-03-15_chat.json", "[]")
	writeFile(t, dir, "room-1_2024-03-16_chat.json", "[]")
	writeFile(t, dir, "team_room_2024-03-15_chat.json", "[]")
	writeFile(t, dir, "notes.txt", "ignore me")
	writeFile(t, dir, "room-1_not-a-date_chat.json", "[]")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "room-2_2024-03-15_chat.json"), 0o755))

	loader := NewFilesystemLoader(dir)
	files, err := loader.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)

	byKey := make(map[string]File)
	for _, f := range files {
		byKey[filepath.Base(f.Key)] = f
	}

	f := byKey["room-1_2024-03-15_chat.json"]
	assert.Equal(t, "room-1", f.SourceID)
	assert.Equal(t, "2024-03-15", f.Date)

	// Source IDs may themselves contain underscores
	f = byKey["team_room_2024-03-15_chat.json"]
	assert.Equal(t, "team_room", f.SourceID)
	assert.Equal(t, "2024-03-15", f.Date)
}

func TestFilesystemLoader_ListSourcesMissingDir(t *testing.T) {
	loader := NewFilesystemLoader("/nonexistent/path")
	_, err := loader.ListSources(context.Background())
	assert.Error(t, err)
}

func TestFilesystemLoader_LoadMessages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "room-1_2024-03-15_chat.json", `[
		{"id": "m1", "created": "2024-03-15T10:00:00Z", "personEmail": "alice@example.com", "text": "hello"},
		{"id": "m2", "created": "2024-03-15T10:01:00Z", "personDisplayName": "Bob", "text": "hi"},
		{"id": "m3", "created": "2024-03-15T10:02:00Z", "personEmail": "carol@example.com", "text": ""}
	]`)

	loader := NewFilesystemLoader(dir)
	files, err := loader.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	messages, err := loader.LoadMessages(context.Background(), files[0])
	require.NoError(t, err)
	require.Len(t, messages, 2, "empty-text messages are dropped")

	assert.Equal(t, "m1", messages[0].MessageID)
	assert.Equal(t, "alice@example.com", messages[0].Sender)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, "room-1", messages[0].SourceID)
	assert.Equal(t, "2024-03-15T10:00:00Z", messages[0].Timestamp)

	// Display name is the fallback when email is missing
	assert.Equal(t, "Bob", messages[1].Sender)
}

func TestFilesystemLoader_LoadMessagesMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "room-1_2024-03-15_chat.json", "{not json")

	loader := NewFilesystemLoader(dir)
	files, err := loader.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = loader.LoadMessages(context.Background(), files[0])
	assert.Error(t, err)
}

func TestFilesystemLoader_LoadMessagesMissingFile(t *testing.T) {
	loader := NewFilesystemLoader(t.TempDir())
	_, err := loader.LoadMessages(context.Background(), File{Key: "/nonexistent.json"})
	assert.Error(t, err)
}

func TestParseChatFilename(t *testing.T) {
	testCases := []struct {
		name         string
		filename     string
		wantSourceID string
		wantDate     string
		wantOK       bool
	}{
		{"simple", "room-1_2024-03-15_chat.json", "room-1", "2024-03-15", true},
		{"underscored source", "a_b_c_2024-03-15_chat.json", "a_b_c", "2024-03-15", true},
		{"bad date", "room-1_tomorrow_chat.json", "", "", false},
		{"no source", "_2024-03-15_chat.json", "", "", false},
		{"no separator", "2024-03-15_chat.json", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sourceID, date, ok := parseChatFilename(tc.filename)
			require.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantSourceID, sourceID)
			assert.Equal(t, tc.wantDate, date)
		})
	}
}
