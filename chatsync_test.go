package chatsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/chatsync/ai/mock"
	"github.com/poiesic/chatsync/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex(t *testing.T) {
	t.Run("create new index", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_index")
		idx, err := NewIndex(tmpDir, WithEmbedder(mock.NewMockEmbedder()))
		require.NoError(t, err)
		require.NotNil(t, idx)
		defer idx.Close()

		assert.NotNil(t, idx.VectorStore())
		assert.NotNil(t, idx.CheckpointRepository())
		assert.NotNil(t, idx.backend)
		assert.NotNil(t, idx.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the database directory should be
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		idx, err := NewIndex(tmpFile, WithEmbedder(mock.NewMockEmbedder()))
		assert.Error(t, err)
		assert.Nil(t, idx)
	})
}

func TestIndex_Close(t *testing.T) {
	idx, err := NewIndex(t.TempDir(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	require.NotNil(t, idx)

	err = idx.Close()
	assert.NoError(t, err)
}

func TestIndex_FactoryMethods(t *testing.T) {
	idx, err := NewIndex(t.TempDir(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	require.NotNil(t, idx)
	defer idx.Close()

	t.Run("can create sync pipeline", func(t *testing.T) {
		pipeline, err := idx.NewSyncPipeline(source.NewFilesystemLoader(t.TempDir()))
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := idx.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})
}

func TestIndex_SyncAndSearch(t *testing.T) {
	dir := t.TempDir()
	transcript := `[
		{"id": "m1", "created": "2024-03-15T10:00:00Z", "personEmail": "alice@example.com", "text": "how do I fix the vpn tunnel?"},
		{"id": "m2", "created": "2024-03-15T10:02:00Z", "personEmail": "bob@example.com", "text": "restart the client, that usually helps"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "room-1_2024-03-15_chat.json"), []byte(transcript), 0o644))

	idx, err := NewIndex(filepath.Join(t.TempDir(), "idx"), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	defer idx.Close()

	pipeline, err := idx.NewSyncPipeline(source.NewFilesystemLoader(dir))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	result, err := pipeline.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SourcesProcessed)
	assert.Equal(t, 1, result.VectorsStored)

	vector, err := idx.VectorStore().GetVector(ctx, "room-1-2024-03-15-0")
	require.NoError(t, err)
	assert.Equal(t, "vpn", vector.Metadata.PrimaryTopic)
	assert.Equal(t, 2, vector.Metadata.MessageCount)
}
