package badger

import (
	"context"
	"testing"

	"github.com/poiesic/chatsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckpointRepo(t *testing.T) *CheckpointRepository {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := NewCheckpointRepository(backend)
	require.NoError(t, err)
	return repo
}

func TestCheckpointRepository_LoadMissing(t *testing.T) {
	repo := setupCheckpointRepo(t)
	ctx := context.Background()

	checkpoint, err := repo.LoadCheckpoint(ctx, "chat-history")
	require.NoError(t, err)
	assert.Nil(t, checkpoint)
}

func TestCheckpointRepository_SaveAndLoad(t *testing.T) {
	repo := setupCheckpointRepo(t)
	ctx := context.Background()

	err := repo.SaveCheckpoint(ctx, &core.Checkpoint{
		Scope:  "chat-history",
		Cursor: "2024-03-15",
	})
	require.NoError(t, err)

	checkpoint, err := repo.LoadCheckpoint(ctx, "chat-history")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, "chat-history", checkpoint.Scope)
	assert.Equal(t, "2024-03-15", checkpoint.Cursor)
	assert.False(t, checkpoint.UpdatedAt.IsZero())
}

func TestCheckpointRepository_CursorNeverRegresses(t *testing.T) {
	repo := setupCheckpointRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "s", Cursor: "2024-03-15"}))

	// Saving an older cursor is a silent no-op
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "s", Cursor: "2024-03-10"}))

	checkpoint, err := repo.LoadCheckpoint(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", checkpoint.Cursor)

	// Equal cursor is also a no-op
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "s", Cursor: "2024-03-15"}))

	// A newer cursor advances
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "s", Cursor: "2024-03-20"}))
	checkpoint, err = repo.LoadCheckpoint(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20", checkpoint.Cursor)
}

func TestCheckpointRepository_ScopesAreIndependent(t *testing.T) {
	repo := setupCheckpointRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "project-a", Cursor: "2024-03-15"}))
	require.NoError(t, repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "project-b", Cursor: "2024-01-01"}))

	a, err := repo.LoadCheckpoint(ctx, "project-a")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", a.Cursor)

	b, err := repo.LoadCheckpoint(ctx, "project-b")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", b.Cursor)
}

func TestCheckpointRepository_RejectsInvalidCursor(t *testing.T) {
	repo := setupCheckpointRepo(t)
	ctx := context.Background()

	err := repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "s", Cursor: "March 15"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCursor)

	err = repo.SaveCheckpoint(ctx, &core.Checkpoint{Scope: "s", Cursor: ""})
	require.Error(t, err)
}
