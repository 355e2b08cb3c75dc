package badger

import (
	"context"
	"testing"

	"github.com/poiesic/chatsync/core"
	"github.com/poiesic/chatsync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVectorRepo(t *testing.T) *VectorRepository {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := NewVectorRepository(backend)
	require.NoError(t, err)
	return repo
}

func testVector(key string, embedding []float32) *core.Vector {
	return &core.Vector{
		Key:       key,
		Embedding: embedding,
		Metadata: core.VectorMetadata{
			Type:     "chat_history",
			SourceID: "room-1",
			Topics:   []string{"general"},
		},
	}
}

func TestVectorRepository_PutAndGet(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	original := testVector("room-1-2024-03-15-0", []float32{0.1, 0.2, 0.3})
	require.NoError(t, repo.PutVectors(ctx, original))

	got, err := repo.GetVector(ctx, "room-1-2024-03-15-0")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestVectorRepository_GetMissing(t *testing.T) {
	repo := setupVectorRepo(t)

	_, err := repo.GetVector(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVectorRepository_PutOverwritesSameKey(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutVectors(ctx, testVector("k", []float32{1, 0})))
	require.NoError(t, repo.PutVectors(ctx, testVector("k", []float32{0, 1})))

	got, err := repo.GetVector(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, got.Embedding)
}

func TestVectorRepository_PutBatchIsAtomic(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	// Second vector is invalid; the whole batch must be rejected.
	err := repo.PutVectors(ctx,
		testVector("good", []float32{1}),
		&core.Vector{Key: "bad"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidVector)

	_, err = repo.GetVector(ctx, "good")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVectorRepository_PutEmptyBatch(t *testing.T) {
	repo := setupVectorRepo(t)
	assert.NoError(t, repo.PutVectors(context.Background()))
}

func TestVectorRepository_FindSimilar(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutVectors(ctx,
		testVector("exact", []float32{1, 0, 0}),
		testVector("close", []float32{0.9, 0.1, 0}),
		testVector("orthogonal", []float32{0, 1, 0}),
	))

	results, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Highest score first
	assert.Equal(t, "exact", results[0].Vector.Key)
	assert.Equal(t, "close", results[1].Vector.Key)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestVectorRepository_FindSimilarHonorsLimit(t *testing.T) {
	repo := setupVectorRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutVectors(ctx,
		testVector("a", []float32{1, 0}),
		testVector("b", []float32{0.9, 0.1}),
		testVector("c", []float32{0.8, 0.2}),
	))

	results, err := repo.FindSimilar(ctx, []float32{1, 0}, 0.1, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestVectorRepository_FindSimilarEmptyStore(t *testing.T) {
	repo := setupVectorRepo(t)

	results, err := repo.FindSimilar(context.Background(), []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
