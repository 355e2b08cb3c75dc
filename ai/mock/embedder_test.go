package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/chatsync/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ai.Embedder = (*MockEmbedder)(nil)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	first, err := m.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	require.Len(t, first, 384)

	second, err := m.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := m.EmbedText(ctx, "different text")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMockEmbedder_EmbedTexts(t *testing.T) {
	m := NewMockEmbedder()

	vectors, err := m.EmbedTexts(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestMockEmbedder_Injection(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("injected error")
	}

	_, err := m.EmbedText(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, 1, m.CallCount())

	m.Reset()
	assert.Zero(t, m.CallCount())

	vec, err := m.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vec, 384)
}
