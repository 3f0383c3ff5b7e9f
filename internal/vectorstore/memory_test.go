package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecords(t *testing.T, s *Memory) {
	t.Helper()
	err := s.Upsert(context.Background(), []Record{
		{ID: "u1-d1-0", Vector: []float32{1, 0, 0}, UserID: "u1", DocumentID: "d1", ChunkIndex: 0, Source: "a.pdf", Content: "alpha"},
		{ID: "u1-d1-1", Vector: []float32{0.9, 0.1, 0}, UserID: "u1", DocumentID: "d1", ChunkIndex: 1, Source: "a.pdf", Content: "beta"},
		{ID: "u1-d2-0", Vector: []float32{0, 1, 0}, UserID: "u1", DocumentID: "d2", ChunkIndex: 0, Source: "b.pdf", Content: "gamma"},
		{ID: "u2-d3-0", Vector: []float32{1, 0, 0}, UserID: "u2", DocumentID: "d3", ChunkIndex: 0, Source: "c.pdf", Content: "delta"},
	})
	require.NoError(t, err)
}

func TestQueryRequiresUserScope(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	_, err := s.Query(context.Background(), []float32{1, 0, 0}, 5, Filter{})
	assert.ErrorIs(t, err, ErrInvalidScopeFilter)

	_, err = s.Delete(context.Background(), Filter{DocumentID: "d1"})
	assert.ErrorIs(t, err, ErrInvalidScopeFilter)
}

func TestQueryRankedByCosineSimilarity(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 5, Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "u1-d1-0", matches[0].ID)
	assert.Equal(t, "u1-d1-1", matches[1].ID)
	assert.Equal(t, "u1-d2-0", matches[2].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Greater(t, matches[1].Score, matches[2].Score)
}

func TestQueryNeverCrossesTenants(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, Filter{UserID: "u1"})
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, "u1", m.UserID)
	}
}

func TestQueryDocumentFilter(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, Filter{UserID: "u1", DocumentID: "d2"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "gamma", matches[0].Content)

	// Scope to a document with no vectors.
	matches, err = s.Query(context.Background(), []float32{1, 0, 0}, 10, Filter{UserID: "u1", DocumentID: "d9"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestQueryTopK(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 1, Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "u1-d1-0", matches[0].ID)
}

func TestUpsertOverwritesByID(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)
	before := s.Len()

	err := s.Upsert(context.Background(), []Record{
		{ID: "u1-d1-0", Vector: []float32{0, 0, 1}, UserID: "u1", DocumentID: "d1", ChunkIndex: 0, Content: "alpha v2"},
	})
	require.NoError(t, err)
	assert.Equal(t, before, s.Len(), "upsert of an existing id must not grow the store")

	matches, err := s.Query(context.Background(), []float32{0, 0, 1}, 1, Filter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "alpha v2", matches[0].Content)
}

func TestDeleteByDocument(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	removed, err := s.Delete(context.Background(), Filter{UserID: "u1", DocumentID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Second run is a no-op.
	removed, err = s.Delete(context.Background(), Filter{UserID: "u1", DocumentID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "d2", matches[0].DocumentID)
}

func TestDeleteTrailingChunkIndexes(t *testing.T) {
	s := NewMemory()
	seedRecords(t, s)

	keep := 1
	removed, err := s.Delete(context.Background(), Filter{UserID: "u1", DocumentID: "d1", ChunkIndexGTE: &keep})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 10, Filter{UserID: "u1", DocumentID: "d1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].ChunkIndex)
}
