package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "u1-d1-0", ChunkID("u1", "d1", 0))
	assert.Equal(t, "u1-d1-7", ChunkID("u1", "d1", 7))
}

func TestChunkEmptyText(t *testing.T) {
	s := NewSplitter(1000, 150)
	assert.Nil(t, s.Chunk("", "a.pdf", "u1", "d1"))
	assert.Nil(t, s.Chunk("   \n\t  ", "a.pdf", "u1", "d1"))
}

func TestChunkSingleSmallText(t *testing.T) {
	s := NewSplitter(1000, 150)
	chunks := s.Chunk("A. B. C.", "a.pdf", "u1", "d1")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A. B. C.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "u1-d1-0", chunks[0].ID)
	assert.Equal(t, "a.pdf", chunks[0].Source)
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s := NewSplitter(45, 0)
	text := strings.Repeat("a", 20) + "\n\n" + strings.Repeat("b", 20) + "\n\n" + strings.Repeat("c", 20)
	pieces := s.Split(text)
	require.Len(t, pieces, 2)
	assert.Equal(t, strings.Repeat("a", 20)+"\n\n"+strings.Repeat("b", 20), pieces[0])
	assert.Equal(t, strings.Repeat("c", 20), pieces[1])
}

func TestSplitBoundsChunkSize(t *testing.T) {
	s := NewSplitter(100, 20)
	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString("word word word\n")
	}
	for _, p := range s.Split(b.String()) {
		assert.LessOrEqual(t, len(p), 100)
	}
}

func TestSplitCoversAllText(t *testing.T) {
	s := NewSplitter(50, 10)
	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs. " +
		"How vexingly quick daft zebras jump."
	pieces := s.Split(text)
	require.NotEmpty(t, pieces)

	// Every word of the input appears in some chunk.
	for _, w := range strings.Fields(text) {
		found := false
		for _, p := range pieces {
			if strings.Contains(p, w) {
				found = true
				break
			}
		}
		assert.True(t, found, "word %q missing from all chunks", w)
	}
}

func TestSplitOverlapCarriesTail(t *testing.T) {
	s := NewSplitter(30, 12)
	text := "one two three four five six seven eight nine ten"
	pieces := s.Split(text)
	require.Greater(t, len(pieces), 1)

	for i := 1; i < len(pieces); i++ {
		prevWords := strings.Fields(pieces[i-1])
		curHead := strings.Fields(pieces[i])[0]
		assert.Contains(t, prevWords, curHead,
			"chunk %d should start with a word carried over from chunk %d", i, i-1)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(80, 20)
	text := strings.Repeat("Some sentence with several words in it. ", 40)

	first := s.Split(text)
	for run := 0; run < 5; run++ {
		again := s.Split(text)
		require.Equal(t, first, again)
	}

	chunksA := s.Chunk(text, "doc.pdf", "u1", "d1")
	chunksB := s.Chunk(text, "doc.pdf", "u1", "d1")
	require.Equal(t, len(chunksA), len(chunksB))
	for i := range chunksA {
		assert.Equal(t, chunksA[i].ID, chunksB[i].ID)
		assert.Equal(t, chunksA[i].Text, chunksB[i].Text)
		assert.Equal(t, i, chunksA[i].Index)
	}
}

func TestSplitOversizedUnbreakableRun(t *testing.T) {
	s := NewSplitter(10, 2)
	text := strings.Repeat("x", 35)
	pieces := s.Split(text)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.LessOrEqual(t, len(p), 10)
	}
	assert.Contains(t, strings.Join(pieces, ""), "x")
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, DefaultChunkSize, s.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, s.chunkOverlap)
}
