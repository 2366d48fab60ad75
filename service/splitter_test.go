package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ragkit/indexer-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitter(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200})
		require.NoError(t, err)
		assert.NotNil(t, splitter)
	})

	t.Run("zero overlap is valid", func(t *testing.T) {
		_, err := NewSplitter(types.SplitterConfig{ChunkSize: 100, ChunkOverlap: 0})
		require.NoError(t, err)
	})

	t.Run("overlap equal to size", func(t *testing.T) {
		_, err := NewSplitter(types.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 1000})
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
	})

	t.Run("overlap greater than size", func(t *testing.T) {
		_, err := NewSplitter(types.SplitterConfig{ChunkSize: 500, ChunkOverlap: 600})
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
	})

	t.Run("non-positive size", func(t *testing.T) {
		_, err := NewSplitter(types.SplitterConfig{ChunkSize: 0, ChunkOverlap: 0})
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
	})
}

func TestSplit_ShortDocument(t *testing.T) {
	splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200})
	require.NoError(t, err)

	doc := types.Document{
		Content:  "a short page of text",
		Metadata: types.DocumentMetadata{Title: "doc", PageNum: 1},
	}
	chunks := splitter.Split([]types.Document{doc})

	require.Len(t, chunks, 1)
	assert.Equal(t, doc.Content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Metadata.StartIndex)
	assert.Equal(t, 1, chunks[0].Metadata.PageNum)
}

func TestSplit_TwoPageScenario(t *testing.T) {
	// Page 1 is 50 characters, page 2 is 1500; with size 1000 and overlap
	// 200 this yields one chunk for page 1 and two for page 2, starting at
	// offsets 0 and 800.
	splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200})
	require.NoError(t, err)

	page1 := types.Document{
		Content:  strings.Repeat("x", 50),
		Metadata: types.DocumentMetadata{PageNum: 1},
	}
	page2 := types.Document{
		Content:  strings.Repeat("y", 1500),
		Metadata: types.DocumentMetadata{PageNum: 2},
	}

	chunks := splitter.Split([]types.Document{page1, page2})
	require.Len(t, chunks, 3)

	assert.Equal(t, page1.Content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Metadata.StartIndex)
	assert.Equal(t, 1, chunks[0].Metadata.PageNum)

	assert.Equal(t, 0, chunks[1].Metadata.StartIndex)
	assert.Equal(t, 800, chunks[2].Metadata.StartIndex)
	assert.Equal(t, 2, chunks[1].Metadata.PageNum)
	assert.Equal(t, 2, chunks[2].Metadata.PageNum)

	assert.Equal(t, page2.Content[:1000], chunks[1].Content)
	assert.Equal(t, page2.Content[800:], chunks[2].Content)
}

func TestSplit_CoverageAndOverlap(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60) +
		"\n\nA second paragraph follows here.\nWith a line break in it."

	configs := []types.SplitterConfig{
		{ChunkSize: 100, ChunkOverlap: 20},
		{ChunkSize: 500, ChunkOverlap: 200},
		{ChunkSize: 1000, ChunkOverlap: 0},
	}
	for _, config := range configs {
		splitter, err := NewSplitter(config)
		require.NoError(t, err)

		chunks := splitter.Split([]types.Document{{Content: text}})
		require.NotEmpty(t, chunks)

		// Start offsets are non-decreasing and the union of chunks
		// reconstructs the full parent text.
		rebuilt := make([]byte, len(text))
		covered := make([]bool, len(text))
		prevEnd := 0
		for i, chunk := range chunks {
			start := chunk.Metadata.StartIndex
			end := start + len(chunk.Content)
			if i > 0 {
				assert.GreaterOrEqual(t, start, chunks[i-1].Metadata.StartIndex)
				overlap := prevEnd - start
				assert.LessOrEqual(t, overlap, config.ChunkOverlap,
					"chunk %d overlaps previous by more than configured", i)
				assert.GreaterOrEqual(t, overlap, 0, "gap before chunk %d", i)
			}
			assert.LessOrEqual(t, len(chunk.Content), config.ChunkSize)
			assert.Equal(t, text[start:end], chunk.Content)
			copy(rebuilt[start:end], chunk.Content)
			for j := start; j < end; j++ {
				covered[j] = true
			}
			prevEnd = end
		}
		for j, ok := range covered {
			require.True(t, ok, "character %d not covered", j)
		}
		assert.Equal(t, text, string(rebuilt))
	}
}

func TestSplit_PrefersSeparators(t *testing.T) {
	splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 100, ChunkOverlap: 20})
	require.NoError(t, err)

	text := strings.Repeat("word ", 60)
	chunks := splitter.Split([]types.Document{{Content: text}})
	require.Greater(t, len(chunks), 1)

	// Every chunk except the last should end on a word boundary rather
	// than cutting through "word".
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk.Content, " "),
			"chunk %q does not end at a word boundary", chunk.Content)
	}
}

func TestSplit_MultiByteText(t *testing.T) {
	// Sizes and offsets count characters, not bytes, and a hard cut must
	// never split a multi-byte rune.
	splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200})
	require.NoError(t, err)

	runes := []rune(strings.Repeat("文", 1500))
	chunks := splitter.Split([]types.Document{{Content: string(runes)}})
	require.Len(t, chunks, 2)

	assert.Equal(t, 0, chunks[0].Metadata.StartIndex)
	assert.Equal(t, 800, chunks[1].Metadata.StartIndex)
	assert.Equal(t, string(runes[:1000]), chunks[0].Content)
	assert.Equal(t, string(runes[800:]), chunks[1].Content)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Content), "chunk %d is not valid UTF-8", i)
		assert.LessOrEqual(t, len([]rune(chunk.Content)), 1000)
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	splitter, err := NewSplitter(types.SplitterConfig{ChunkSize: 100, ChunkOverlap: 10})
	require.NoError(t, err)

	chunks := splitter.Split([]types.Document{{Content: ""}})
	assert.Empty(t, chunks)
}
