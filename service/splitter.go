package service

import (
	"fmt"

	"github.com/ragkit/indexer-be/types"
)

// ChunkSplitter turns page documents into overlapping chunks ready for
// embedding.
type ChunkSplitter interface {
	Split(docs []types.Document) []types.DocumentChunk
}

// Splitter cuts document text into overlapping windows. Window starts advance
// by a fixed stride of chunkSize-chunkOverlap characters; window ends prefer
// to break at a separator (paragraph, line, sentence, word) but never move
// before the next window's start, so the chunks always cover the full text.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewSplitter(config types.SplitterConfig) (*Splitter, error) {
	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", types.ErrInvalidConfig, config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, chunk size %d)", types.ErrInvalidConfig, config.ChunkOverlap, config.ChunkSize)
	}
	return &Splitter{
		chunkSize:    config.ChunkSize,
		chunkOverlap: config.ChunkOverlap,
	}, nil
}

// Split chunks each document independently, preserving order. Every chunk
// carries its parent's metadata plus the character offset it starts at.
func (s *Splitter) Split(docs []types.Document) []types.DocumentChunk {
	var chunks []types.DocumentChunk
	for _, doc := range docs {
		for _, span := range s.splitText(doc.Content) {
			metadata := doc.Metadata
			metadata.StartIndex = span.start
			chunks = append(chunks, types.DocumentChunk{
				Content:  span.text,
				Metadata: metadata,
			})
		}
	}
	return chunks
}

type chunkSpan struct {
	text  string
	start int
}

// splitText works on runes so chunk size, overlap and start offsets count
// characters, and a hard cut can never land inside a multi-byte sequence.
func (s *Splitter) splitText(text string) []chunkSpan {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return nil
	}

	// A document that fits in one window is returned whole.
	if textLen <= s.chunkSize {
		return []chunkSpan{{text: text, start: 0}}
	}

	stride := s.chunkSize - s.chunkOverlap
	var spans []chunkSpan
	for currentPos := 0; currentPos < textLen; currentPos += stride {
		chunkEnd := currentPos + s.chunkSize
		if chunkEnd >= textLen {
			// Last chunk takes the remainder.
			spans = append(spans, chunkSpan{text: string(runes[currentPos:]), start: currentPos})
			break
		}
		// The end may back off to a separator, but never past the next
		// window's start or the text would have uncovered gaps.
		floor := currentPos + stride
		end := findBreak(runes, floor, chunkEnd)
		spans = append(spans, chunkSpan{text: string(runes[currentPos:end]), start: currentPos})
	}
	return spans
}

// findBreak scans backward from end for the best position to cut, trying
// separators in priority order: paragraph break, line break, sentence end,
// word boundary. Falls back to a hard cut at end.
func findBreak(runes []rune, floor, end int) int {
	// Paragraph break
	for i := end; i > floor+1; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	// Line break
	for i := end; i > floor; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	// Sentence end
	for i := end - 1; i > floor; i-- {
		if runes[i-1] == '.' || runes[i-1] == '?' || runes[i-1] == '!' {
			if runes[i] == ' ' || runes[i] == '\n' {
				return i
			}
		}
	}
	// Word boundary
	for i := end; i > floor; i-- {
		if runes[i-1] == ' ' {
			return i
		}
	}
	return end
}
