// Package knowledge turns a rendered corpus into an embedded, queryable
// retrieval index.
package knowledge

import (
	"strings"

	"buddybot/internal/domain"
)

const (
	// ChunkSeparator joins context sentences before splitting.
	ChunkSeparator = "\n\n"

	defaultChunkSize = 1000
	defaultOverlap   = 200
)

// Chunker splits the concatenated context text of a corpus into bounded,
// overlapping chunks. Splitting is by rune so multibyte text never breaks
// mid-character, and is fully deterministic for a fixed corpus and
// configuration.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker builds a chunker with the given maximum chunk size and overlap,
// both in runes. Non-positive values fall back to the defaults; an overlap
// that would prevent forward progress is treated as zero.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultOverlap
	}
	if overlap >= size {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split renders the corpus into chunks. Consecutive chunks share `overlap`
// runes so context spanning a boundary is never lost.
func (c *Chunker) Split(corpus domain.Corpus) []string {
	texts := make([]string, 0, len(corpus))
	for _, msg := range corpus {
		if msg.ContextText != "" {
			texts = append(texts, msg.ContextText)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	runes := []rune(strings.Join(texts, ChunkSeparator))
	step := c.size - c.overlap

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end >= len(runes) {
			break
		}
	}
	return chunks
}
