// Package chunker splits extracted document text into overlapping,
// size-bounded segments with stable identities. Splitting is pure and
// deterministic: the same text always produces the same boundaries and the
// same sequence indexes, which is what keeps chunk ids stable across
// re-ingestion.
package chunker

import (
	"fmt"
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// defaultSeparators is ordered from the largest natural boundary down to
// single characters. The splitter always prefers the largest boundary that
// still fits the size limit.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunk is one bounded segment of a document, the unit of embedding and
// retrieval.
type Chunk struct {
	ID         string
	Text       string
	Index      int
	UserID     string
	DocumentID string
	Source     string
}

// ChunkID derives the stable identity of a chunk from its owner, document
// and position. It is the single source of truth for chunk identity: both
// ingestion and deletion key on ids produced here, so upserting the same
// document twice overwrites instead of duplicating.
func ChunkID(userID, documentID string, index int) string {
	return fmt.Sprintf("%s-%s-%d", userID, documentID, index)
}

// Splitter performs recursive character splitting: text is divided on the
// coarsest separator present, oversized pieces are re-split on finer
// separators, and adjacent pieces are merged back into chunks of at most
// chunkSize with chunkOverlap carried across boundaries.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Chunk splits text and assigns deterministic ids and 0-based sequence
// indexes. Empty or whitespace-only text yields nil: the caller treats that
// as "no extractable content" and aborts ingestion.
func (s *Splitter) Chunk(text, source, userID, documentID string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := s.Split(text)
	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{
			ID:         ChunkID(userID, documentID, i),
			Text:       p,
			Index:      i,
			UserID:     userID,
			DocumentID: documentID,
			Source:     source,
		})
	}
	return chunks
}

// Split returns the ordered chunk texts for the input. The union of the
// returned chunks covers the full input up to surrounding whitespace.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = strings.Split(text, "")
	} else {
		splits = strings.Split(text, sep)
	}

	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge greedily joins small splits into chunks of at most chunkSize, then
// keeps the tail of each emitted chunk (up to chunkOverlap) as the head of
// the next one.
func (s *Splitter) merge(splits []string, sep string) []string {
	sepLen := len(sep)
	var chunks []string
	var current []string
	total := 0

	for _, piece := range splits {
		pieceLen := len(piece)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+pieceLen+extra > s.chunkSize && len(current) > 0 {
			if c := strings.TrimSpace(strings.Join(current, sep)); c != "" {
				chunks = append(chunks, c)
			}
			// Drop from the front until the carried-over tail fits the
			// overlap budget and the new piece fits the size budget.
			for total > s.chunkOverlap || (total+pieceLen+extra > s.chunkSize && total > 0) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
				extra = 0
				if len(current) > 0 {
					extra = sepLen
				}
			}
		}
		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}
	if c := strings.TrimSpace(strings.Join(current, sep)); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}
