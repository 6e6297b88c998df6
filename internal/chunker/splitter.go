package chunker

import (
	"strings"

	"ragdesk/internal/domain"
)

// Default splitting budgets, in bytes. 300/100 balances embedding
// context against retrieval granularity.
const (
	DefaultChunkSize = 300
	DefaultOverlap   = 100
)

// separators, largest boundary first: paragraph, line, sentence, word,
// then raw characters as a last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits raw units into fixed-budget overlapping chunks,
// preferring the largest boundary type that still fits the budget.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter validates the budgets and returns a splitter. The
// overlap must be smaller than the chunk size, otherwise chunks after
// the first would never advance.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, &domain.ConfigurationError{Msg: "chunk size must be positive"}
	}
	if overlap < 0 {
		return nil, &domain.ConfigurationError{Msg: "overlap must not be negative"}
	}
	if overlap >= chunkSize {
		return nil, &domain.ConfigurationError{Msg: "overlap must be smaller than chunk size"}
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: defaultSeparators}, nil
}

// Split chunks every unit and tracks each chunk's byte offset within
// the concatenation of all unit text seen so far for its source. An
// empty unit yields no chunks; a unit shorter than the chunk size
// yields exactly one.
func (s *Splitter) Split(units []domain.RawUnit) []domain.Chunk {
	var chunks []domain.Chunk
	base := make(map[string]int)
	for _, u := range units {
		pieces := s.splitText(u.Text, s.separators)
		offset := 0
		prevLen := 0
		for i, piece := range pieces {
			from := 0
			if i > 0 {
				from = offset + prevLen - s.overlap
				if from <= offset {
					from = offset + 1
				}
			}
			idx := -1
			if from <= len(u.Text) {
				idx = strings.Index(u.Text[from:], piece)
			}
			if idx < 0 {
				// overlap bookkeeping overshot; rescan from the
				// previous chunk
				from = offset
				idx = strings.Index(u.Text[from:], piece)
				if idx < 0 {
					from, idx = 0, strings.Index(u.Text, piece)
				}
			}
			offset = from + idx
			prevLen = len(piece)
			chunks = append(chunks, domain.Chunk{
				Text:        piece,
				SourceID:    u.SourceID,
				StartOffset: base[u.SourceID] + offset,
				UploadID:    u.Metadata[domain.MetaUploadID],
				FileType:    u.Metadata[domain.MetaFileType],
			})
		}
		base[u.SourceID] += len(u.Text)
	}
	return chunks
}

// splitText breaks text on the first separator it contains, recursing
// into the next smaller separator for any piece that still exceeds the
// budget, then merges small pieces back together with overlap.
func (s *Splitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	splits := strings.Split(text, separator)
	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}
	return final
}

// mergeSplits packs pieces into chunks of at most chunkSize bytes,
// carrying up to overlap bytes from the tail of one chunk into the
// head of the next.
func (s *Splitter) mergeSplits(splits []string, separator string) []string {
	sepLen := len(separator)
	var docs []string
	var current []string
	total := 0
	for _, piece := range splits {
		withPiece := total + len(piece)
		if len(current) > 0 {
			withPiece += sepLen
		}
		if withPiece > s.chunkSize && len(current) > 0 {
			if doc := joinPieces(current, separator); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && s.shouldShrink(total, len(piece), sepLen, len(current)) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += len(piece)
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := joinPieces(current, separator); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func (s *Splitter) shouldShrink(total, pieceLen, sepLen, currentLen int) bool {
	if currentLen < 2 {
		sepLen = 0
	}
	return total > s.overlap || (total+pieceLen+sepLen > s.chunkSize && total > 0)
}

func joinPieces(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}
