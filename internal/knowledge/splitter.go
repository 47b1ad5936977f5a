package knowledge

import "vinobot/internal/domain"

// separators are tried in order when choosing where to cut a chunk:
// paragraph break, line break, sentence end, word break, hard cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts documents into overlapping chunks bounded by a maximum
// size in characters. Sizes are measured in runes so Cyrillic text is
// not cut mid-character.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Splitter{size: size, overlap: overlap}
}

// SplitDocument produces chunks carrying the document's metadata.
// Ordering within the document is preserved.
func (s *Splitter) SplitDocument(doc domain.Document) []domain.Chunk {
	parts := s.Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, domain.Chunk{
			Content: p,
			Type:    doc.Type,
			Name:    doc.Name,
			Source:  doc.Source,
		})
	}
	return chunks
}

// Split cuts text into contiguous pieces of at most size runes, with
// consecutive pieces overlapping by up to the configured amount.
// Each cut is placed at the earliest-listed separator found within the
// window; when none fits, the text is cut hard at the size limit.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.size {
		return []string{text}
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			parts = append(parts, string(runes[start:]))
			break
		}

		cut := s.findCut(runes[start:end])
		end = start + cut
		parts = append(parts, string(runes[start:end]))

		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return parts
}

// findCut returns the cut offset within a full-size window, preferring
// the earliest-listed separator type. Cuts land just after the
// separator so chunks keep their trailing boundary.
func (s *Splitter) findCut(window []rune) int {
	text := string(window)
	for _, sep := range separators {
		if idx := lastIndexRunes(text, sep); idx > 0 {
			return idx + len([]rune(sep))
		}
	}
	return len(window)
}

// lastIndexRunes is strings.LastIndex measured in runes.
func lastIndexRunes(text, sep string) int {
	runes := []rune(text)
	sepRunes := []rune(sep)
	for i := len(runes) - len(sepRunes); i >= 0; i-- {
		if string(runes[i:i+len(sepRunes)]) == sep {
			return i
		}
	}
	return -1
}
