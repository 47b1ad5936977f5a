package knowledge

import (
	"strings"
	"testing"

	"vinobot/internal/domain"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(800, 150)
	parts := s.Split("Шабли — белое вино.")
	if len(parts) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(parts))
	}
	if parts[0] != "Шабли — белое вино." {
		t.Fatalf("short text must be returned verbatim, got %q", parts[0])
	}
}

func TestSplit_Empty(t *testing.T) {
	s := NewSplitter(800, 150)
	if parts := s.Split(""); parts != nil {
		t.Fatalf("expected no chunks for empty text, got %v", parts)
	}
}

func TestSplit_RespectsSizeLimit(t *testing.T) {
	s := NewSplitter(100, 20)
	text := strings.Repeat("Вино из долины Луары отличается свежестью. ", 30)

	for i, p := range s.Split(text) {
		if n := len([]rune(p)); n > 100 {
			t.Fatalf("chunk %d exceeds size limit: %d runes", i, n)
		}
	}
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	para1 := strings.Repeat("а", 60)
	para2 := strings.Repeat("б", 60)
	s := NewSplitter(100, 10)

	parts := s.Split(para1 + "\n\n" + para2)
	if len(parts) < 2 {
		t.Fatalf("expected a cut, got %d chunks", len(parts))
	}
	if !strings.HasSuffix(parts[0], "\n\n") {
		t.Fatalf("first chunk should end at the paragraph break, got %q", parts[0])
	}
}

func TestSplit_FallsBackToSentenceBreak(t *testing.T) {
	text := strings.Repeat("х", 50) + ". " + strings.Repeat("у", 80)
	s := NewSplitter(100, 10)

	parts := s.Split(text)
	if !strings.HasSuffix(parts[0], ". ") {
		t.Fatalf("expected cut after sentence end, got %q", parts[0])
	}
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("ы", 250)
	s := NewSplitter(100, 10)

	parts := s.Split(text)
	if len(parts) < 3 {
		t.Fatalf("expected hard cuts, got %d chunks", len(parts))
	}
	if len([]rune(parts[0])) != 100 {
		t.Fatalf("hard cut should be at the size limit, got %d", len([]rune(parts[0])))
	}
}

// Splitting must never silently drop content: walking the chunks and
// matching each against the original at or after the previous start
// covers the full text.
func TestSplit_RoundTripCoversOriginal(t *testing.T) {
	var b strings.Builder
	b.WriteString("Бордо — крупнейший винодельческий регион Франции.\n\n")
	for i := 0; i < 40; i++ {
		// Unique sentences so every chunk matches one position only.
		b.WriteString(strings.Repeat("х", i%7+1))
		b.WriteString(" факт номер ")
		b.WriteString(strings.Repeat("I", i+1))
		b.WriteString(" о вине. ")
	}
	b.WriteString("\nКлассификация 1855 года действует до сих пор.")
	text := b.String()
	s := NewSplitter(120, 30)
	parts := s.Split(text)

	runes := []rune(text)
	pos := 0
	for i, p := range parts {
		idx := indexFrom(runes, []rune(p), pos-len([]rune(p))) // overlap may step back
		if idx < 0 {
			t.Fatalf("chunk %d not found in original at/after overlap window", i)
		}
		if idx > pos {
			t.Fatalf("gap before chunk %d: content between %d and %d dropped", i, pos, idx)
		}
		pos = idx + len([]rune(p))
	}
	if pos != len(runes) {
		t.Fatalf("tail dropped: covered %d of %d runes", pos, len(runes))
	}
}

// indexFrom finds needle in haystack at or after start (rune offsets).
func indexFrom(haystack, needle []rune, start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return i
		}
	}
	return -1
}

func TestSplitDocument_CarriesMetadata(t *testing.T) {
	s := NewSplitter(50, 10)
	doc := domain.Document{
		Content: strings.Repeat("Тоскана. ", 30),
		Type:    domain.DocRegion,
		Name:    "Тоскана",
		Source:  "data/regions.txt/Тоскана.txt",
	}

	chunks := s.SplitDocument(doc)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Type != domain.DocRegion || c.Name != "Тоскана" || c.Source != doc.Source {
			t.Fatalf("chunk %d lost metadata: %+v", i, c)
		}
	}
}
