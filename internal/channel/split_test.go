package channel

import (
	"strings"
	"testing"
)

func TestSplitLongMessage_ShortPassesThrough(t *testing.T) {
	parts := SplitLongMessage("Советую шабли.", 100)
	if len(parts) != 1 || parts[0] != "Советую шабли." {
		t.Fatalf("short text must pass through unchanged, got %v", parts)
	}
}

func TestSplitLongMessage_RespectsRuneLimit(t *testing.T) {
	// Cyrillic is 2 bytes per rune; the limit is on runes, not bytes.
	text := strings.Repeat("Вино из Бургундии отличается минеральностью.\n\n", 40)
	for i, p := range SplitLongMessage(text, 200) {
		if n := len([]rune(p)); n > 200 {
			t.Fatalf("part %d exceeds limit: %d runes", i, n)
		}
	}
}

func TestSplitLongMessage_PrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("а", 150)
	text := para + "\n\n" + para

	parts := SplitLongMessage(text, 200)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts at the paragraph break, got %d", len(parts))
	}
	if parts[0] != para || parts[1] != para {
		t.Fatalf("paragraphs must stay intact: %q / %q", parts[0], parts[1])
	}
}

func TestSplitLongMessage_FallsBackToLines(t *testing.T) {
	line := strings.Repeat("б", 150)
	text := line + "\n" + line + "\n" + line // one paragraph over the limit

	parts := SplitLongMessage(text, 200)
	if len(parts) < 2 {
		t.Fatalf("expected line-level cuts, got %d parts", len(parts))
	}
	for i, p := range parts {
		if n := len([]rune(p)); n > 200 {
			t.Fatalf("part %d exceeds limit: %d runes", i, n)
		}
	}
}

func TestSplitLongMessage_HardCutsGiantLine(t *testing.T) {
	text := strings.Repeat("в", 450)

	parts := SplitLongMessage(text, 200)
	if len(parts) < 3 {
		t.Fatalf("expected hard cuts, got %d parts", len(parts))
	}
	total := 0
	for i, p := range parts {
		n := len([]rune(p))
		if n > 200 {
			t.Fatalf("part %d exceeds limit: %d runes", i, n)
		}
		total += n
	}
	if total != 450 {
		t.Fatalf("content lost: %d of 450 runes kept", total)
	}
}

func TestSplitLongMessage_NoContentDropped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("Абзац о вине номер ")
		b.WriteString(strings.Repeat("I", i+1))
		b.WriteString(".\n\n")
	}
	text := b.String()

	joined := strings.Join(SplitLongMessage(text, 120), "\n\n")
	for i := 0; i < 30; i++ {
		marker := "номер " + strings.Repeat("I", i+1) + "."
		if !strings.Contains(joined, marker) {
			t.Fatalf("paragraph %d missing from split output", i)
		}
	}
}
