package knowledge

import (
	"fmt"
	"strings"

	"vinobot/internal/domain"
)

const winesPerPage = 8

// headerWords marks pipe-table header rows that must be skipped.
var headerWords = map[string]bool{
	"wine":     true,
	"drink":    true,
	"вино":     true,
	"название": true,
}

// WinesList parses the "drinks" menu section into wine entries. The
// list is recomputed on every call, never cached.
func (s *Store) WinesList() []domain.WineEntry {
	return ParseWineTable(s.MenuSection("drinks"))
}

// ParseWineTable extracts wine entries from pipe-delimited menu markup.
// Expected columns: name | producer | year | type | price. Separator
// rows (|---|) and a recognized header row are skipped; missing cells
// stay empty.
func ParseWineTable(markup string) []domain.WineEntry {
	if markup == "" {
		return nil
	}

	var wines []domain.WineEntry
	for _, line := range strings.Split(strings.TrimSpace(markup), "\n") {
		if !strings.Contains(line, "|") || strings.HasPrefix(strings.TrimSpace(line), "|---") {
			continue
		}

		var cells []string
		for _, c := range strings.Split(line, "|") {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) < 2 || headerWords[strings.ToLower(cells[0])] {
			continue
		}

		entry := domain.WineEntry{Name: cells[0], Producer: cells[1]}
		if len(cells) > 2 {
			entry.Year = cells[2]
		}
		if len(cells) > 3 {
			entry.Type = cells[3]
		}
		if len(cells) > 4 {
			entry.Price = cells[4]
		}
		wines = append(wines, entry)
	}
	return wines
}

// FormatWinesPage renders one page of the wine list as Markdown and
// returns the total page count. Out-of-range pages are clamped.
func FormatWinesPage(wines []domain.WineEntry, page int) (string, int) {
	totalPages := (len(wines) + winesPerPage - 1) / winesPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * winesPerPage
	end := start + winesPerPage
	if end > len(wines) {
		end = len(wines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 **Винная карта** (страница %d/%d)\n\n", page, totalPages)

	for _, w := range wines[start:end] {
		fmt.Fprintf(&b, "🍷 **%s**\n", w.Name)

		var details []string
		for _, d := range []string{w.Producer, w.Year, w.Type} {
			if d != "" {
				details = append(details, d)
			}
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, "_%s_\n", strings.Join(details, ", "))
		}
		if w.Price != "" {
			fmt.Fprintf(&b, "💰 %s ₽\n", w.Price)
		}
		b.WriteString("\n")
	}

	return b.String(), totalPages
}
