package channel

import "strings"

// SplitLongMessage splits reply text into parts that fit under the
// transport's per-message length ceiling, preferring paragraph breaks,
// then line breaks, then a hard cut. Lengths are measured in runes.
func SplitLongMessage(text string, maxLen int) []string {
	if runeLen(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, s)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		if runeLen(current.String())+runeLen(paragraph)+2 > maxLen {
			flush()

			if runeLen(paragraph) > maxLen {
				for _, line := range strings.Split(paragraph, "\n") {
					if runeLen(current.String())+runeLen(line)+1 > maxLen {
						flush()
					}
					for runeLen(line) > maxLen {
						head := string([]rune(line)[:maxLen])
						parts = append(parts, head)
						line = string([]rune(line)[maxLen:])
					}
					current.WriteString(line + "\n")
				}
				continue
			}
		}
		current.WriteString(paragraph + "\n\n")
	}
	flush()

	if len(parts) == 0 {
		return []string{string([]rune(text)[:maxLen])}
	}
	return parts
}

func runeLen(s string) int { return len([]rune(s)) }
