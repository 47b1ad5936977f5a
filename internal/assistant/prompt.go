package assistant

import (
	"fmt"
	"strings"
)

// systemPrompt is the fixed sommelier persona prepended to every turn.
const systemPrompt = `Ты - опытный сомелье в винном бутике.

ВАЖНО:
- НЕ ЗДОРОВАЙСЯ в каждом ответе (только если клиент первый раз обращается)
- Будь лаконичным, но информативным

Стиль общения:
- Дружелюбный профессионал
- Даешь конкретные рекомендации с деталями
- Делишься интересными фактами
- Не выдумываешь информацию - используешь только то, что есть в контексте
- Если информации нет, честно говоришь об этом

Формат ответов:
- Простой структурированный текст
- Используй **жирный** только для названий вин
- Нумерованные списки для нескольких вариантов
- Никаких эмодзи в середине текста

Твоя задача - помочь клиенту выбрать вино быстро и точно!`

// renderHistory formats up to the last n entries as a two-party
// transcript labeled by role.
func renderHistory(entries []Entry, n int) string {
	if len(entries) == 0 || n <= 0 {
		return ""
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		label := "Клиент"
		if e.Role == RoleAssistant {
			label = "Ты"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, e.Content))
	}
	return fmt.Sprintf("\nПредыдущий диалог:\n%s\n", strings.Join(lines, "\n"))
}

// buildPrompt assembles persona, retrieved context, transcript and the
// new message into the single completion prompt.
func buildPrompt(contextText, history, message string) string {
	return fmt.Sprintf("%s\n\n%s\n%s\nКлиент: %s\nТы:", systemPrompt, contextText, history, message)
}
