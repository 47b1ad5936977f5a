package assistant

import "strings"

// Intent is the coarse category of a user request. It drives the
// context-retrieval strategy and is recomputed per message.
type Intent string

const (
	IntentMenu        Intent = "menu"
	IntentPrice       Intent = "price"
	IntentFoodPairing Intent = "food_pairing"
	IntentRegion      Intent = "region"
	IntentGrape       Intent = "grape"
	IntentGeneral     Intent = "general"
)

// MenuQuery is the constant returned as the query for menu intents: it
// names the menu document set, not the user text.
const MenuQuery = "drinks"

// Keyword sets per intent, matched case-insensitively as substrings.
// The evaluation order below is a deliberate tie-break: a message
// mentioning both a dish and a region is food_pairing.
var (
	menuKeywords   = []string{"меню", "menu", "карта", "что есть", "покажи вина"}
	priceKeywords  = []string{"цена", "стоимость", "сколько стоит", "price"}
	foodKeywords   = []string{"к ", "под ", "с ", "стейк", "рыба", "мясо", "курица", "сыр", "десерт", "блюд"}
	regionKeywords = []string{"регион", "из ", "бордо", "тоскан", "шампань", "риоха"}
	grapeKeywords  = []string{"каберне", "мерло", "пино", "шардоне", "совиньон", "сорт"}
)

// Classify maps a raw user utterance to an intent and the query to
// retrieve context with. Pure function: first matching category in
// priority order wins; no match falls through to general with the
// message passed on verbatim.
func Classify(message string) (Intent, string) {
	lower := strings.ToLower(message)

	if containsAny(lower, menuKeywords) {
		return IntentMenu, MenuQuery
	}
	if containsAny(lower, priceKeywords) {
		return IntentPrice, message
	}
	if containsAny(lower, foodKeywords) {
		return IntentFoodPairing, message
	}
	if containsAny(lower, regionKeywords) {
		return IntentRegion, message
	}
	if containsAny(lower, grapeKeywords) {
		return IntentGrape, message
	}
	return IntentGeneral, message
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
