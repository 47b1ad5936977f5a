package assistant

import "testing"

func TestClassify_Menu(t *testing.T) {
	for _, msg := range []string{
		"Покажи меню",
		"что есть из красного?",
		"Винная карта, пожалуйста",
		"show me the menu",
	} {
		intent, query := Classify(msg)
		if intent != IntentMenu {
			t.Fatalf("%q: expected menu, got %s", msg, intent)
		}
		if query != MenuQuery {
			t.Fatalf("%q: menu query must be the constant %q, got %q", msg, MenuQuery, query)
		}
	}
}

func TestClassify_MenuBeatsEverything(t *testing.T) {
	// Contains menu, price, food and region keywords at once.
	msg := "покажи меню: цена вина к стейку из бордо"
	intent, _ := Classify(msg)
	if intent != IntentMenu {
		t.Fatalf("menu keyword must win regardless of other content, got %s", intent)
	}
}

func TestClassify_Price(t *testing.T) {
	intent, query := Classify("Сколько стоит шираз?")
	if intent != IntentPrice {
		t.Fatalf("expected price, got %s", intent)
	}
	if query != "Сколько стоит шираз?" {
		t.Fatalf("price query must be the original message, got %q", query)
	}
}

func TestClassify_FoodBeatsRegion(t *testing.T) {
	// Both a food word and a region word: food_pairing wins by priority.
	intent, _ := Classify("что взять к стейку из бордо")
	if intent != IntentFoodPairing {
		t.Fatalf("expected food_pairing tie-break, got %s", intent)
	}
}

func TestClassify_Region(t *testing.T) {
	intent, _ := Classify("расскажи про регион Риоха")
	if intent != IntentRegion {
		t.Fatalf("expected region, got %s", intent)
	}
}

func TestClassify_Grape(t *testing.T) {
	intent, _ := Classify("чем хорош каберне?")
	if intent != IntentGrape {
		t.Fatalf("expected grape, got %s", intent)
	}
}

func TestClassify_GeneralFallback(t *testing.T) {
	msg := "посоветуй что-нибудь легкое на вечер"
	intent, query := Classify(msg)
	if intent != IntentGeneral {
		t.Fatalf("expected general, got %s", intent)
	}
	if query != msg {
		t.Fatalf("general query must be verbatim, got %q", query)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	intent, _ := Classify("МЕНЮ")
	if intent != IntentMenu {
		t.Fatalf("matching must be case-insensitive, got %s", intent)
	}
}
