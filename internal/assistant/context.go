package assistant

import (
	"context"
	"strings"

	"vinobot/internal/domain"
)

// Per-intent caps on the context injected into the model prompt. These
// bound the prompt budget regardless of chunk size.
const (
	regionContextLimit  = 500
	grapeContextLimit   = 500
	generalContextLimit = 400
	pairingMaxLines     = 3
)

// KnowledgeBase is the structured-data side of the knowledge store
// consumed by the resolver.
type KnowledgeBase interface {
	HasPrices() bool
	PairingTable() string
}

// Searcher is the semantic side: see knowledge.Index.
type Searcher interface {
	Search(ctx context.Context, query string, k int, typeFilter domain.DocType) []domain.SearchResult
}

// Resolver pulls the evidence matching an intent: structured tables for
// menu/price, pairing-table excerpts for food pairing, semantic search
// hits for everything else.
type Resolver struct {
	kb     KnowledgeBase
	search Searcher
}

func NewResolver(kb KnowledgeBase, search Searcher) *Resolver {
	return &Resolver{kb: kb, search: search}
}

// Resolve returns the context text for a turn, possibly empty.
func (r *Resolver) Resolve(ctx context.Context, intent Intent, query string) string {
	switch intent {
	case IntentMenu:
		return "Клиент запросил меню. Покажи винную карту."

	case IntentPrice:
		if r.kb.HasPrices() {
			return "Информация о ценах доступна в базе данных.\n"
		}
		return ""

	case IntentFoodPairing:
		return r.resolvePairing(query)

	case IntentRegion:
		return r.resolveSemantic(ctx, query, domain.DocRegion, "Информация о регионе:\n", regionContextLimit)

	case IntentGrape:
		return r.resolveSemantic(ctx, query, domain.DocWine, "Информация о сорте:\n", grapeContextLimit)

	default:
		return r.resolveSemantic(ctx, query, "", "Релевантная информация:\n", generalContextLimit)
	}
}

// resolvePairing scans the pairing table line by line, keeping lines
// that contain any token of the query, and returns at most the first
// three matches.
func (r *Resolver) resolvePairing(query string) string {
	table := r.kb.PairingTable()
	if table == "" {
		return ""
	}

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return ""
	}

	var relevant []string
	for _, line := range strings.Split(table, "\n") {
		lower := strings.ToLower(line)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				relevant = append(relevant, line)
				break
			}
		}
		if len(relevant) == pairingMaxLines {
			break
		}
	}

	if len(relevant) == 0 {
		return ""
	}
	return "Рекомендации по сочетанию с едой:\n" + strings.Join(relevant, "\n")
}

func (r *Resolver) resolveSemantic(ctx context.Context, query string, filter domain.DocType, label string, limit int) string {
	hits := r.search.Search(ctx, query, 2, filter)
	if len(hits) == 0 {
		return ""
	}
	return label + truncateRunes(hits[0].Chunk.Content, limit)
}

// truncateRunes cuts s to at most limit characters, not bytes, so
// Cyrillic content is never cut mid-character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
