package domain

import "context"

// Provider is the text-completion backend behind the assistant.
type Provider interface {
	// Generate produces a completion for a single composed prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Healthy(ctx context.Context) error
}

// Embedder produces vector embeddings for arbitrary text, used both at
// index-build time and at query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex persists embedded chunks and supports nearest-neighbor search.
// Implementations can be swapped or mocked without touching the resolver.
type VectorIndex interface {
	// Add stores chunks with their embeddings.
	Add(ctx context.Context, chunks []Chunk, vectors [][]float32) error

	// Search returns up to k chunks ranked by similarity to the query
	// vector. A non-empty typeFilter restricts results to that DocType.
	Search(ctx context.Context, vector []float32, k int, typeFilter DocType) ([]SearchResult, error)

	// Count reports how many chunks are stored.
	Count(ctx context.Context) (int, error)

	// Clear removes all stored chunks.
	Clear(ctx context.Context) error

	Close() error
}
