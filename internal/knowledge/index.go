package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"vinobot/internal/domain"
)

// Index is the semantic search layer over the knowledge base. It embeds
// document chunks through an external embedding backend and stores them
// in a persistent vector index.
//
// A failed build degrades the index to always returning empty results
// instead of failing the whole system: intents that don't need semantic
// search keep working.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorIndex
	splitter *Splitter
	logger   *slog.Logger
	ready    bool
}

type IndexConfig struct {
	Embedder domain.Embedder
	Store    domain.VectorIndex
	Splitter *Splitter
	Logger   *slog.Logger
}

func NewIndex(cfg IndexConfig) *Index {
	if cfg.Splitter == nil {
		cfg.Splitter = NewSplitter(800, 150)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Index{
		embedder: cfg.Embedder,
		store:    cfg.Store,
		splitter: cfg.Splitter,
		logger:   cfg.Logger.With("component", "index"),
	}
}

// Open marks the index ready if a previous build left chunks in the
// persistent store, avoiding a re-embed on every start.
func (ix *Index) Open(ctx context.Context) bool {
	n, err := ix.store.Count(ctx)
	if err != nil {
		ix.logger.Warn("cannot inspect vector store", "err", err)
		return false
	}
	if n == 0 {
		return false
	}
	ix.ready = true
	ix.logger.Info("existing vector index opened", "chunks", n)
	return true
}

// Build splits, embeds and stores the given documents, replacing any
// previous index contents. Errors are logged, not raised: the index
// stays (or becomes) unavailable and searches return empty.
func (ix *Index) Build(ctx context.Context, docs []domain.Document) error {
	ix.ready = false

	if len(docs) == 0 {
		ix.logger.Warn("no documents to index")
		return nil
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, ix.splitter.SplitDocument(doc)...)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		ix.logger.Error("index build failed: embedding backend", "err", err)
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := ix.store.Clear(ctx); err != nil {
		ix.logger.Error("index build failed: clear store", "err", err)
		return fmt.Errorf("clear vector store: %w", err)
	}
	if err := ix.store.Add(ctx, chunks, vectors); err != nil {
		ix.logger.Error("index build failed: store chunks", "err", err)
		return fmt.Errorf("store chunks: %w", err)
	}

	ix.ready = true
	ix.logger.Info("vector index built", "documents", len(docs), "chunks", len(chunks))
	return nil
}

// Ready reports whether searches can return results.
func (ix *Index) Ready() bool { return ix.ready }

// Search embeds the query and returns up to k chunks ranked by
// similarity, optionally restricted to one document type. Query-time
// failures are logged and yield an empty result for that turn only.
func (ix *Index) Search(ctx context.Context, query string, k int, typeFilter domain.DocType) []domain.SearchResult {
	if !ix.ready || k <= 0 {
		return nil
	}

	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		ix.logger.Error("query embedding failed", "err", err)
		return nil
	}

	results, err := ix.store.Search(ctx, vector, k, typeFilter)
	if err != nil {
		ix.logger.Error("vector search failed", "err", err)
		return nil
	}
	return results
}
