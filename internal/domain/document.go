package domain

// DocType tags a knowledge-base document by its source collection.
type DocType string

const (
	DocWine    DocType = "wine"
	DocRegion  DocType = "region"
	DocMenu    DocType = "menu"
	DocPairing DocType = "pairing"
)

// Document is a single knowledge-base entry loaded from the data root.
// Immutable once loaded; rebuilt from source files on restart.
type Document struct {
	Content string
	Type    DocType
	Name    string
	Source  string
}

// Chunk is a bounded slice of a document, the unit of semantic indexing.
type Chunk struct {
	Content string
	Type    DocType
	Name    string
	Source  string
}

// SearchResult is a chunk matched by semantic search, best match first.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// WineEntry is one row of the wine list parsed from menu markdown.
// All fields are optional; entries are recomputed on every request.
type WineEntry struct {
	Name     string
	Producer string
	Year     string
	Type     string
	Price    string
}
