package models

// Page is one page-level text record extracted from a source document.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Chunk is a bounded-size slice of a page used as the unit of retrieval.
// Chunks are created once during ingestion and never mutated.
type Chunk struct {
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
	Page    int    `json:"page"`
	Order   int    `json:"order"`
}

// DocumentRow is the persisted shape of a chunk in the vector table:
// chunk text, its embedding, and source metadata.
type DocumentRow struct {
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
}

// MatchResult is one row returned by the similarity-search function,
// ordered most similar first.
type MatchResult struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}
