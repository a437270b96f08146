package topix

import "context"

// Document is a short text to be clustered. Either Text or Embedding must be
// set; both is fine when the caller already vectorized the text.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
}

// Assignment is the outcome of placing one document.
type Assignment struct {
	ClusterID string
	Created   bool
	Distance  float64
}

// Cluster is a topic cluster summary.
type Cluster struct {
	ID       string
	Size     int
	Centroid []float32
}

// Group is one batch clustering result: document IDs grouped by shared vocabulary.
type Group struct {
	ID      string
	Members []string
}

// EmbeddingResult carries an embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implement this to plug in any provider.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}
