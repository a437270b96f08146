package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName     string
	Vector        []float32
	K             int
	ReturnFields  []string
	IncludeVector bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a KNN search. Distance is the raw cosine
// distance reported by the index (0 = identical direction).
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
