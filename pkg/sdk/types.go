package sdk

// Document is a short text to be clustered. Either Text or Embedding must be
// set; both is fine when the caller already vectorized the text.
type Document struct {
	ID        string    `json:"id"`
	Text      string    `json:"text,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Assignment is the outcome of placing one document.
type Assignment struct {
	ClusterID string  `json:"cluster_id"`
	Created   bool    `json:"created"`
	Distance  float64 `json:"distance"`
}

// Cluster is a topic cluster summary.
type Cluster struct {
	ID       string    `json:"id"`
	Size     int       `json:"size"`
	Centroid []float32 `json:"centroid,omitempty"`
}

// Group is one batch clustering result.
type Group struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

// HealthReport is the server health snapshot.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
