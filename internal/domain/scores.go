package domain

import "math"

// Similarity is a token-overlap score in [0, 1]. Produced by the text
// similarity engine and consumed by the batch cluster builder.
type Similarity float64

// Distance is a cosine distance between embeddings in [0, 2]. Produced by
// the cluster store and consumed by the incremental assignment engine.
//
// Similarity and Distance live on incompatible scales. Keeping them as
// distinct types means a Distance can never be checked against a
// Similarity threshold without an explicit (and visible) conversion.
type Distance float64

// CosineSimilarity computes the cosine similarity of two equal-length
// vectors. Returns 0 for mismatched lengths or zero-norm inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - cosine similarity, the same scale RediSearch
// reports for COSINE vector fields.
func CosineDistance(a, b []float32) Distance {
	return Distance(1 - CosineSimilarity(a, b))
}
